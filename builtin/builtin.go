// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/nucleonfinance/xcfx/builtin/crossspace"
	"github.com/nucleonfinance/xcfx/builtin/registry"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

// Builtin contracts binding.
var (
	Registry   = &registryContract{newContract("PoSRegister", "0x0888000000000000000000000000000000000005")}
	CrossSpace = &crossSpaceContract{newContract("CrossSpaceCall", "0x0888000000000000000000000000000000000006")}
)

type (
	registryContract   struct{ *contract }
	crossSpaceContract struct{ *contract }
)

func (r *registryContract) WithState(state *state.State) *registry.Registry {
	return registry.New(r.Address, state)
}

// Call invokes the registry from the executing contract, value attached.
func (r *registryContract) Call(env *xenv.Environment, value *big.Int, fn func(reg *registry.Registry, sub *xenv.Environment) error) error {
	return env.Call(r.Address, value, func(sub *xenv.Environment) error {
		return fn(r.WithState(sub.State()), sub)
	})
}

func (c *crossSpaceContract) WithState(state *state.State) *crossspace.CrossSpace {
	return crossspace.New(c.Address, state)
}

// Call invokes the relay from the executing contract, value attached.
func (c *crossSpaceContract) Call(env *xenv.Environment, value *big.Int, fn func(cs *crossspace.CrossSpace, sub *xenv.Environment) error) error {
	return env.Call(c.Address, value, func(sub *xenv.Environment) error {
		return fn(c.WithState(sub.State()), sub)
	})
}

// MappedAddressOf returns the eSpace account mapped to addr.
func (c *crossSpaceContract) MappedAddressOf(addr cfx.Address) cfx.Address {
	return crossspace.MappedAddressOf(addr)
}
