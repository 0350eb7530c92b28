// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/state"
)

// Context binds storage helpers to the account of one contract.
type Context struct {
	address cfx.Address
	state   *state.State
}

func NewContext(address cfx.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) Address() cfx.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Slot converts a storage variable name into its position.
func Slot(name string) cfx.Bytes32 {
	return cfx.BytesToBytes32([]byte(name))
}
