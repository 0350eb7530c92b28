// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleonfinance/xcfx/builtin/crossspace"
	"github.com/nucleonfinance/xcfx/builtin/registry"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

func TestAddresses(t *testing.T) {
	assert.Equal(t, "PoSRegister", Registry.Name())
	assert.Equal(t, "CrossSpaceCall", CrossSpace.Name())
	assert.NotEqual(t, Registry.Address, CrossSpace.Address)
}

func TestCall(t *testing.T) {
	st := state.New(nil)
	caller := cfx.BytesToAddress([]byte("caller"))
	st.SetBalance(caller, cfx.CFX(2000))
	env := xenv.New(st, &xenv.BlockContext{Number: 1}, nil, cfx.Address{}, caller, nil)

	require.NoError(t, Registry.Call(env, registry.UnitPrice, func(reg *registry.Registry, sub *xenv.Environment) error {
		assert.Equal(t, caller, sub.Caller())
		return reg.RegisterPool(sub, cfx.Blake2b([]byte("id")), 1, nil, nil, []byte("proof"))
	}))
	s, err := Registry.WithState(st).Get(caller)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.Votes)

	target := CrossSpace.MappedAddressOf(caller)
	require.NoError(t, CrossSpace.Call(env, big.NewInt(7), func(cs *crossspace.CrossSpace, sub *xenv.Environment) error {
		return cs.TransferValue(sub, target)
	}))
	bal, err := CrossSpace.WithState(st).MappedBalance(target)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(7), bal)
}
