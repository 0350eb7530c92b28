// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package crossspace

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

var (
	relay  = cfx.BytesToAddress([]byte("relay"))
	sender = cfx.BytesToAddress([]byte("sender"))
	bridge = cfx.BytesToAddress([]byte("bridge"))
)

func call(st *state.State, caller cfx.Address, value *big.Int, fn func(env *xenv.Environment) error) error {
	root := xenv.New(st, &xenv.BlockContext{Number: 1}, nil, cfx.Address{}, caller, nil)
	return root.Call(relay, value, fn)
}

func TestMappedAddressOf(t *testing.T) {
	assert.Equal(t, MappedAddressOf(bridge), MappedAddressOf(bridge))
	assert.NotEqual(t, MappedAddressOf(bridge), MappedAddressOf(sender))
	assert.NotEqual(t, bridge, MappedAddressOf(bridge))
}

func TestTransferAndWithdraw(t *testing.T) {
	st := state.New(nil)
	st.SetBalance(sender, cfx.CFX(10))
	c := New(relay, st)
	mapped := MappedAddressOf(bridge)

	err := call(st, sender, cfx.CFX(1), func(env *xenv.Environment) error {
		return c.TransferValue(env, cfx.Address{})
	})
	assert.Equal(t, reverts.ErrZeroAddress, err)

	require.NoError(t, call(st, sender, cfx.CFX(4), func(env *xenv.Environment) error {
		return c.TransferValue(env, mapped)
	}))
	bal, err := c.MappedBalance(mapped)
	require.NoError(t, err)
	assert.Equal(t, cfx.CFX(4), bal)

	// only the owner of the mapped account can withdraw
	err = call(st, sender, nil, func(env *xenv.Environment) error {
		return c.WithdrawMapped(env, cfx.CFX(1))
	})
	assert.Equal(t, reverts.InsufficientBalance, reverts.KindOf(err))

	require.NoError(t, call(st, bridge, nil, func(env *xenv.Environment) error {
		return c.WithdrawMapped(env, cfx.CFX(3))
	}))
	got, err := st.GetBalance(bridge)
	require.NoError(t, err)
	assert.Equal(t, cfx.CFX(3), got)

	bal, err = c.MappedBalance(mapped)
	require.NoError(t, err)
	assert.Equal(t, cfx.CFX(1), bal)
}
