// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/state"
)

type receivers map[cfx.Address]ReceiveFunc

func (r receivers) Receiver(addr cfx.Address) (ReceiveFunc, bool) {
	f, ok := r[addr]
	return f, ok
}

var (
	user     = cfx.BytesToAddress([]byte("user"))
	contract = cfx.BytesToAddress([]byte("contract"))
	payable  = cfx.BytesToAddress([]byte("payable"))
	rejecter = cfx.BytesToAddress([]byte("rejecter"))
)

func newEnv(t *testing.T) *Environment {
	st := state.New(nil)
	st.SetBalance(contract, big.NewInt(100))

	recv := receivers{
		payable: func(env *Environment) error {
			env.Log("Received", "from", env.Caller(), "value", env.Value())
			return nil
		},
		rejecter: func(env *Environment) error {
			return reverts.New(reverts.Unknown, "non-payable")
		},
	}
	return New(st, &BlockContext{Number: 1}, recv, user, contract, nil)
}

func balanceOf(t *testing.T, env *Environment, addr cfx.Address) *big.Int {
	bal, err := env.State().GetBalance(addr)
	require.NoError(t, err)
	return bal
}

func TestTransfer(t *testing.T) {
	env := newEnv(t)

	require.NoError(t, env.Transfer(payable, big.NewInt(10)))
	assert.Equal(t, big.NewInt(90), balanceOf(t, env, contract))
	assert.Equal(t, big.NewInt(10), balanceOf(t, env, payable))

	require.Len(t, env.Events(), 1)
	assert.Equal(t, "Received", env.Events()[0].Name)
	assert.Equal(t, payable, env.Events()[0].Address)
	assert.Equal(t, contract, env.Events()[0].Arg("from"))
	assert.Equal(t, big.NewInt(10), env.Events()[0].Arg("value"))
	assert.Nil(t, env.Events()[0].Arg("missing"))

	require.Len(t, env.Transfers(), 1)
	assert.Equal(t, &Transfer{Sender: contract, Recipient: payable, Amount: big.NewInt(10)}, env.Transfers()[0])

	// zero value is a no-op
	require.NoError(t, env.Transfer(rejecter, new(big.Int)))
}

func TestTransferRejected(t *testing.T) {
	env := newEnv(t)

	err := env.Transfer(rejecter, big.NewInt(10))
	assert.EqualError(t, err, "non-payable")
	assert.Equal(t, big.NewInt(100), balanceOf(t, env, contract))
	assert.Equal(t, 0, balanceOf(t, env, rejecter).Sign())
	assert.Empty(t, env.Transfers())

	assert.Equal(t, reverts.ErrTransferFailed, env.SendValue(rejecter, big.NewInt(10)))
	assert.Equal(t, reverts.ErrTransferFailed, env.SendValue(user, big.NewInt(1000)))
}

func TestNestedCallRevert(t *testing.T) {
	env := newEnv(t)
	other := cfx.BytesToAddress([]byte("other"))

	err := env.Call(other, big.NewInt(5), func(sub *Environment) error {
		assert.Equal(t, contract, sub.Caller())
		assert.Equal(t, other, sub.To())
		assert.Equal(t, big.NewInt(5), sub.Value())

		sub.Log("Inner")
		require.NoError(t, sub.Transfer(payable, big.NewInt(2)))
		return reverts.New(reverts.AccessDenied, "denied")
	})
	assert.Equal(t, reverts.AccessDenied, reverts.KindOf(err))

	assert.Empty(t, env.Events())
	assert.Empty(t, env.Transfers())
	assert.Equal(t, big.NewInt(100), balanceOf(t, env, contract))
	assert.Equal(t, 0, balanceOf(t, env, payable).Sign())
}

func TestCallInsufficientBalance(t *testing.T) {
	env := newEnv(t)
	err := env.Call(payable, big.NewInt(101), func(*Environment) error { return nil })
	assert.Equal(t, reverts.InsufficientBalance, reverts.KindOf(err))
}

func TestCallDepth(t *testing.T) {
	env := newEnv(t)

	var recurse func(sub *Environment) error
	depth := 0
	recurse = func(sub *Environment) error {
		depth++
		return sub.Call(contract, nil, recurse)
	}
	err := env.Call(contract, nil, recurse)
	assert.Equal(t, errCallDepth, err)
	assert.Equal(t, MaxCallDepth, depth)
}
