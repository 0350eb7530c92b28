// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package exroom

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts/xcfx"
	"github.com/nucleonfinance/xcfx/runtime"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

var (
	roomAddr  = cfx.BytesToAddress([]byte("room"))
	tokenAddr = cfx.BytesToAddress([]byte("token"))
	owner     = cfx.BytesToAddress([]byte("owner"))
	bridge    = cfx.BytesToAddress([]byte("bridge"))
	alice     = cfx.BytesToAddress([]byte("alice"))
)

type testRoom struct {
	t  *testing.T
	rt *runtime.Runtime
}

// newTestRoom deploys the token and the room, with the bridge set but the room not initialized.
func newTestRoom(t *testing.T) *testRoom {
	rt := runtime.New(state.New(nil), 0)
	require.NoError(t, rt.Genesis(func(st *state.State) error {
		for _, addr := range []cfx.Address{owner, bridge, alice} {
			st.SetBalance(addr, cfx.CFX(1_000_000))
		}
		return nil
	}))
	rt.Bind(roomAddr, func(env *xenv.Environment) error {
		return New(env.To(), env.State()).Receive(env)
	})
	tr := &testRoom{t: t, rt: rt}

	_, err := rt.Exec(runtime.Clause{Caller: owner, To: tokenAddr}, func(env *xenv.Environment) error {
		tk := xcfx.New(env.To(), env.State())
		if err := tk.Construct(env); err != nil {
			return err
		}
		return tk.AddMinter(env, roomAddr)
	})
	require.NoError(t, err)
	tr.must(owner, nil, func(r *ExchangeRoom, env *xenv.Environment) error { return r.Construct(env) })
	tr.must(owner, nil, func(r *ExchangeRoom, env *xenv.Environment) error { return r.SetBridge(env, bridge) })
	return tr
}

func newInitializedRoom(t *testing.T) *testRoom {
	tr := newTestRoom(t)
	tr.must(owner, cfx.CFX(1000), func(r *ExchangeRoom, env *xenv.Environment) error {
		return r.Initialize(env, tokenAddr, cfx.CFX(1000))
	})
	return tr
}

func (tr *testRoom) exec(caller cfx.Address, value *big.Int, fn func(r *ExchangeRoom, env *xenv.Environment) error) error {
	_, err := tr.rt.Exec(runtime.Clause{Caller: caller, To: roomAddr, Value: value}, func(env *xenv.Environment) error {
		return fn(New(env.To(), env.State()), env)
	})
	return err
}

func (tr *testRoom) must(caller cfx.Address, value *big.Int, fn func(r *ExchangeRoom, env *xenv.Environment) error) {
	require.NoError(tr.t, tr.exec(caller, value, fn))
}

func (tr *testRoom) view(fn func(r *ExchangeRoom, st *state.State, number uint64) error) {
	require.NoError(tr.t, tr.rt.View(func(st *state.State, blk *xenv.BlockContext) error {
		return fn(New(roomAddr, st), st, blk.Number)
	}))
}

func (tr *testRoom) summary() *Summary {
	var s *Summary
	tr.view(func(r *ExchangeRoom, _ *state.State, _ uint64) (err error) {
		s, err = r.Summary()
		return
	})
	return s
}

func (tr *testRoom) xcfxOf(addr cfx.Address) *big.Int {
	var bal *big.Int
	tr.view(func(_ *ExchangeRoom, st *state.State, _ uint64) (err error) {
		bal, err = xcfx.New(tokenAddr, st).BalanceOf(addr)
		return
	})
	return bal
}

func (tr *testRoom) balance(addr cfx.Address) *big.Int {
	var bal *big.Int
	tr.view(func(_ *ExchangeRoom, st *state.State, _ uint64) (err error) {
		bal, err = st.GetBalance(addr)
		return
	})
	return bal
}

func exchange(r *ExchangeRoom, env *xenv.Environment) error {
	_, err := r.CFXExchangeXCFX(env)
	return err
}

func burn(amount *big.Int) func(r *ExchangeRoom, env *xenv.Environment) error {
	return func(r *ExchangeRoom, env *xenv.Environment) error {
		_, err := r.XCFXBurn(env, amount)
		return err
	}
}

func getback(amount *big.Int) func(r *ExchangeRoom, env *xenv.Environment) error {
	return func(r *ExchangeRoom, env *xenv.Environment) error { return r.GetbackCFX(env, amount) }
}

func TestBeforeInitialize(t *testing.T) {
	tr := newTestRoom(t)

	tr.view(func(r *ExchangeRoom, _ *state.State, _ uint64) error {
		in, out, err := r.LockPeriods()
		require.NoError(t, err)
		assert.Equal(t, []uint64{0, 0}, []uint64{in, out})

		s, err := r.Summary()
		require.NoError(t, err)
		for _, v := range []*big.Int{s.XCFXValue, s.TotalXCFX, s.LockedVotes, s.Unlocking, s.Unlocked} {
			assert.Equal(t, 0, v.Sign())
		}

		value, wait, err := r.XCFXBurnEstim(new(big.Int))
		require.NoError(t, err)
		assert.Equal(t, 0, value.Sign())
		assert.Equal(t, uint64(1), wait)

		minted, err := r.CFXExchangeEstim(cfx.CFX(1))
		require.NoError(t, err)
		assert.Equal(t, 0, minted.Sign())
		return nil
	})

	assert.Equal(t, reverts.ErrNotInitialized, tr.exec(alice, cfx.CFX(10), exchange))
	assert.Equal(t, reverts.ErrNotInitialized, tr.exec(alice, nil, burn(cfx.CFX(1))))
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name   string
		caller cfx.Address
		value  *big.Int
		token  cfx.Address
		err    error
	}{
		{"not owner", alice, cfx.CFX(1000), tokenAddr, reverts.ErrNotOwner},
		{"zero value", owner, nil, tokenAddr, errInitValue},
		{"zero token", owner, cfx.CFX(1000), cfx.Address{}, reverts.ErrZeroAddress},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRoom(t)
			err := tr.exec(tt.caller, tt.value, func(r *ExchangeRoom, env *xenv.Environment) error {
				return r.Initialize(env, tt.token, cfx.CFX(1000))
			})
			assert.Equal(t, tt.err, err)
		})
	}

	tr := newInitializedRoom(t)
	assert.Equal(t, cfx.CFX(1000), tr.xcfxOf(owner))
	assert.Equal(t, cfx.CFX(1000), tr.balance(roomAddr))

	s := tr.summary()
	assert.Equal(t, cfx.Ether, s.XCFXValue)
	assert.Equal(t, cfx.CFX(1000), s.TotalXCFX)
	assert.Equal(t, cfx.CFX(1000), s.LockedVotes)

	err := tr.exec(owner, cfx.CFX(1), func(r *ExchangeRoom, env *xenv.Environment) error {
		return r.Initialize(env, tokenAddr, cfx.CFX(1))
	})
	assert.Equal(t, reverts.ErrAlreadyInitialized, err)

	tr.view(func(r *ExchangeRoom, _ *state.State, _ uint64) error {
		in, out, err := r.LockPeriods()
		require.NoError(t, err)
		assert.Equal(t, []uint64{cfx.DefaultLockInPeriod, cfx.DefaultLockOutPeriod}, []uint64{in, out})
		return nil
	})
}

func TestExchange(t *testing.T) {
	tr := newInitializedRoom(t)

	assert.Equal(t, errZeroAmount, tr.exec(alice, nil, exchange))
	assert.Equal(t, errBelowMinLimit, tr.exec(alice, big.NewInt(1), exchange))

	before := tr.balance(bridge)
	tr.must(alice, cfx.CFX(10), exchange)
	assert.Equal(t, cfx.CFX(10), tr.xcfxOf(alice))
	assert.Equal(t, cfx.CFX(10), new(big.Int).Sub(tr.balance(bridge), before))
	assert.Equal(t, cfx.CFX(1010), tr.summary().LockedVotes)

	// the peg moves the minted amount
	tr.must(bridge, nil, func(r *ExchangeRoom, env *xenv.Environment) error {
		return r.SetXCFXValue(env, cfx.CFX(2))
	})
	tr.must(alice, cfx.CFX(10), exchange)
	assert.Equal(t, cfx.CFX(15), tr.xcfxOf(alice))

	tr.view(func(r *ExchangeRoom, _ *state.State, _ uint64) error {
		minted, err := r.CFXExchangeEstim(cfx.CFX(4))
		require.NoError(t, err)
		assert.Equal(t, cfx.CFX(2), minted)

		value, wait, err := r.XCFXBurnEstim(cfx.CFX(2))
		require.NoError(t, err)
		assert.Equal(t, cfx.CFX(4), value)
		assert.Equal(t, cfx.DefaultLockOutPeriod+1, wait)
		return nil
	})
}

func TestExchangeTransferFailed(t *testing.T) {
	tr := newInitializedRoom(t)
	tr.rt.Bind(bridge, func(env *xenv.Environment) error {
		return reverts.New(reverts.Unknown, "non-payable")
	})

	before := tr.summary()
	err := tr.exec(alice, cfx.CFX(10), exchange)
	assert.Equal(t, reverts.ErrTransferFailed, err)
	assert.EqualError(t, err, "CFX Transfer Failed")

	assert.Equal(t, 0, tr.xcfxOf(alice).Sign())
	assert.Equal(t, before, tr.summary())
}

func TestBurnLimits(t *testing.T) {
	tr := newInitializedRoom(t)
	tr.must(alice, cfx.CFX(10), exchange)

	assert.Equal(t, errZeroAmount, tr.exec(alice, nil, burn(new(big.Int))))
	assert.Equal(t, errExceedLimit, tr.exec(alice, nil, burn(cfx.CFX(11))))
	assert.Equal(t, errBelowMinLimit, tr.exec(alice, nil, burn(big.NewInt(1))))

	// backing below the claim
	tr.must(bridge, nil, func(r *ExchangeRoom, env *xenv.Environment) error {
		return r.SetLockedVotes(env, cfx.CFX(5))
	})
	assert.Equal(t, errExceedLimit, tr.exec(alice, nil, burn(cfx.CFX(6))))

	tr.must(alice, nil, burn(cfx.CFX(5)))
	assert.Equal(t, cfx.CFX(5), tr.xcfxOf(alice))
	s := tr.summary()
	assert.Equal(t, 0, s.LockedVotes.Sign())
	assert.Equal(t, cfx.CFX(5), s.Unlocking)
	assert.Equal(t, cfx.CFX(1005), s.TotalXCFX)
}

func TestBurnQueueCap(t *testing.T) {
	tr := newInitializedRoom(t)

	for i := 0; i < cfx.MaxOutQueueLength; i++ {
		tr.must(alice, cfx.CFX(10), exchange)
		tr.must(alice, nil, burn(cfx.CFX(10)))
	}
	tr.must(alice, cfx.CFX(10), exchange)

	err := tr.exec(alice, nil, burn(cfx.CFX(10)))
	assert.Equal(t, reverts.QueueTooLong, reverts.KindOf(err))
	assert.EqualError(t, err, "TOO long queues!")
	assert.Equal(t, cfx.CFX(10), tr.xcfxOf(alice))

	tr.view(func(r *ExchangeRoom, _ *state.State, _ uint64) error {
		entries, err := r.UserOutQueue(alice)
		require.NoError(t, err)
		assert.Len(t, entries, cfx.MaxOutQueueLength)
		return nil
	})
}

func TestGetback(t *testing.T) {
	tr := newInitializedRoom(t)
	tr.must(owner, nil, func(r *ExchangeRoom, env *xenv.Environment) error { return r.SetLockPeriod(env, 0, 5) })
	tr.must(alice, cfx.CFX(10), exchange)
	tr.must(alice, nil, burn(cfx.CFX(4)))
	tr.must(alice, nil, burn(cfx.CFX(6)))

	assert.Equal(t, errZeroAmount, tr.exec(alice, nil, getback(new(big.Int))))
	assert.Equal(t, errNotEnoughUnlock, tr.exec(alice, nil, getback(cfx.CFX(1))))

	tr.rt.Mine(2)
	tr.view(func(r *ExchangeRoom, _ *state.State, number uint64) error {
		// the first burn has matured for the next block, the second not yet
		collected, err := r.CollectOutqueuesFinishedVotes(alice, number+1)
		require.NoError(t, err)
		assert.Equal(t, cfx.CFX(4), collected)

		us, err := r.UserSummary(alice, number+1)
		require.NoError(t, err)
		assert.Equal(t, cfx.CFX(6), us.Unlocking)
		assert.Equal(t, cfx.CFX(4), us.Unlocked)

		owed, err := r.Obligations()
		require.NoError(t, err)
		assert.Equal(t, cfx.CFX(10), owed)

		free, err := r.LockedValue()
		require.NoError(t, err)
		assert.Equal(t, cfx.CFX(990), free)
		return nil
	})

	before := tr.balance(alice)
	assert.Equal(t, errNotEnoughUnlock, tr.exec(alice, nil, getback(cfx.CFX(5))))

	// both matured by now
	tr.must(alice, nil, getback(cfx.CFX(3)))
	assert.Equal(t, cfx.CFX(3), new(big.Int).Sub(tr.balance(alice), before))

	s := tr.summary()
	assert.Equal(t, cfx.CFX(7), s.Unlocked)
	assert.Equal(t, 0, s.Unlocking.Sign())
}

func TestNegativeAmounts(t *testing.T) {
	tr := newInitializedRoom(t)
	tr.must(alice, cfx.CFX(10), exchange)

	aliceBefore, roomBefore := tr.balance(alice), tr.balance(roomAddr)
	assert.Equal(t, errZeroAmount, tr.exec(alice, nil, getback(cfx.CFX(-500))))
	assert.Equal(t, errNotEnoughUnlock, tr.exec(alice, nil, getback(cfx.CFX(500))))
	assert.Equal(t, errZeroAmount, tr.exec(alice, nil, burn(cfx.CFX(-5))))

	assert.Equal(t, aliceBefore, tr.balance(alice))
	assert.Equal(t, roomBefore, tr.balance(roomAddr))
	assert.Equal(t, cfx.CFX(10), tr.xcfxOf(alice))

	s := tr.summary()
	assert.Equal(t, 0, s.Unlocked.Sign())
	assert.Equal(t, 0, s.Unlocking.Sign())
}

func TestBridgeHooks(t *testing.T) {
	tr := newInitializedRoom(t)
	tr.must(alice, cfx.CFX(10), exchange)
	tr.must(alice, nil, burn(cfx.CFX(3)))

	for _, fn := range []func(r *ExchangeRoom, env *xenv.Environment) error{
		func(r *ExchangeRoom, env *xenv.Environment) error { return r.HandleCFXExchangeXCFX(env) },
		func(r *ExchangeRoom, env *xenv.Environment) error { _, err := r.HandleXCFXAdd(env); return err },
		func(r *ExchangeRoom, env *xenv.Environment) error { _, err := r.HandleUnstake(env); return err },
		func(r *ExchangeRoom, env *xenv.Environment) error { return r.SetXCFXValue(env, cfx.Ether) },
		func(r *ExchangeRoom, env *xenv.Environment) error { return r.SetLockedVotes(env, cfx.Ether) },
	} {
		assert.Equal(t, errNotBridge, tr.exec(alice, cfx.CFX(1), fn))
	}

	var deposit, unstake *big.Int
	hooks := func(r *ExchangeRoom, env *xenv.Environment) (err error) {
		if deposit, err = r.HandleXCFXAdd(env); err != nil {
			return
		}
		unstake, err = r.HandleUnstake(env)
		return
	}
	tr.must(bridge, nil, hooks)
	assert.Equal(t, cfx.CFX(10), deposit)
	assert.Equal(t, cfx.CFX(3), unstake)

	// consumed once
	tr.must(bridge, nil, hooks)
	assert.Equal(t, 0, deposit.Sign())
	assert.Equal(t, 0, unstake.Sign())

	handle := func(r *ExchangeRoom, env *xenv.Environment) error { return r.HandleCFXExchangeXCFX(env) }
	assert.Equal(t, errZeroAmount, tr.exec(bridge, nil, handle))
	before := tr.balance(roomAddr)
	tr.must(bridge, cfx.CFX(7), handle)
	assert.Equal(t, cfx.CFX(7), new(big.Int).Sub(tr.balance(roomAddr), before))
	tr.must(bridge, cfx.CFX(2), handle)
	assert.Equal(t, cfx.CFX(9), tr.summary().Funded)

	assert.Equal(t, errZeroPeg, tr.exec(bridge, nil, func(r *ExchangeRoom, env *xenv.Environment) error {
		return r.SetXCFXValue(env, new(big.Int))
	}))
}

func TestAdminSetters(t *testing.T) {
	tr := newInitializedRoom(t)
	other := cfx.BytesToAddress([]byte("other"))

	setters := []func(r *ExchangeRoom, env *xenv.Environment, addr cfx.Address) error{
		(*ExchangeRoom).SetBridge,
		(*ExchangeRoom).SetCoreExchange,
		(*ExchangeRoom).SetStorageAddr,
		(*ExchangeRoom).SetStorageBridge,
		(*ExchangeRoom).SetXCFXAddr,
	}
	for _, set := range setters {
		assert.Equal(t, reverts.ErrNotOwner, tr.exec(alice, nil, func(r *ExchangeRoom, env *xenv.Environment) error {
			return set(r, env, other)
		}))
		assert.Equal(t, reverts.ErrZeroAddress, tr.exec(owner, nil, func(r *ExchangeRoom, env *xenv.Environment) error {
			return set(r, env, cfx.Address{})
		}))
	}

	tr.must(owner, nil, func(r *ExchangeRoom, env *xenv.Environment) error { return r.SetCoreExchange(env, other) })
	tr.must(owner, nil, func(r *ExchangeRoom, env *xenv.Environment) error { return r.SetPoolName(env, "room 02") })
	tr.must(owner, nil, func(r *ExchangeRoom, env *xenv.Environment) error {
		return r.SetMinExchangeLimits(env, cfx.CFX(2))
	})
	assert.Equal(t, reverts.ErrNotOwner, tr.exec(alice, nil, func(r *ExchangeRoom, env *xenv.Environment) error {
		return r.SetLockPeriod(env, 1, 1)
	}))
	assert.Equal(t, errBelowMinLimit, tr.exec(alice, cfx.CFX(1), exchange))

	tr.view(func(r *ExchangeRoom, _ *state.State, _ uint64) error {
		s, err := r.Settings()
		require.NoError(t, err)
		assert.Equal(t, &Settings{
			PoolName:     "room 02",
			XCFX:         tokenAddr,
			Bridge:       bridge,
			CoreExchange: other,
		}, s)
		return nil
	})

	// plain transfers are rejected
	_, err := tr.rt.Exec(runtime.Clause{Caller: alice, To: alice}, func(env *xenv.Environment) error {
		return env.Transfer(roomAddr, cfx.CFX(1))
	})
	assert.Error(t, err)
}
