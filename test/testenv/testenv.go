// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package testenv provides a runtime with the full set of xCFX contracts deployed.
package testenv

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/nucleonfinance/xcfx/builtin"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts"
	"github.com/nucleonfinance/xcfx/contracts/corebridge"
	"github.com/nucleonfinance/xcfx/contracts/exroom"
	"github.com/nucleonfinance/xcfx/contracts/pospool"
	"github.com/nucleonfinance/xcfx/contracts/xcfx"
	"github.com/nucleonfinance/xcfx/runtime"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

// DevAccountBalance is the genesis balance of every dev account.
var DevAccountBalance = cfx.CFX(1_000_000_000)

// DevAccounts returns n deterministic accounts.
func DevAccounts(n int) []cfx.Address {
	accounts := make([]cfx.Address, 0, n)
	for i := range n {
		h := cfx.Blake2b([]byte(fmt.Sprintf("dev-%d", i)))
		accounts = append(accounts, cfx.BytesToAddress(h[12:]))
	}
	return accounts
}

// Env is a runtime with a deployment on it.
// Owner, Trigger and Treasury are the first dev accounts, Users the others.
type Env struct {
	*runtime.Runtime
	*contracts.Deployment
	Trigger  cfx.Address
	Treasury cfx.Address
	Users    []cfx.Address
}

// DefaultParams returns params of a deployment with one registered pool and short lock periods.
func DefaultParams() *contracts.Params {
	dev := DevAccounts(3)
	return &contracts.Params{
		Owner:      dev[0],
		Triggers:   []cfx.Address{dev[1]},
		Treasury:   dev[2],
		ExroomSeed: cfx.CFX(1000),
		ExroomLock: &contracts.LockPeriods{In: 2, Out: 4},
		Pools:      []contracts.PoolParams{{Votes: 1, Lock: &contracts.LockPeriods{In: 2, Out: 4}}},
	}
}

// UnlockPeriod is the registry unlock period of the env.
const UnlockPeriod = 3

// New deploys params onto a fresh in-memory runtime. A nil params uses DefaultParams.
func New(params *contracts.Params) (*Env, error) {
	if params == nil {
		params = DefaultParams()
	}
	dev := DevAccounts(8)
	rt := runtime.New(state.New(nil), 0)
	if err := rt.Genesis(func(st *state.State) error {
		for _, addr := range append(dev, params.Owner) {
			st.SetBalance(addr, DevAccountBalance)
		}
		return builtin.Registry.WithState(st).Configure(UnlockPeriod)
	}); err != nil {
		return nil, err
	}
	d, err := contracts.Deploy(rt, params)
	if err != nil {
		return nil, err
	}
	e := &Env{
		Runtime:    rt,
		Deployment: d,
		Trigger:    dev[1],
		Treasury:   params.Treasury,
		Users:      dev[3:],
	}
	if len(params.Triggers) > 0 {
		e.Trigger = params.Triggers[0]
	}
	return e, nil
}

func (e *Env) exec(caller, to cfx.Address, value *big.Int, method string, fn func(env *xenv.Environment) error) error {
	_, err := e.Exec(runtime.Clause{Caller: caller, To: to, Value: value, Method: method}, fn)
	return err
}

// Sync calls SyncALLwork as the trusted trigger.
func (e *Env) Sync() error {
	return e.SyncAs(e.Trigger)
}

func (e *Env) SyncAs(caller cfx.Address) error {
	return e.CallBridge(caller, nil, func(b *corebridge.Bridge, env *xenv.Environment) error {
		return b.SyncALLwork(env)
	})
}

// CallBridge executes fn on the bridge with value attached.
func (e *Env) CallBridge(caller cfx.Address, value *big.Int, fn func(b *corebridge.Bridge, env *xenv.Environment) error) error {
	return e.exec(caller, e.Bridge, value, "bridge", func(env *xenv.Environment) error {
		return fn(contracts.Bridge(env.To(), env.State()), env)
	})
}

// CallRoom executes fn on the exchange room with value attached.
func (e *Env) CallRoom(caller cfx.Address, value *big.Int, fn func(r *exroom.ExchangeRoom, env *xenv.Environment) error) error {
	return e.exec(caller, e.Exroom, value, "exroom", func(env *xenv.Environment) error {
		return fn(exroom.New(env.To(), env.State()), env)
	})
}

func (e *Env) Exchange(user cfx.Address, value *big.Int) error {
	return e.CallRoom(user, value, func(r *exroom.ExchangeRoom, env *xenv.Environment) error {
		_, err := r.CFXExchangeXCFX(env)
		return err
	})
}

func (e *Env) Burn(user cfx.Address, amount *big.Int) error {
	return e.CallRoom(user, nil, func(r *exroom.ExchangeRoom, env *xenv.Environment) error {
		_, err := r.XCFXBurn(env, amount)
		return err
	})
}

func (e *Env) Getback(user cfx.Address, amount *big.Int) error {
	return e.CallRoom(user, nil, func(r *exroom.ExchangeRoom, env *xenv.Environment) error {
		return r.GetbackCFX(env, amount)
	})
}

// Accrue pays amount of interest to a pool through the registry.
func (e *Env) Accrue(pool cfx.Address, amount *big.Int) error {
	return e.exec(e.Owner, builtin.Registry.Address, amount, "registry.accrue", func(env *xenv.Environment) error {
		return builtin.Registry.WithState(env.State()).AccrueInterest(env, pool)
	})
}

// Relay sends value from the eSpace side to the mapped account of the bridge.
func (e *Env) Relay(from cfx.Address, value *big.Int) error {
	target := builtin.CrossSpace.MappedAddressOf(e.Bridge)
	return e.exec(from, builtin.CrossSpace.Address, value, "crossspace.transfer", func(env *xenv.Environment) error {
		return builtin.CrossSpace.WithState(env.State()).TransferValue(env, target)
	})
}

// Snapshot is a read of the whole system as seen by the next block.
type Snapshot struct {
	Number      uint64
	Room        *exroom.Summary
	Pools       []*pospool.Summary
	Totals      *corebridge.Totals
	Backing     *big.Int
	Supply      *big.Int
	BridgeIdle  *big.Int
	RoomBalance *big.Int
	TreasuryEVM *big.Int
	Obligations *big.Int
	TotalVotes  uint64
}

// Snapshot reads the system state.
func (e *Env) Snapshot() (*Snapshot, error) {
	var s *Snapshot
	err := e.View(func(st *state.State, blk *xenv.BlockContext) (err error) {
		s, err = e.snapshot(st, blk.Number+1)
		return
	})
	return s, err
}

func (e *Env) snapshot(st *state.State, number uint64) (*Snapshot, error) {
	s := &Snapshot{Number: number}
	room := exroom.New(e.Exroom, st)
	var err error
	if s.Room, err = room.Summary(); err != nil {
		return nil, err
	}
	if s.Obligations, err = room.Obligations(); err != nil {
		return nil, err
	}
	for _, addr := range e.Pools {
		ps, err := pospool.New(addr, st).Summary(number)
		if err != nil {
			return nil, errors.Wrapf(err, "pool %v", addr)
		}
		s.Pools = append(s.Pools, ps)
	}
	bridge := contracts.Bridge(e.Bridge, st)
	if s.Totals, err = bridge.Totals(); err != nil {
		return nil, err
	}
	if s.Backing, s.TotalVotes, err = bridge.Backing(number); err != nil {
		return nil, err
	}
	if s.Supply, err = xcfx.New(e.Token, st).TotalSupply(); err != nil {
		return nil, err
	}
	if s.BridgeIdle, err = st.GetBalance(e.Bridge); err != nil {
		return nil, err
	}
	if s.RoomBalance, err = st.GetBalance(e.Exroom); err != nil {
		return nil, err
	}
	if !e.Treasury.IsZero() {
		if s.TreasuryEVM, err = builtin.CrossSpace.WithState(st).MappedBalance(e.Treasury); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// XCFXOf returns the xCFX balance of addr.
func (e *Env) XCFXOf(addr cfx.Address) (bal *big.Int, err error) {
	err = e.View(func(st *state.State, _ *xenv.BlockContext) (err error) {
		bal, err = xcfx.New(e.Token, st).BalanceOf(addr)
		return
	})
	return
}
