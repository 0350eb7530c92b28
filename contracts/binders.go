// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contracts

import (
	"math/big"

	"github.com/nucleonfinance/xcfx/builtin"
	"github.com/nucleonfinance/xcfx/builtin/crossspace"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts/corebridge"
	"github.com/nucleonfinance/xcfx/contracts/exroom"
	"github.com/nucleonfinance/xcfx/contracts/pospool"
	"github.com/nucleonfinance/xcfx/contracts/xcfx"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

// Binders binds the bridge to the pool, exchange room and token contracts of this module.
type Binders struct{}

var _ corebridge.Binders = Binders{}

func (Binders) Pool(addr cfx.Address, st *state.State) corebridge.Pool {
	return &poolBinder{addr: addr, pool: pospool.New(addr, st)}
}

func (Binders) ExchangeRoom(addr cfx.Address, st *state.State) corebridge.ExchangeRoom {
	return &roomBinder{addr: addr, room: exroom.New(addr, st)}
}

func (Binders) Token(addr cfx.Address, st *state.State) corebridge.Token {
	return xcfx.New(addr, st)
}

func (Binders) Relay(st *state.State) corebridge.Relay {
	return &relayBinder{builtin.CrossSpace.WithState(st)}
}

// Bridge returns the bridge at addr bound to this module's contracts.
func Bridge(addr cfx.Address, st *state.State) *corebridge.Bridge {
	return corebridge.New(addr, st, Binders{})
}

type poolBinder struct {
	addr cfx.Address
	pool *pospool.Pool
}

func (b *poolBinder) call(env *xenv.Environment, value *big.Int, fn func(p *pospool.Pool, sub *xenv.Environment) error) error {
	return env.Call(b.addr, value, func(sub *xenv.Environment) error {
		return fn(pospool.New(b.addr, sub.State()), sub)
	})
}

func (b *poolBinder) Registered() (bool, error)       { return b.pool.Registered() }
func (b *poolBinder) ValuePerVote() (*big.Int, error) { return b.pool.ValuePerVote() }

func (b *poolBinder) Summary(number uint64) (*corebridge.PoolSummary, error) {
	s, err := b.pool.Summary(number)
	if err != nil {
		return nil, err
	}
	return &corebridge.PoolSummary{
		TotalVotes:        s.Total,
		Locking:           s.Locking,
		Locked:            s.Locked,
		Unlocking:         s.Unlocking,
		Unlocked:          s.Unlocked,
		UnclaimedInterest: s.UnclaimedInterest,
	}, nil
}

func (b *poolBinder) IncreaseStake(env *xenv.Environment, votes uint64, value *big.Int) error {
	return b.call(env, value, func(p *pospool.Pool, sub *xenv.Environment) error {
		return p.IncreaseStake(sub, votes)
	})
}

func (b *poolBinder) DecreaseStake(env *xenv.Environment, votes uint64) error {
	return b.call(env, nil, func(p *pospool.Pool, sub *xenv.Environment) error {
		return p.DecreaseStake(sub, votes)
	})
}

func (b *poolBinder) WithdrawStake(env *xenv.Environment) (got *big.Int, err error) {
	err = b.call(env, nil, func(p *pospool.Pool, sub *xenv.Environment) (err error) {
		got, err = p.WithdrawStake(sub)
		return
	})
	return
}

func (b *poolBinder) ClaimAllInterest(env *xenv.Environment) (got *big.Int, err error) {
	err = b.call(env, nil, func(p *pospool.Pool, sub *xenv.Environment) (err error) {
		got, err = p.ClaimAllInterest(sub)
		return
	})
	return
}

type roomBinder struct {
	addr cfx.Address
	room *exroom.ExchangeRoom
}

func (b *roomBinder) call(env *xenv.Environment, value *big.Int, fn func(r *exroom.ExchangeRoom, sub *xenv.Environment) error) error {
	return env.Call(b.addr, value, func(sub *xenv.Environment) error {
		return fn(exroom.New(b.addr, sub.State()), sub)
	})
}

func (b *roomBinder) Initialized() (bool, error)     { return b.room.Initialized() }
func (b *roomBinder) Obligations() (*big.Int, error) { return b.room.Obligations() }
func (b *roomBinder) LockedValue() (*big.Int, error) { return b.room.LockedValue() }

func (b *roomBinder) HandleCFXExchangeXCFX(env *xenv.Environment, value *big.Int) error {
	return b.call(env, value, func(r *exroom.ExchangeRoom, sub *xenv.Environment) error {
		return r.HandleCFXExchangeXCFX(sub)
	})
}

func (b *roomBinder) HandleXCFXAdd(env *xenv.Environment) (got *big.Int, err error) {
	err = b.call(env, nil, func(r *exroom.ExchangeRoom, sub *xenv.Environment) (err error) {
		got, err = r.HandleXCFXAdd(sub)
		return
	})
	return
}

func (b *roomBinder) HandleUnstake(env *xenv.Environment) (got *big.Int, err error) {
	err = b.call(env, nil, func(r *exroom.ExchangeRoom, sub *xenv.Environment) (err error) {
		got, err = r.HandleUnstake(sub)
		return
	})
	return
}

func (b *roomBinder) SetXCFXValue(env *xenv.Environment, value *big.Int) error {
	return b.call(env, nil, func(r *exroom.ExchangeRoom, sub *xenv.Environment) error {
		return r.SetXCFXValue(sub, value)
	})
}

func (b *roomBinder) SetLockedVotes(env *xenv.Environment, value *big.Int) error {
	return b.call(env, nil, func(r *exroom.ExchangeRoom, sub *xenv.Environment) error {
		return r.SetLockedVotes(sub, value)
	})
}

type relayBinder struct {
	*crossspace.CrossSpace
}

func (relayBinder) Address() cfx.Address { return builtin.CrossSpace.Address }

func (relayBinder) MappedAddressOf(addr cfx.Address) cfx.Address {
	return builtin.CrossSpace.MappedAddressOf(addr)
}

func (relayBinder) TransferValue(env *xenv.Environment, target cfx.Address, value *big.Int) error {
	return builtin.CrossSpace.Call(env, value, func(cs *crossspace.CrossSpace, sub *xenv.Environment) error {
		return cs.TransferValue(sub, target)
	})
}

func (relayBinder) WithdrawMapped(env *xenv.Environment, amount *big.Int) error {
	return builtin.CrossSpace.Call(env, nil, func(cs *crossspace.CrossSpace, sub *xenv.Environment) error {
		return cs.WithdrawMapped(sub, amount)
	})
}
