// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package corebridge

import (
	"math/big"

	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

// PoolSummary is what the bridge reads of a staking pool.
type PoolSummary struct {
	TotalVotes        uint64
	Locking           uint64
	Locked            uint64
	Unlocking         uint64
	Unlocked          uint64
	UnclaimedInterest *big.Int
}

// Pool is a staking pool as seen by its bridge.
// Methods taking an env are calls made by the bridge.
type Pool interface {
	Registered() (bool, error)
	Summary(number uint64) (*PoolSummary, error)
	ValuePerVote() (*big.Int, error)
	IncreaseStake(env *xenv.Environment, votes uint64, value *big.Int) error
	DecreaseStake(env *xenv.Environment, votes uint64) error
	WithdrawStake(env *xenv.Environment) (*big.Int, error)
	ClaimAllInterest(env *xenv.Environment) (*big.Int, error)
}

// ExchangeRoom is the exchange room as seen by its bridge.
type ExchangeRoom interface {
	Initialized() (bool, error)
	Obligations() (*big.Int, error)
	LockedValue() (*big.Int, error)
	HandleCFXExchangeXCFX(env *xenv.Environment, value *big.Int) error
	HandleXCFXAdd(env *xenv.Environment) (*big.Int, error)
	HandleUnstake(env *xenv.Environment) (*big.Int, error)
	SetXCFXValue(env *xenv.Environment, value *big.Int) error
	SetLockedVotes(env *xenv.Environment, value *big.Int) error
}

type Token interface {
	TotalSupply() (*big.Int, error)
}

// Relay moves value between the core space and eSpace.
type Relay interface {
	Address() cfx.Address
	MappedAddressOf(addr cfx.Address) cfx.Address
	MappedBalance(addr cfx.Address) (*big.Int, error)
	TransferValue(env *xenv.Environment, target cfx.Address, value *big.Int) error
	WithdrawMapped(env *xenv.Environment, amount *big.Int) error
}

// Binders bind the contracts the bridge talks to onto a state.
type Binders interface {
	Pool(addr cfx.Address, st *state.State) Pool
	ExchangeRoom(addr cfx.Address, st *state.State) ExchangeRoom
	Token(addr cfx.Address, st *state.State) Token
	Relay(st *state.State) Relay
}
