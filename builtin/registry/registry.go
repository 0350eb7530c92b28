// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry implements the native PoS staking registry. Stakers lock
// votes at a fixed unit price, retire them through a block based unlock queue
// and collect the interest distributed to them.
package registry

import (
	"math/big"

	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/builtin/solidity"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/log"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

var logger = log.WithContext("pkg", "registry")

// UnitPrice is the value of one vote.
var UnitPrice = cfx.VoteValue(1, cfx.OneVoteCFXCount)

// ErrVoteCount is returned by CheckVoteCount.
var ErrVoteCount = reverts.New(reverts.ValueMismatch, "cfxCountOfOneVote should match the unit price")

// CheckVoteCount verifies that count CFX is the price of one vote.
func CheckVoteCount(count uint64) error {
	if cfx.VoteValue(1, count).Cmp(UnitPrice) != 0 {
		return ErrVoteCount
	}
	return nil
}

var (
	slotUnlockPeriod = solidity.Slot("registry.unlock-period")
	slotStakers      = solidity.Slot("registry.stakers")
	slotIdentifiers  = solidity.Slot("registry.identifiers")
	slotInterest     = solidity.Slot("registry.interest")
	slotUnlocking    = solidity.Slot("registry.unlocking")
	slotTotalVotes   = solidity.Slot("registry.total-votes")

	errNotRegistered     = reverts.New(reverts.AccessDenied, "staker is not registered")
	errRegistered        = reverts.New(reverts.AlreadyInitialized, "staker is already registered")
	errIdentifierUsed    = reverts.New(reverts.AlreadyInitialized, "identifier is already used")
	errZeroVotes         = reverts.New(reverts.ValueMismatch, "votes should be greater than 0")
	errValueMismatch     = reverts.New(reverts.ValueMismatch, "value should be votes * unit price")
	errInsufficientVotes = reverts.New(reverts.InsufficientBalance, "not enough locked votes")
)

// Staker is the stored record of a registered staker.
type Staker struct {
	Identifier cfx.Bytes32
	BLSKey     []byte
	VRFKey     []byte
	Votes      uint64 // locked, not retired
}

// Unlocking is a batch of retired votes waiting for EndBlock to pass.
type Unlocking struct {
	Votes    uint64
	EndBlock uint64
}

// Registry implements native methods of the staking registry.
type Registry struct {
	sctx         *solidity.Context
	unlockPeriod *solidity.Value[uint64]
	stakers      *solidity.Mapping[cfx.Address, *Staker]
	identifiers  *solidity.Mapping[cfx.Bytes32, cfx.Address]
	interest     *solidity.Mapping[cfx.Address, *big.Int]
	totalVotes   *solidity.Value[uint64]
}

// New create a new instance.
func New(addr cfx.Address, st *state.State) *Registry {
	sctx := solidity.NewContext(addr, st)
	return &Registry{
		sctx:         sctx,
		unlockPeriod: solidity.NewValue[uint64](sctx, slotUnlockPeriod),
		stakers:      solidity.NewMapping[cfx.Address, *Staker](sctx, slotStakers),
		identifiers:  solidity.NewMapping[cfx.Bytes32, cfx.Address](sctx, slotIdentifiers),
		interest:     solidity.NewMapping[cfx.Address, *big.Int](sctx, slotInterest),
		totalVotes:   solidity.NewValue[uint64](sctx, slotTotalVotes),
	}
}

func (r *Registry) unlocking(staker cfx.Address) *solidity.Queue[Unlocking] {
	return solidity.NewQueue[Unlocking](r.sctx, cfx.Blake2b(slotUnlocking.Bytes(), staker.Bytes()))
}

// Configure sets the number of blocks retired votes wait before they can be withdrawn.
func (r *Registry) Configure(unlockPeriod uint64) error {
	return r.unlockPeriod.Set(unlockPeriod)
}

func (r *Registry) UnlockPeriod() (uint64, error) {
	return r.unlockPeriod.Get()
}

func (r *Registry) TotalVotes() (uint64, error) {
	return r.totalVotes.Get()
}

// Get returns the record of a staker, nil if not registered.
func (r *Registry) Get(staker cfx.Address) (*Staker, error) {
	s, err := r.stakers.Get(staker)
	if err != nil {
		return nil, err
	}
	if s.Identifier.IsZero() {
		return nil, nil
	}
	return s, nil
}

func (r *Registry) mustGet(staker cfx.Address) (*Staker, error) {
	s, err := r.Get(staker)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, errNotRegistered
	}
	return s, nil
}

func checkValue(env *xenv.Environment, votes uint64) error {
	if votes == 0 {
		return errZeroVotes
	}
	expected := new(big.Int).Mul(UnitPrice, new(big.Int).SetUint64(votes))
	if env.Value().Cmp(expected) != 0 {
		return errValueMismatch
	}
	return nil
}

func (r *Registry) addVotes(n uint64) error {
	total, err := r.totalVotes.Get()
	if err != nil {
		return err
	}
	return r.totalVotes.Set(total + n)
}

// RegisterPool registers the caller as a staker and locks the initial votes paid with the call value.
func (r *Registry) RegisterPool(env *xenv.Environment, identifier cfx.Bytes32, votes uint64, blsKey, vrfKey, proof []byte) error {
	if identifier.IsZero() {
		return reverts.New(reverts.InvalidAddress, "identifier should not be empty")
	}
	if len(proof) == 0 {
		return reverts.New(reverts.ValueMismatch, "proof of possession is required")
	}
	if s, err := r.Get(env.Caller()); err != nil {
		return err
	} else if s != nil {
		return errRegistered
	}
	if owner, err := r.identifiers.Get(identifier); err != nil {
		return err
	} else if !owner.IsZero() {
		return errIdentifierUsed
	}
	if err := checkValue(env, votes); err != nil {
		return err
	}

	if err := r.stakers.Set(env.Caller(), &Staker{
		Identifier: identifier,
		BLSKey:     blsKey,
		VRFKey:     vrfKey,
		Votes:      votes,
	}); err != nil {
		return err
	}
	if err := r.identifiers.Set(identifier, env.Caller()); err != nil {
		return err
	}
	if err := r.addVotes(votes); err != nil {
		return err
	}
	env.Log("Register", "identifier", identifier, "staker", env.Caller(), "votes", votes)
	logger.Debug("staker registered", "staker", env.Caller(), "votes", votes)
	return nil
}

// IncreaseStake locks more votes paid with the call value.
func (r *Registry) IncreaseStake(env *xenv.Environment, votes uint64) error {
	s, err := r.mustGet(env.Caller())
	if err != nil {
		return err
	}
	if err := checkValue(env, votes); err != nil {
		return err
	}
	s.Votes += votes
	if err := r.stakers.Set(env.Caller(), s); err != nil {
		return err
	}
	if err := r.addVotes(votes); err != nil {
		return err
	}
	env.Log("IncreaseStake", "identifier", s.Identifier, "votes", votes)
	return nil
}

// RetireStake moves locked votes into the unlock queue.
func (r *Registry) RetireStake(env *xenv.Environment, votes uint64) error {
	s, err := r.mustGet(env.Caller())
	if err != nil {
		return err
	}
	if votes == 0 {
		return errZeroVotes
	}
	if s.Votes < votes {
		return errInsufficientVotes
	}
	period, err := r.unlockPeriod.Get()
	if err != nil {
		return err
	}
	s.Votes -= votes
	if err := r.stakers.Set(env.Caller(), s); err != nil {
		return err
	}
	if err := r.unlocking(env.Caller()).Push(Unlocking{
		Votes:    votes,
		EndBlock: env.BlockContext().Number + period,
	}); err != nil {
		return err
	}
	total, err := r.totalVotes.Get()
	if err != nil {
		return err
	}
	if err := r.totalVotes.Set(total - votes); err != nil {
		return err
	}
	env.Log("Retire", "identifier", s.Identifier, "votes", votes)
	return nil
}

// Unlocking returns the retired votes of a staker which are not withdrawn yet.
func (r *Registry) Unlocking(staker cfx.Address) ([]Unlocking, error) {
	return r.unlocking(staker).Items()
}

// WithdrawStake pays the caller the value of every matured unlock entry and returns it.
func (r *Registry) WithdrawStake(env *xenv.Environment) (*big.Int, error) {
	if _, err := r.mustGet(env.Caller()); err != nil {
		return nil, err
	}
	queue := r.unlocking(env.Caller())
	var votes uint64
	for {
		n, err := queue.Len()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			break
		}
		head, err := queue.At(0)
		if err != nil {
			return nil, err
		}
		if head.EndBlock >= env.BlockContext().Number {
			break
		}
		if _, err := queue.Pop(); err != nil {
			return nil, err
		}
		votes += head.Votes
	}

	amount := new(big.Int).Mul(UnitPrice, new(big.Int).SetUint64(votes))
	if votes == 0 {
		return amount, nil
	}
	if err := env.Transfer(env.Caller(), amount); err != nil {
		return nil, err
	}
	env.Log("Withdraw", "staker", env.Caller(), "votes", votes, "amount", amount)
	return amount, nil
}

// Interest returns the interest distributed to a staker and not claimed yet.
func (r *Registry) Interest(staker cfx.Address) (*big.Int, error) {
	return r.interest.Get(staker)
}

// ClaimInterest pays the caller all of its pending interest and returns the amount.
func (r *Registry) ClaimInterest(env *xenv.Environment) (*big.Int, error) {
	if _, err := r.mustGet(env.Caller()); err != nil {
		return nil, err
	}
	amount, err := r.interest.Get(env.Caller())
	if err != nil {
		return nil, err
	}
	if amount.Sign() == 0 {
		return amount, nil
	}
	r.interest.Delete(env.Caller())
	if err := env.Transfer(env.Caller(), amount); err != nil {
		return nil, err
	}
	env.Log("ClaimInterest", "staker", env.Caller(), "amount", amount)
	return amount, nil
}

// AccrueInterest distributes the call value to a registered staker as interest.
func (r *Registry) AccrueInterest(env *xenv.Environment, staker cfx.Address) error {
	if _, err := r.mustGet(staker); err != nil {
		return err
	}
	if env.Value().Sign() == 0 {
		return reverts.New(reverts.ValueMismatch, "reward should be greater than 0")
	}
	pending, err := r.interest.Get(staker)
	if err != nil {
		return err
	}
	if err := r.interest.Set(staker, pending.Add(pending, env.Value())); err != nil {
		return err
	}
	env.Log("Reward", "staker", staker, "amount", env.Value())
	return nil
}
