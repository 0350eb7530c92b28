// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pospool implements a PoS staking pool delegating to the native
// registry. Stake changes are only accepted from the configured bridge.
//
// Vote power moves locking -> locked -> unlocking -> unlocked -> withdrawn. The
// locking and unlocking buckets are drained by block height through two FIFO
// queues, matured lazily whenever the pool is touched.
package pospool

import (
	"math/big"

	"github.com/nucleonfinance/xcfx/builtin"
	"github.com/nucleonfinance/xcfx/builtin/registry"
	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/builtin/solidity"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts/access"
	"github.com/nucleonfinance/xcfx/log"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

var logger = log.WithContext("pkg", "pospool")

var (
	slotRegistered = solidity.Slot("pool.registered")
	slotIdentifier = solidity.Slot("pool.identifier")
	slotName       = solidity.Slot("pool.name")
	slotLockIn     = solidity.Slot("pool.lock-in")
	slotLockOut    = solidity.Slot("pool.lock-out")
	slotVoteCount  = solidity.Slot("pool.cfx-count-of-one-vote")
	slotBridge     = solidity.Slot("pool.bridge")
	slotVotes      = solidity.Slot("pool.votes")
	slotClaimed    = solidity.Slot("pool.claimed-interest")
	slotHeld       = solidity.Slot("pool.held-principal")
	slotInQueue    = solidity.Slot("pool.in-queue")
	slotOutQueue   = solidity.Slot("pool.out-queue")
)

var (
	errNotBridge        = reverts.New(reverts.AccessDenied, "msg.sender is not bridge")
	errNotRegistered    = reverts.New(reverts.AccessDenied, "Pool is not registed")
	errRegistered       = reverts.New(reverts.AlreadyInitialized, "Pool is already registed")
	errRegisterVotes    = reverts.New(reverts.ValueMismatch, "votePower should be 1")
	errRegisterValue    = reverts.New(reverts.ValueMismatch, "msg.value should be 1000 CFX")
	errMinVotePower     = reverts.New(reverts.ValueMismatch, "Minimal votePower is 1")
	errStakeValue       = reverts.New(reverts.ValueMismatch, "msg.value should be votePower * 1000 ether")
	errVotesNotEnough   = reverts.New(reverts.InsufficientBalance, "Votes is not enough")
	errNoInterest       = reverts.New(reverts.NoClaimableAmount, "No claimable interest")
	errPrincipalPending = reverts.New(reverts.InsufficientBalance, "Principal is not withdrawn yet")
	errZeroVoteCount    = reverts.New(reverts.ValueMismatch, "cfxCountOfOneVote should be greater than 0")
)

// Votes are the vote buckets of the pool. Total always equals the sum of the other four.
type Votes struct {
	Total     uint64
	Locking   uint64
	Locked    uint64
	Unlocking uint64
	Unlocked  uint64
}

// Summary is the state of the pool at a block.
type Summary struct {
	Votes
	UnclaimedInterest *big.Int
	ClaimedInterest   *big.Int
}

// Pool implements methods of the staking pool contract.
type Pool struct {
	*access.Ownable
	init *access.Initializable

	addr       cfx.Address
	state      *state.State
	registered *solidity.Value[bool]
	identifier *solidity.Value[cfx.Bytes32]
	name       *solidity.Value[string]
	lockIn     *solidity.Value[uint64]
	lockOut    *solidity.Value[uint64]
	voteCount  *solidity.Value[uint64]
	bridge     *solidity.Address
	votes      *solidity.Value[Votes]
	claimed    *solidity.Uint256
	held       *solidity.Uint256
	inQueue    *solidity.Queue[QueueEntry]
	outQueue   *solidity.Queue[QueueEntry]
}

// New create a new instance.
func New(addr cfx.Address, st *state.State) *Pool {
	sctx := solidity.NewContext(addr, st)
	return &Pool{
		Ownable:    access.NewOwnable(sctx),
		init:       access.NewInitializable(sctx),
		addr:       addr,
		state:      st,
		registered: solidity.NewValue[bool](sctx, slotRegistered),
		identifier: solidity.NewValue[cfx.Bytes32](sctx, slotIdentifier),
		name:       solidity.NewValue[string](sctx, slotName),
		lockIn:     solidity.NewValue[uint64](sctx, slotLockIn),
		lockOut:    solidity.NewValue[uint64](sctx, slotLockOut),
		voteCount:  solidity.NewValue[uint64](sctx, slotVoteCount),
		bridge:     solidity.NewAddress(sctx, slotBridge),
		votes:      solidity.NewValue[Votes](sctx, slotVotes),
		claimed:    solidity.NewUint256(sctx, slotClaimed),
		held:       solidity.NewUint256(sctx, slotHeld),
		inQueue:    solidity.NewQueue[QueueEntry](sctx, slotInQueue),
		outQueue:   solidity.NewQueue[QueueEntry](sctx, slotOutQueue),
	}
}

// Initialize sets the default parameters. Owner only, once.
func (p *Pool) Initialize(env *xenv.Environment) error {
	if err := p.OnlyOwner(env); err != nil {
		return err
	}
	if err := p.init.Initialize(); err != nil {
		return err
	}
	if err := p.name.Set(cfx.DefaultPoolName); err != nil {
		return err
	}
	if err := p.lockIn.Set(cfx.DefaultLockInPeriod); err != nil {
		return err
	}
	if err := p.lockOut.Set(cfx.DefaultLockOutPeriod); err != nil {
		return err
	}
	return p.voteCount.Set(cfx.OneVoteCFXCount)
}

//
// Getters - no state change
//

func (p *Pool) Registered() (bool, error) {
	return p.registered.Get()
}

func (p *Pool) Identifier() (cfx.Bytes32, error) {
	return p.identifier.Get()
}

func (p *Pool) PoolName() (string, error) {
	return p.name.Get()
}

func (p *Pool) Bridge() (cfx.Address, error) {
	return p.bridge.Get()
}

// LockPeriods returns the lock in and lock out periods in blocks.
func (p *Pool) LockPeriods() (in uint64, out uint64, err error) {
	if in, err = p.lockIn.Get(); err != nil {
		return
	}
	out, err = p.lockOut.Get()
	return
}

func (p *Pool) CfxCountOfOneVote() (uint64, error) {
	return p.voteCount.Get()
}

// ValuePerVote returns the value in drip paid for one vote.
func (p *Pool) ValuePerVote() (*big.Int, error) {
	count, err := p.voteCount.Get()
	if err != nil {
		return nil, err
	}
	return cfx.VoteValue(1, count), nil
}

func (p *Pool) InQueue() ([]QueueEntry, error) {
	return p.inQueue.Items()
}

func (p *Pool) OutQueue() ([]QueueEntry, error) {
	return p.outQueue.Items()
}

func (p *Pool) ClaimedInterest() (*big.Int, error) {
	return p.claimed.Get()
}

// TempInterest returns the interest which would be paid by claiming now.
func (p *Pool) TempInterest() (*big.Int, error) {
	free, err := p.freeBalance()
	if err != nil {
		return nil, err
	}
	registered, err := p.registered.Get()
	if err != nil || !registered {
		return free, err
	}
	pending, err := builtin.Registry.WithState(p.state).Interest(p.addr)
	if err != nil {
		return nil, err
	}
	return free.Add(free, pending), nil
}

// Summary returns the vote buckets as they are at block number, without maturing the queues.
func (p *Pool) Summary(number uint64) (*Summary, error) {
	v, err := p.votes.Get()
	if err != nil {
		return nil, err
	}
	in, err := p.inQueue.Items()
	if err != nil {
		return nil, err
	}
	out, err := p.outQueue.Items()
	if err != nil {
		return nil, err
	}
	_, locked := Matured(in, number)
	_, unlocked := Matured(out, number)
	v.Locking -= locked
	v.Locked += locked
	v.Unlocking -= unlocked
	v.Unlocked += unlocked

	unclaimed, err := p.TempInterest()
	if err != nil {
		return nil, err
	}
	claimed, err := p.claimed.Get()
	if err != nil {
		return nil, err
	}
	return &Summary{Votes: v, UnclaimedInterest: unclaimed, ClaimedInterest: claimed}, nil
}

// freeBalance is the balance not owed to the bridge as principal.
func (p *Pool) freeBalance() (*big.Int, error) {
	bal, err := p.state.GetBalance(p.addr)
	if err != nil {
		return nil, err
	}
	held, err := p.held.Get()
	if err != nil {
		return nil, err
	}
	if bal.Cmp(held) <= 0 {
		return new(big.Int), nil
	}
	return bal.Sub(bal, held), nil
}

//
// Setters - state change
//

func (p *Pool) onlyBridge(env *xenv.Environment) error {
	bridge, err := p.bridge.Get()
	if err != nil {
		return err
	}
	if bridge != env.Caller() {
		return errNotBridge
	}
	return nil
}

func (p *Pool) onlyRegistered() error {
	registered, err := p.registered.Get()
	if err != nil {
		return err
	}
	if !registered {
		return errNotRegistered
	}
	return nil
}

// advance matures both queues at the current block.
func (p *Pool) advance(env *xenv.Environment) (Votes, error) {
	v, err := p.votes.Get()
	if err != nil {
		return v, err
	}
	number := env.BlockContext().Number
	locked, err := dequeue(p.inQueue, number)
	if err != nil {
		return v, err
	}
	unlocked, err := dequeue(p.outQueue, number)
	if err != nil {
		return v, err
	}
	v.Locking -= locked
	v.Locked += locked
	v.Unlocking -= unlocked
	v.Unlocked += unlocked
	return v, nil
}

func (p *Pool) stakeValue(votes uint64) (*big.Int, error) {
	count, err := p.voteCount.Get()
	if err != nil {
		return nil, err
	}
	return cfx.VoteValue(votes, count), nil
}

// Register registers the pool in the staking registry with the call value. Owner only, once.
func (p *Pool) Register(env *xenv.Environment, identifier cfx.Bytes32, votes uint64, blsKey, vrfKey, proof []byte) error {
	if err := p.OnlyOwner(env); err != nil {
		return err
	}
	if err := p.init.Require(); err != nil {
		return err
	}
	if registered, err := p.registered.Get(); err != nil {
		return err
	} else if registered {
		return errRegistered
	}
	if votes < 1 {
		return errRegisterVotes
	}
	expected, err := p.stakeValue(votes)
	if err != nil {
		return err
	}
	if env.Value().Cmp(expected) != 0 {
		return errRegisterValue
	}

	lockIn, err := p.lockIn.Get()
	if err != nil {
		return err
	}
	if err := p.registered.Set(true); err != nil {
		return err
	}
	if err := p.identifier.Set(identifier); err != nil {
		return err
	}
	if err := enqueue(p.inQueue, votes, env.BlockContext().Number, lockIn); err != nil {
		return err
	}
	if err := p.votes.Set(Votes{Total: votes, Locking: votes}); err != nil {
		return err
	}
	if err := builtin.Registry.Call(env, env.Value(), func(reg *registry.Registry, sub *xenv.Environment) error {
		return reg.RegisterPool(sub, identifier, votes, blsKey, vrfKey, proof)
	}); err != nil {
		return err
	}
	env.Log("Register", "identifier", identifier, "votes", votes)
	logger.Info("pool registered", "pool", p.addr, "votes", votes)
	return nil
}

// IncreaseStake stakes the call value as votePower new votes.
func (p *Pool) IncreaseStake(env *xenv.Environment, votePower uint64) error {
	if err := p.onlyBridge(env); err != nil {
		return err
	}
	if err := p.onlyRegistered(); err != nil {
		return err
	}
	if votePower < 1 {
		return errMinVotePower
	}
	expected, err := p.stakeValue(votePower)
	if err != nil {
		return err
	}
	if env.Value().Cmp(expected) != 0 {
		return errStakeValue
	}

	v, err := p.advance(env)
	if err != nil {
		return err
	}
	lockIn, err := p.lockIn.Get()
	if err != nil {
		return err
	}
	if err := enqueue(p.inQueue, votePower, env.BlockContext().Number, lockIn); err != nil {
		return err
	}
	v.Locking += votePower
	v.Total += votePower
	if err := p.votes.Set(v); err != nil {
		return err
	}
	if err := builtin.Registry.Call(env, env.Value(), func(reg *registry.Registry, sub *xenv.Environment) error {
		return reg.IncreaseStake(sub, votePower)
	}); err != nil {
		return err
	}
	env.Log("IncreasePoSStake", "votePower", votePower)
	return nil
}

// DecreaseStake retires votePower locked votes.
func (p *Pool) DecreaseStake(env *xenv.Environment, votePower uint64) error {
	if err := p.onlyBridge(env); err != nil {
		return err
	}
	if err := p.onlyRegistered(); err != nil {
		return err
	}
	if votePower < 1 {
		return errMinVotePower
	}
	v, err := p.advance(env)
	if err != nil {
		return err
	}
	if v.Locked < votePower {
		return errVotesNotEnough
	}
	lockOut, err := p.lockOut.Get()
	if err != nil {
		return err
	}
	if err := enqueue(p.outQueue, votePower, env.BlockContext().Number, lockOut); err != nil {
		return err
	}
	v.Locked -= votePower
	v.Unlocking += votePower
	if err := p.votes.Set(v); err != nil {
		return err
	}
	if err := builtin.Registry.Call(env, nil, func(reg *registry.Registry, sub *xenv.Environment) error {
		return reg.RetireStake(sub, votePower)
	}); err != nil {
		return err
	}
	env.Log("DecreasePoSStake", "votePower", votePower)
	return nil
}

// WithdrawStake pays the caller the value of the unlocked votes and returns it.
// Only votes whose principal is already back from the registry are paid out.
func (p *Pool) WithdrawStake(env *xenv.Environment) (*big.Int, error) {
	if err := p.onlyBridge(env); err != nil {
		return nil, err
	}
	registered, err := p.registered.Get()
	if err != nil {
		return nil, err
	}
	if registered {
		var got *big.Int
		if err := builtin.Registry.Call(env, nil, func(reg *registry.Registry, sub *xenv.Environment) (err error) {
			got, err = reg.WithdrawStake(sub)
			return
		}); err != nil {
			return nil, err
		}
		if err := p.held.Add(got); err != nil {
			return nil, err
		}
	}

	v, err := p.advance(env)
	if err != nil {
		return nil, err
	}
	held, err := p.held.Get()
	if err != nil {
		return nil, err
	}
	perVote, err := p.stakeValue(1)
	if err != nil {
		return nil, err
	}
	votes := v.Unlocked
	if available := new(big.Int).Quo(held, perVote); available.IsUint64() && available.Uint64() < votes {
		votes = available.Uint64()
	}
	if err := p.votes.Set(Votes{
		Total:     v.Total - votes,
		Locking:   v.Locking,
		Locked:    v.Locked,
		Unlocking: v.Unlocking,
		Unlocked:  v.Unlocked - votes,
	}); err != nil {
		return nil, err
	}
	if votes == 0 {
		return new(big.Int), nil
	}

	amount := new(big.Int).Mul(perVote, new(big.Int).SetUint64(votes))
	if err := p.held.Sub(amount); err != nil {
		return nil, err
	}
	if err := env.SendValue(env.Caller(), amount); err != nil {
		return nil, err
	}
	env.Log("WithdrawStake", "votePower", votes, "amount", amount)
	return amount, nil
}

// ClaimAllInterest pays the caller all interest the pool earned and returns it.
func (p *Pool) ClaimAllInterest(env *xenv.Environment) (*big.Int, error) {
	if err := p.onlyBridge(env); err != nil {
		return nil, err
	}
	if err := p.onlyRegistered(); err != nil {
		return nil, err
	}
	if err := builtin.Registry.Call(env, nil, func(reg *registry.Registry, sub *xenv.Environment) error {
		_, err := reg.ClaimInterest(sub)
		return err
	}); err != nil {
		return nil, err
	}
	claimable, err := p.freeBalance()
	if err != nil {
		return nil, err
	}
	if claimable.Sign() == 0 {
		return nil, errNoInterest
	}
	if err := p.claimed.Add(claimable); err != nil {
		return nil, err
	}
	if err := env.SendValue(env.Caller(), claimable); err != nil {
		return nil, err
	}
	env.Log("ClaimInterest", "amount", claimable)
	return claimable, nil
}

// ReStake stakes unlocked votes again with their withdrawn principal. Owner only.
func (p *Pool) ReStake(env *xenv.Environment, votePower uint64) error {
	if err := p.OnlyOwner(env); err != nil {
		return err
	}
	if err := p.onlyRegistered(); err != nil {
		return err
	}
	if votePower < 1 {
		return errMinVotePower
	}
	if err := builtin.Registry.Call(env, nil, func(reg *registry.Registry, sub *xenv.Environment) error {
		got, err := reg.WithdrawStake(sub)
		if err != nil {
			return err
		}
		return p.held.Add(got)
	}); err != nil {
		return err
	}
	v, err := p.advance(env)
	if err != nil {
		return err
	}
	if v.Unlocked < votePower {
		return errVotesNotEnough
	}
	amount, err := p.stakeValue(votePower)
	if err != nil {
		return err
	}
	held, err := p.held.Get()
	if err != nil {
		return err
	}
	if held.Cmp(amount) < 0 {
		return errPrincipalPending
	}
	lockIn, err := p.lockIn.Get()
	if err != nil {
		return err
	}
	if err := enqueue(p.inQueue, votePower, env.BlockContext().Number, lockIn); err != nil {
		return err
	}
	v.Unlocked -= votePower
	v.Locking += votePower
	if err := p.votes.Set(v); err != nil {
		return err
	}
	if err := p.held.Sub(amount); err != nil {
		return err
	}
	if err := builtin.Registry.Call(env, amount, func(reg *registry.Registry, sub *xenv.Environment) error {
		return reg.IncreaseStake(sub, votePower)
	}); err != nil {
		return err
	}
	env.Log("ReStake", "votePower", votePower)
	return nil
}

// Receive accepts plain value. It is counted as interest of the pool.
func (p *Pool) Receive(env *xenv.Environment) error {
	return nil
}

//
// Admin setters
//

// SetBridge sets the only address allowed to change the stake and returns the previous one.
func (p *Pool) SetBridge(env *xenv.Environment, bridge cfx.Address) (cfx.Address, error) {
	if err := p.OnlyOwner(env); err != nil {
		return cfx.Address{}, err
	}
	if bridge.IsZero() {
		return cfx.Address{}, reverts.ErrZeroAddress
	}
	prev, err := p.bridge.Get()
	if err != nil {
		return cfx.Address{}, err
	}
	p.bridge.Set(bridge)
	env.Log("Setbridges", "previous", prev, "bridge", bridge)
	return prev, nil
}

func (p *Pool) SetLockPeriod(env *xenv.Environment, in, out uint64) error {
	if err := p.OnlyOwner(env); err != nil {
		return err
	}
	if err := p.lockIn.Set(in); err != nil {
		return err
	}
	if err := p.lockOut.Set(out); err != nil {
		return err
	}
	env.Log("SetLockPeriod", "lockIn", in, "lockOut", out)
	return nil
}

func (p *Pool) SetCfxCountOfOneVote(env *xenv.Environment, count uint64) error {
	if err := p.OnlyOwner(env); err != nil {
		return err
	}
	if count == 0 {
		return errZeroVoteCount
	}
	if err := registry.CheckVoteCount(count); err != nil {
		return err
	}
	if err := p.voteCount.Set(count); err != nil {
		return err
	}
	env.Log("SetCfxCountOfOneVote", "count", count)
	return nil
}

func (p *Pool) SetPoolName(env *xenv.Environment, name string) error {
	if err := p.OnlyOwner(env); err != nil {
		return err
	}
	if err := p.name.Set(name); err != nil {
		return err
	}
	env.Log("SetPoolName", "name", name)
	return nil
}
