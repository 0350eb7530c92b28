// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package corebridge implements the bridge orchestrating the staking pools and
// the exchange room into one peg. It is the only caller allowed into the
// bridge gated methods of both.
package corebridge

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/nucleonfinance/xcfx/builtin/registry"
	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/builtin/solidity"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts/access"
	"github.com/nucleonfinance/xcfx/log"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

var logger = log.WithContext("pkg", "corebridge")

const (
	defaultShareRatio = 100
	maxShareRatio     = 100
)

var (
	slotTriggers      = solidity.Slot("bridge.trusted-triggers")
	slotPools         = solidity.Slot("bridge.pools")
	slotExroom        = solidity.Slot("bridge.exroom")
	slotXCFX          = solidity.Slot("bridge.xcfx")
	slotESpaceExroom  = solidity.Slot("bridge.espace-exroom")
	slotESpaceXCFX    = solidity.Slot("bridge.espace-xcfx")
	slotESpaceBridge  = solidity.Slot("bridge.espace-bridge")
	slotTreasury      = solidity.Slot("bridge.treasury")
	slotVoteCount     = solidity.Slot("bridge.cfx-count-of-one-vote")
	slotShareRatio    = solidity.Slot("bridge.pool-user-share-ratio")
	slotIncome        = solidity.Slot("bridge.income")
	slotTreasuryPaid  = solidity.Slot("bridge.treasury-paid")
	slotCachedVotes   = solidity.Slot("bridge.cached-votes")
	slotCachedBacking = solidity.Slot("bridge.cached-backing")
	slotCachedValue   = solidity.Slot("bridge.cached-xcfx-value")
	slotCachedSync    = solidity.Slot("bridge.cached-sync-block")
)

var (
	errNotTrigger      = reverts.New(reverts.AccessDenied, "msg.sender is not trusted trigger")
	errExroomNotSet    = reverts.New(reverts.NotInitialized, "exchange room is not set")
	errExroomNotReady  = reverts.New(reverts.NotInitialized, "exchange room is not initialized")
	errZeroShareRatio  = reverts.New(reverts.ValueMismatch, "ratio should be greater than 0")
	errShareRatioRange = reverts.New(reverts.ValueMismatch, "ratio should not exceed 100")
	errZeroVoteCount   = reverts.New(reverts.ValueMismatch, "cfxCountOfOneVote should be greater than 0")
)

// Settings are the configured addresses and parameters.
type Settings struct {
	Exroom            cfx.Address
	XCFX              cfx.Address
	ESpaceExroom      cfx.Address
	ESpaceXCFX        cfx.Address
	ESpaceBridge      cfx.Address
	Treasury          cfx.Address
	CfxCountOfOneVote uint64
	ShareRatio        uint64
}

// Totals are the aggregates cached by the last sync.
type Totals struct {
	TotalVotes   uint64
	Backing      *big.Int
	XCFXValue    *big.Int
	SyncBlock    uint64
	Income       *big.Int
	TreasuryPaid *big.Int
}

// Bridge implements methods of the bridge contract.
type Bridge struct {
	*access.Ownable
	init *access.Initializable

	sctx          *solidity.Context
	binders       Binders
	triggers      *solidity.Mapping[cfx.Address, bool]
	pools         *solidity.AddressSet
	exroom        *solidity.Address
	xcfx          *solidity.Address
	espaceExroom  *solidity.Address
	espaceXCFX    *solidity.Address
	espaceBridge  *solidity.Address
	treasury      *solidity.Address
	voteCount     *solidity.Value[uint64]
	shareRatio    *solidity.Value[uint64]
	income        *solidity.Uint256
	treasuryPaid  *solidity.Uint256
	cachedVotes   *solidity.Value[uint64]
	cachedBacking *solidity.Uint256
	cachedValue   *solidity.Uint256
	cachedSync    *solidity.Value[uint64]
}

// New create a new instance. Calls out of the bridge go through binders.
func New(addr cfx.Address, st *state.State, binders Binders) *Bridge {
	sctx := solidity.NewContext(addr, st)
	return &Bridge{
		Ownable:       access.NewOwnable(sctx),
		init:          access.NewInitializable(sctx),
		sctx:          sctx,
		binders:       binders,
		triggers:      solidity.NewMapping[cfx.Address, bool](sctx, slotTriggers),
		pools:         solidity.NewAddressSet(sctx, slotPools),
		exroom:        solidity.NewAddress(sctx, slotExroom),
		xcfx:          solidity.NewAddress(sctx, slotXCFX),
		espaceExroom:  solidity.NewAddress(sctx, slotESpaceExroom),
		espaceXCFX:    solidity.NewAddress(sctx, slotESpaceXCFX),
		espaceBridge:  solidity.NewAddress(sctx, slotESpaceBridge),
		treasury:      solidity.NewAddress(sctx, slotTreasury),
		voteCount:     solidity.NewValue[uint64](sctx, slotVoteCount),
		shareRatio:    solidity.NewValue[uint64](sctx, slotShareRatio),
		income:        solidity.NewUint256(sctx, slotIncome),
		treasuryPaid:  solidity.NewUint256(sctx, slotTreasuryPaid),
		cachedVotes:   solidity.NewValue[uint64](sctx, slotCachedVotes),
		cachedBacking: solidity.NewUint256(sctx, slotCachedBacking),
		cachedValue:   solidity.NewUint256(sctx, slotCachedValue),
		cachedSync:    solidity.NewValue[uint64](sctx, slotCachedSync),
	}
}

func (b *Bridge) Address() cfx.Address {
	return b.sctx.Address()
}

// Initialize sets the default parameters. Owner only, once.
func (b *Bridge) Initialize(env *xenv.Environment) error {
	if err := b.OnlyOwner(env); err != nil {
		return err
	}
	if err := b.init.Initialize(); err != nil {
		return err
	}
	if err := b.voteCount.Set(cfx.OneVoteCFXCount); err != nil {
		return err
	}
	return b.shareRatio.Set(defaultShareRatio)
}

//
// Getters - no state change
//

// GetTriggerState reports whether addr may call SyncALLwork.
func (b *Bridge) GetTriggerState(addr cfx.Address) (bool, error) {
	return b.triggers.Get(addr)
}

// GetPoolAddress returns the pools in the order they were added.
func (b *Bridge) GetPoolAddress() ([]cfx.Address, error) {
	return b.pools.Members()
}

func (b *Bridge) Initialized() (bool, error) {
	return b.init.Initialized()
}

func (b *Bridge) Settings() (*Settings, error) {
	var (
		s   Settings
		err error
	)
	for _, f := range []struct {
		slot *solidity.Address
		dst  *cfx.Address
	}{
		{b.exroom, &s.Exroom},
		{b.xcfx, &s.XCFX},
		{b.espaceExroom, &s.ESpaceExroom},
		{b.espaceXCFX, &s.ESpaceXCFX},
		{b.espaceBridge, &s.ESpaceBridge},
		{b.treasury, &s.Treasury},
	} {
		if *f.dst, err = f.slot.Get(); err != nil {
			return nil, err
		}
	}
	if s.CfxCountOfOneVote, err = b.voteCount.Get(); err != nil {
		return nil, err
	}
	if s.ShareRatio, err = b.shareRatio.Get(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Totals returns the aggregates cached by the last sync, and the ledgers of income and treasury payments.
func (b *Bridge) Totals() (*Totals, error) {
	var (
		t   Totals
		err error
	)
	if t.TotalVotes, err = b.cachedVotes.Get(); err != nil {
		return nil, err
	}
	if t.SyncBlock, err = b.cachedSync.Get(); err != nil {
		return nil, err
	}
	if t.Backing, err = b.cachedBacking.Get(); err != nil {
		return nil, err
	}
	if t.XCFXValue, err = b.cachedValue.Get(); err != nil {
		return nil, err
	}
	if t.Income, err = b.income.Get(); err != nil {
		return nil, err
	}
	if t.TreasuryPaid, err = b.treasuryPaid.Get(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Backing computes the value backing xCFX at block number without changing anything.
// The returned total votes are summed over all pools.
func (b *Bridge) Backing(number uint64) (*big.Int, uint64, error) {
	exroom, err := b.exroom.Get()
	if err != nil {
		return nil, 0, err
	}
	idle, err := b.sctx.State().GetBalance(b.Address())
	if err != nil {
		return nil, 0, err
	}
	return b.backing(b.sctx.State(), exroom, idle, number)
}

func (b *Bridge) backing(st *state.State, exroom cfx.Address, idle *big.Int, number uint64) (*big.Int, uint64, error) {
	pools, err := b.pools.Members()
	if err != nil {
		return nil, 0, err
	}
	count, err := b.voteCount.Get()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	for _, addr := range pools {
		s, err := b.binders.Pool(addr, st).Summary(number)
		if err != nil {
			return nil, 0, err
		}
		total += s.TotalVotes
	}

	backing := cfx.VoteValue(total, count)
	if !exroom.IsZero() {
		locked, err := b.binders.ExchangeRoom(exroom, st).LockedValue()
		if err != nil {
			return nil, 0, err
		}
		backing.Add(backing, locked)
	}
	return backing.Add(backing, idle), total, nil
}

//
// Sync
//

func (b *Bridge) onlyTrigger(env *xenv.Environment) error {
	ok, err := b.triggers.Get(env.Caller())
	if err != nil {
		return err
	}
	if !ok {
		return errNotTrigger
	}
	return nil
}

// SyncALLwork settles the pools and the exchange room and recomputes the peg.
// Trusted triggers only.
func (b *Bridge) SyncALLwork(env *xenv.Environment) error {
	if err := b.onlyTrigger(env); err != nil {
		return err
	}
	if err := b.init.Require(); err != nil {
		return err
	}
	exroomAddr, err := b.exroom.Get()
	if err != nil {
		return err
	}
	tokenAddr, err := b.xcfx.Get()
	if err != nil {
		return err
	}
	if exroomAddr.IsZero() || tokenAddr.IsZero() {
		return errExroomNotSet
	}
	st := env.State()
	room := b.binders.ExchangeRoom(exroomAddr, st)
	if ok, err := room.Initialized(); err != nil {
		return err
	} else if !ok {
		return errExroomNotReady
	}

	number := env.BlockContext().Number
	pools, err := b.pools.Members()
	if err != nil {
		return err
	}

	interest, err := b.claimInterest(env, pools, number)
	if err != nil {
		return err
	}
	withdrawn, err := b.withdrawPools(env, pools)
	if err != nil {
		return err
	}
	relayed, err := b.withdrawRelayed(env)
	if err != nil {
		return err
	}

	deposit, err := room.HandleXCFXAdd(env)
	if err != nil {
		return err
	}
	unstake, err := room.HandleUnstake(env)
	if err != nil {
		return err
	}

	funded, err := b.fundExroom(env, room)
	if err != nil {
		return err
	}
	retired, err := b.retireVotes(env, room, pools, number)
	if err != nil {
		return err
	}
	staked, err := b.stakeIdle(env, pools, number)
	if err != nil {
		return err
	}

	idle, err := env.Balance()
	if err != nil {
		return err
	}
	backing, totalVotes, err := b.backing(st, exroomAddr, idle, number)
	if err != nil {
		return err
	}
	supply, err := b.binders.Token(tokenAddr, st).TotalSupply()
	if err != nil {
		return err
	}
	peg, err := repeg(env, room, backing, supply)
	if err != nil {
		return err
	}

	if err := b.cachedVotes.Set(totalVotes); err != nil {
		return err
	}
	if err := b.cachedSync.Set(number); err != nil {
		return err
	}
	if backing.Sign() > 0 {
		b.cachedBacking.Set(backing)
	}
	if peg != nil {
		b.cachedValue.Set(peg)
	}

	env.Log("SyncALLwork",
		"interest", interest,
		"withdrawn", withdrawn,
		"relayed", relayed,
		"deposit", deposit,
		"unstake", unstake,
		"funded", funded,
		"retired", retired,
		"staked", staked,
		"backing", backing,
		"xcfxValue", peg,
	)
	logger.Debug("synced", "block", number, "votes", totalVotes, "backing", backing, "supply", supply, "peg", peg)
	reportSync(totalVotes, backing, peg)
	return nil
}

// claimInterest claims the interest of every pool having some and pays the treasury its share.
func (b *Bridge) claimInterest(env *xenv.Environment, pools []cfx.Address, number uint64) (*big.Int, error) {
	total := new(big.Int)
	for _, addr := range pools {
		pool := b.binders.Pool(addr, env.State())
		if ok, err := pool.Registered(); err != nil {
			return nil, err
		} else if !ok {
			continue
		}
		s, err := pool.Summary(number)
		if err != nil {
			return nil, err
		}
		if s.UnclaimedInterest.Sign() == 0 {
			continue
		}
		got, err := pool.ClaimAllInterest(env)
		if err != nil {
			return nil, err
		}
		total.Add(total, got)
	}
	if total.Sign() == 0 {
		return total, nil
	}

	treasury, err := b.treasury.Get()
	if err != nil {
		return nil, err
	}
	ratio, err := b.shareRatio.Get()
	if err != nil {
		return nil, err
	}
	fee := treasuryShare(total, ratio)
	if treasury.IsZero() || fee.Sign() == 0 {
		return total, nil
	}
	if err := b.binders.Relay(env.State()).TransferValue(env, treasury, fee); err != nil {
		return nil, err
	}
	if err := b.treasuryPaid.Add(fee); err != nil {
		return nil, err
	}
	return total, nil
}

func (b *Bridge) withdrawPools(env *xenv.Environment, pools []cfx.Address) (*big.Int, error) {
	total := new(big.Int)
	for _, addr := range pools {
		pool := b.binders.Pool(addr, env.State())
		if ok, err := pool.Registered(); err != nil {
			return nil, err
		} else if !ok {
			continue
		}
		got, err := pool.WithdrawStake(env)
		if err != nil {
			return nil, err
		}
		total.Add(total, got)
	}
	return total, nil
}

// withdrawRelayed pulls the value sent to the mapped eSpace account of the bridge.
func (b *Bridge) withdrawRelayed(env *xenv.Environment) (*big.Int, error) {
	relay := b.binders.Relay(env.State())
	bal, err := relay.MappedBalance(relay.MappedAddressOf(b.Address()))
	if err != nil {
		return nil, err
	}
	if bal.Sign() == 0 {
		return bal, nil
	}
	if err := relay.WithdrawMapped(env, bal); err != nil {
		return nil, err
	}
	return bal, nil
}

// fundExroom sends idle value to the exchange room until it covers its obligations.
func (b *Bridge) fundExroom(env *xenv.Environment, room ExchangeRoom) (*big.Int, error) {
	short, err := shortfall(room)
	if err != nil {
		return nil, err
	}
	if short.Sign() == 0 {
		return short, nil
	}
	idle, err := env.Balance()
	if err != nil {
		return nil, err
	}
	if idle.Cmp(short) < 0 {
		short = idle
	}
	if short.Sign() == 0 {
		return short, nil
	}
	if err := room.HandleCFXExchangeXCFX(env, short); err != nil {
		return nil, err
	}
	return short, nil
}

// retireVotes unstakes enough locked votes to cover what the exchange room still misses,
// minus the value already on its way back.
func (b *Bridge) retireVotes(env *xenv.Environment, room ExchangeRoom, pools []cfx.Address, number uint64) (uint64, error) {
	need, err := shortfall(room)
	if err != nil {
		return 0, err
	}
	if need.Sign() == 0 {
		return 0, nil
	}

	type candidate struct {
		pool    Pool
		locked  uint64
		perVote *big.Int
	}
	var candidates []candidate
	for _, addr := range pools {
		pool := b.binders.Pool(addr, env.State())
		if ok, err := pool.Registered(); err != nil {
			return 0, err
		} else if !ok {
			continue
		}
		s, err := pool.Summary(number)
		if err != nil {
			return 0, err
		}
		perVote, err := pool.ValuePerVote()
		if err != nil {
			return 0, err
		}
		inFlight := new(big.Int).Mul(perVote, new(big.Int).SetUint64(s.Unlocking+s.Unlocked))
		need.Sub(need, inFlight)
		if s.Locked > 0 {
			candidates = append(candidates, candidate{pool, s.Locked, perVote})
		}
	}

	var retired uint64
	for _, c := range candidates {
		if need.Sign() <= 0 {
			break
		}
		votes := ceilDiv(need, c.perVote)
		if votes > c.locked {
			votes = c.locked
		}
		if err := c.pool.DecreaseStake(env, votes); err != nil {
			return 0, err
		}
		need.Sub(need, new(big.Int).Mul(c.perVote, new(big.Int).SetUint64(votes)))
		retired += votes
	}
	if need.Sign() > 0 {
		logger.Warn("not enough locked votes to cover the exchange room", "missing", need)
	}
	return retired, nil
}

// stakeIdle stakes the idle value, in whole votes, into the registered pool with the fewest votes.
func (b *Bridge) stakeIdle(env *xenv.Environment, pools []cfx.Address, number uint64) (uint64, error) {
	var (
		target Pool
		fewest uint64
	)
	for _, addr := range pools {
		pool := b.binders.Pool(addr, env.State())
		if ok, err := pool.Registered(); err != nil {
			return 0, err
		} else if !ok {
			continue
		}
		s, err := pool.Summary(number)
		if err != nil {
			return 0, err
		}
		if target == nil || s.TotalVotes < fewest {
			target, fewest = pool, s.TotalVotes
		}
	}
	if target == nil {
		return 0, nil
	}

	idle, err := env.Balance()
	if err != nil {
		return 0, err
	}
	perVote, err := target.ValuePerVote()
	if err != nil {
		return 0, err
	}
	votes := new(big.Int).Quo(idle, perVote)
	if votes.Sign() == 0 || !votes.IsUint64() {
		return 0, nil
	}
	value := new(big.Int).Mul(votes, perVote)
	if err := target.IncreaseStake(env, votes.Uint64(), value); err != nil {
		return 0, err
	}
	return votes.Uint64(), nil
}

// repeg pushes the new peg and backing to the exchange room. Nothing is pushed while
// the backing, the supply or the peg itself is zero, and the returned peg is nil.
func repeg(env *xenv.Environment, room ExchangeRoom, backing, supply *big.Int) (*big.Int, error) {
	if backing.Sign() <= 0 || supply.Sign() == 0 {
		logger.Debug("peg unchanged", "backing", backing, "supply", supply)
		return nil, nil
	}
	peg, err := pegOf(backing, supply)
	if err != nil || peg == nil {
		return nil, err
	}
	if err := room.SetXCFXValue(env, peg); err != nil {
		return nil, err
	}
	if err := room.SetLockedVotes(env, backing); err != nil {
		return nil, err
	}
	return peg, nil
}

//
// Setters - state change
//

// SetTrustedTriggers allows or disallows addr to call SyncALLwork.
func (b *Bridge) SetTrustedTriggers(env *xenv.Environment, addr cfx.Address, trusted bool) error {
	if err := b.OnlyOwner(env); err != nil {
		return err
	}
	if addr.IsZero() {
		return reverts.ErrZeroAddress
	}
	if err := b.triggers.Set(addr, trusted); err != nil {
		return err
	}
	env.Log("Settrustedtrigers", "trigger", addr, "state", trusted)
	return nil
}

func (b *Bridge) AddPoolAddress(env *xenv.Environment, pool cfx.Address) error {
	if err := b.OnlyOwner(env); err != nil {
		return err
	}
	if pool.IsZero() {
		return reverts.ErrZeroAddress
	}
	if _, err := b.pools.Add(pool); err != nil {
		return err
	}
	env.Log("AddPoolAddress", "pool", pool)
	return nil
}

// ChangePoolAddress replaces a pool keeping its position. Replacing a non member changes nothing.
func (b *Bridge) ChangePoolAddress(env *xenv.Environment, old, pool cfx.Address) error {
	if err := b.OnlyOwner(env); err != nil {
		return err
	}
	if pool.IsZero() {
		return reverts.ErrZeroAddress
	}
	changed, err := b.pools.Replace(old, pool)
	if err != nil {
		return err
	}
	env.Log("ChangePoolAddress", "old", old, "pool", pool, "changed", changed)
	return nil
}

// DelePoolAddress removes a pool. Removing a non member changes nothing.
func (b *Bridge) DelePoolAddress(env *xenv.Environment, pool cfx.Address) error {
	if err := b.OnlyOwner(env); err != nil {
		return err
	}
	removed, err := b.pools.Remove(pool)
	if err != nil {
		return err
	}
	env.Log("DelePoolAddress", "pool", pool, "removed", removed)
	return nil
}

func (b *Bridge) setAddress(env *xenv.Environment, slot *solidity.Address, event string, addr cfx.Address) error {
	if err := b.OnlyOwner(env); err != nil {
		return err
	}
	if addr.IsZero() {
		return reverts.ErrZeroAddress
	}
	slot.Set(addr)
	env.Log(event, "address", addr)
	return nil
}

func (b *Bridge) SetExroomAddress(env *xenv.Environment, addr cfx.Address) error {
	return b.setAddress(env, b.exroom, "SetExroomAddress", addr)
}

func (b *Bridge) SetXCFXAddress(env *xenv.Environment, addr cfx.Address) error {
	return b.setAddress(env, b.xcfx, "SetxCFXAddress", addr)
}

func (b *Bridge) SetESpaceExroomAddress(env *xenv.Environment, addr cfx.Address) error {
	return b.setAddress(env, b.espaceExroom, "SeteSpaceExroomAddress", addr)
}

func (b *Bridge) SetESpaceXCFXAddress(env *xenv.Environment, addr cfx.Address) error {
	return b.setAddress(env, b.espaceXCFX, "SeteSpacexCFXAddress", addr)
}

func (b *Bridge) SetESpaceBridgeAddress(env *xenv.Environment, addr cfx.Address) error {
	return b.setAddress(env, b.espaceBridge, "SeteSpacebridgeAddress", addr)
}

// SetServiceTreasuryAddress sets the eSpace account receiving the pool share of the interest.
func (b *Bridge) SetServiceTreasuryAddress(env *xenv.Environment, addr cfx.Address) error {
	return b.setAddress(env, b.treasury, "SeteServicetreasuryAddress", addr)
}

func (b *Bridge) SetCfxCountOfOneVote(env *xenv.Environment, count uint64) error {
	if err := b.OnlyOwner(env); err != nil {
		return err
	}
	if count == 0 {
		return errZeroVoteCount
	}
	if err := registry.CheckVoteCount(count); err != nil {
		return err
	}
	if err := b.voteCount.Set(count); err != nil {
		return err
	}
	env.Log("SetCfxCountOfOneVote", "count", count)
	return nil
}

// SetPoolUserShareRatio sets the percent of the interest left to users, the rest paid to the treasury.
func (b *Bridge) SetPoolUserShareRatio(env *xenv.Environment, ratio uint64) error {
	if err := b.OnlyOwner(env); err != nil {
		return err
	}
	if ratio == 0 {
		return errZeroShareRatio
	}
	if ratio > maxShareRatio {
		return errShareRatioRange
	}
	if err := b.shareRatio.Set(ratio); err != nil {
		return err
	}
	env.Log("SetPoolUserShareRatio", "ratio", ratio)
	return nil
}

// ClearTheStates resets the cached aggregates. Queues and ledgers are kept.
func (b *Bridge) ClearTheStates(env *xenv.Environment) error {
	if err := b.OnlyOwner(env); err != nil {
		return err
	}
	if err := b.cachedVotes.Set(0); err != nil {
		return err
	}
	if err := b.cachedSync.Set(0); err != nil {
		return err
	}
	b.cachedBacking.Set(new(big.Int))
	b.cachedValue.Set(new(big.Int))
	env.Log("ClearTheStates")
	return nil
}

// Receive accepts plain value. Value not coming from a settlement party is recorded as income.
func (b *Bridge) Receive(env *xenv.Environment) error {
	sender := env.Caller()
	settled, err := b.isSettlementParty(env.State(), sender)
	if err != nil {
		return err
	}
	if settled {
		return nil
	}
	if err := b.income.Add(env.Value()); err != nil {
		return err
	}
	env.Log("Income", "from", sender, "value", env.Value())
	return nil
}

func (b *Bridge) isSettlementParty(st *state.State, addr cfx.Address) (bool, error) {
	if addr == b.binders.Relay(st).Address() {
		return true, nil
	}
	exroom, err := b.exroom.Get()
	if err != nil {
		return false, err
	}
	if addr == exroom {
		return true, nil
	}
	return b.pools.Contains(addr)
}

//
// Math
//

// pegOf returns backing * 1e18 / supply, nil if it rounds to zero.
func pegOf(backing, supply *big.Int) (*big.Int, error) {
	x, overflow := uint256.FromBig(backing)
	if overflow {
		return nil, reverts.New(reverts.ZeroAggregate, "backing overflows")
	}
	d, overflow := uint256.FromBig(supply)
	if overflow {
		return nil, reverts.New(reverts.ZeroAggregate, "supply overflows")
	}
	peg, overflow := new(uint256.Int).MulDivOverflow(x, uint256.NewInt(1e18), d)
	if overflow {
		return nil, reverts.New(reverts.ZeroAggregate, "xCFX value overflows")
	}
	if peg.IsZero() {
		return nil, nil
	}
	return peg.ToBig(), nil
}

// treasuryShare returns the part of interest not left to users.
func treasuryShare(interest *big.Int, userRatio uint64) *big.Int {
	if userRatio >= maxShareRatio {
		return new(big.Int)
	}
	fee := new(big.Int).Mul(interest, new(big.Int).SetUint64(maxShareRatio-userRatio))
	return fee.Quo(fee, big.NewInt(maxShareRatio))
}

func ceilDiv(x, y *big.Int) uint64 {
	q, m := new(big.Int).QuoRem(x, y, new(big.Int))
	if m.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	if !q.IsUint64() {
		return ^uint64(0)
	}
	return q.Uint64()
}

// shortfall returns how much the exchange room misses to pay everything it owes, or zero.
func shortfall(room ExchangeRoom) (*big.Int, error) {
	locked, err := room.LockedValue()
	if err != nil {
		return nil, err
	}
	if locked.Sign() >= 0 {
		return new(big.Int), nil
	}
	return locked.Neg(locked), nil
}
