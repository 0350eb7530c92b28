// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package exroom implements the exchange room, the user facing ledger converting
// CFX into xCFX at the current peg and back through a per user unlock queue.
package exroom

import (
	"math/big"

	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/builtin/solidity"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts/access"
	"github.com/nucleonfinance/xcfx/contracts/xcfx"
	"github.com/nucleonfinance/xcfx/log"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

var logger = log.WithContext("pkg", "exroom")

var (
	slotPoolName          = solidity.Slot("exroom.pool-name")
	slotXCFX              = solidity.Slot("exroom.xcfx")
	slotBridge            = solidity.Slot("exroom.bridge")
	slotCoreExchange      = solidity.Slot("exroom.core-exchange")
	slotStorageAddr       = solidity.Slot("exroom.storage")
	slotStorageBridge     = solidity.Slot("exroom.storage-bridge")
	slotXCFXValue         = solidity.Slot("exroom.xcfx-value")
	slotLockedVotes       = solidity.Slot("exroom.locked-votes")
	slotLockIn            = solidity.Slot("exroom.lock-in")
	slotLockOut           = solidity.Slot("exroom.lock-out")
	slotMinExchange       = solidity.Slot("exroom.min-exchange")
	slotTotalOutQueued    = solidity.Slot("exroom.total-out-queued")
	slotTotalUserUnlocked = solidity.Slot("exroom.total-user-unlocked")
	slotUnsettledDeposit  = solidity.Slot("exroom.unsettled-deposit")
	slotUnsettledUnstake  = solidity.Slot("exroom.unsettled-unstake")
	slotFunded            = solidity.Slot("exroom.funded")
	slotOutQueues         = solidity.Slot("exroom.out-queues")
	slotUserUnlocked      = solidity.Slot("exroom.user-unlocked")
)

var (
	errNotBridge       = reverts.New(reverts.AccessDenied, "msg.sender is not bridge")
	errInitValue       = reverts.New(reverts.ValueMismatch, "msg.value should be greater than 0")
	errZeroAmount      = reverts.New(reverts.ValueMismatch, "amount should be greater than 0")
	errBelowMinLimit   = reverts.New(reverts.ValueMismatch, "Exchange amount is below the minimum limit")
	errExceedLimit     = reverts.New(reverts.InsufficientBalance, "Exceed exchange limit")
	errQueueTooLong    = reverts.New(reverts.QueueTooLong, "TOO long queues!")
	errNotEnoughUnlock = reverts.New(reverts.InsufficientBalance, "Not enough unlocked CFX")
	errBridgeNotSet    = reverts.New(reverts.NotInitialized, "bridge is not set")
	errZeroPeg         = reverts.New(reverts.ValueMismatch, "xCFX value should be greater than 0")
)

// OutEntry is an amount of CFX a user can take back once UnlockBlock has passed.
type OutEntry struct {
	Amount      *big.Int
	UnlockBlock uint64
}

// Summary is the global state of the room.
type Summary struct {
	XCFXValue   *big.Int
	TotalXCFX   *big.Int
	LockedVotes *big.Int
	Unlocking   *big.Int
	Unlocked    *big.Int
	// Funded is the CFX the bridge has sent in over the room's lifetime.
	Funded *big.Int
}

// UserSummary is the unlock state of one user.
type UserSummary struct {
	Unlocking *big.Int
	Unlocked  *big.Int
}

// Settings are the configured name and addresses.
type Settings struct {
	PoolName      string
	XCFX          cfx.Address
	Bridge        cfx.Address
	CoreExchange  cfx.Address
	StorageAddr   cfx.Address
	StorageBridge cfx.Address
}

// ExchangeRoom implements methods of the exchange room contract.
type ExchangeRoom struct {
	*access.Ownable
	init *access.Initializable

	sctx              *solidity.Context
	poolName          *solidity.Value[string]
	xcfx              *solidity.Address
	bridge            *solidity.Address
	coreExchange      *solidity.Address
	storageAddr       *solidity.Address
	storageBridge     *solidity.Address
	xcfxValue         *solidity.Uint256
	lockedVotes       *solidity.Uint256
	lockIn            *solidity.Value[uint64]
	lockOut           *solidity.Value[uint64]
	minExchange       *solidity.Uint256
	totalOutQueued    *solidity.Uint256
	totalUserUnlocked *solidity.Uint256
	unsettledDeposit  *solidity.Uint256
	unsettledUnstake  *solidity.Uint256
	funded            *solidity.Uint256
	userUnlocked      *solidity.Mapping[cfx.Address, *big.Int]
}

// New create a new instance.
func New(addr cfx.Address, st *state.State) *ExchangeRoom {
	sctx := solidity.NewContext(addr, st)
	return &ExchangeRoom{
		Ownable:           access.NewOwnable(sctx),
		init:              access.NewInitializable(sctx),
		sctx:              sctx,
		poolName:          solidity.NewValue[string](sctx, slotPoolName),
		xcfx:              solidity.NewAddress(sctx, slotXCFX),
		bridge:            solidity.NewAddress(sctx, slotBridge),
		coreExchange:      solidity.NewAddress(sctx, slotCoreExchange),
		storageAddr:       solidity.NewAddress(sctx, slotStorageAddr),
		storageBridge:     solidity.NewAddress(sctx, slotStorageBridge),
		xcfxValue:         solidity.NewUint256(sctx, slotXCFXValue),
		lockedVotes:       solidity.NewUint256(sctx, slotLockedVotes),
		lockIn:            solidity.NewValue[uint64](sctx, slotLockIn),
		lockOut:           solidity.NewValue[uint64](sctx, slotLockOut),
		minExchange:       solidity.NewUint256(sctx, slotMinExchange),
		totalOutQueued:    solidity.NewUint256(sctx, slotTotalOutQueued),
		totalUserUnlocked: solidity.NewUint256(sctx, slotTotalUserUnlocked),
		unsettledDeposit:  solidity.NewUint256(sctx, slotUnsettledDeposit),
		unsettledUnstake:  solidity.NewUint256(sctx, slotUnsettledUnstake),
		funded:            solidity.NewUint256(sctx, slotFunded),
		userUnlocked:      solidity.NewMapping[cfx.Address, *big.Int](sctx, slotUserUnlocked),
	}
}

func (r *ExchangeRoom) outQueue(user cfx.Address) *solidity.Queue[OutEntry] {
	return solidity.NewQueue[OutEntry](r.sctx, cfx.Blake2b(slotOutQueues.Bytes(), user.Bytes()))
}

// Initialize seeds the room with the call value and mints the same amount of xCFX to the caller.
// Owner only, once.
func (r *ExchangeRoom) Initialize(env *xenv.Environment, token cfx.Address, lockedVotesSeed *big.Int) error {
	if err := r.OnlyOwner(env); err != nil {
		return err
	}
	if env.Value().Sign() == 0 {
		return errInitValue
	}
	if token.IsZero() {
		return reverts.ErrZeroAddress
	}
	if err := r.init.Initialize(); err != nil {
		return err
	}

	r.xcfx.Set(token)
	r.xcfxValue.Set(cfx.Ether)
	r.lockedVotes.Set(lockedVotesSeed)
	r.minExchange.Set(cfx.Ether)
	if err := r.poolName.Set(cfx.DefaultPoolName); err != nil {
		return err
	}
	if err := r.lockIn.Set(cfx.DefaultLockInPeriod); err != nil {
		return err
	}
	if err := r.lockOut.Set(cfx.DefaultLockOutPeriod); err != nil {
		return err
	}
	if err := r.mint(env, env.Caller(), env.Value()); err != nil {
		return err
	}
	env.Log("Initialized", "xcfx", token, "seed", env.Value(), "lockedVotes", lockedVotesSeed)
	logger.Info("exchange room initialized", "room", r.sctx.Address(), "seed", env.Value())
	return nil
}

func (r *ExchangeRoom) tokenCall(env *xenv.Environment, fn func(tk *xcfx.Token, sub *xenv.Environment) error) error {
	token, err := r.xcfx.Get()
	if err != nil {
		return err
	}
	return env.Call(token, nil, func(sub *xenv.Environment) error {
		return fn(xcfx.New(token, sub.State()), sub)
	})
}

func (r *ExchangeRoom) mint(env *xenv.Environment, to cfx.Address, amount *big.Int) error {
	return r.tokenCall(env, func(tk *xcfx.Token, sub *xenv.Environment) error {
		return tk.Mint(sub, to, amount)
	})
}

func (r *ExchangeRoom) burn(env *xenv.Environment, from cfx.Address, amount *big.Int) error {
	return r.tokenCall(env, func(tk *xcfx.Token, sub *xenv.Environment) error {
		return tk.Burn(sub, from, amount)
	})
}

//
// Getters - no state change
//

func (r *ExchangeRoom) Initialized() (bool, error) {
	return r.init.Initialized()
}

func (r *ExchangeRoom) Bridge() (cfx.Address, error) {
	return r.bridge.Get()
}

func (r *ExchangeRoom) XCFX() (cfx.Address, error) {
	return r.xcfx.Get()
}

func (r *ExchangeRoom) XCFXValue() (*big.Int, error) {
	return r.xcfxValue.Get()
}

func (r *ExchangeRoom) LockedVotes() (*big.Int, error) {
	return r.lockedVotes.Get()
}

func (r *ExchangeRoom) MinExchangeLimit() (*big.Int, error) {
	return r.minExchange.Get()
}

// LockPeriods returns the lock in and lock out periods in blocks.
func (r *ExchangeRoom) LockPeriods() (in uint64, out uint64, err error) {
	if in, err = r.lockIn.Get(); err != nil {
		return
	}
	out, err = r.lockOut.Get()
	return
}

func (r *ExchangeRoom) Settings() (*Settings, error) {
	var (
		s   Settings
		err error
	)
	if s.PoolName, err = r.poolName.Get(); err != nil {
		return nil, err
	}
	for _, f := range []struct {
		dst *cfx.Address
		src *solidity.Address
	}{
		{&s.XCFX, r.xcfx},
		{&s.Bridge, r.bridge},
		{&s.CoreExchange, r.coreExchange},
		{&s.StorageAddr, r.storageAddr},
		{&s.StorageBridge, r.storageBridge},
	} {
		if *f.dst, err = f.src.Get(); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func (r *ExchangeRoom) Summary() (*Summary, error) {
	var (
		s   Summary
		err error
	)
	if s.XCFXValue, err = r.xcfxValue.Get(); err != nil {
		return nil, err
	}
	if s.LockedVotes, err = r.lockedVotes.Get(); err != nil {
		return nil, err
	}
	if s.Unlocking, err = r.totalOutQueued.Get(); err != nil {
		return nil, err
	}
	if s.Unlocked, err = r.totalUserUnlocked.Get(); err != nil {
		return nil, err
	}
	if s.Funded, err = r.funded.Get(); err != nil {
		return nil, err
	}
	token, err := r.xcfx.Get()
	if err != nil {
		return nil, err
	}
	s.TotalXCFX = new(big.Int)
	if !token.IsZero() {
		if s.TotalXCFX, err = xcfx.New(token, r.sctx.State()).TotalSupply(); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// UserOutQueue returns the pending unlock entries of a user.
func (r *ExchangeRoom) UserOutQueue(user cfx.Address) ([]OutEntry, error) {
	return r.outQueue(user).Items()
}

// CollectOutqueuesFinishedVotes returns the CFX of the user entries matured at block number.
func (r *ExchangeRoom) CollectOutqueuesFinishedVotes(user cfx.Address, number uint64) (*big.Int, error) {
	entries, err := r.outQueue(user).Items()
	if err != nil {
		return nil, err
	}
	_, matured := maturedAmount(entries, number)
	return matured, nil
}

// UserSummary returns the unlock state of a user at block number.
func (r *ExchangeRoom) UserSummary(user cfx.Address, number uint64) (*UserSummary, error) {
	entries, err := r.outQueue(user).Items()
	if err != nil {
		return nil, err
	}
	unlocked, err := r.userUnlocked.Get(user)
	if err != nil {
		return nil, err
	}
	n, matured := maturedAmount(entries, number)
	unlocking := new(big.Int)
	for _, e := range entries[n:] {
		unlocking.Add(unlocking, e.Amount)
	}
	return &UserSummary{Unlocking: unlocking, Unlocked: unlocked.Add(unlocked, matured)}, nil
}

// CFXExchangeEstim returns the xCFX minted for value CFX at the current peg.
func (r *ExchangeRoom) CFXExchangeEstim(value *big.Int) (*big.Int, error) {
	peg, err := r.xcfxValue.Get()
	if err != nil {
		return nil, err
	}
	if peg.Sign() == 0 {
		return new(big.Int), nil
	}
	return toXCFX(value, peg), nil
}

// XCFXBurnEstim returns the CFX paid for burning amount xCFX and the blocks to wait for it.
func (r *ExchangeRoom) XCFXBurnEstim(amount *big.Int) (*big.Int, uint64, error) {
	peg, err := r.xcfxValue.Get()
	if err != nil {
		return nil, 0, err
	}
	lockOut, err := r.lockOut.Get()
	if err != nil {
		return nil, 0, err
	}
	return toCFX(amount, peg), lockOut + 1, nil
}

// Obligations returns the CFX owed to users, queued or already unlocked.
func (r *ExchangeRoom) Obligations() (*big.Int, error) {
	queued, err := r.totalOutQueued.Get()
	if err != nil {
		return nil, err
	}
	unlocked, err := r.totalUserUnlocked.Get()
	if err != nil {
		return nil, err
	}
	return queued.Add(queued, unlocked), nil
}

// LockedValue returns the balance of the room not owed to users. Negative when the room is short.
func (r *ExchangeRoom) LockedValue() (*big.Int, error) {
	bal, err := r.sctx.State().GetBalance(r.sctx.Address())
	if err != nil {
		return nil, err
	}
	owed, err := r.Obligations()
	if err != nil {
		return nil, err
	}
	return bal.Sub(bal, owed), nil
}

//
// User methods
//

// CFXExchangeXCFX mints xCFX for the call value and forwards the value to the bridge.
func (r *ExchangeRoom) CFXExchangeXCFX(env *xenv.Environment) (*big.Int, error) {
	if err := r.init.Require(); err != nil {
		return nil, err
	}
	value := env.Value()
	if value.Sign() == 0 {
		return nil, errZeroAmount
	}
	limit, err := r.minExchange.Get()
	if err != nil {
		return nil, err
	}
	if value.Cmp(limit) < 0 {
		return nil, errBelowMinLimit
	}
	bridge, err := r.bridge.Get()
	if err != nil {
		return nil, err
	}
	if bridge.IsZero() {
		return nil, errBridgeNotSet
	}
	peg, err := r.xcfxValue.Get()
	if err != nil {
		return nil, err
	}

	amount := toXCFX(value, peg)
	if err := r.mint(env, env.Caller(), amount); err != nil {
		return nil, err
	}
	if err := r.lockedVotes.Add(value); err != nil {
		return nil, err
	}
	if err := r.unsettledDeposit.Add(value); err != nil {
		return nil, err
	}
	if err := env.SendValue(bridge, value); err != nil {
		return nil, err
	}
	env.Log("CFX_exchange_XCFX", "user", env.Caller(), "cfx", value, "xcfx", amount)
	return amount, nil
}

// XCFXBurn burns amount xCFX of the caller and queues the CFX it is worth for unlocking.
func (r *ExchangeRoom) XCFXBurn(env *xenv.Environment, amount *big.Int) (*big.Int, error) {
	if err := r.init.Require(); err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, errZeroAmount
	}
	token, err := r.xcfx.Get()
	if err != nil {
		return nil, err
	}
	held, err := xcfx.New(token, env.State()).BalanceOf(env.Caller())
	if err != nil {
		return nil, err
	}
	if amount.Cmp(held) > 0 {
		return nil, errExceedLimit
	}
	peg, err := r.xcfxValue.Get()
	if err != nil {
		return nil, err
	}
	value := toCFX(amount, peg)
	limit, err := r.minExchange.Get()
	if err != nil {
		return nil, err
	}
	if value.Cmp(limit) < 0 {
		return nil, errBelowMinLimit
	}
	locked, err := r.lockedVotes.Get()
	if err != nil {
		return nil, err
	}
	if value.Cmp(locked) > 0 {
		return nil, errExceedLimit
	}
	queue := r.outQueue(env.Caller())
	n, err := queue.Len()
	if err != nil {
		return nil, err
	}
	if n >= cfx.MaxOutQueueLength {
		return nil, errQueueTooLong
	}
	lockOut, err := r.lockOut.Get()
	if err != nil {
		return nil, err
	}

	if err := r.burn(env, env.Caller(), amount); err != nil {
		return nil, err
	}
	unlockBlock := env.BlockContext().Number + lockOut
	if last, ok, err := queue.Last(); err != nil {
		return nil, err
	} else if ok && last.UnlockBlock > unlockBlock {
		unlockBlock = last.UnlockBlock
	}
	if err := queue.Push(OutEntry{Amount: value, UnlockBlock: unlockBlock}); err != nil {
		return nil, err
	}
	if err := r.totalOutQueued.Add(value); err != nil {
		return nil, err
	}
	if err := r.unsettledUnstake.Add(value); err != nil {
		return nil, err
	}
	r.lockedVotes.Set(locked.Sub(locked, value))
	env.Log("XCFX_burn", "user", env.Caller(), "xcfx", amount, "cfx", value, "unlockBlock", unlockBlock)
	return value, nil
}

// collect moves the matured entries of a user into the unlocked balance.
func (r *ExchangeRoom) collect(env *xenv.Environment, user cfx.Address) (*big.Int, error) {
	queue := r.outQueue(user)
	matured := new(big.Int)
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
		if head.UnlockBlock >= env.BlockContext().Number {
			break
		}
		if _, err := queue.Pop(); err != nil {
			return nil, err
		}
		matured.Add(matured, head.Amount)
	}
	unlocked, err := r.userUnlocked.Get(user)
	if err != nil {
		return nil, err
	}
	if matured.Sign() == 0 {
		return unlocked, nil
	}
	if err := r.totalOutQueued.Sub(matured); err != nil {
		return nil, err
	}
	if err := r.totalUserUnlocked.Add(matured); err != nil {
		return nil, err
	}
	unlocked.Add(unlocked, matured)
	if err := r.userUnlocked.Set(user, unlocked); err != nil {
		return nil, err
	}
	return unlocked, nil
}

// GetbackCFX pays the caller amount of its unlocked CFX.
func (r *ExchangeRoom) GetbackCFX(env *xenv.Environment, amount *big.Int) error {
	if amount.Sign() <= 0 {
		return errZeroAmount
	}
	unlocked, err := r.collect(env, env.Caller())
	if err != nil {
		return err
	}
	if unlocked.Cmp(amount) < 0 {
		return errNotEnoughUnlock
	}
	if err := r.userUnlocked.Set(env.Caller(), unlocked.Sub(unlocked, amount)); err != nil {
		return err
	}
	if err := r.totalUserUnlocked.Sub(amount); err != nil {
		return err
	}
	if err := env.SendValue(env.Caller(), amount); err != nil {
		return err
	}
	env.Log("GetbackCFX", "user", env.Caller(), "amount", amount)
	return nil
}

//
// Bridge hooks
//

func (r *ExchangeRoom) onlyBridge(env *xenv.Environment) error {
	bridge, err := r.bridge.Get()
	if err != nil {
		return err
	}
	if bridge != env.Caller() {
		return errNotBridge
	}
	return nil
}

// HandleCFXExchangeXCFX receives CFX from the bridge to pay the unlock queues.
func (r *ExchangeRoom) HandleCFXExchangeXCFX(env *xenv.Environment) error {
	if err := r.onlyBridge(env); err != nil {
		return err
	}
	if env.Value().Sign() == 0 {
		return errZeroAmount
	}
	if err := r.funded.Add(env.Value()); err != nil {
		return err
	}
	env.Log("HandleCFXexchangeXCFX", "value", env.Value())
	return nil
}

// HandleXCFXAdd returns the CFX deposited since the previous call.
func (r *ExchangeRoom) HandleXCFXAdd(env *xenv.Environment) (*big.Int, error) {
	if err := r.onlyBridge(env); err != nil {
		return nil, err
	}
	deposit, err := r.unsettledDeposit.Get()
	if err != nil {
		return nil, err
	}
	r.unsettledDeposit.Set(new(big.Int))
	env.Log("HandlexCFXadd", "value", deposit)
	return deposit, nil
}

// HandleUnstake returns the CFX queued for unlocking since the previous call.
func (r *ExchangeRoom) HandleUnstake(env *xenv.Environment) (*big.Int, error) {
	if err := r.onlyBridge(env); err != nil {
		return nil, err
	}
	unstake, err := r.unsettledUnstake.Get()
	if err != nil {
		return nil, err
	}
	r.unsettledUnstake.Set(new(big.Int))
	env.Log("HandleUnstake", "value", unstake)
	return unstake, nil
}

func (r *ExchangeRoom) SetXCFXValue(env *xenv.Environment, value *big.Int) error {
	if err := r.onlyBridge(env); err != nil {
		return err
	}
	if value.Sign() <= 0 {
		return errZeroPeg
	}
	r.xcfxValue.Set(value)
	env.Log("SetxCFXValue", "value", value)
	return nil
}

func (r *ExchangeRoom) SetLockedVotes(env *xenv.Environment, value *big.Int) error {
	if err := r.onlyBridge(env); err != nil {
		return err
	}
	if value.Sign() < 0 {
		return reverts.New(reverts.ValueMismatch, "locked votes should not be negative")
	}
	r.lockedVotes.Set(value)
	env.Log("Setlockedvotes", "value", value)
	return nil
}

//
// Admin setters
//

func (r *ExchangeRoom) SetLockPeriod(env *xenv.Environment, in, out uint64) error {
	if err := r.OnlyOwner(env); err != nil {
		return err
	}
	if err := r.lockIn.Set(in); err != nil {
		return err
	}
	if err := r.lockOut.Set(out); err != nil {
		return err
	}
	env.Log("SetLockPeriod", "lockIn", in, "lockOut", out)
	return nil
}

func (r *ExchangeRoom) SetMinExchangeLimits(env *xenv.Environment, limit *big.Int) error {
	if err := r.OnlyOwner(env); err != nil {
		return err
	}
	if limit.Sign() < 0 {
		return reverts.New(reverts.ValueMismatch, "limit should not be negative")
	}
	r.minExchange.Set(limit)
	env.Log("Setminexchangelimits", "limit", limit)
	return nil
}

func (r *ExchangeRoom) SetPoolName(env *xenv.Environment, name string) error {
	if err := r.OnlyOwner(env); err != nil {
		return err
	}
	if err := r.poolName.Set(name); err != nil {
		return err
	}
	env.Log("SetPoolName", "name", name)
	return nil
}

func (r *ExchangeRoom) setAddress(env *xenv.Environment, slot *solidity.Address, event string, addr cfx.Address) error {
	if err := r.OnlyOwner(env); err != nil {
		return err
	}
	if addr.IsZero() {
		return reverts.ErrZeroAddress
	}
	slot.Set(addr)
	env.Log(event, "address", addr)
	return nil
}

func (r *ExchangeRoom) SetBridge(env *xenv.Environment, addr cfx.Address) error {
	return r.setAddress(env, r.bridge, "SetBridge", addr)
}

func (r *ExchangeRoom) SetCoreExchange(env *xenv.Environment, addr cfx.Address) error {
	return r.setAddress(env, r.coreExchange, "SetCoreExchange", addr)
}

func (r *ExchangeRoom) SetStorageAddr(env *xenv.Environment, addr cfx.Address) error {
	return r.setAddress(env, r.storageAddr, "SetStorageaddr", addr)
}

func (r *ExchangeRoom) SetStorageBridge(env *xenv.Environment, addr cfx.Address) error {
	return r.setAddress(env, r.storageBridge, "SetstorageBridge", addr)
}

func (r *ExchangeRoom) SetXCFXAddr(env *xenv.Environment, addr cfx.Address) error {
	return r.setAddress(env, r.xcfx, "SetXCFXaddr", addr)
}

// Receive rejects plain value, CFX only enters through the exchange or the bridge.
func (r *ExchangeRoom) Receive(env *xenv.Environment) error {
	return reverts.New(reverts.Unknown, "exchange room does not accept plain transfers")
}

func toXCFX(value, peg *big.Int) *big.Int {
	v := new(big.Int).Mul(value, cfx.Ether)
	return v.Quo(v, peg)
}

func toCFX(amount, peg *big.Int) *big.Int {
	v := new(big.Int).Mul(amount, peg)
	return v.Quo(v, cfx.Ether)
}

// maturedAmount returns how many leading entries have matured at block number and their total.
func maturedAmount(entries []OutEntry, number uint64) (int, *big.Int) {
	total := new(big.Int)
	for i, e := range entries {
		if e.UnlockBlock >= number {
			return i, total
		}
		total.Add(total, e.Amount)
	}
	return len(entries), total
}
