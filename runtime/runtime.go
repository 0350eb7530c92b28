// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/binary"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/co"
	"github.com/nucleonfinance/xcfx/kv"
	"github.com/nucleonfinance/xcfx/log"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	metaBucket   = kv.Bucket("m")
	bestBlockKey = []byte("best-block")
)

// Clause is a top level call into a contract.
type Clause struct {
	Caller cfx.Address
	To     cfx.Address
	Value  *big.Int
	Method string
}

// Receipt is the outcome of an executed clause.
type Receipt struct {
	BlockNumber uint64
	Reverted    bool
	Reason      string
	Kind        reverts.Kind
	Events      []*xenv.Event
	Transfers   []*xenv.Transfer
}

// Runtime executes clauses against the state, one at a time.
// Every executed clause mines a new block.
type Runtime struct {
	mu        sync.Mutex
	state     *state.State
	receivers map[cfx.Address]xenv.ReceiveFunc
	number    uint64
	now       func() time.Time
	newBlock  co.Signal
}

// New creates a runtime at the given block number.
func New(st *state.State, blockNumber uint64) *Runtime {
	return &Runtime{
		state:     st,
		receivers: make(map[cfx.Address]xenv.ReceiveFunc),
		number:    blockNumber,
		now:       time.Now,
	}
}

// Bind installs the receive handler of a contract account.
func (rt *Runtime) Bind(addr cfx.Address, recv xenv.ReceiveFunc) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.receivers[addr] = recv
}

// Receiver implements xenv.Receivers.
func (rt *Runtime) Receiver(addr cfx.Address) (xenv.ReceiveFunc, bool) {
	recv, ok := rt.receivers[addr]
	return recv, ok
}

// BlockNumber returns the number of the latest block.
func (rt *Runtime) BlockNumber() uint64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.number
}

// Mine advances the chain by n empty blocks.
func (rt *Runtime) Mine(n uint64) uint64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.number += n
	if n > 0 {
		rt.newBlock.Broadcast()
	}
	return rt.number
}

// NewBlockWaiter returns a waiter woken whenever the chain advances.
func (rt *Runtime) NewBlockWaiter() co.Waiter {
	return rt.newBlock.NewWaiter()
}

func (rt *Runtime) blockContext() *xenv.BlockContext {
	return &xenv.BlockContext{Number: rt.number, Time: uint64(rt.now().Unix())}
}

// Exec runs fn as the clause in a new block. Any error reverts all changes made by the clause.
// Reverts are reported both in the receipt and as the returned error.
func (rt *Runtime) Exec(clause Clause, fn func(env *xenv.Environment) error) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	start := time.Now()
	rt.number++
	defer rt.newBlock.Broadcast()
	receipt := &Receipt{BlockNumber: rt.number}

	value := clause.Value
	if value == nil {
		value = new(big.Int)
	}

	checkpoint := rt.state.NewCheckpoint()
	err := func() error {
		if value.Sign() < 0 {
			return reverts.New(reverts.ValueMismatch, "negative value")
		}
		if value.Sign() > 0 {
			if err := rt.state.Transfer(clause.Caller, clause.To, value); err != nil {
				if errors.Is(err, state.ErrInsufficientBalance) {
					return reverts.New(reverts.InsufficientBalance, "insufficient balance for value")
				}
				return err
			}
		}
		env := xenv.New(rt.state, rt.blockContext(), rt, clause.Caller, clause.To, value)
		if err := fn(env); err != nil {
			return err
		}
		receipt.Events = env.Events()
		receipt.Transfers = env.Transfers()
		return nil
	}()
	metricCallDuration().Observe(time.Since(start).Milliseconds())

	if err != nil {
		rt.state.RevertTo(checkpoint)
		receipt.Reverted = true
		receipt.Reason = err.Error()
		receipt.Kind = reverts.KindOf(err)
		metricCalls().AddWithLabel(1, map[string]string{"method": clause.Method, "status": "reverted"})
		metricReverts().AddWithLabel(1, map[string]string{"kind": receipt.Kind.String()})
		logger.Debug("clause reverted", "method", clause.Method, "caller", clause.Caller, "reason", err)
		return receipt, err
	}
	metricCalls().AddWithLabel(1, map[string]string{"method": clause.Method, "status": "ok"})
	logger.Debug("clause executed", "method", clause.Method, "caller", clause.Caller, "block", rt.number)
	return receipt, nil
}

// View runs fn with read access to the state at the latest block.
// Changes made by fn are discarded.
func (rt *Runtime) View(fn func(st *state.State, blk *xenv.BlockContext) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)
	return fn(rt.state, rt.blockContext())
}

// Genesis applies fn to the state directly, outside of any clause.
func (rt *Runtime) Genesis(fn func(st *state.State) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return fn(rt.state)
}

// Commit flushes state changes into store, along with the latest block number.
func (rt *Runtime) Commit(store kv.Store) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	n, err := rt.state.Commit(store)
	if err != nil {
		return err
	}
	var enc [8]byte
	binary.BigEndian.PutUint64(enc[:], rt.number)
	if err := metaBucket.NewPutter(store).Put(bestBlockKey, enc[:]); err != nil {
		return errors.Wrap(err, "put best block")
	}
	logger.Debug("state committed", "block", rt.number, "keys", n)
	return nil
}

// LoadBlockNumber reads the block number saved by the last Commit.
// ok is false if nothing was committed yet.
func LoadBlockNumber(db kv.Getter) (number uint64, ok bool, err error) {
	data, err := metaBucket.NewGetter(db).Get(bestBlockKey)
	if err != nil {
		if db.IsNotFound(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrap(err, "get best block")
	}
	if len(data) != 8 {
		return 0, false, errors.Errorf("corrupted best block %x", data)
	}
	return binary.BigEndian.Uint64(data), true, nil
}
