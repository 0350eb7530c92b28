// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/state"
)

// MaxCallDepth limits nesting of contract calls.
const MaxCallDepth = 64

var (
	errCallDepth    = reverts.New(reverts.Unknown, "max call depth exceeded")
	errInsufficient = reverts.New(reverts.InsufficientBalance, "insufficient balance for transfer")
)

// BlockContext block context.
type BlockContext struct {
	Number uint64
	Time   uint64
}

// Event is a log emitted by a contract.
// Args are key/value pairs.
type Event struct {
	Address cfx.Address
	Name    string
	Args    []any
}

// Arg returns the value logged under key.
func (e *Event) Arg(key string) any {
	for i := 0; i+1 < len(e.Args); i += 2 {
		if k, ok := e.Args[i].(string); ok && k == key {
			return e.Args[i+1]
		}
	}
	return nil
}

// Transfer is a native value movement.
type Transfer struct {
	Sender    cfx.Address
	Recipient cfx.Address
	Amount    *big.Int
}

// ReceiveFunc handles plain value sent to a contract account.
// Returning an error rejects the value.
type ReceiveFunc func(env *Environment) error

// Receivers resolves the receive handler of an account.
type Receivers interface {
	Receiver(addr cfx.Address) (ReceiveFunc, bool)
}

type output struct {
	events    []*Event
	transfers []*Transfer
}

// Environment an env to execute native method.
type Environment struct {
	state     *state.State
	blockCtx  *BlockContext
	receivers Receivers
	caller    cfx.Address
	to        cfx.Address
	value     *big.Int
	depth     int
	out       *output
}

// New create a new env for a top level call. Value is expected to be already moved to 'to'.
func New(
	state *state.State,
	blockCtx *BlockContext,
	receivers Receivers,
	caller cfx.Address,
	to cfx.Address,
	value *big.Int,
) *Environment {
	if value == nil {
		value = new(big.Int)
	}
	return &Environment{
		state:     state,
		blockCtx:  blockCtx,
		receivers: receivers,
		caller:    caller,
		to:        to,
		value:     value,
		out:       &output{},
	}
}

func (env *Environment) State() *state.State         { return env.state }
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }
func (env *Environment) Caller() cfx.Address         { return env.caller }
func (env *Environment) To() cfx.Address             { return env.to }
func (env *Environment) Value() *big.Int             { return new(big.Int).Set(env.value) }
func (env *Environment) Events() []*Event            { return env.out.events }
func (env *Environment) Transfers() []*Transfer      { return env.out.transfers }

// Log emits an event of the executing contract.
func (env *Environment) Log(name string, args ...any) {
	env.out.events = append(env.out.events, &Event{Address: env.to, Name: name, Args: args})
}

// Balance returns the native balance of the executing contract.
func (env *Environment) Balance() (*big.Int, error) {
	return env.state.GetBalance(env.to)
}

// Call runs fn as the contract 'to', called by the executing contract with value attached.
// State changes and events made by a failed call are reverted.
func (env *Environment) Call(to cfx.Address, value *big.Int, fn func(sub *Environment) error) error {
	if env.depth+1 > MaxCallDepth {
		return errCallDepth
	}
	if value == nil {
		value = new(big.Int)
	}

	checkpoint := env.state.NewCheckpoint()
	nEvents, nTransfers := len(env.out.events), len(env.out.transfers)
	revert := func() {
		env.state.RevertTo(checkpoint)
		env.out.events = env.out.events[:nEvents]
		env.out.transfers = env.out.transfers[:nTransfers]
	}

	if value.Sign() > 0 {
		if err := env.state.Transfer(env.to, to, value); err != nil {
			revert()
			if errors.Is(err, state.ErrInsufficientBalance) {
				return errInsufficient
			}
			return err
		}
		env.out.transfers = append(env.out.transfers, &Transfer{Sender: env.to, Recipient: to, Amount: new(big.Int).Set(value)})
	}

	sub := &Environment{
		state:     env.state,
		blockCtx:  env.blockCtx,
		receivers: env.receivers,
		caller:    env.to,
		to:        to,
		value:     value,
		depth:     env.depth + 1,
		out:       env.out,
	}
	if err := fn(sub); err != nil {
		revert()
		return err
	}
	return nil
}

// Transfer sends plain value to an account, running its receive handler if any.
func (env *Environment) Transfer(to cfx.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	return env.Call(to, amount, func(sub *Environment) error {
		if env.receivers == nil {
			return nil
		}
		if recv, ok := env.receivers.Receiver(to); ok {
			return recv(sub)
		}
		return nil
	})
}

// SendValue is Transfer with any rejection reported as a failed transfer.
// Errors not caused by a revert are passed through.
func (env *Environment) SendValue(to cfx.Address, amount *big.Int) error {
	if err := env.Transfer(to, amount); err != nil {
		if reverts.IsRevertErr(err) {
			return reverts.ErrTransferFailed
		}
		return err
	}
	return nil
}
