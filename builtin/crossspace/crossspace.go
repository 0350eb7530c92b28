// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package crossspace implements the relay moving native value between the core
// space and the EVM compatible space (eSpace). Every core address owns a mapped
// eSpace account; value credited to that account can be withdrawn by the owner.
package crossspace

import (
	"math/big"

	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/builtin/solidity"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

var slotBalances = solidity.Slot("crossspace.balances")

// CrossSpace implements native methods of the relay.
type CrossSpace struct {
	balances *solidity.Mapping[cfx.Address, *big.Int]
}

func New(addr cfx.Address, st *state.State) *CrossSpace {
	sctx := solidity.NewContext(addr, st)
	return &CrossSpace{balances: solidity.NewMapping[cfx.Address, *big.Int](sctx, slotBalances)}
}

// MappedAddressOf returns the eSpace account mapped to a core address.
func MappedAddressOf(addr cfx.Address) cfx.Address {
	h := cfx.Blake2b([]byte("mapped"), addr.Bytes())
	return cfx.BytesToAddress(h[12:])
}

// MappedBalance returns the balance of an eSpace account.
func (c *CrossSpace) MappedBalance(addr cfx.Address) (*big.Int, error) {
	return c.balances.Get(addr)
}

// TransferValue credits the call value to an eSpace account.
func (c *CrossSpace) TransferValue(env *xenv.Environment, target cfx.Address) error {
	if target.IsZero() {
		return reverts.ErrZeroAddress
	}
	if env.Value().Sign() == 0 {
		return reverts.New(reverts.ValueMismatch, "value should be greater than 0")
	}
	bal, err := c.balances.Get(target)
	if err != nil {
		return err
	}
	if err := c.balances.Set(target, bal.Add(bal, env.Value())); err != nil {
		return err
	}
	env.Log("TransferValue", "from", env.Caller(), "to", target, "value", env.Value())
	return nil
}

// WithdrawMapped moves amount from the caller's mapped eSpace account back to the caller.
func (c *CrossSpace) WithdrawMapped(env *xenv.Environment, amount *big.Int) error {
	mapped := MappedAddressOf(env.Caller())
	bal, err := c.balances.Get(mapped)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.New(reverts.InsufficientBalance, "insufficient mapped balance")
	}
	if err := c.balances.Set(mapped, bal.Sub(bal, amount)); err != nil {
		return err
	}
	if err := env.Transfer(env.Caller(), amount); err != nil {
		return err
	}
	env.Log("WithdrawFromMapped", "from", mapped, "to", env.Caller(), "value", amount)
	return nil
}
