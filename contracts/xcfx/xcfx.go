// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package xcfx implements the xCFX token ledger. Only allowlisted minters may
// mint or burn.
package xcfx

import (
	"math/big"

	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/builtin/solidity"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts/access"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

const (
	Name     = "Nucleon xCFX"
	Symbol   = "xCFX"
	Decimals = 18
)

var (
	slotMinters     = solidity.Slot("xcfx.minters")
	slotBalances    = solidity.Slot("xcfx.balances")
	slotTotalSupply = solidity.Slot("xcfx.total-supply")

	errNotMinter            = reverts.New(reverts.AccessDenied, "caller is not a minter")
	errBurnExceedsBalance   = reverts.New(reverts.InsufficientBalance, "burn amount exceeds balance")
	errTransferExceedsFunds = reverts.New(reverts.InsufficientBalance, "transfer amount exceeds balance")
	errNegativeAmount       = reverts.New(reverts.ValueMismatch, "amount should not be negative")
)

// Token is the xCFX ledger.
type Token struct {
	*access.Ownable
	minters     *solidity.Mapping[cfx.Address, bool]
	balances    *solidity.Mapping[cfx.Address, *big.Int]
	totalSupply *solidity.Uint256
}

func New(addr cfx.Address, st *state.State) *Token {
	sctx := solidity.NewContext(addr, st)
	return &Token{
		Ownable:     access.NewOwnable(sctx),
		minters:     solidity.NewMapping[cfx.Address, bool](sctx, slotMinters),
		balances:    solidity.NewMapping[cfx.Address, *big.Int](sctx, slotBalances),
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
	}
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) BalanceOf(addr cfx.Address) (*big.Int, error) {
	return t.balances.Get(addr)
}

func (t *Token) IsMinter(addr cfx.Address) (bool, error) {
	return t.minters.Get(addr)
}

func (t *Token) AddMinter(env *xenv.Environment, minter cfx.Address) error {
	if err := t.OnlyOwner(env); err != nil {
		return err
	}
	if minter.IsZero() {
		return reverts.ErrZeroAddress
	}
	if err := t.minters.Set(minter, true); err != nil {
		return err
	}
	env.Log("MinterAdded", "minter", minter)
	return nil
}

func (t *Token) RemoveMinter(env *xenv.Environment, minter cfx.Address) error {
	if err := t.OnlyOwner(env); err != nil {
		return err
	}
	t.minters.Delete(minter)
	env.Log("MinterRemoved", "minter", minter)
	return nil
}

func (t *Token) onlyMinter(env *xenv.Environment) error {
	ok, err := t.minters.Get(env.Caller())
	if err != nil {
		return err
	}
	if !ok {
		return errNotMinter
	}
	return nil
}

func (t *Token) Mint(env *xenv.Environment, to cfx.Address, amount *big.Int) error {
	if err := t.onlyMinter(env); err != nil {
		return err
	}
	if to.IsZero() {
		return reverts.ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return errNegativeAmount
	}
	bal, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(to, bal.Add(bal, amount)); err != nil {
		return err
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	env.Log("Transfer", "from", cfx.Address{}, "to", to, "value", amount)
	return nil
}

func (t *Token) Burn(env *xenv.Environment, from cfx.Address, amount *big.Int) error {
	if err := t.onlyMinter(env); err != nil {
		return err
	}
	if amount.Sign() < 0 {
		return errNegativeAmount
	}
	bal, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return errBurnExceedsBalance
	}
	if err := t.balances.Set(from, bal.Sub(bal, amount)); err != nil {
		return err
	}
	if err := t.totalSupply.Sub(amount); err != nil {
		return err
	}
	env.Log("Transfer", "from", from, "to", cfx.Address{}, "value", amount)
	return nil
}

// Transfer moves amount of the caller's tokens to another account.
func (t *Token) Transfer(env *xenv.Environment, to cfx.Address, amount *big.Int) error {
	if to.IsZero() {
		return reverts.ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return errNegativeAmount
	}
	from := env.Caller()
	bal, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return errTransferExceedsFunds
	}
	if err := t.balances.Set(from, bal.Sub(bal, amount)); err != nil {
		return err
	}
	toBal, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	if err := t.balances.Set(to, toBal.Add(toBal, amount)); err != nil {
		return err
	}
	env.Log("Transfer", "from", from, "to", to, "value", amount)
	return nil
}
