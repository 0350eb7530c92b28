// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/nucleonfinance/xcfx/api/utils"
	"github.com/nucleonfinance/xcfx/builtin"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts/xcfx"
	"github.com/nucleonfinance/xcfx/runtime"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

// Account for marshal account
type Account struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
	XCFX    *math.HexOrDecimal256 `json:"xcfx"`
	// balance held by addr as an eSpace account
	ESpaceBalance *math.HexOrDecimal256 `json:"eSpaceBalance"`
	MappedAddress cfx.Address           `json:"mappedAddress"`
	MappedBalance *math.HexOrDecimal256 `json:"mappedBalance"`
}

type Accounts struct {
	rt    *runtime.Runtime
	token cfx.Address
}

func New(rt *runtime.Runtime, token cfx.Address) *Accounts {
	return &Accounts{rt, token}
}

func (a *Accounts) getAccount(addr cfx.Address, st *state.State) (*Account, error) {
	balance, err := st.GetBalance(addr)
	if err != nil {
		return nil, err
	}
	xbal, err := xcfx.New(a.token, st).BalanceOf(addr)
	if err != nil {
		return nil, err
	}
	cs := builtin.CrossSpace.WithState(st)
	espace, err := cs.MappedBalance(addr)
	if err != nil {
		return nil, err
	}
	mappedAddr := builtin.CrossSpace.MappedAddressOf(addr)
	mapped, err := cs.MappedBalance(mappedAddr)
	if err != nil {
		return nil, err
	}
	return &Account{
		Balance:       utils.Big(balance),
		XCFX:          utils.Big(xbal),
		ESpaceBalance: utils.Big(espace),
		MappedAddress: mappedAddr,
		MappedBalance: utils.Big(mapped),
	}, nil
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req)
	if err != nil {
		return err
	}
	var acc *Account
	if err := a.rt.View(func(st *state.State, _ *xenv.BlockContext) (err error) {
		acc, err = a.getAccount(addr, st)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("accounts_get_account").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
