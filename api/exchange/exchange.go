// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package exchange

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nucleonfinance/xcfx/api/utils"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts/exroom"
	"github.com/nucleonfinance/xcfx/runtime"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

type Exchange struct {
	rt   *runtime.Runtime
	room cfx.Address
}

func New(rt *runtime.Runtime, room cfx.Address) *Exchange {
	return &Exchange{rt, room}
}

func (e *Exchange) view(fn func(r *exroom.ExchangeRoom, blk *xenv.BlockContext) error) error {
	return e.rt.View(func(st *state.State, blk *xenv.BlockContext) error {
		return fn(exroom.New(e.room, st), blk)
	})
}

func (e *Exchange) handleGetRoom(w http.ResponseWriter, _ *http.Request) error {
	var room *Room
	if err := e.view(func(r *exroom.ExchangeRoom, _ *xenv.BlockContext) (err error) {
		room, err = convertRoom(r)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, room)
}

func (e *Exchange) handleGetUser(w http.ResponseWriter, req *http.Request) error {
	user, err := utils.AddressVar(req)
	if err != nil {
		return err
	}
	var u *User
	if err := e.view(func(r *exroom.ExchangeRoom, blk *xenv.BlockContext) error {
		// a queued entry is withdrawable once its unlock block has passed,
		// so the state is read as the next block will see it
		number := blk.Number + 1
		s, err := r.UserSummary(user, number)
		if err != nil {
			return err
		}
		finished, err := r.CollectOutqueuesFinishedVotes(user, number)
		if err != nil {
			return err
		}
		queue, err := r.UserOutQueue(user)
		if err != nil {
			return err
		}
		u = &User{
			Address:   user,
			Unlocking: utils.Big(s.Unlocking),
			Unlocked:  utils.Big(s.Unlocked),
			Finished:  utils.Big(finished),
			OutQueue:  make([]*OutEntry, 0, len(queue)),
		}
		for _, entry := range queue {
			u.OutQueue = append(u.OutQueue, &OutEntry{Amount: utils.Big(entry.Amount), UnlockBlock: entry.UnlockBlock})
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, u)
}

func (e *Exchange) handleEstimateExchange(w http.ResponseWriter, req *http.Request) error {
	value, err := utils.AmountQuery(req, "value")
	if err != nil {
		return err
	}
	var est *ExchangeEstimate
	if err := e.view(func(r *exroom.ExchangeRoom, _ *xenv.BlockContext) error {
		amount, err := r.CFXExchangeEstim(value)
		if err != nil {
			return err
		}
		est = &ExchangeEstimate{Value: utils.Big(value), XCFX: utils.Big(amount)}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, est)
}

func (e *Exchange) handleEstimateBurn(w http.ResponseWriter, req *http.Request) error {
	amount, err := utils.AmountQuery(req, "amount")
	if err != nil {
		return err
	}
	var est *BurnEstimate
	if err := e.view(func(r *exroom.ExchangeRoom, _ *xenv.BlockContext) error {
		value, wait, err := r.XCFXBurnEstim(amount)
		if err != nil {
			return err
		}
		est = &BurnEstimate{XCFX: utils.Big(amount), Value: utils.Big(value), WaitBlocks: wait}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, est)
}

func (e *Exchange) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("exroom_get").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetRoom))
	sub.Path("/users/{address}").
		Methods(http.MethodGet).
		Name("exroom_get_user").
		HandlerFunc(utils.WrapHandlerFunc(e.handleGetUser))
	sub.Path("/estimate/exchange").
		Methods(http.MethodGet).
		Name("exroom_estimate_exchange").
		HandlerFunc(utils.WrapHandlerFunc(e.handleEstimateExchange))
	sub.Path("/estimate/burn").
		Methods(http.MethodGet).
		Name("exroom_estimate_burn").
		HandlerFunc(utils.WrapHandlerFunc(e.handleEstimateBurn))
}
