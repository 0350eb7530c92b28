// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bridge

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/nucleonfinance/xcfx/api/utils"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts"
	"github.com/nucleonfinance/xcfx/contracts/corebridge"
	"github.com/nucleonfinance/xcfx/log"
	"github.com/nucleonfinance/xcfx/runtime"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

var logger = log.WithContext("pkg", "bridge-api")

type Bridge struct {
	rt        *runtime.Runtime
	addr      cfx.Address
	allowSync bool
}

// New creates the bridge api. Without allowSync the sync endpoint responds 403,
// callers are not authenticated so it is only meant for solo mode.
func New(rt *runtime.Runtime, addr cfx.Address, allowSync bool) *Bridge {
	return &Bridge{rt, addr, allowSync}
}

func (b *Bridge) handleGetBridge(w http.ResponseWriter, _ *http.Request) error {
	var status *Status
	if err := b.rt.View(func(st *state.State, blk *xenv.BlockContext) error {
		br := contracts.Bridge(b.addr, st)
		settings, err := br.Settings()
		if err != nil {
			return err
		}
		totals, err := br.Totals()
		if err != nil {
			return err
		}
		pools, err := br.GetPoolAddress()
		if err != nil {
			return err
		}
		status = convertStatus(blk.Number, settings, totals, pools)
		// the live backing can only be computed once the exchange room is set
		if settings.Exroom.IsZero() {
			return nil
		}
		backing, votes, err := br.Backing(blk.Number + 1)
		if err != nil {
			return err
		}
		status.Live = &Live{Backing: utils.Big(backing), TotalVotes: votes}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, status)
}

func (b *Bridge) handleGetTrigger(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req)
	if err != nil {
		return err
	}
	var trusted bool
	if err := b.rt.View(func(st *state.State, _ *xenv.BlockContext) (err error) {
		trusted, err = contracts.Bridge(b.addr, st).GetTriggerState(addr)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Trigger{Address: addr, Trusted: trusted})
}

func (b *Bridge) handleSync(w http.ResponseWriter, req *http.Request) error {
	if !b.allowSync {
		return utils.Forbidden(errors.New("sync: not allowed"))
	}
	var body SyncRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Caller.IsZero() {
		return utils.BadRequest(errors.New("caller: required"))
	}
	receipt, err := b.rt.Exec(runtime.Clause{Caller: body.Caller, To: b.addr, Method: "bridge.sync"}, func(env *xenv.Environment) error {
		return corebridge.New(env.To(), env.State(), contracts.Binders{}).SyncALLwork(env)
	})
	if err != nil && receipt == nil {
		return err
	}
	if receipt.Reverted {
		logger.Debug("sync reverted", "caller", body.Caller, "reason", receipt.Reason)
	}
	return utils.WriteJSON(w, convertReceipt(receipt))
}

func (b *Bridge) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("bridge_get").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetBridge))
	sub.Path("/triggers/{address}").
		Methods(http.MethodGet).
		Name("bridge_get_trigger").
		HandlerFunc(utils.WrapHandlerFunc(b.handleGetTrigger))
	sub.Path("/sync").
		Methods(http.MethodPost).
		Name("bridge_sync").
		HandlerFunc(utils.WrapHandlerFunc(b.handleSync))
}
