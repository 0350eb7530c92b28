// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"
	"slices"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/nucleonfinance/xcfx/api/utils"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts"
	"github.com/nucleonfinance/xcfx/contracts/pospool"
	"github.com/nucleonfinance/xcfx/runtime"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

// Pool for marshal the state of a staking pool
type Pool struct {
	Address           cfx.Address           `json:"address"`
	Name              string                `json:"name"`
	Registered        bool                  `json:"registered"`
	TotalVotes        uint64                `json:"totalVotes"`
	Locking           uint64                `json:"locking"`
	Locked            uint64                `json:"locked"`
	Unlocking         uint64                `json:"unlocking"`
	Unlocked          uint64                `json:"unlocked"`
	UnclaimedInterest *math.HexOrDecimal256 `json:"unclaimedInterest"`
	ClaimedInterest   *math.HexOrDecimal256 `json:"claimedInterest"`
	LockIn            uint64                `json:"lockIn"`
	LockOut           uint64                `json:"lockOut"`
	InQueue           []*QueueEntry         `json:"inQueue,omitempty"`
	OutQueue          []*QueueEntry         `json:"outQueue,omitempty"`
}

type QueueEntry struct {
	Votes    uint64 `json:"votes"`
	EndBlock uint64 `json:"endBlock"`
}

type Pools struct {
	rt     *runtime.Runtime
	bridge cfx.Address
}

// New creates the pools api serving the pool set of the bridge.
func New(rt *runtime.Runtime, bridge cfx.Address) *Pools {
	return &Pools{rt, bridge}
}

func convertPool(addr cfx.Address, st *state.State, number uint64, withQueues bool) (*Pool, error) {
	p := pospool.New(addr, st)
	s, err := p.Summary(number)
	if err != nil {
		return nil, err
	}
	name, err := p.PoolName()
	if err != nil {
		return nil, err
	}
	registered, err := p.Registered()
	if err != nil {
		return nil, err
	}
	in, out, err := p.LockPeriods()
	if err != nil {
		return nil, err
	}
	pool := &Pool{
		Address:           addr,
		Name:              name,
		Registered:        registered,
		TotalVotes:        s.Total,
		Locking:           s.Locking,
		Locked:            s.Locked,
		Unlocking:         s.Unlocking,
		Unlocked:          s.Unlocked,
		UnclaimedInterest: utils.Big(s.UnclaimedInterest),
		ClaimedInterest:   utils.Big(s.ClaimedInterest),
		LockIn:            in,
		LockOut:           out,
	}
	if !withQueues {
		return pool, nil
	}
	if pool.InQueue, err = convertQueue(p.InQueue); err != nil {
		return nil, err
	}
	if pool.OutQueue, err = convertQueue(p.OutQueue); err != nil {
		return nil, err
	}
	return pool, nil
}

func convertQueue(items func() ([]pospool.QueueEntry, error)) ([]*QueueEntry, error) {
	entries, err := items()
	if err != nil {
		return nil, err
	}
	out := make([]*QueueEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, &QueueEntry{Votes: e.Votes, EndBlock: e.EndBlock})
	}
	return out, nil
}

func (p *Pools) handleGetPools(w http.ResponseWriter, _ *http.Request) error {
	var list []*Pool
	if err := p.rt.View(func(st *state.State, blk *xenv.BlockContext) error {
		addrs, err := contracts.Bridge(p.bridge, st).GetPoolAddress()
		if err != nil {
			return err
		}
		list = make([]*Pool, 0, len(addrs))
		for _, addr := range addrs {
			pool, err := convertPool(addr, st, blk.Number+1, false)
			if err != nil {
				return errors.WithMessagef(err, "pool %v", addr)
			}
			list = append(list, pool)
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, list)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(req)
	if err != nil {
		return err
	}
	var pool *Pool
	if err := p.rt.View(func(st *state.State, blk *xenv.BlockContext) error {
		addrs, err := contracts.Bridge(p.bridge, st).GetPoolAddress()
		if err != nil {
			return err
		}
		if !slices.Contains(addrs, addr) {
			return utils.NotFound(errors.New("pool: not in the pool set"))
		}
		pool, err = convertPool(addr, st, blk.Number+1, true)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, pool)
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("pools_get").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPools))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("pools_get_pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
}
