// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package bridge

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/nucleonfinance/xcfx/api/utils"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts/corebridge"
	"github.com/nucleonfinance/xcfx/runtime"
	"github.com/nucleonfinance/xcfx/xenv"
)

type Settings struct {
	Exroom             cfx.Address `json:"exroom"`
	XCFX               cfx.Address `json:"xcfx"`
	ESpaceExroom       cfx.Address `json:"eSpaceExroom"`
	ESpaceXCFX         cfx.Address `json:"eSpaceXcfx"`
	ESpaceBridge       cfx.Address `json:"eSpaceBridge"`
	Treasury           cfx.Address `json:"treasury"`
	CfxCountOfOneVote  uint64      `json:"cfxCountOfOneVote"`
	PoolUserShareRatio uint64      `json:"poolUserShareRatio"`
}

// Totals are the figures cached by the last sync.
type Totals struct {
	TotalVotes   uint64                `json:"totalVotes"`
	Backing      *math.HexOrDecimal256 `json:"backing"`
	XCFXValue    *math.HexOrDecimal256 `json:"xcfxValue"`
	SyncBlock    uint64                `json:"syncBlock"`
	Income       *math.HexOrDecimal256 `json:"income"`
	TreasuryPaid *math.HexOrDecimal256 `json:"treasuryPaid"`
}

// Live is the backing as the next sync would compute it.
type Live struct {
	Backing    *math.HexOrDecimal256 `json:"backing"`
	TotalVotes uint64                `json:"totalVotes"`
}

type Status struct {
	BlockNumber uint64        `json:"blockNumber"`
	Pools       []cfx.Address `json:"pools"`
	Settings    *Settings     `json:"settings"`
	Totals      *Totals       `json:"totals"`
	Live        *Live         `json:"live,omitempty"`
}

type Trigger struct {
	Address cfx.Address `json:"address"`
	Trusted bool        `json:"trusted"`
}

type SyncRequest struct {
	Caller cfx.Address `json:"caller"`
}

type Event struct {
	Address cfx.Address    `json:"address"`
	Name    string         `json:"name"`
	Args    map[string]any `json:"args,omitempty"`
}

type Receipt struct {
	BlockNumber uint64   `json:"blockNumber"`
	Reverted    bool     `json:"reverted"`
	Reason      string   `json:"reason,omitempty"`
	Events      []*Event `json:"events"`
}

func convertStatus(number uint64, s *corebridge.Settings, t *corebridge.Totals, pools []cfx.Address) *Status {
	if pools == nil {
		pools = []cfx.Address{}
	}
	return &Status{
		BlockNumber: number,
		Pools:       pools,
		Settings: &Settings{
			Exroom:             s.Exroom,
			XCFX:               s.XCFX,
			ESpaceExroom:       s.ESpaceExroom,
			ESpaceXCFX:         s.ESpaceXCFX,
			ESpaceBridge:       s.ESpaceBridge,
			Treasury:           s.Treasury,
			CfxCountOfOneVote:  s.CfxCountOfOneVote,
			PoolUserShareRatio: s.ShareRatio,
		},
		Totals: &Totals{
			TotalVotes:   t.TotalVotes,
			Backing:      utils.Big(t.Backing),
			XCFXValue:    utils.Big(t.XCFXValue),
			SyncBlock:    t.SyncBlock,
			Income:       utils.Big(t.Income),
			TreasuryPaid: utils.Big(t.TreasuryPaid),
		},
	}
}

func convertEvent(e *xenv.Event) *Event {
	ev := &Event{Address: e.Address, Name: e.Name}
	for i := 0; i+1 < len(e.Args); i += 2 {
		if ev.Args == nil {
			ev.Args = make(map[string]any)
		}
		key := fmt.Sprint(e.Args[i])
		switch v := e.Args[i+1].(type) {
		case *big.Int:
			ev.Args[key] = utils.Big(v)
		default:
			ev.Args[key] = v
		}
	}
	return ev
}

func convertReceipt(r *runtime.Receipt) *Receipt {
	out := &Receipt{
		BlockNumber: r.BlockNumber,
		Reverted:    r.Reverted,
		Reason:      r.Reason,
		Events:      make([]*Event, 0, len(r.Events)),
	}
	for _, e := range r.Events {
		out.Events = append(out.Events, convertEvent(e))
	}
	return out
}
