// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package exchange

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/nucleonfinance/xcfx/api/utils"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts/exroom"
)

// Room for marshal the exchange room state
type Room struct {
	PoolName         string                `json:"poolName"`
	XCFX             cfx.Address           `json:"xcfx"`
	Bridge           cfx.Address           `json:"bridge"`
	XCFXValue        *math.HexOrDecimal256 `json:"xcfxValue"`
	TotalXCFX        *math.HexOrDecimal256 `json:"totalXcfx"`
	LockedVotes      *math.HexOrDecimal256 `json:"lockedVotes"`
	Unlocking        *math.HexOrDecimal256 `json:"unlocking"`
	Unlocked         *math.HexOrDecimal256 `json:"unlocked"`
	Funded           *math.HexOrDecimal256 `json:"funded"`
	Obligations      *math.HexOrDecimal256 `json:"obligations"`
	LockedValue      *math.HexOrDecimal256 `json:"lockedValue"`
	MinExchangeLimit *math.HexOrDecimal256 `json:"minExchangeLimit"`
	LockIn           uint64                `json:"lockIn"`
	LockOut          uint64                `json:"lockOut"`
}

type OutEntry struct {
	Amount      *math.HexOrDecimal256 `json:"amount"`
	UnlockBlock uint64                `json:"unlockBlock"`
}

type User struct {
	Address   cfx.Address           `json:"address"`
	Unlocking *math.HexOrDecimal256 `json:"unlocking"`
	Unlocked  *math.HexOrDecimal256 `json:"unlocked"`
	Finished  *math.HexOrDecimal256 `json:"finished"`
	OutQueue  []*OutEntry           `json:"outQueue"`
}

type ExchangeEstimate struct {
	Value *math.HexOrDecimal256 `json:"value"`
	XCFX  *math.HexOrDecimal256 `json:"xcfx"`
}

type BurnEstimate struct {
	XCFX       *math.HexOrDecimal256 `json:"xcfx"`
	Value      *math.HexOrDecimal256 `json:"value"`
	WaitBlocks uint64                `json:"waitBlocks"`
}

func convertRoom(r *exroom.ExchangeRoom) (*Room, error) {
	settings, err := r.Settings()
	if err != nil {
		return nil, err
	}
	s, err := r.Summary()
	if err != nil {
		return nil, err
	}
	obligations, err := r.Obligations()
	if err != nil {
		return nil, err
	}
	locked, err := r.LockedValue()
	if err != nil {
		return nil, err
	}
	limit, err := r.MinExchangeLimit()
	if err != nil {
		return nil, err
	}
	in, out, err := r.LockPeriods()
	if err != nil {
		return nil, err
	}
	return &Room{
		PoolName:         settings.PoolName,
		XCFX:             settings.XCFX,
		Bridge:           settings.Bridge,
		XCFXValue:        utils.Big(s.XCFXValue),
		TotalXCFX:        utils.Big(s.TotalXCFX),
		LockedVotes:      utils.Big(s.LockedVotes),
		Unlocking:        utils.Big(s.Unlocking),
		Unlocked:         utils.Big(s.Unlocked),
		Funded:           utils.Big(s.Funded),
		Obligations:      utils.Big(obligations),
		LockedValue:      utils.Big(locked),
		MinExchangeLimit: utils.Big(limit),
		LockIn:           in,
		LockOut:          out,
	}, nil
}
