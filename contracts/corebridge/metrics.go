// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package corebridge

import (
	"math/big"

	"github.com/nucleonfinance/xcfx/metrics"
)

var (
	metricTotalVotes  = metrics.LazyLoadGauge("bridge_total_votes")
	metricBackingCFX  = metrics.LazyLoadGauge("bridge_backing_cfx")
	metricXCFXValueGD = metrics.LazyLoadGauge("bridge_xcfx_value_gdrip")
)

var gdrip = big.NewInt(1e9)

func reportSync(totalVotes uint64, backing, peg *big.Int) {
	metricTotalVotes().Set(int64(totalVotes))
	if backing.Sign() > 0 {
		metricBackingCFX().Set(new(big.Int).Quo(backing, big.NewInt(1e18)).Int64())
	}
	if peg != nil {
		metricXCFXValueGD().Set(new(big.Int).Quo(peg, gdrip).Int64())
	}
}
