// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/nucleonfinance/xcfx/metrics"

var (
	metricCalls        = metrics.LazyLoadCounterVec("contract_calls_count", []string{"method", "status"})
	metricReverts      = metrics.LazyLoadCounterVec("contract_reverts_count", []string{"kind"})
	metricCallDuration = metrics.LazyLoadHistogram("contract_call_duration_ms", metrics.Bucket10s)
)
