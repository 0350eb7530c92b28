// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cfx

import "math/big"

// OneDayBlocks is the count of blocks produced in one day, at two blocks per second.
const OneDayBlocks uint64 = 2 * 3600 * 24

// constants of PoS staking.
const (
	OneVoteCFXCount      uint64 = 1000                 // cfx staked for one PoS vote
	DefaultLockInPeriod         = OneDayBlocks * 14    // blocks before staked votes are locked
	DefaultLockOutPeriod        = OneDayBlocks + 12520 // blocks before retired votes are unlocked
	MaxOutQueueLength           = 35                   // pending unlock entries per user
	DefaultPoolName             = "Nucleon Conflux Pos Pool 01"
)

var (
	// Drip is the smallest unit, 1 CFX = 1e18 drip.
	Drip = big.NewInt(1)
	// Ether is 1 CFX expressed in drip. Also the fixed-point unit of the peg.
	Ether = big.NewInt(1e18)
)

// CFX returns n CFX in drip.
func CFX(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Ether)
}

// VoteValue returns the drip value of votes when one vote costs count CFX.
func VoteValue(votes, count uint64) *big.Int {
	v := new(big.Int).SetUint64(votes)
	v.Mul(v, new(big.Int).SetUint64(count))
	return v.Mul(v, Ether)
}
