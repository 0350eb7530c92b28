// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"
	mathrand "math/rand/v2"

	"github.com/nucleonfinance/xcfx/cfx"
)

func RandomHash() cfx.Bytes32 {
	var b32 cfx.Bytes32

	rand.Read(b32[:])
	return b32
}

func RandAddress() (addr cfx.Address) {
	rand.Read(addr[:])
	return
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}
