// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import "github.com/nucleonfinance/xcfx/cfx"

type contract struct {
	name    string
	Address cfx.Address
}

func newContract(name, addr string) *contract {
	return &contract{
		name,
		cfx.MustParseAddress(addr),
	}
}

// Name returns the name of the builtin contract.
func (c *contract) Name() string {
	return c.name
}
