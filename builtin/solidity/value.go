// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/nucleonfinance/xcfx/cfx"
)

// Value stores a single rlp encoded variable, like a state variable of a contract.
type Value[T any] struct {
	context *Context
	pos     cfx.Bytes32
}

func NewValue[T any](context *Context, pos cfx.Bytes32) *Value[T] {
	return &Value[T]{context: context, pos: pos}
}

func (v *Value[T]) Get() (T, error) {
	return decodeSlot[T](v.context, v.pos)
}

func (v *Value[T]) Set(value T) error {
	return encodeSlot(v.context, v.pos, value)
}
