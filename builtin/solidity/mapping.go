// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/nucleonfinance/xcfx/cfx"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Values are rlp encoded, an absent key decodes into the zero value of V.
type Mapping[K Key, V any] struct {
	context *Context
	basePos cfx.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos cfx.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) cfx.Bytes32 {
	return cfx.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	return decodeSlot[V](m.context, m.position(key))
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return encodeSlot(m.context, m.position(key), value)
}

// Delete clears the slot of key.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}

func decodeSlot[V any](ctx *Context, pos cfx.Bytes32) (value V, err error) {
	err = ctx.state.DecodeStorage(ctx.address, pos, func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func encodeSlot[V any](ctx *Context, pos cfx.Bytes32, value V) error {
	return ctx.state.EncodeStorage(ctx.address, pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
