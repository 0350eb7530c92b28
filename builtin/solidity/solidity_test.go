// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/test/datagen"
)

type TestStruct struct {
	Field1 uint64
	Field2 *big.Int
	Addr1  cfx.Address
	Bytes1 cfx.Bytes32
}

func newTestContext() *Context {
	return NewContext(cfx.Address{1}, state.New(nil))
}

func TestUint256(t *testing.T) {
	u := NewUint256(newTestContext(), Slot("total"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, u.Add(big.NewInt(10)))
	require.NoError(t, u.Sub(big.NewInt(4)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(6), v)

	assert.Error(t, u.Sub(big.NewInt(7)))
}

func TestAddress(t *testing.T) {
	a := NewAddress(newTestContext(), Slot("owner"))
	addr, err := a.Get()
	require.NoError(t, err)
	assert.True(t, addr.IsZero())

	want := datagen.RandAddress()
	a.Set(want)
	addr, err = a.Get()
	require.NoError(t, err)
	assert.Equal(t, want, addr)
}

func TestValue(t *testing.T) {
	ctx := newTestContext()
	name := NewValue[string](ctx, Slot("name"))
	flag := NewValue[bool](ctx, Slot("flag"))

	v, err := name.Get()
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, name.Set("pool"))
	require.NoError(t, flag.Set(true))

	v, err = name.Get()
	require.NoError(t, err)
	assert.Equal(t, "pool", v)

	f, err := flag.Get()
	require.NoError(t, err)
	assert.True(t, f)
}

func TestMapping(t *testing.T) {
	m := NewMapping[cfx.Address, *TestStruct](newTestContext(), Slot("structs"))
	key := datagen.RandAddress()

	empty, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Equal(t, uint64(0), empty.Field1)

	want := &TestStruct{Field1: 100, Field2: big.NewInt(200), Addr1: datagen.RandAddress(), Bytes1: datagen.RandomHash()}
	require.NoError(t, m.Set(key, want))

	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	m.Delete(key)
	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got.Field1)
}

func TestQueue(t *testing.T) {
	q := NewQueue[uint64](newTestContext(), Slot("queue"))

	_, err := q.Pop()
	assert.Error(t, err)
	_, ok, err := q.Last()
	require.NoError(t, err)
	assert.False(t, ok)

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, q.Push(i*10))
	}

	n, err := q.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	last, ok, err := q.Last()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(30), last)

	v, err := q.Pop()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v)

	v, err = q.At(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), v)
	_, err = q.At(2)
	assert.Error(t, err)

	items, err := q.Items()
	require.NoError(t, err)
	assert.Equal(t, []uint64{20, 30}, items)

	_, _ = q.Pop()
	_, _ = q.Pop()
	n, err = q.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), n)

	require.NoError(t, q.Push(40))
	items, err = q.Items()
	require.NoError(t, err)
	assert.Equal(t, []uint64{40}, items)
}

func TestAddressSet(t *testing.T) {
	s := NewAddressSet(newTestContext(), Slot("pools"))
	a, b, c, d := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()

	for _, addr := range []cfx.Address{a, b, c} {
		added, err := s.Add(addr)
		require.NoError(t, err)
		assert.True(t, added)
	}
	added, err := s.Add(b)
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := s.Remove(a)
	require.NoError(t, err)
	assert.True(t, removed)

	members, err := s.Members()
	require.NoError(t, err)
	assert.Equal(t, []cfx.Address{c, b}, members)

	removed, err = s.Remove(a)
	require.NoError(t, err)
	assert.False(t, removed)

	replaced, err := s.Replace(c, d)
	require.NoError(t, err)
	assert.True(t, replaced)
	replaced, err = s.Replace(c, d)
	require.NoError(t, err)
	assert.False(t, replaced)

	members, err = s.Members()
	require.NoError(t, err)
	assert.Equal(t, []cfx.Address{d, b}, members)

	ok, err := s.Contains(c)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)
}
