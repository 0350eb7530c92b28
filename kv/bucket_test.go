// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleonfinance/xcfx/kv"
	"github.com/nucleonfinance/xcfx/lvldb"
)

func TestBucket(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	b1, b2 := kv.Bucket("b1"), kv.Bucket("b2")

	require.NoError(t, b1.NewPutter(db).Put([]byte("k"), []byte("v1")))
	require.NoError(t, b2.NewPutter(db).Put([]byte("k"), []byte("v2")))

	v, err := b1.NewGetter(db).Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), v)

	v, err = db.Get([]byte("b2k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), v)

	require.NoError(t, b1.NewPutter(db).Delete([]byte("k")))
	_, err = b1.NewGetter(db).Get([]byte("k"))
	assert.True(t, db.IsNotFound(err))

	has, err := b2.NewGetter(db).Has([]byte("k"))
	require.NoError(t, err)
	assert.True(t, has)
}
