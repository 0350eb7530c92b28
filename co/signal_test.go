// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nucleonfinance/xcfx/co"
)

func fired(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestSignal_BroadcastBeforeWait(t *testing.T) {
	var sig co.Signal
	w := sig.NewWaiter()
	sig.Broadcast()

	assert.True(t, fired(w.C()))
	// consumed, the next wait blocks until another broadcast
	ch := w.C()
	assert.False(t, fired(ch))
	sig.Broadcast()
	assert.True(t, fired(ch))
}

func TestSignal_BroadcastAfterWait(t *testing.T) {
	var sig co.Signal

	var ws []co.Waiter
	for range 10 {
		ws = append(ws, sig.NewWaiter())
	}
	var chs []<-chan struct{}
	for _, w := range ws {
		chs = append(chs, w.C())
	}
	for _, ch := range chs {
		assert.False(t, fired(ch))
	}

	sig.Broadcast()
	for _, ch := range chs {
		<-ch
	}
}

func TestSignal_Coalesced(t *testing.T) {
	var sig co.Signal
	w := sig.NewWaiter()
	sig.Broadcast()
	sig.Broadcast()
	sig.Broadcast()

	assert.True(t, fired(w.C()))
	assert.False(t, fired(w.C()))
}

func TestSignal_WaiterCreatedAfterBroadcast(t *testing.T) {
	var sig co.Signal
	sig.Broadcast()

	w := sig.NewWaiter()
	select {
	case <-w.C():
		t.Fatal("woken by an earlier broadcast")
	case <-time.After(10 * time.Millisecond):
	}
}
