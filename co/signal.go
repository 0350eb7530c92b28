// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Waiter provides a channel that is closed on the next broadcast.
type Waiter interface {
	C() <-chan struct{}
}

// Signal announces an event to every goroutine waiting on it. Unlike sync.Cond
// it is channel based, so waiting can be combined with other cases in a select.
type Signal struct {
	l  sync.Mutex
	ch chan struct{}
}

func (s *Signal) current() chan struct{} {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
	return s.ch
}

// Broadcast wakes all goroutines waiting on s.
func (s *Signal) Broadcast() {
	s.l.Lock()
	defer s.l.Unlock()

	close(s.current())
	s.ch = make(chan struct{})
}

// NewWaiter creates a Waiter. The first C catches a broadcast made after NewWaiter,
// later calls wait for the broadcast after the previous channel fired.
// Broadcasts made in between are coalesced.
func (s *Signal) NewWaiter() Waiter {
	s.l.Lock()
	defer s.l.Unlock()
	return &waiter{s: s, ref: s.current()}
}

type waiter struct {
	s        *Signal
	ref      chan struct{}
	returned bool
}

func (w *waiter) C() <-chan struct{} {
	w.s.l.Lock()
	defer w.s.l.Unlock()

	if w.returned {
		w.ref = w.s.current()
	}
	w.returned = true
	return w.ref
}
