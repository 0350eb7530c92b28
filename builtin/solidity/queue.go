// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/pkg/errors"

	"github.com/nucleonfinance/xcfx/cfx"
)

// Queue is a FIFO list in storage. Items live at [head, tail) and keep their index until popped.
type Queue[V any] struct {
	head  *Value[uint64]
	tail  *Value[uint64]
	items *Mapping[cfx.Bytes32, V]
}

func NewQueue[V any](context *Context, pos cfx.Bytes32) *Queue[V] {
	return &Queue[V]{
		head:  NewValue[uint64](context, cfx.Blake2b(pos.Bytes(), []byte("head"))),
		tail:  NewValue[uint64](context, cfx.Blake2b(pos.Bytes(), []byte("tail"))),
		items: NewMapping[cfx.Bytes32, V](context, pos),
	}
}

func (q *Queue[V]) bounds() (head, tail uint64, err error) {
	if head, err = q.head.Get(); err != nil {
		return
	}
	tail, err = q.tail.Get()
	return
}

// Len returns the count of queued items.
func (q *Queue[V]) Len() (uint64, error) {
	head, tail, err := q.bounds()
	if err != nil {
		return 0, err
	}
	return tail - head, nil
}

// Push appends value at the tail.
func (q *Queue[V]) Push(value V) error {
	tail, err := q.tail.Get()
	if err != nil {
		return err
	}
	if err := q.items.Set(cfx.Uint64ToBytes32(tail), value); err != nil {
		return err
	}
	return q.tail.Set(tail + 1)
}

// At returns the i-th item counted from the head.
func (q *Queue[V]) At(i uint64) (value V, err error) {
	head, tail, err := q.bounds()
	if err != nil {
		return value, err
	}
	if head+i >= tail {
		return value, errors.Errorf("queue index out of range: %d", i)
	}
	return q.items.Get(cfx.Uint64ToBytes32(head + i))
}

// Last returns the item at the tail, ok is false for an empty queue.
func (q *Queue[V]) Last() (value V, ok bool, err error) {
	head, tail, err := q.bounds()
	if err != nil || head == tail {
		return value, false, err
	}
	value, err = q.items.Get(cfx.Uint64ToBytes32(tail - 1))
	return value, err == nil, err
}

// Pop removes and returns the item at the head.
func (q *Queue[V]) Pop() (value V, err error) {
	head, tail, err := q.bounds()
	if err != nil {
		return value, err
	}
	if head == tail {
		return value, errors.New("pop on empty queue")
	}
	key := cfx.Uint64ToBytes32(head)
	if value, err = q.items.Get(key); err != nil {
		return value, err
	}
	q.items.Delete(key)
	if head+1 == tail {
		// reset indexes once drained
		if err := q.tail.Set(0); err != nil {
			return value, err
		}
		return value, q.head.Set(0)
	}
	return value, q.head.Set(head + 1)
}

// Items returns all queued items from head to tail.
func (q *Queue[V]) Items() ([]V, error) {
	head, tail, err := q.bounds()
	if err != nil {
		return nil, err
	}
	items := make([]V, 0, tail-head)
	for i := head; i < tail; i++ {
		v, err := q.items.Get(cfx.Uint64ToBytes32(i))
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}
