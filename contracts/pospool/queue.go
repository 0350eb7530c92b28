// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pospool

import "github.com/nucleonfinance/xcfx/builtin/solidity"

// QueueEntry is a batch of votes waiting for EndBlock to pass.
type QueueEntry struct {
	Votes    uint64
	EndBlock uint64
}

// Matured returns how many leading entries have matured at block number and their total votes.
// Entries are ordered by EndBlock, so the scan stops at the first pending one.
func Matured(entries []QueueEntry, number uint64) (n int, votes uint64) {
	for _, e := range entries {
		if e.EndBlock >= number {
			break
		}
		n++
		votes += e.Votes
	}
	return
}

// enqueue appends votes maturing period blocks after number. EndBlock never goes
// below the one of the tail so the queue stays ordered when the period is shortened.
func enqueue(q *solidity.Queue[QueueEntry], votes, number, period uint64) error {
	end := number + period
	tail, ok, err := q.Last()
	if err != nil {
		return err
	}
	if ok && tail.EndBlock > end {
		end = tail.EndBlock
	}
	return q.Push(QueueEntry{Votes: votes, EndBlock: end})
}

// dequeue pops the matured entries and returns their total votes.
func dequeue(q *solidity.Queue[QueueEntry], number uint64) (uint64, error) {
	var votes uint64
	for {
		n, err := q.Len()
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return votes, nil
		}
		head, err := q.At(0)
		if err != nil {
			return 0, err
		}
		if head.EndBlock >= number {
			return votes, nil
		}
		if _, err := q.Pop(); err != nil {
			return 0, err
		}
		votes += head.Votes
	}
}
