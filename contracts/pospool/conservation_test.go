// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pospool

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

type poolOp struct {
	Kind  uint8
	Votes uint8
	Mine  uint8
}

func TestVoteConservation(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		var ops []poolOp
		fuzz.NewWithSeed(seed).NilChance(0).NumElements(40, 80).Fuzz(&ops)

		tp := newTestPool(t, 3, 5)
		tp.register(1)

		for i, op := range ops {
			votes := uint64(op.Votes % 4)
			switch op.Kind % 5 {
			case 0:
				_ = tp.exec(bridge, votesValue(votes), increase(votes))
			case 1:
				_ = tp.exec(bridge, nil, decrease(votes))
			case 2:
				_ = tp.exec(bridge, nil, withdraw)
			case 3:
				accrue(tp, cfx.CFX(int64(votes)+1))
				_ = tp.exec(bridge, nil, claim)
			case 4:
				_ = tp.exec(owner, nil, func(p *Pool, env *xenv.Environment) error { return p.ReStake(env, votes) })
			}
			tp.rt.Mine(uint64(op.Mine % 4))

			s := tp.summary()
			require.Equal(t, s.Total, s.Locking+s.Locked+s.Unlocking+s.Unlocked, "seed %d op %d", seed, i)

			tp.view(func(p *Pool, st *state.State, _ uint64) error {
				held, err := p.held.Get()
				require.NoError(t, err)
				bal, err := st.GetBalance(poolAddr)
				require.NoError(t, err)
				assert.True(t, bal.Cmp(held) >= 0, "seed %d op %d: principal exceeds balance", seed, i)
				return nil
			})
		}
	}
}
