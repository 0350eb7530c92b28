// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucleonfinance/xcfx/builtin/reverts"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

var (
	registryAddr = cfx.BytesToAddress([]byte("registry"))
	pool         = cfx.BytesToAddress([]byte("pool"))
	rewarder     = cfx.BytesToAddress([]byte("rewarder"))
	identifier   = cfx.Blake2b([]byte("pool identifier"))
	proof        = []byte("proof")
)

type fixture struct {
	st       *state.State
	registry *Registry
}

func newFixture(t *testing.T, unlockPeriod uint64) *fixture {
	st := state.New(nil)
	st.SetBalance(pool, cfx.CFX(100_000))
	st.SetBalance(rewarder, cfx.CFX(100_000))

	r := New(registryAddr, st)
	require.NoError(t, r.Configure(unlockPeriod))
	return &fixture{st: st, registry: r}
}

// call runs fn as a call of caller into the registry, value attached, at block number.
func (f *fixture) call(caller cfx.Address, value *big.Int, number uint64, fn func(env *xenv.Environment) error) error {
	root := xenv.New(f.st, &xenv.BlockContext{Number: number}, nil, cfx.Address{}, caller, nil)
	return root.Call(registryAddr, value, fn)
}

func (f *fixture) register(t *testing.T, votes uint64) {
	require.NoError(t, f.call(pool, votesValue(votes), 1, func(env *xenv.Environment) error {
		return f.registry.RegisterPool(env, identifier, votes, []byte("bls"), []byte("vrf"), proof)
	}))
}

func votesValue(votes uint64) *big.Int {
	return new(big.Int).Mul(UnitPrice, new(big.Int).SetUint64(votes))
}

func TestRegisterPool(t *testing.T) {
	tests := []struct {
		name  string
		id    cfx.Bytes32
		votes uint64
		value *big.Int
		proof []byte
		kind  reverts.Kind
	}{
		{"empty identifier", cfx.Bytes32{}, 1, votesValue(1), proof, reverts.InvalidAddress},
		{"missing proof", identifier, 1, votesValue(1), nil, reverts.ValueMismatch},
		{"zero votes", identifier, 0, new(big.Int), proof, reverts.ValueMismatch},
		{"value mismatch", identifier, 2, votesValue(1), proof, reverts.ValueMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 0)
			err := f.call(pool, tt.value, 1, func(env *xenv.Environment) error {
				return f.registry.RegisterPool(env, tt.id, tt.votes, nil, nil, tt.proof)
			})
			assert.Equal(t, tt.kind, reverts.KindOf(err))
		})
	}

	f := newFixture(t, 0)
	f.register(t, 2)

	s, err := f.registry.Get(pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Votes)
	assert.Equal(t, identifier, s.Identifier)

	total, err := f.registry.TotalVotes()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), total)

	err = f.call(pool, votesValue(1), 2, func(env *xenv.Environment) error {
		return f.registry.RegisterPool(env, identifier, 1, nil, nil, proof)
	})
	assert.Equal(t, reverts.AlreadyInitialized, reverts.KindOf(err))

	other := cfx.BytesToAddress([]byte("other"))
	f.st.SetBalance(other, votesValue(1))
	err = f.call(other, votesValue(1), 2, func(env *xenv.Environment) error {
		return f.registry.RegisterPool(env, identifier, 1, nil, nil, proof)
	})
	assert.EqualError(t, err, "identifier is already used")
}

func TestStakeLifecycle(t *testing.T) {
	f := newFixture(t, 10)
	f.register(t, 1)

	require.NoError(t, f.call(pool, votesValue(3), 2, func(env *xenv.Environment) error {
		return f.registry.IncreaseStake(env, 3)
	}))
	err := f.call(pool, nil, 3, func(env *xenv.Environment) error {
		return f.registry.RetireStake(env, 5)
	})
	assert.Equal(t, errInsufficientVotes, err)

	require.NoError(t, f.call(pool, nil, 3, func(env *xenv.Environment) error {
		return f.registry.RetireStake(env, 3)
	}))
	unlocking, err := f.registry.Unlocking(pool)
	require.NoError(t, err)
	assert.Equal(t, []Unlocking{{Votes: 3, EndBlock: 13}}, unlocking)

	// not matured
	var got *big.Int
	require.NoError(t, f.call(pool, nil, 13, func(env *xenv.Environment) error {
		got, err = f.registry.WithdrawStake(env)
		return err
	}))
	assert.Equal(t, 0, got.Sign())

	before, err := f.st.GetBalance(pool)
	require.NoError(t, err)
	require.NoError(t, f.call(pool, nil, 14, func(env *xenv.Environment) error {
		got, err = f.registry.WithdrawStake(env)
		return err
	}))
	assert.Equal(t, votesValue(3), got)

	after, err := f.st.GetBalance(pool)
	require.NoError(t, err)
	assert.Equal(t, votesValue(3), new(big.Int).Sub(after, before))

	s, err := f.registry.Get(pool)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), s.Votes)
	unlocking, err = f.registry.Unlocking(pool)
	require.NoError(t, err)
	assert.Empty(t, unlocking)
}

func TestInterest(t *testing.T) {
	f := newFixture(t, 0)

	err := f.call(rewarder, cfx.CFX(5), 1, func(env *xenv.Environment) error {
		return f.registry.AccrueInterest(env, pool)
	})
	assert.Equal(t, errNotRegistered, err)

	f.register(t, 1)
	require.NoError(t, f.call(rewarder, cfx.CFX(5), 2, func(env *xenv.Environment) error {
		return f.registry.AccrueInterest(env, pool)
	}))
	pending, err := f.registry.Interest(pool)
	require.NoError(t, err)
	assert.Equal(t, cfx.CFX(5), pending)

	var claimed *big.Int
	require.NoError(t, f.call(pool, nil, 3, func(env *xenv.Environment) error {
		claimed, err = f.registry.ClaimInterest(env)
		return err
	}))
	assert.Equal(t, cfx.CFX(5), claimed)

	pending, err = f.registry.Interest(pool)
	require.NoError(t, err)
	assert.Equal(t, 0, pending.Sign())

	// nothing left
	require.NoError(t, f.call(pool, nil, 4, func(env *xenv.Environment) error {
		claimed, err = f.registry.ClaimInterest(env)
		return err
	}))
	assert.Equal(t, 0, claimed.Sign())
}

func TestCheckVoteCount(t *testing.T) {
	assert.NoError(t, CheckVoteCount(cfx.OneVoteCFXCount))
	for _, count := range []uint64{0, 1, 100, cfx.OneVoteCFXCount + 1} {
		assert.Equal(t, ErrVoteCount, CheckVoteCount(count), count)
	}
}
