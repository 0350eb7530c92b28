// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package config

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nucleonfinance/xcfx/builtin"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts"
	"github.com/nucleonfinance/xcfx/runtime"
	"github.com/nucleonfinance/xcfx/state"
	"github.com/nucleonfinance/xcfx/xenv"
)

const sample = `
owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed
triggers:
  - 0xd3ae78222beadb038203be21ed5ce7c9b1bff602
treasury: 0x733b7269443c70de16bbf9b0615307884bcc5636
unlockPeriod: 10
cfxCountOfOneVote: 1000
poolUserShareRatio: 90
accounts:
  - address: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed
    balance: 1000000
  - address: 0xd3ae78222beadb038203be21ed5ce7c9b1bff602
    balance: 0.5
exroom:
  seed: 1000
  lock: {in: 5, out: 10}
  minExchange: 0.1
pools:
  - name: pool one
    votes: 2
    lock: {in: 5, out: 10}
  - votes: 1
solo:
  blockInterval: 2s
  syncInterval: 7
  interestPerBlock: 0.001
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	owner := cfx.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.Equal(t, owner, cfg.Owner)
	assert.Equal(t, []cfx.Address{cfx.MustParseAddress("0xd3ae78222beadb038203be21ed5ce7c9b1bff602")}, cfg.Triggers)
	assert.Equal(t, uint64(10), cfg.UnlockPeriod)
	assert.Equal(t, 0, cfx.CFX(1_000_000).Cmp(cfg.Accounts[0].Balance.Int))
	assert.Equal(t, "500000000000000000", cfg.Accounts[1].Balance.String())
	assert.Equal(t, 2*time.Second, cfg.Solo.BlockInterval)
	assert.Equal(t, uint64(7), cfg.Solo.SyncInterval)
	assert.Equal(t, "1000000000000000", cfg.Solo.InterestPerBlock.String())

	p := cfg.Params()
	assert.Equal(t, owner, p.Owner)
	assert.Equal(t, uint64(90), p.ShareRatio)
	assert.Equal(t, &contracts.LockPeriods{In: 5, Out: 10}, p.ExroomLock)
	assert.Equal(t, "100000000000000000", p.MinExchange.String())
	require.Len(t, p.Pools, 2)
	assert.Equal(t, contracts.PoolParams{Name: "pool one", Votes: 2, Lock: &contracts.LockPeriods{In: 5, Out: 10}}, p.Pools[0])
	assert.Nil(t, p.Pools[1].Lock)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed
unlockPeriod: 1
accounts:
  - address: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed
    balance: 1
`))
	require.NoError(t, err)
	assert.Equal(t, defaultBlockInterval, cfg.Solo.BlockInterval)
	assert.Equal(t, uint64(defaultSyncInterval), cfg.Solo.SyncInterval)
	assert.Nil(t, cfg.Params().ExroomSeed)
	assert.Nil(t, cfg.Params().MinExchange)
	assert.Equal(t, []cfx.Address{cfg.Owner}, cfg.Triggers)
}

func TestParseErrors(t *testing.T) {
	funded := `
accounts:
  - address: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed
    balance: 5000
`
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed\nunlockPeriod: 1\nfoo: 1" + funded},
		{"no owner", "unlockPeriod: 1" + funded},
		{"bad address", "owner: 0x1234\nunlockPeriod: 1" + funded},
		{"no unlock period", "owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed" + funded},
		{"ratio", "owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed\nunlockPeriod: 1\npoolUserShareRatio: 101" + funded},
		{"vote count", "owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed\nunlockPeriod: 1\ncfxCountOfOneVote: 100" + funded},
		{"zero votes", "owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed\nunlockPeriod: 1\npools: [{votes: 0}]" + funded},
		{"zero seed", "owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed\nunlockPeriod: 1\nexroom: {seed: 0}" + funded},
		{"bad amount", "owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed\nunlockPeriod: 1\nexroom: {seed: abc}" + funded},
		{"unfunded", "owner: 0x7567d83b7b8d80addcb281a71d54fc7b3364ffed\nunlockPeriod: 1\npools: [{votes: 5}]" + funded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseCFX(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"0", "0", true},
		{"1", "1000000000000000000", true},
		{"1000", "1000000000000000000000", true},
		{"0.5", "500000000000000000", true},
		{"1.000000000000000001", "1000000000000000001", true},
		{" 2.25 ", "2250000000000000000", true},
		{"", "", false},
		{".5", "", false},
		{"-1", "", false},
		{"1.0000000000000000001", "", false},
		{"1e3", "", false},
		{"0x10", "", false},
	}
	for _, tt := range tests {
		got, err := ParseCFX(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got.String(), tt.in)
		assert.Zero(t, got.Cmp(mustParse(t, FormatCFX(got))), tt.in)
	}
	assert.Equal(t, "1.5", FormatCFX(big.NewInt(15e17)))
	assert.Equal(t, "0.000000000000000001", FormatCFX(big.NewInt(1)))
}

func mustParse(t *testing.T, s string) *big.Int {
	v, err := ParseCFX(s)
	require.NoError(t, err)
	return v
}

func TestAmountYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		A Amount `yaml:"a"`
	}{NewAmount(big.NewInt(25e17))})
	require.NoError(t, err)
	assert.Equal(t, "a: \"2.5\"\n", string(out))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Pools, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultDeploys(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	rt := runtime.New(state.New(nil), 0)
	require.NoError(t, rt.Genesis(cfg.Genesis))
	d, err := contracts.Deploy(rt, cfg.Params())
	require.NoError(t, err)
	require.Len(t, d.Pools, 1)

	require.NoError(t, rt.View(func(st *state.State, _ *xenv.BlockContext) error {
		period, err := builtin.Registry.WithState(st).UnlockPeriod()
		require.NoError(t, err)
		assert.Equal(t, cfg.UnlockPeriod, period)
		return nil
	}))
}
