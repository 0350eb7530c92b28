// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package config loads the YAML description of a local xCFX deployment.
package config

import (
	"bytes"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nucleonfinance/xcfx/builtin"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/contracts"
	"github.com/nucleonfinance/xcfx/state"
)

// Amount is a CFX amount. It is written in CFX with up to 18 decimals, e.g. "1000" or "0.5".
type Amount struct {
	*big.Int
}

// NewAmount returns the amount of drip.
func NewAmount(drip *big.Int) Amount {
	return Amount{new(big.Int).Set(drip)}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	v, err := ParseCFX(string(text))
	if err != nil {
		return err
	}
	a.Int = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) {
	if a.Int == nil {
		return []byte("0"), nil
	}
	return []byte(FormatCFX(a.Int)), nil
}

// Drip returns the amount in drip, nil if unset.
func (a Amount) Drip() *big.Int {
	if a.Int == nil {
		return nil
	}
	return new(big.Int).Set(a.Int)
}

// ParseCFX parses a decimal CFX string into drip.
func ParseCFX(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" || strings.HasPrefix(whole, "-") || len(frac) > 18 {
		return nil, errors.Errorf("invalid CFX amount %q", s)
	}
	digits := whole + frac + strings.Repeat("0", 18-len(frac))
	v, ok := math.ParseBig256(strings.TrimLeft(digits, "0"))
	if !ok {
		return nil, errors.Errorf("invalid CFX amount %q", s)
	}
	return v, nil
}

// FormatCFX formats drip as a decimal CFX string.
func FormatCFX(drip *big.Int) string {
	q, r := new(big.Int).QuoRem(drip, cfx.Ether, new(big.Int))
	if r.Sign() == 0 {
		return q.String()
	}
	frac := strings.TrimRight(strings.Repeat("0", 18-len(r.String()))+r.String(), "0")
	return q.String() + "." + frac
}

// Account is a genesis funded account.
type Account struct {
	Address cfx.Address `yaml:"address"`
	Balance Amount      `yaml:"balance"`
}

// Lock is a pair of lock periods in blocks.
type Lock struct {
	In  uint64 `yaml:"in"`
	Out uint64 `yaml:"out"`
}

// Exroom configures the exchange room.
type Exroom struct {
	Seed        Amount `yaml:"seed"`
	Lock        *Lock  `yaml:"lock"`
	MinExchange Amount `yaml:"minExchange"`
}

// Pool configures one staking pool.
type Pool struct {
	Name  string `yaml:"name"`
	Votes uint64 `yaml:"votes"`
	Lock  *Lock  `yaml:"lock"`
}

// Solo configures the local block producer.
type Solo struct {
	BlockInterval time.Duration `yaml:"blockInterval"`
	SyncInterval  uint64        `yaml:"syncInterval"`
	// Interest paid to every registered pool each block, simulating staking rewards.
	InterestPerBlock Amount `yaml:"interestPerBlock"`
}

// Config is the description of a local deployment.
type Config struct {
	Owner             cfx.Address   `yaml:"owner"`
	Triggers          []cfx.Address `yaml:"triggers"`
	Treasury          cfx.Address   `yaml:"treasury"`
	UnlockPeriod      uint64        `yaml:"unlockPeriod"`
	CfxCountOfOneVote uint64        `yaml:"cfxCountOfOneVote"`
	ShareRatio        uint64        `yaml:"poolUserShareRatio"`
	Accounts          []Account     `yaml:"accounts"`
	Exroom            Exroom        `yaml:"exroom"`
	Pools             []Pool        `yaml:"pools"`
	Solo              Solo          `yaml:"solo"`
}

const (
	defaultBlockInterval = 500 * time.Millisecond
	defaultSyncInterval  = 20
)

// Default returns the config used when no file is given: the owner triggers the sync
// and runs one pool of one vote with short lock periods.
func Default() *Config {
	owner := cfx.BytesToAddress(cfx.Blake2b([]byte("xcfx-solo-owner")).Bytes()[12:])
	short := &Lock{In: 20, Out: 40}
	return &Config{
		Owner:        owner,
		Triggers:     []cfx.Address{owner},
		UnlockPeriod: 30,
		Accounts:     []Account{{Address: owner, Balance: NewAmount(cfx.CFX(1_000_000_000))}},
		Exroom:       Exroom{Seed: NewAmount(cfx.CFX(1000)), Lock: short},
		Pools:        []Pool{{Votes: 1, Lock: short}},
		Solo: Solo{
			BlockInterval: defaultBlockInterval,
			SyncInterval:  defaultSyncInterval,
		},
	}
}

// Load reads and validates the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes and validates a YAML config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if cfg.Solo.BlockInterval == 0 {
		cfg.Solo.BlockInterval = defaultBlockInterval
	}
	if cfg.Solo.SyncInterval == 0 {
		cfg.Solo.SyncInterval = defaultSyncInterval
	}
	// the owner drives the sync when no trigger is given
	if len(cfg.Triggers) == 0 && !cfg.Owner.IsZero() {
		cfg.Triggers = []cfx.Address{cfg.Owner}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the parts of the config the contracts would otherwise reject at deploy time.
func (c *Config) Validate() error {
	if c.Owner.IsZero() {
		return errors.New("owner is required")
	}
	if c.UnlockPeriod == 0 {
		return errors.New("unlockPeriod should be greater than 0")
	}
	if c.ShareRatio > 100 {
		return errors.Errorf("poolUserShareRatio %d exceeds 100", c.ShareRatio)
	}
	if c.CfxCountOfOneVote != 0 && c.CfxCountOfOneVote != cfx.OneVoteCFXCount {
		return errors.Errorf("cfxCountOfOneVote should be %d", cfx.OneVoteCFXCount)
	}
	for i, t := range c.Triggers {
		if t.IsZero() {
			return errors.Errorf("trigger %d is the zero address", i)
		}
	}
	if c.Exroom.Seed.Int != nil && c.Exroom.Seed.Sign() == 0 {
		return errors.New("exroom seed should be greater than 0")
	}
	for i, p := range c.Pools {
		if p.Votes == 0 {
			return errors.Errorf("pool %d: Minimal votePower is 1", i)
		}
	}
	funded := false
	for _, a := range c.Accounts {
		if a.Address == c.Owner && a.Balance.Int != nil && a.Balance.Cmp(c.deployCost()) >= 0 {
			funded = true
		}
	}
	if !funded {
		return errors.Errorf("owner should be funded with at least %s CFX", FormatCFX(c.deployCost()))
	}
	return nil
}

// deployCost is what the owner pays to deploy: the exchange room seed and the pool registrations.
func (c *Config) deployCost() *big.Int {
	cost := c.Exroom.Seed.Drip()
	if cost == nil {
		cost = cfx.CFX(1)
	}
	for _, p := range c.Pools {
		cost.Add(cost, cfx.VoteValue(p.Votes, cfx.OneVoteCFXCount))
	}
	return cost
}

func (l *Lock) periods() *contracts.LockPeriods {
	if l == nil {
		return nil
	}
	return &contracts.LockPeriods{In: l.In, Out: l.Out}
}

// Params returns the deployment params described by the config.
func (c *Config) Params() *contracts.Params {
	p := &contracts.Params{
		Owner:             c.Owner,
		Triggers:          append([]cfx.Address(nil), c.Triggers...),
		Treasury:          c.Treasury,
		CfxCountOfOneVote: c.CfxCountOfOneVote,
		ShareRatio:        c.ShareRatio,
		ExroomSeed:        c.Exroom.Seed.Drip(),
		ExroomLock:        c.Exroom.Lock.periods(),
		MinExchange:       c.Exroom.MinExchange.Drip(),
	}
	for _, pool := range c.Pools {
		p.Pools = append(p.Pools, contracts.PoolParams{
			Name:  pool.Name,
			Votes: pool.Votes,
			Lock:  pool.Lock.periods(),
		})
	}
	return p
}

// Genesis funds the configured accounts and configures the staking registry.
func (c *Config) Genesis(st *state.State) error {
	for _, a := range c.Accounts {
		if a.Balance.Int == nil {
			continue
		}
		if err := st.AddBalance(a.Address, a.Balance.Int); err != nil {
			return err
		}
	}
	return builtin.Registry.WithState(st).Configure(c.UnlockPeriod)
}
