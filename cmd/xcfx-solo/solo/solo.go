// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"context"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/nucleonfinance/xcfx/builtin"
	"github.com/nucleonfinance/xcfx/cfx"
	"github.com/nucleonfinance/xcfx/co"
	"github.com/nucleonfinance/xcfx/contracts"
	"github.com/nucleonfinance/xcfx/contracts/corebridge"
	"github.com/nucleonfinance/xcfx/kv"
	"github.com/nucleonfinance/xcfx/log"
	"github.com/nucleonfinance/xcfx/metrics"
	"github.com/nucleonfinance/xcfx/runtime"
	"github.com/nucleonfinance/xcfx/xenv"
)

var (
	logger = log.WithContext("pkg", "solo")

	metricBestBlock = metrics.LazyLoadGauge("solo_best_block")
	metricSyncs     = metrics.LazyLoadCounterVec("solo_sync_count", []string{"status"})
)

type Options struct {
	BlockInterval time.Duration
	// SyncInterval is the count of blocks between two syncs.
	SyncInterval uint64
	Trigger      cfx.Address
	// Funder pays InterestPerBlock to every pool of the deployment.
	Funder           cfx.Address
	InterestPerBlock *big.Int
}

// Solo mode produces blocks locally and drives the bridge like an off-chain trigger would.
type Solo struct {
	rt       *runtime.Runtime
	store    kv.Store
	d        *contracts.Deployment
	options  Options
	lastSync atomic.Uint64
}

// New returns Solo instance. A nil store disables commits.
func New(rt *runtime.Runtime, store kv.Store, d *contracts.Deployment, options Options) *Solo {
	return &Solo{
		rt:      rt,
		store:   store,
		d:       d,
		options: options,
	}
}

// Run produces blocks until ctx is done, then commits the state.
func (s *Solo) Run(ctx context.Context) error {
	var goes co.Goes

	logger.Info("prepared to pack block", "interval", s.options.BlockInterval, "sync-interval", s.options.SyncInterval)

	goes.Every(ctx, s.options.BlockInterval, func() {
		if err := s.Pack(); err != nil {
			logger.Error("failed to pack block", "err", err)
		}
	})
	goes.Go(func() {
		s.syncLoop(ctx)
	})

	<-ctx.Done()
	logger.Info("stopping interval packing service......")
	goes.Wait()
	return s.commit()
}

func (s *Solo) syncLoop(ctx context.Context) {
	waiter := s.rt.NewBlockWaiter()
	for {
		select {
		case <-ctx.Done():
			return
		case <-waiter.C():
			if s.rt.BlockNumber()-s.lastSync.Load() < s.options.SyncInterval {
				continue
			}
			if _, err := s.Sync(); err != nil {
				logger.Warn("sync failed", "err", err)
			}
		}
	}
}

// Pack produces the next block, paying the simulated interest if configured, and commits.
func (s *Solo) Pack() error {
	accrued := false
	if s.options.InterestPerBlock != nil && s.options.InterestPerBlock.Sign() > 0 {
		for _, pool := range s.d.Pools {
			if err := s.accrue(pool); err != nil {
				logger.Warn("failed to accrue interest", "pool", pool, "err", err)
				continue
			}
			accrued = true
		}
	}
	if !accrued {
		s.rt.Mine(1)
	}
	return s.commit()
}

func (s *Solo) accrue(pool cfx.Address) error {
	_, err := s.rt.Exec(runtime.Clause{
		Caller: s.options.Funder,
		To:     builtin.Registry.Address,
		Value:  s.options.InterestPerBlock,
		Method: "registry.accrue",
	}, func(env *xenv.Environment) error {
		return builtin.Registry.WithState(env.State()).AccrueInterest(env, pool)
	})
	return err
}

// Sync calls syncALLwork on the bridge as the trigger. It is safe to call while Run is active.
func (s *Solo) Sync() (*runtime.Receipt, error) {
	receipt, err := s.rt.Exec(runtime.Clause{
		Caller: s.options.Trigger,
		To:     s.d.Bridge,
		Method: "bridge.sync",
	}, func(env *xenv.Environment) error {
		return corebridge.New(env.To(), env.State(), contracts.Binders{}).SyncALLwork(env)
	})
	// a reverted sync is not retried before the next interval
	s.lastSync.Store(receipt.BlockNumber)
	if err != nil {
		metricSyncs().AddWithLabel(1, map[string]string{"status": "reverted"})
		return receipt, err
	}
	metricSyncs().AddWithLabel(1, map[string]string{"status": "ok"})
	logger.Debug("synced", "block", receipt.BlockNumber, "events", len(receipt.Events))
	return receipt, nil
}

func (s *Solo) commit() error {
	number := s.rt.BlockNumber()
	metricBestBlock().Set(int64(number))
	if s.store == nil {
		return nil
	}
	return s.rt.Commit(s.store)
}
