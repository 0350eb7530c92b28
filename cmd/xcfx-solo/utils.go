// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/nucleonfinance/xcfx/config"
	"github.com/nucleonfinance/xcfx/contracts"
	"github.com/nucleonfinance/xcfx/kv"
	"github.com/nucleonfinance/xcfx/log"
	"github.com/nucleonfinance/xcfx/lvldb"
	"github.com/nucleonfinance/xcfx/runtime"
	"github.com/nucleonfinance/xcfx/state"
)

func initLogger(ctx *cli.Context) {
	useColor := isatty.IsTerminal(os.Stderr.Fd()) && os.Getenv("TERM") != "dumb"
	log.Init(os.Stderr, int(ctx.Uint64(verbosityFlag.Name)), useColor)
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if ctx.IsSet(blockIntervalFlag.Name) {
		cfg.Solo.BlockInterval = ctx.Duration(blockIntervalFlag.Name)
	}
	if ctx.IsSet(syncIntervalFlag.Name) {
		cfg.Solo.SyncInterval = ctx.Uint64(syncIntervalFlag.Name)
	}
	if cfg.Solo.BlockInterval <= 0 {
		return nil, errors.New("block interval must be positive")
	}
	if cfg.Solo.SyncInterval == 0 {
		return nil, errors.New("sync interval must be positive")
	}
	return cfg, nil
}

func openStateDB(ctx *cli.Context) (*lvldb.LevelDB, string, error) {
	dataDir := ctx.String(dataDirFlag.Name)
	if dataDir == "" {
		db, err := lvldb.NewMem()
		return db, "Memory", err
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, "", errors.Wrapf(err, "create data dir [%v]", dataDir)
	}
	dir := filepath.Join(dataDir, "state.db")
	db, err := lvldb.New(dir, lvldb.Options{})
	if err != nil {
		return nil, "", errors.Wrapf(err, "open state database [%v]", dir)
	}
	return db, dir, nil
}

// initRuntime resumes the chain saved in db, or builds the genesis and deploys the contracts
// if db is empty.
func initRuntime(db kv.Store, cfg *config.Config) (*runtime.Runtime, *contracts.Deployment, error) {
	number, ok, err := runtime.LoadBlockNumber(db)
	if err != nil {
		return nil, nil, err
	}
	rt := runtime.New(state.New(db), number)
	if ok {
		d := contracts.NewDeployment(cfg.Params())
		d.Bind(rt)
		log.Info("resumed chain", "block", number)
		return rt, d, nil
	}

	if err := rt.Genesis(cfg.Genesis); err != nil {
		return nil, nil, errors.WithMessage(err, "genesis")
	}
	d, err := contracts.Deploy(rt, cfg.Params())
	if err != nil {
		return nil, nil, errors.WithMessage(err, "deploy")
	}
	if err := rt.Commit(db); err != nil {
		return nil, nil, errors.WithMessage(err, "commit genesis")
	}
	log.Info("deployed contracts", "block", rt.BlockNumber(), "bridge", d.Bridge)
	return rt, d, nil
}

func printStartupMessage(cfg *config.Config, d *contracts.Deployment, dataDir, apiURL, metricsURL, adminURL string) {
	pools := ""
	for i, p := range d.Pools {
		if i > 0 {
			pools += ", "
		}
		pools += p.String()
	}
	fmt.Printf(`Starting %v
    Owner          [ %v ]
    Trigger        [ %v ]
    xCFX           [ %v ]
    Exchange room  [ %v ]
    Bridge         [ %v ]
    Pools          [ %v ]
    Block interval [ %v ] sync every %v blocks
    Data dir       [ %v ]
    API portal     [ %v ]
    Metrics        [ %v ]
    Admin          [ %v ]
`,
		fullVersion(),
		cfg.Owner,
		cfg.Triggers[0],
		d.Token,
		d.Exroom,
		d.Bridge,
		pools,
		cfg.Solo.BlockInterval, cfg.Solo.SyncInterval,
		dataDir,
		apiURL,
		orDisabled(metricsURL),
		orDisabled(adminURL),
	)
}

func orDisabled(url string) string {
	if url == "" {
		return "Disabled"
	}
	return url
}
