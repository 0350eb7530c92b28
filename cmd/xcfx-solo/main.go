// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/nucleonfinance/xcfx/api"
	"github.com/nucleonfinance/xcfx/api/admin/loglevel"
	"github.com/nucleonfinance/xcfx/cmd/xcfx-solo/httpserver"
	"github.com/nucleonfinance/xcfx/cmd/xcfx-solo/solo"
	"github.com/nucleonfinance/xcfx/log"
	"github.com/nucleonfinance/xcfx/metrics"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "xcfx-solo",
		Usage:   "Local chain running the xCFX liquid staking contracts, for test & dev",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiSlowQueriesThresholdFlag,
			enableAPILogsFlag,
			apiSyncFlag,
			blockIntervalFlag,
			syncIntervalFlag,
			verbosityFlag,
			pprofFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: soloAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func soloAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	initLogger(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return errors.WithMessage(err, "config")
	}

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := httpserver.StartMetricsServer(ctx.String(metricsAddrFlag.Name))
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping metrics server..."); closeFunc() }()
		metricsURL = url
	}

	db, dataDir, err := openStateDB(ctx)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing state database..."); db.Close() }()

	rt, d, err := initRuntime(db, cfg)
	if err != nil {
		return err
	}

	apiLogs := &atomic.Bool{}
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		url, closeFunc, err := httpserver.StartAdminServer(ctx.String(adminAddrFlag.Name), loglevel.Root{}, apiLogs)
		if err != nil {
			return err
		}
		defer func() { log.Info("stopping admin server..."); closeFunc() }()
		adminURL = url
	}

	apiURL, closeAPI, err := httpserver.StartAPIServer(ctx.String(apiAddrFlag.Name), rt, d, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		Version:              version,
		PprofOn:              ctx.Bool(pprofFlag.Name),
		EnableMetrics:        ctx.Bool(enableMetricsFlag.Name),
		AllowSync:            ctx.Bool(apiSyncFlag.Name),
		EnableReqLogger:      apiLogs,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
	})
	if err != nil {
		return err
	}
	defer func() { log.Info("stopping API server..."); closeAPI() }()

	printStartupMessage(cfg, d, dataDir, apiURL, metricsURL, adminURL)

	return solo.New(rt, db, d, solo.Options{
		BlockInterval:    cfg.Solo.BlockInterval,
		SyncInterval:     cfg.Solo.SyncInterval,
		Trigger:          cfg.Triggers[0],
		Funder:           cfg.Owner,
		InterestPerBlock: cfg.Solo.InterestPerBlock.Int,
	}).Run(exitSignal)
}
