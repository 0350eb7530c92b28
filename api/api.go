// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/nucleonfinance/xcfx/api/accounts"
	"github.com/nucleonfinance/xcfx/api/bridge"
	"github.com/nucleonfinance/xcfx/api/doc"
	"github.com/nucleonfinance/xcfx/api/exchange"
	"github.com/nucleonfinance/xcfx/api/middleware"
	"github.com/nucleonfinance/xcfx/api/node"
	"github.com/nucleonfinance/xcfx/api/pools"
	"github.com/nucleonfinance/xcfx/contracts"
	"github.com/nucleonfinance/xcfx/log"
	"github.com/nucleonfinance/xcfx/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins string
	Version        string
	PprofOn        bool
	EnableMetrics  bool
	// AllowSync enables the unauthenticated sync trigger, solo mode only.
	AllowSync bool
	// EnableReqLogger switches the request log, it can be flipped at runtime.
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
}

// New return api router
func New(rt *runtime.Runtime, d *contracts.Deployment, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	version := opts.Version
	if version == "" {
		version = doc.Version()
	}

	router := mux.NewRouter()

	// to serve the api spec
	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)

	accounts.New(rt, d.Token).
		Mount(router, "/accounts")
	exchange.New(rt, d.Exroom).
		Mount(router, "/exroom")
	pools.New(rt, d.Bridge).
		Mount(router, "/pools")
	bridge.New(rt, d.Bridge, opts.AllowSync).
		Mount(router, "/bridge")
	node.New(rt, node.NewInfo(version, d)).
		Mount(router, "/node")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = new(atomic.Bool)
	}
	router.Use(middleware.RequestLogger(logger, enabled, opts.SlowQueriesThreshold))

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
	)(handler)

	return handler.ServeHTTP
}
