// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/nucleonfinance/xcfx/api/admin/apilogs"
	"github.com/nucleonfinance/xcfx/api/admin/loglevel"
)

// New returns the admin router, serving the log verbosity and the api request log switch.
func New(leveler loglevel.Leveler, apiLogs *atomic.Bool) http.HandlerFunc {
	router := mux.NewRouter()
	sub := router.PathPrefix("/admin").Subrouter()

	loglevel.New(leveler).Mount(sub, "/loglevel")
	apilogs.New(apiLogs).Mount(sub, "/apilogs")

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
