// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package httpserver

import (
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/nucleonfinance/xcfx/api"
	"github.com/nucleonfinance/xcfx/co"
	"github.com/nucleonfinance/xcfx/contracts"
	"github.com/nucleonfinance/xcfx/runtime"
)

// StartAPIServer serves the REST API on addr. It returns the base url and a func to stop the server.
func StartAPIServer(addr string, rt *runtime.Runtime, d *contracts.Deployment, opts api.Options) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen API addr [%v]", addr)
	}

	srv := &http.Server{Handler: api.New(rt, d, opts), ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/", func() {
		srv.Close()
		goes.Wait()
	}, nil
}
