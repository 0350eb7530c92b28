// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package apilogs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPILogsHandler(t *testing.T) {
	tests := []struct {
		name             string
		method           string
		body             string
		expectedHTTP     int
		startValue       bool
		expectedEndValue bool
	}{
		{"POST enables logs", "POST", `{"enabled":true}`, http.StatusOK, false, true},
		{"POST disables logs", "POST", `{"enabled":false}`, http.StatusOK, true, false},
		{"POST unknown field", "POST", `{"enable":true}`, http.StatusBadRequest, true, true},
		{"GET current value", "GET", "", http.StatusOK, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var enabled atomic.Bool
			enabled.Store(tt.startValue)

			req, err := http.NewRequest(tt.method, "/admin/apilogs", bytes.NewBufferString(tt.body))
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			router := mux.NewRouter()
			New(&enabled).Mount(router, "/admin/apilogs")
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedHTTP, rr.Code)
			assert.Equal(t, tt.expectedEndValue, enabled.Load())
			if tt.expectedHTTP == http.StatusOK {
				var status LogStatus
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&status))
				assert.Equal(t, tt.expectedEndValue, status.Enabled)
			}
		})
	}
}
