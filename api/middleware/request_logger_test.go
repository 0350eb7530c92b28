// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nucleonfinance/xcfx/log"
)

// mockLogger is a simple logger implementation for testing purposes
type mockLogger struct {
	loggedData []any
}

func (m *mockLogger) With(_ ...any) log.Logger { return m }
func (m *mockLogger) Trace(_ string, _ ...any) {}
func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Error(_ string, _ ...any) {}

func (m *mockLogger) Info(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func (m *mockLogger) Warn(_ string, ctx ...any) {
	m.loggedData = append(m.loggedData, ctx...)
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name      string
		enabled   bool
		threshold time.Duration
		delay     time.Duration
		shouldLog bool
	}{
		{"enabled", true, 0, 0, true},
		{"disabled", false, 0, 0, false},
		{"fast request under threshold", false, time.Second, 0, false},
		{"slow request over threshold", false, time.Millisecond, 10 * time.Millisecond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockLogger{}
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			var seen string
			handler := RequestLogger(logger, &enabled, tt.threshold)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				seen = string(body)
				time.Sleep(tt.delay)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/bridge/sync", strings.NewReader(`{"caller":"0x01"}`))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, `{"caller":"0x01"}`, seen)
			if !tt.shouldLog {
				assert.Empty(t, logger.loggedData)
				return
			}
			assert.Contains(t, logger.loggedData, "URI")
			assert.Contains(t, logger.loggedData, "/bridge/sync")
			assert.Contains(t, logger.loggedData, "Body")
			assert.Contains(t, logger.loggedData, `{"caller":"0x01"}`)
		})
	}
}
