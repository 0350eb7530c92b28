// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"io"
	"log/slog"
	"sync"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// levels accepted by SetLevel.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

var (
	mu    sync.Mutex
	glog  *ethlog.GlogHandler
	level = new(slog.LevelVar)
)

// legacy verbosity levels accepted by the command line.
const (
	LegacyLevelCrit = iota
	LegacyLevelError
	LegacyLevelWarn
	LegacyLevelInfo
	LegacyLevelDebug
	LegacyLevelTrace
)

// Logger writes leveled messages with key/value context.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	With(ctx ...any) Logger
}

// contextLogger resolves the root logger on every write, so package level
// loggers follow a root installed later by Init.
type contextLogger struct {
	ctx []any
}

// WithContext returns a logger that prefixes ctx to every record.
func WithContext(ctx ...any) Logger {
	return &contextLogger{ctx: ctx}
}

func (l *contextLogger) merge(ctx []any) []any {
	return append(append(make([]any, 0, len(l.ctx)+len(ctx)), l.ctx...), ctx...)
}

func (l *contextLogger) Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, l.merge(ctx)...) }
func (l *contextLogger) Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, l.merge(ctx)...) }
func (l *contextLogger) Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, l.merge(ctx)...) }
func (l *contextLogger) Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, l.merge(ctx)...) }
func (l *contextLogger) Error(msg string, ctx ...any) { ethlog.Root().Error(msg, l.merge(ctx)...) }

func (l *contextLogger) With(ctx ...any) Logger {
	return &contextLogger{ctx: l.merge(ctx)}
}

// Init installs a terminal root logger filtered at the legacy verbosity.
func Init(w io.Writer, verbosity int, useColor bool) {
	handler := ethlog.NewGlogHandler(ethlog.NewTerminalHandler(w, useColor))
	mu.Lock()
	glog = handler
	mu.Unlock()
	SetLevel(ethlog.FromLegacyLevel(verbosity))
	ethlog.SetDefault(ethlog.NewLogger(handler))
}

// SetLevel changes the verbosity of the logger installed by Init.
func SetLevel(l slog.Level) {
	mu.Lock()
	defer mu.Unlock()
	level.Set(l)
	if glog != nil {
		glog.Verbosity(l)
	}
}

// Level returns the current verbosity.
func Level() slog.Level {
	return level.Level()
}

// Discard silences the root logger.
func Discard() {
	ethlog.SetDefault(ethlog.NewLogger(ethlog.DiscardHandler()))
}

func Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { ethlog.Root().Error(msg, ctx...) }
