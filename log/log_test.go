// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithContext(t *testing.T) {
	logger := WithContext("pkg", "pospool")

	var buf bytes.Buffer
	Init(&buf, LegacyLevelInfo, false)
	defer Discard()

	logger.Info("stake increased", "votes", 3)
	logger.Debug("hidden below verbosity")
	logger.With("pool", "p1").Warn("pool warning")

	out := buf.String()
	assert.Contains(t, out, "stake increased")
	assert.Contains(t, out, "pkg=pospool")
	assert.Contains(t, out, "votes=3")
	assert.Contains(t, out, "pool=p1")
	assert.NotContains(t, out, "hidden below verbosity")
}

func TestSetLevel(t *testing.T) {
	logger := WithContext("pkg", "bridge")

	var buf bytes.Buffer
	Init(&buf, LegacyLevelInfo, false)
	defer Discard()
	assert.Equal(t, LevelInfo, Level())

	logger.Debug("first debug")
	SetLevel(LevelDebug)
	assert.Equal(t, LevelDebug, Level())
	logger.Debug("second debug")

	out := buf.String()
	assert.NotContains(t, out, "first debug")
	assert.Contains(t, out, "second debug")
}
