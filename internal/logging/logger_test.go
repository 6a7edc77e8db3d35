package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryKeepsMostRecent(t *testing.T) {
	l := NewWithWriter(&bytes.Buffer{}, LevelDebug, 3)

	for _, msg := range []string{"a", "b", "c", "d"} {
		l.Info("test", msg, nil)
	}

	hist := l.GetHistory(0)
	require.Len(t, hist, 3)
	assert.Equal(t, "b", hist[0].Message)
	assert.Equal(t, "d", hist[2].Message)

	last := l.GetHistory(1)
	require.Len(t, last, 1)
	assert.Equal(t, "d", last[0].Message)
}

func TestLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, LevelWarn, 10)

	l.Debug("neon", "hidden", nil)
	l.Info("neon", "hidden", nil)
	l.Warn("neon", "shown", map[string]any{"state": "error"})

	hist := l.GetHistory(0)
	require.Len(t, hist, 1)
	assert.Equal(t, "warn", hist[0].Level)
	assert.Equal(t, "state=error", hist[0].Data)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "neonlight", rec["app"])
	assert.Equal(t, "neon", rec["component"])
	assert.Equal(t, "error", rec["state"])
}

func TestErrorEntry(t *testing.T) {
	l := NewWithWriter(&bytes.Buffer{}, LevelDebug, 10)
	l.Error("remote", "dial failed", errors.New("refused"), map[string]any{"url": "ws://x", "attempt": 2})

	hist := l.GetHistory(0)
	require.Len(t, hist, 1)
	assert.Equal(t, "attempt=2, url=ws://x error=refused", hist[0].Data)
}

func TestComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, LevelDebug, 10)

	zl := l.Component("renderer")
	zl.Info().Msg("shader compiled")

	assert.Contains(t, buf.String(), `"component":"renderer"`)
}

func TestNewWritesFile(t *testing.T) {
	dir := t.TempDir()
	l, err := New(&Config{LogDir: dir, Level: LevelInfo, MaxHistory: 10})
	require.NoError(t, err)

	l.Info("test", "hello", nil)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(l.GetLogPath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, l.GetLogPath(), "neonlight_")
}
