package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observed(level LogLevel) (*Logger, *observer.ObservedLogs) {
	atom := zap.NewAtomicLevelAt(zapLevels[level])
	core, logs := observer.New(atom)
	l := newLogger(core, atom)
	l.MinLevel = level
	return l, logs
}

func TestLogger_TagsComponent(t *testing.T) {
	l, logs := observed(LevelInfo)

	l.Info("Extractor", "Sheet parsed: sheet=%s rows=%d", "Receita", 3)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Sheet parsed: sheet=Receita rows=3", entry.Message)
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, "Extractor", entry.ContextMap()["component"])
}

func TestLogger_SetLogLevel(t *testing.T) {
	l, logs := observed(LevelInfo)

	l.Debug("Main", "hidden")
	assert.Equal(t, 0, logs.Len())

	l.SetLogLevel(LevelDebug)
	l.Debug("Main", "visible")
	assert.Equal(t, 1, logs.Len())

	l.SetLogLevel(LevelError)
	l.Warn("Main", "hidden again")
	l.Error("Main", "shown")
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "shown", logs.All()[1].Message)
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]LogLevel{
		"DEBUG":   LevelDebug,
		"info":    LevelInfo,
		"WARNING": LevelWarn,
		"warn":    LevelWarn,
		"Error":   LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNew_WritesLogFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, err := New(LevelInfo, dir)
	require.NoError(t, err)
	l.Info("Main", "pipeline started")
	require.NoError(t, l.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "pipeline started")
	assert.Contains(t, string(content), `"component":"Main"`)
}
