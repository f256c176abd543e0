package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLevels_WriteToInstalledLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Use(zap.New(core))
	defer restore()

	Debug("debug %d", 1)
	Info("info %s", "two")
	Warn("warn")
	Error("error")
	Fatal("fatal %v", true)

	entries := logs.AllUntimed()
	require.Len(t, entries, 5)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "debug 1", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, "info two", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
	assert.Equal(t, zapcore.FatalLevel, entries[4].Level)
	assert.Equal(t, "fatal true", entries[4].Message)
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := Use(zap.New(core))
	defer restore()

	Debug("hidden")
	Info("hidden")
	Warn("shown")

	assert.Equal(t, 1, logs.Len())
}

func TestUse_Restore(t *testing.T) {
	first, firstLogs := observer.New(zapcore.InfoLevel)
	restoreFirst := Use(zap.New(first))
	defer restoreFirst()

	second, secondLogs := observer.New(zapcore.InfoLevel)
	restoreSecond := Use(zap.New(second))
	Info("to second")
	restoreSecond()
	Info("to first")

	assert.Equal(t, 1, secondLogs.Len())
	assert.Equal(t, 1, firstLogs.Len())
}

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	require.NoError(t, Init(path, zapcore.InfoLevel, false))

	Info("Setting up test environment for platform: %s", "android")
	Debug("not written at info level")
	Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Setting up test environment for platform: android")
	assert.Contains(t, string(data), "INFO")
	assert.False(t, strings.Contains(string(data), "not written"))
}

func TestInit_BadPath(t *testing.T) {
	err := Init(filepath.Join(t.TempDir(), "missing", "run.log"), zapcore.InfoLevel, false)
	assert.Error(t, err)
}

func TestLoggingBeforeInitIsSafe(t *testing.T) {
	Close()
	Info("dropped")
	Fatal("dropped without exiting")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"Warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"FATAL":   zapcore.FatalLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}
