package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestSetup_Writer(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Level = "warn"
	cfg.Stderr = &buf

	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	logger.Info("hidden")
	slog.Warn("shown", "schema", "Root")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "schema=Root")
}

func TestSetup_File(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	path := filepath.Join(t.TempDir(), "logs", "shapegen.log")
	cfg := DefaultConfig()
	cfg.Level = "debug"
	cfg.FilePath = path

	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)
	logger.Debug("written to file")
	require.NoError(t, cleanup())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}
