package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/miravision/website/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("writes to the configured file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "api.log")
		logger, err := newLogger(&config.Config{LogLevel: "info", LogFile: path})
		require.NoError(t, err)
		logger.Info("hello %s", "world")
		require.NoError(t, logger.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello world")
	})

	t.Run("bad level is an error", func(t *testing.T) {
		_, err := newLogger(&config.Config{LogLevel: "verbose", LogFile: filepath.Join(t.TempDir(), "api.log")})
		assert.ErrorContains(t, err, "invalid log level")
	})

	t.Run("unwritable directory is an error", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o644))

		_, err := newLogger(&config.Config{LogLevel: "info", LogFile: filepath.Join(blocker, "logs", "api.log")})
		assert.ErrorContains(t, err, "failed to create log directory")
	})
}
