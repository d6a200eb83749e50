package utils

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestLoggerWritesFile(t *testing.T) {
    path := filepath.Join(t.TempDir(), "logs", "run.log")
    logger, err := Logger(LogOptions{Level: "info", File: path})
    require.NoError(t, err)

    logger.Info("hello from test")
    _ = logger.Sync()

    b, err := os.ReadFile(path)
    require.NoError(t, err)
    assert.Contains(t, string(b), "hello from test")
}

func TestLoggerBadLevel(t *testing.T) {
    _, err := Logger(LogOptions{Level: "loud"})
    assert.Error(t, err)
}

func TestLoggerStdoutOnly(t *testing.T) {
    logger, err := Logger(LogOptions{Format: "console"})
    require.NoError(t, err)
    assert.NotNil(t, logger)
}
