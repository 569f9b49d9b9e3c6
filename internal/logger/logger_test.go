package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	cfg "github.com/tamzrod/encoder-monitor/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encoderd.log")

	log, err := New(cfg.LogConfig{Level: "debug", File: path})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log.Info("[test] hello")
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"msg":"[test] hello"`)
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(cfg.LogConfig{Level: "chatty"})
	require.Error(t, err)
}

func TestNewHonoursLevel(t *testing.T) {
	log, err := New(cfg.LogConfig{Level: "warn"})
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(zapcore.InfoLevel))
}
