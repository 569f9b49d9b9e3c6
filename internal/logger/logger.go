// internal/logger/logger.go
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfg "github.com/tamzrod/encoder-monitor/internal/config"
)

// New builds the process logger: JSON to stderr, plus the configured
// file when one is set.
func New(c cfg.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Sampling = nil

	zc.OutputPaths = []string{"stderr"}
	if c.File != "" {
		zc.OutputPaths = append(zc.OutputPaths, c.File)
	}

	return zc.Build()
}
