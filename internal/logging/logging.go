// Package logging sets up the process-wide zap logger. Every component
// takes a *zap.Logger explicitly rather than reaching for a package
// global, so call sites stay testable with zaptest or a no-op logger.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the logger's verbosity and encoding.
type Config struct {
	Debug bool // verbose mode: debug level, development encoder
	JSON  bool // structured JSON output instead of console encoding
}

// New builds a *zap.Logger per Config. Console encoding is used for
// interactive runs; JSON is intended for piping into a log aggregator.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	zcfg := zap.NewProductionConfig()
	if !cfg.JSON {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// NewNop returns a logger that discards everything, for tests and
// library callers that don't want ppg's own log stream.
func NewNop() *zap.Logger {
	return zap.NewNop()
}
