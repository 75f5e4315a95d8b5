package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger for the given level ("debug", "info", "warn", "error").
// json selects the production encoder, otherwise the console development encoder is used.
func New(levelStr string, json bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if json {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

// Must is like New but falls back to a no-op logger when construction fails.
func Must(levelStr string, json bool) *zap.Logger {
	l, err := New(levelStr, json)
	if err != nil {
		return zap.NewNop()
	}
	return l
}
