package logging

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const loggerKey = contextKey("logger")

const defaultLevel = "info"

var (
	defaultLogger     *zap.SugaredLogger
	defaultLoggerOnce sync.Once
)

func DefaultLogger() *zap.SugaredLogger {
	defaultLoggerOnce.Do(func() {
		logger, err := NewLogger(defaultLevel)
		if err != nil {
			logger = zap.NewNop().Sugar()
		}
		defaultLogger = logger.Named("ratesboard")
	})
	return defaultLogger
}

// NewLogger builds a production JSON logger with the given level, e.g. "debug", "warn"
func NewLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}

func WithLogger(ctx context.Context, logger *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func FromContext(ctx context.Context) *zap.SugaredLogger {
	if logger, ok := ctx.Value(loggerKey).(*zap.SugaredLogger); ok {
		return logger
	}
	return DefaultLogger()
}
