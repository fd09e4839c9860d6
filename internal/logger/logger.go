// Package logger builds the process-wide zap logger.
package logger

import (
	"fmt"
	"sync"

	"iprofit/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// New builds a JSON logger for production and a console logger otherwise,
// and installs it as the process logger.
func New(cfg *config.Config) (*zap.Logger, error) {
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if lvl := config.GetEnv("LOG_LEVEL", ""); lvl != "" {
		level, err := zapcore.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", lvl, err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	l, err := zc.Build(zap.Fields(zap.String("service", "iprofit-admin")))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	Set(l)
	return l, nil
}

// L returns the process logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// Set replaces the process logger.
func Set(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	mu.Lock()
	global = l
	mu.Unlock()
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
