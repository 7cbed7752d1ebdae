// Package logging builds the zap logger shared by every component.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jask/teamperf/internal/config"
)

// ParseLevel maps a config level name to a zap level. Unknown names fall
// back to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a production logger. debug forces debug level regardless of
// cfg.Level. Output goes to cfg.Path when set, stderr otherwise.
func New(cfg config.LogConfig, debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level := ParseLevel(cfg.Level)
	if debug {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Sampling = nil

	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir log dir: %w", err)
		}
		zc.OutputPaths = []string{cfg.Path}
		zc.ErrorOutputPaths = []string{cfg.Path}
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
