// Package logging builds the zap logger used by the CLI.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger for level ("debug", "info", "warn", "error") and format
// ("json" or "console"). Empty values select info and console.
func New(level, format string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if strings.TrimSpace(level) != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
			return nil, fmt.Errorf("logging: parse level %q: %w", level, err)
		}
	}

	var config zap.Config
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		config = zap.NewDevelopmentConfig()
		config.Development = false
		config.DisableStacktrace = true
	case "json":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("logging: unknown format %q", format)
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}
