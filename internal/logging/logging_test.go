package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewSelectsLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		level, format string
		enabled       zapcore.Level
		disabled      zapcore.Level
	}{
		"defaults":   {enabled: zapcore.InfoLevel, disabled: zapcore.DebugLevel},
		"debug json": {level: "DEBUG", format: "json", enabled: zapcore.DebugLevel, disabled: zapcore.DebugLevel - 1},
		"warn":       {level: "warn", format: "console", enabled: zapcore.WarnLevel, disabled: zapcore.InfoLevel},
	}
	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			logger, err := New(tc.level, tc.format)
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}
			core := logger.Core()
			if !core.Enabled(tc.enabled) {
				t.Fatalf("level %s should be enabled", tc.enabled)
			}
			if core.Enabled(tc.disabled) {
				t.Fatalf("level %s should be disabled", tc.disabled)
			}
		})
	}
}

func TestNewRejectsUnknownValues(t *testing.T) {
	t.Parallel()

	if _, err := New("loud", ""); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
