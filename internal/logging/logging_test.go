package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		debug   bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(Options{Verbose: tt.verbose, Path: filepath.Join(t.TempDir(), "log.json")})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := logger.Core().Enabled(zap.DebugLevel); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
			if !logger.Core().Enabled(zap.WarnLevel) {
				t.Error("warnings must always be enabled")
			}
		})
	}
}

func TestNewWritesToPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trustboard.log")
	logger, err := New(Options{Path: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Warn("stats unavailable", zap.String("op", "api.stats"))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, want := range []string{`"msg":"stats unavailable"`, `"logger":"trustboard"`, `"op":"api.stats"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log %q missing %s", data, want)
		}
	}
}
