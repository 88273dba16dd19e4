package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thermogain/thermogain/internal/config"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LoggingConfig
		override  string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "Defaults", wantLevel: zapcore.InfoLevel},
		{name: "Configured debug console", cfg: config.LoggingConfig{Level: "debug", Format: "console"}, wantLevel: zapcore.DebugLevel},
		{name: "Override wins", cfg: config.LoggingConfig{Level: "debug"}, override: "error", wantLevel: zapcore.ErrorLevel},
		{name: "Warning alias", override: "warning", wantLevel: zapcore.WarnLevel},
		{name: "Invalid level", override: "verbose", wantErr: true},
		{name: "Invalid format", cfg: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg, tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("expected level %s to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("expected level %s to be disabled", tt.wantLevel-1)
			}
		})
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "thermogain.log")
	logger, err := New(config.LoggingConfig{OutputFile: path}, "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected log output in file")
	}
}
