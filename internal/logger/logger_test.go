package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Debug: false, ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logDir := filepath.Join(configDir, "logs")
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}
	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Info("duo created", "duo", "d1")
	Warn("stage drift corrected", "from", "tree-1", "to", "tree-2")

	data, err := os.ReadFile(filepath.Join(logDir, "tandrum.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "stage drift corrected") {
		t.Errorf("log file missing warning line, got %q", string(data))
	}
}

func TestDebugSuppressedOutsideDebugMode(t *testing.T) {
	configDir := t.TempDir()
	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	Debug("reward rolled", "xp", 20)
	Info("check-in recorded")

	data, err := os.ReadFile(filepath.Join(configDir, "logs", "tandrum.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if strings.Contains(string(data), "reward rolled") {
		t.Errorf("debug line written at info level: %q", string(data))
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
	if With("duo", "d1") != nil {
		t.Error("With() should return nil before Init")
	}
}
