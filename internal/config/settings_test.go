package config

import (
	"path/filepath"
	"testing"

	"fyne.io/fyne/v2/test"
)

func TestNewSettings(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.app != app {
		t.Error("Settings app reference should match provided app")
	}
}

func TestSequenceDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	dir := settings.GetSequenceDirectory()
	if dir == "" {
		t.Error("Sequence directory should not be empty")
	}

	// Test setting custom value
	customDir := "/data/sequences"
	settings.SetSequenceDirectory(customDir)

	retrievedDir := settings.GetSequenceDirectory()
	if retrievedDir != customDir {
		t.Errorf("Expected sequence directory %s, got %s", customDir, retrievedDir)
	}
}

func TestLastSequenceFile(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if settings.GetLastSequenceFile() != "" {
		t.Error("Last sequence file should default to empty")
	}

	path := filepath.Join("/data", "runs", "overnight.useq.json")
	settings.SetLastSequenceFile(path)

	if settings.GetLastSequenceFile() != path {
		t.Errorf("Expected last sequence file %s, got %s", path, settings.GetLastSequenceFile())
	}

	// Recording a file also moves the sequence directory to its parent
	if settings.GetSequenceDirectory() != filepath.Dir(path) {
		t.Errorf("Expected sequence directory %s, got %s", filepath.Dir(path), settings.GetSequenceDirectory())
	}
}

func TestOutputDirectory(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Empty means the engine default
	if settings.GetOutputDirectory() != "" {
		t.Error("Output directory should default to empty")
	}

	settings.SetOutputDirectory("/data/acquisitions")
	if settings.GetOutputDirectory() != "/data/acquisitions" {
		t.Errorf("Expected output directory /data/acquisitions, got %s", settings.GetOutputDirectory())
	}
}

func TestLogLevel(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	// Test default value
	level := settings.GetLogLevel()
	if level != DefaultLogLevel {
		t.Errorf("Expected default log level %s, got %s", DefaultLogLevel, level)
	}

	// Test setting custom value
	settings.SetLogLevel("DEBUG")
	if settings.GetLogLevel() != "DEBUG" {
		t.Errorf("Expected log level DEBUG, got %s", settings.GetLogLevel())
	}

	// Empty level defaults back
	settings.SetLogLevel("")
	if settings.GetLogLevel() != DefaultLogLevel {
		t.Errorf("Empty level should default to %s, got %s", DefaultLogLevel, settings.GetLogLevel())
	}
}

func TestConfirmCloseWhileRunning(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	if !settings.GetConfirmCloseWhileRunning() {
		t.Error("Confirm-close should default to true")
	}

	settings.SetConfirmCloseWhileRunning(false)
	if settings.GetConfirmCloseWhileRunning() {
		t.Error("Confirm-close should be false after disabling")
	}
}

func TestGetLogLevelOptions(t *testing.T) {
	app := test.NewApp()
	settings := NewSettings(app)

	options := settings.GetLogLevelOptions()
	expectedOptions := []string{"DEBUG", "INFO", "WARN", "ERROR"}

	if len(options) != len(expectedOptions) {
		t.Fatalf("Expected %d log level options, got %d", len(expectedOptions), len(options))
	}

	for i, expected := range expectedOptions {
		if options[i] != expected {
			t.Errorf("Log level option %d: expected %s, got %s", i, expected, options[i])
		}
	}
}
