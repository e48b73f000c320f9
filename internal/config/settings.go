package config

import (
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
)

// Settings keys for Fyne preferences
const (
	KeySequenceDir         = "sequence_directory"
	KeyLastSequenceFile    = "last_sequence_file"
	KeyOutputDir           = "output_directory"
	KeyLogLevel            = "log_level"
	KeyConfirmCloseRunning = "confirm_close_while_running"
)

// Default values
const (
	DefaultLogLevel            = "INFO"
	DefaultConfirmCloseRunning = true
)

// Settings manages launcher configuration persisted via Fyne preferences
type Settings struct {
	app fyne.App
}

// NewSettings creates a new settings manager
func NewSettings(app fyne.App) *Settings {
	return &Settings{app: app}
}

// GetSequenceDirectory returns the directory the open-file dialog starts in
func (s *Settings) GetSequenceDirectory() string {
	dir := s.app.Preferences().String(KeySequenceDir)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dir = home
		s.SetSequenceDirectory(dir)
	}
	return dir
}

// SetSequenceDirectory sets the sequence file directory
func (s *Settings) SetSequenceDirectory(dir string) {
	s.app.Preferences().SetString(KeySequenceDir, dir)
}

// GetLastSequenceFile returns the most recently loaded sequence file path
func (s *Settings) GetLastSequenceFile() string {
	return s.app.Preferences().String(KeyLastSequenceFile)
}

// SetLastSequenceFile records the most recently loaded sequence file and
// keeps the sequence directory pointing at its parent
func (s *Settings) SetLastSequenceFile(path string) {
	s.app.Preferences().SetString(KeyLastSequenceFile, path)
	if path != "" {
		s.SetSequenceDirectory(filepath.Dir(path))
	}
}

// GetOutputDirectory returns the acquisition output directory, empty for
// the engine default
func (s *Settings) GetOutputDirectory() string {
	return s.app.Preferences().String(KeyOutputDir)
}

// SetOutputDirectory sets the acquisition output directory
func (s *Settings) SetOutputDirectory(dir string) {
	s.app.Preferences().SetString(KeyOutputDir, dir)
}

// GetLogLevel returns the configured logging verbosity
func (s *Settings) GetLogLevel() string {
	level := s.app.Preferences().String(KeyLogLevel)
	if level == "" {
		s.SetLogLevel(DefaultLogLevel)
		return DefaultLogLevel
	}
	return level
}

// SetLogLevel sets the logging verbosity
func (s *Settings) SetLogLevel(level string) {
	if level == "" {
		level = DefaultLogLevel
	}
	s.app.Preferences().SetString(KeyLogLevel, level)
}

// GetLogLevelOptions returns the selectable logging verbosities
func (s *Settings) GetLogLevelOptions() []string {
	return []string{"DEBUG", "INFO", "WARN", "ERROR"}
}

// GetConfirmCloseWhileRunning returns whether closing the launcher during a
// run asks for confirmation
func (s *Settings) GetConfirmCloseWhileRunning() bool {
	return s.app.Preferences().BoolWithFallback(KeyConfirmCloseRunning, DefaultConfirmCloseRunning)
}

// SetConfirmCloseWhileRunning sets the close-confirmation behavior
func (s *Settings) SetConfirmCloseWhileRunning(confirm bool) {
	s.app.Preferences().SetBool(KeyConfirmCloseRunning, confirm)
}
