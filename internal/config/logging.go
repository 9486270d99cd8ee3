package config

import (
	"os"
	"path/filepath"

	"github.com/rshade/marketdash/internal/logging"
)

// EnsureLogDir creates the directory holding the configured log file.
func EnsureLogDir(file string) error {
	if file == "" {
		file = DefaultLogFile()
	}
	return os.MkdirAll(filepath.Dir(file), 0o750)
}

// ToLoggingConfig converts LoggingConfig to logging.Config for use with
// the internal/logging package.
//
// The conversion applies these rules:
//   - Level, Format are copied directly
//   - If File is set, Output becomes "file" and File is passed through
//   - If File is empty, Output defaults to "stderr"
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		Output: output,
		File:   lc.File,
	}
}

// ForInteractive returns a copy that never writes to the terminal: stderr
// output is redirected to the default log file so the TUI is not corrupted.
func (lc LoggingConfig) ForInteractive() LoggingConfig {
	if lc.File == "" {
		lc.File = DefaultLogFile()
	}
	return lc
}

// GetLoggingConfig returns the Logging section of the global configuration.
func GetLoggingConfig() LoggingConfig {
	return GetGlobalConfig().Logging
}
