// Package logging sets up the process logger. The TUI owns the terminal,
// so logs go to a file under the state dir instead of stderr.
package logging

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Open returns a logger writing to path, creating parent directories as
// needed. When the file cannot be opened the logger is a no-op rather than
// a startup failure; close is always safe to call.
func Open(path string) (zerolog.Logger, func() error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return zerolog.Nop(), func() error { return nil }
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), func() error { return nil }
	}
	log := zerolog.New(f).With().Timestamp().Logger()
	return log, f.Close
}
