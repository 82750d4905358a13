package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/classpulse/classpulse/internal/config"
)

// timeFormats maps logging.time_format names to layouts; anything else is RFC3339
var timeFormats = map[string]string{
	"Unix":        time.UnixDate,
	"Kitchen":     time.Kitchen,
	"RFC3339Nano": time.RFC3339Nano,
}

// NewFromConfig builds a logger from the logging config section. Unknown levels fall back
// to info; a file output path has its directory created.
func NewFromConfig(cfg config.LoggingConfig) (*Logger, error) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.Level); err == nil && cfg.Level != "" {
		level = parsed
	}

	out, err := openOutput(cfg.OutputPath)
	if err != nil {
		return nil, err
	}

	if cfg.Format == "console" {
		layout, ok := timeFormats[cfg.TimeFormat]
		if !ok {
			layout = time.RFC3339
		}
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: layout}
	}

	return NewWithWriter(out, level), nil
}

func openOutput(path string) (io.Writer, error) {
	switch path {
	case "", "stdout":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
