package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Config selects the logger's level, encoding and destination. It mirrors the
// LOG_* environment variables.
type Config struct {
	Level  string `yaml:"level"`  // debug, info, warn, error or fatal
	Format string `yaml:"format"` // json, or text/console
	Output string `yaml:"output"` // stderr, stdout or a file path
}

// NewLogger builds a logger from cfg. A nil cfg logs JSON at info to stderr.
func NewLogger(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	w, format, err := cfg.destination()
	if err != nil {
		return nil, err
	}
	return NewWithFormat(cfg.level(), w, format), nil
}

// level maps the configured name to a LogLevel; unknown names mean info.
func (c *Config) level() LogLevel {
	lvl := LogLevel(strings.ToUpper(c.Level))
	if lvl == "WARNING" {
		lvl = WarnLevel
	}
	if _, ok := levelRank[lvl]; !ok {
		return InfoLevel
	}
	return lvl
}

// destination resolves where entries go and how they are encoded. Anything
// other than stderr or stdout is opened as an append-only file.
func (c *Config) destination() (io.Writer, Format, error) {
	format := JSONFormat
	switch strings.ToLower(c.Format) {
	case "text", "console":
		format = TextFormat
	}

	switch c.Output {
	case "", "stderr":
		return os.Stderr, format, nil
	case "stdout":
		return os.Stdout, format, nil
	}
	f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("opening log file: %w", err)
	}
	return f, format, nil
}
