package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Slog output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// SlogConfig controls the agent's structured logger.
type SlogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
	Color  bool   `mapstructure:"color"`  // ANSI-colored levels (text only)
	Source bool   `mapstructure:"source"` // include source positions
	File   string `mapstructure:"file"`   // optional rotating log file; stderr if empty
}

// NewSlogger builds a *slog.Logger from the config. The returned logger
// is suitable for slog.SetDefault.
func (c SlogConfig) NewSlogger() *slog.Logger {
	var w io.Writer = os.Stderr
	if c.File != "" {
		w = &lj.Logger{
			Filename:   c.File,
			MaxSize:    DefaultMaxSizeMB,
			MaxBackups: DefaultMaxBackups,
			MaxAge:     DefaultMaxAgeDays,
		}
	}
	opts := &slog.HandlerOptions{Level: parseLevel(c.Level), AddSource: c.Source}
	var h slog.Handler
	switch {
	case c.Format == FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	case c.Color && c.File == "":
		h = NewColorTextHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
