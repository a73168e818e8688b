package logger

import (
	"strings"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/rs/zerolog"
)

// Format is the encoding of log lines.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatText    Format = "text"
)

// Options is the resolved form of config.LogConfig.
type Options struct {
	Level      zerolog.Level
	Format     Format
	Console    bool
	File       string
	MaxSizeMB  int
	MaxBackups int
}

func defaultOptions() Options {
	return Options{
		Level:      zerolog.InfoLevel,
		Format:     FormatConsole,
		Console:    true,
		MaxSizeMB:  config.DefaultMaxLogSizeMB,
		MaxBackups: config.DefaultMaxLogBackups,
	}
}

// OptionsFrom resolves cfg, falling back to info level for unknown levels.
func OptionsFrom(cfg config.LogConfig) Options {
	opts := defaultOptions()
	if level, err := ParseLevel(cfg.LogLevel); err == nil {
		opts.Level = level
	}
	opts.Format = ParseFormat(cfg.LogFormat)
	opts.File = cfg.LogFile
	if cfg.MaxLogSizeMB > 0 {
		opts.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		opts.MaxBackups = cfg.MaxLogBackups
	}
	return opts
}

// ParseLevel maps a case-insensitive level name to zerolog. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel, errorwrapper.WrapError(err, "invalid log level")
	}
	return level, nil
}

// ParseFormat maps a format name to a Format. Unknown names mean console.
func ParseFormat(s string) Format {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatText:
		return f
	default:
		return FormatConsole
	}
}
