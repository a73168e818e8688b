package logger

import (
	"io"
	stdlog "log"
	"os"

	"github.com/aleister1102/contacthound/internal/common/errorwrapper"
	"github.com/aleister1102/contacthound/internal/config"
	"github.com/rs/zerolog"
)

// LoggerBuilder assembles the root logger of the application
type LoggerBuilder struct {
	opts    Options
	console io.Writer
}

// NewLoggerBuilder starts from info level console output on stderr
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		opts:    defaultOptions(),
		console: os.Stderr,
	}
}

// WithConfig applies the log section of the application config
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	lb.opts = OptionsFrom(cfg)
	return lb
}

// WithConsoleOutput redirects console output. nil disables the console.
func (lb *LoggerBuilder) WithConsoleOutput(w io.Writer) *LoggerBuilder {
	lb.console = w
	return lb
}

// WithLevel overrides the configured level.
func (lb *LoggerBuilder) WithLevel(level zerolog.Level) *LoggerBuilder {
	lb.opts.Level = level
	return lb
}

// Build creates the logger and routes the standard library logger into it.
func (lb *LoggerBuilder) Build() (zerolog.Logger, error) {
	if lb.opts.File != "" && lb.opts.MaxSizeMB <= 0 {
		return zerolog.Nop(), errorwrapper.NewValidationError("max_log_size_mb", lb.opts.MaxSizeMB, "max size must be positive")
	}

	var writers []io.Writer
	if lb.opts.Console && lb.console != nil {
		writers = append(writers, encode(lb.console, lb.opts.Format, true))
	}
	if lb.opts.File != "" {
		fw, err := rotatingFile(lb.opts)
		if err != nil {
			return zerolog.Nop(), errorwrapper.WrapError(err, "failed to open log file")
		}
		writers = append(writers, encode(fw, lb.opts.Format, false))
	}
	if len(writers) == 0 {
		return zerolog.Nop(), errorwrapper.NewError("no log output configured")
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lb.opts.Level).
		With().
		Timestamp().
		Logger()

	stdlog.SetOutput(logger)
	stdlog.SetFlags(0)

	return logger, nil
}

// New creates a logger from the log section of the application config.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}
