package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// encode wraps out for format. JSON passes events through; console and text
// are human readable, text never coloured.
func encode(out io.Writer, format Format, colour bool) io.Writer {
	if format == FormatJSON {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    format == FormatText || !colour,
	}
}

// rotatingFile opens the log file through lumberjack, creating its directory.
func rotatingFile(opts Options) (io.Writer, error) {
	if dir := filepath.Dir(opts.File); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	return &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		LocalTime:  true,
	}, nil
}
