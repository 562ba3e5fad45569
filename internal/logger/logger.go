// Package logger provides the global structured logger for hookline.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the global logger instance.
var Log = newConsoleLogger(zerolog.InfoLevel)

// Options configures the global logger.
type Options struct {
	// Level is the minimum level to emit ("debug", "info", "warn", "error").
	Level string

	// File, if non-empty, is a log file path. File output is rotated.
	File string

	// MaxSizeMB is the maximum size of the log file before rotation.
	MaxSizeMB int

	// MaxBackups is the number of rotated files to keep.
	MaxBackups int
}

// Init reconfigures the global logger.
func Init(opts Options) {
	level := parseLevel(opts.Level)

	writers := []io.Writer{consoleWriter()}
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 10
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: opts.MaxBackups,
		})
	}

	Log = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func consoleWriter() io.Writer {
	return zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
}

func newConsoleLogger(level zerolog.Level) zerolog.Logger {
	return zerolog.New(consoleWriter()).
		Level(level).
		With().
		Timestamp().
		Logger()
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "", "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Debug starts a debug-level log event.
func Debug() *zerolog.Event { return Log.Debug() }

// Info starts an info-level log event.
func Info() *zerolog.Event { return Log.Info() }

// Warn starts a warn-level log event.
func Warn() *zerolog.Event { return Log.Warn() }

// Error starts an error-level log event.
func Error() *zerolog.Event { return Log.Error() }
