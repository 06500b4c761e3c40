package app

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions configures the global logger.
type LogOptions struct {
	Verbose bool
	// File adds a rotated JSON log next to the console output.
	File    string
	Console io.Writer
}

// SetupLogging installs the global zerolog logger with a console writer and,
// when configured, a rotating log file. Every line carries the run id. The
// returned closer flushes the log file.
func SetupLogging(opts LogOptions) (string, io.Closer) {
	zerolog.TimeFieldFormat = time.RFC3339
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	var out io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		}
		out = zerolog.MultiLevelWriter(out, lj)
		closer = lj
	}
	runID := uuid.NewString()
	log.Logger = zerolog.New(out).With().Timestamp().Str("run_id", runID).Logger()
	if opts.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	return runID, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
