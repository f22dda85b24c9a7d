// Package logging sets up the global zerolog logger for the clock programs.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	// Console gets human readable output. Nil means stderr; use io.Discard to silence it.
	Console io.Writer
	// File, when set, gets JSON lines rotated at 1 MB.
	File string
	// Debug lowers the level from info to debug.
	Debug bool
	// Writers get JSON lines too, for example the debug serial port.
	Writers []io.Writer
}

// Init replaces the global logger. The returned function closes the log file, if any.
func Init(o Options) func() error {
	console := o.Console
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.TimeOnly}}

	closer := func() error { return nil }
	if o.File != "" {
		lj := &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    1,
			MaxBackups: 2,
		}
		writers = append(writers, lj)
		closer = lj.Close
	}
	writers = append(writers, o.Writers...)

	level := zerolog.InfoLevel
	if o.Debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().Timestamp().Logger()

	return closer
}
