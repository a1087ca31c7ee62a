//-------------------------------------------------------------------------
//
// pgEdge E-commerce Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package logging provides structured logging for pgedge-ecomgen. Pipeline
// code logs through the package-level helpers; events about one entity
// table carry a "table" field and state changes carry a "stage" field.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the global logger instance.
var Logger zerolog.Logger

// Config holds logging configuration.
type Config struct {
	Level      string
	Pretty     bool
	TimeFormat string

	// NoColor disables ANSI colors in pretty output.
	NoColor bool

	// Output overrides the destination; nil means stderr.
	Output io.Writer
}

// DefaultConfig returns default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Pretty:     true,
		TimeFormat: time.RFC3339,
	}
}

// Init replaces the global logger. An unknown level falls back to info and
// is reported once through the new logger.
func Init(cfg Config) {
	level, levelErr := zerolog.ParseLevel(cfg.Level)
	if levelErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	Logger = zerolog.New(newWriter(cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	if levelErr != nil {
		Logger.Warn().Str("log_level", cfg.Level).Msg("Unknown log level, using info")
	}
}

func newWriter(cfg Config) io.Writer {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if !cfg.Pretty {
		return out
	}

	timeFormat := cfg.TimeFormat
	if timeFormat == "" {
		timeFormat = time.RFC3339
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
		NoColor:    cfg.NoColor,
	}
}

// Debug returns a debug level event.
func Debug() *zerolog.Event {
	return Logger.Debug()
}

// Info returns an info level event.
func Info() *zerolog.Event {
	return Logger.Info()
}

// Warn returns a warning level event.
func Warn() *zerolog.Event {
	return Logger.Warn()
}

// Error returns an error level event.
func Error() *zerolog.Event {
	return Logger.Error()
}

// Stage returns an info level event tagged with a pipeline stage name.
func Stage(name string) *zerolog.Event {
	return Logger.Info().Str("stage", name)
}

// Table returns a child logger whose events carry the table name.
func Table(name string) *zerolog.Logger {
	l := Logger.With().Str("table", name).Logger()
	return &l
}

func init() {
	Init(DefaultConfig())
}
