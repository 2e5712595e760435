// Package logging builds the process-wide structured logger, using
// logiface as the facade and logiface/zerolog as its backend, writing to
// stderr in the console-friendly format the original runtime's spdlog
// setup uses.
package logging

import (
	"os"

	"github.com/joeycumines/go-utilpkg/logiface"
	zl "github.com/joeycumines/go-utilpkg/logiface/zerolog"
	"github.com/rs/zerolog"
)

// Logger is the concrete logger type threaded through every component in
// this module, rather than a package-level global.
type Logger = *logiface.Logger[*zl.Event]

// Level mirrors the config-file level strings this runtime accepts.
type Level = logiface.Level

// ParseLevel maps a config string to a Level. An unrecognized value returns
// LevelInformational and ok=false, matching the original's
// `spdlog::warn("Unknown log level {}", value)` fallback in bootstrap.cpp.
func ParseLevel(s string) (level Level, ok bool) {
	switch s {
	case "trace":
		return logiface.LevelTrace, true
	case "debug":
		return logiface.LevelDebug, true
	case "info", "":
		return logiface.LevelInformational, true
	case "warn", "warning":
		return logiface.LevelWarning, true
	case "error":
		return logiface.LevelError, true
	default:
		return logiface.LevelInformational, false
	}
}

// New builds a Logger at the given level, writing console-formatted output
// to stderr.
func New(level Level) Logger {
	z := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05.000"}).With().Timestamp().Logger()
	return logiface.New[*zl.Event](
		zl.WithZerolog(z),
		logiface.WithLevel[*zl.Event](level),
	)
}
