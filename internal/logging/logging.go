// Package logging builds the diagnostic logger used by the CLI. Response
// output and wire traces are not logged; they go to stdout and stderr
// directly.
package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel is used when no level is given.
const DefaultLevel = "warn"

// ParseLevel accepts debug, info, warn, error or disabled.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		level = DefaultLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q", level)
	}
	return lvl, nil
}

// New returns a console logger writing to w at the given level.
func New(w io.Writer, level string, noColor bool) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: time.TimeOnly,
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
