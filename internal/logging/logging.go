// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats accepted by New and InitLogger.
const (
	FormatHuman = "human"
	FormatJSON  = "json"
)

// New builds a logger writing to out in the given format ("human" or "json").
func New(out io.Writer, format string) (zerolog.Logger, error) {
	zerolog.TimeFieldFormat = time.RFC3339Nano // always initialize base logger with timestamp.
	base := zerolog.New(out).With().Timestamp().Logger()

	switch strings.ToLower(format) {
	case FormatHuman, "":
		return base.Output(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339Nano,
		}), nil
	case FormatJSON:
		return base, nil
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
}

// InitLogger installs the global logger on stderr and sets the global level.
// Stdout is left to command output.
func InitLogger(level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}

	logger, err := New(os.Stderr, format)
	if err != nil {
		return err
	}

	log.Logger = logger
	zerolog.SetGlobalLevel(lvl)

	return nil
}

// ParseLevel maps a level name to a zerolog level. Empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if level == "" {
		return zerolog.InfoLevel, nil
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	return lvl, nil
}
