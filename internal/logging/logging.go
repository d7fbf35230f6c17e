// Package logging builds the structured loggers used across the arcade.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel parses a level name. An empty name means warn.
func ParseLevel(name string) (log.Level, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return log.WarnLevel, nil
	}
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return log.WarnLevel, fmt.Errorf("logging: unknown level %q", name)
	}
	return lvl, nil
}

// New returns a stderr logger at the named level. Unknown names fall back
// to warn.
func New(level, prefix string) *log.Logger {
	return NewWriter(os.Stderr, level, prefix)
}

// NewWriter is New writing to w.
func NewWriter(w io.Writer, level, prefix string) *log.Logger {
	lvl, err := ParseLevel(level)
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           lvl,
	})
	if err != nil {
		logger.Warn("ignoring log level", "error", err)
	}
	return logger
}
