package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the component-tagged logging contract used across the engine.
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// ParseLevel maps a configuration level name onto a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("unknown log level: %s", level)
	}
}

// New builds a logger writing to w in the requested format.
func New(w io.Writer, format Format, level zerolog.Level) *ZerologAdapter {
	if w == nil {
		w = os.Stderr
	}
	if format == FormatJSON {
		return NewZerolog(w, level)
	}
	return NewZerolog(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}, level)
}

// NewNop returns a logger that discards everything.
func NewNop() *ZerologAdapter {
	return &ZerologAdapter{logger: zerolog.Nop()}
}
