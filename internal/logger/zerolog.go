package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerolog(writer io.Writer, level zerolog.Level) *ZerologAdapter {
	logger := zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &ZerologAdapter{logger: logger}
}

func NewConsoleLogger(level zerolog.Level) *ZerologAdapter {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr}
	return NewZerolog(consoleWriter, level)
}

// With returns a child logger carrying the given fields on every event.
func (z *ZerologAdapter) With(fields map[string]interface{}) *ZerologAdapter {
	return &ZerologAdapter{logger: z.logger.With().Fields(fields).Logger()}
}

func (z *ZerologAdapter) Info(component, message string, fields map[string]interface{}) {
	z.logger.Info().Str("component", component).Fields(fields).Msg(message)
}

func (z *ZerologAdapter) Error(component string, err error, fields map[string]interface{}) {
	z.logger.Error().Str("component", component).Err(err).Fields(fields).Msg("operation failed")
}

func (z *ZerologAdapter) Warning(component, message string, fields map[string]interface{}) {
	z.logger.Warn().Str("component", component).Fields(fields).Msg(message)
}

func (z *ZerologAdapter) Debug(component, message string, fields map[string]interface{}) {
	z.logger.Debug().Str("component", component).Fields(fields).Msg(message)
}
