package cache

import "github.com/rs/zerolog"

// zerologAdapter forwards backend errors to a zerolog logger.
type zerologAdapter struct {
	logger zerolog.Logger
}

// NewZerologLogger adapts a zerolog.Logger to the cache Logger interface.
func NewZerologLogger(logger zerolog.Logger) Logger {
	return &zerologAdapter{logger: logger}
}

func (z *zerologAdapter) Error(msg string, err error) {
	z.logger.Error().Err(err).Msg(msg)
}
