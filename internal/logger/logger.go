package logger

import (
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/rs/zerolog"
)

// New builds the process logger from the log section of the configuration.
func New(cfg config.LogConfig) (zerolog.Logger, error) {
	return NewLoggerBuilder().WithConfig(cfg).Build()
}
