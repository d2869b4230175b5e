package logger

import (
	"io"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/rs/zerolog"
)

// LoggerBuilder provides fluent interface for building loggers
type LoggerBuilder struct {
	config     LoggerConfig
	factory    *WriterFactory
	convertErr error
}

// NewLoggerBuilder creates a new logger builder
func NewLoggerBuilder() *LoggerBuilder {
	return &LoggerBuilder{
		config:  DefaultLoggerConfig(),
		factory: NewWriterFactory(),
	}
}

// WithConfig sets the logger configuration
func (lb *LoggerBuilder) WithConfig(cfg config.LogConfig) *LoggerBuilder {
	lb.config, lb.convertErr = ConvertConfig(cfg)
	return lb
}

// WithConsoleOutput redirects console output, mainly for tests.
func (lb *LoggerBuilder) WithConsoleOutput(w io.Writer) *LoggerBuilder {
	lb.factory.console = w
	return lb
}

// Build creates the logger. Global zerolog state is left untouched.
func (lb *LoggerBuilder) Build() (zerolog.Logger, error) {
	if lb.convertErr != nil {
		return zerolog.Nop(), lb.convertErr
	}
	if err := lb.validateConfig(); err != nil {
		return zerolog.Nop(), err
	}

	writers, err := lb.createWriters()
	if err != nil {
		return zerolog.Nop(), err
	}
	if len(writers) == 0 {
		return zerolog.Nop(), common.NewError("no output writers configured")
	}

	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lb.config.Level).
		With().
		Timestamp().
		Logger(), nil
}

func (lb *LoggerBuilder) validateConfig() error {
	if lb.config.EnableFile && lb.config.FilePath == "" {
		return common.NewValidationError("file_path", lb.config.FilePath, "file path required when file logging enabled")
	}
	if lb.config.MaxSizeMB <= 0 {
		return common.NewValidationError("max_size_mb", lb.config.MaxSizeMB, "max size must be positive")
	}
	return nil
}

func (lb *LoggerBuilder) createWriters() ([]io.Writer, error) {
	var writers []io.Writer

	if lb.config.EnableConsole {
		writers = append(writers, lb.factory.CreateConsoleWriter(lb.config.Format))
	}

	if lb.config.EnableFile {
		fileWriter, err := lb.factory.CreateFileWriter(lb.config)
		if err != nil {
			return nil, common.WrapError(err, "failed to create log file writer")
		}
		writers = append(writers, fileWriter)
	}

	return writers, nil
}
