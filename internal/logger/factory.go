package logger

import (
	"io"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// WriterFactory creates writers based on format
type WriterFactory struct {
	console io.Writer
}

// NewWriterFactory creates a factory writing console output to stderr.
func NewWriterFactory() *WriterFactory {
	return &WriterFactory{console: os.Stderr}
}

func (wf *WriterFactory) strategyFor(format LogFormat, toFile bool) WriterStrategy {
	switch format {
	case FormatJSON:
		return &JSONWriterStrategy{}
	case FormatText:
		return &ConsoleWriterStrategy{NoColor: true}
	default:
		return &ConsoleWriterStrategy{NoColor: toFile}
	}
}

// CreateConsoleWriter creates a console writer
func (wf *WriterFactory) CreateConsoleWriter(format LogFormat) io.Writer {
	return wf.strategyFor(format, false).CreateWriter(wf.console)
}

// CreateFileWriter creates a size rotated file writer.
func (wf *WriterFactory) CreateFileWriter(cfg LoggerConfig) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, err
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}
	return wf.strategyFor(cfg.Format, true).CreateWriter(rotating), nil
}
