package logger

import (
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/rs/zerolog"
)

// LogFormat selects how records are rendered.
type LogFormat int

const (
	FormatJSON LogFormat = iota
	FormatConsole
	// FormatText is the console layout without colours.
	FormatText
)

// LoggerConfig is the resolved form of config.LogConfig.
type LoggerConfig struct {
	Level  zerolog.Level
	Format LogFormat

	EnableConsole bool
	EnableFile    bool
	// FilePath is rotated by size once it reaches MaxSizeMB.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
}

// DefaultLoggerConfig logs info and above to the console only.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:         zerolog.InfoLevel,
		Format:        FormatConsole,
		EnableConsole: true,
		MaxSizeMB:     config.DefaultMaxLogSizeMB,
		MaxBackups:    config.DefaultMaxLogBackups,
	}
}
