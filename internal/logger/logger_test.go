package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultLogger(t *testing.T) {
	log, err := New(config.NewDefaultLogConfig())
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}

func TestBuild_JSONConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.NewDefaultLogConfig()
	cfg.LogFormat = "json"
	cfg.LogLevel = "debug"

	log, err := NewLoggerBuilder().WithConfig(cfg).WithConsoleOutput(&buf).Build()
	require.NoError(t, err)

	log.Debug().Str("component", "Test").Msg("hello")
	assert.Contains(t, buf.String(), `"component":"Test"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestBuild_DoesNotTouchGlobalLevel(t *testing.T) {
	before := zerolog.GlobalLevel()
	cfg := config.NewDefaultLogConfig()
	cfg.LogLevel = "error"

	_, err := NewLoggerBuilder().WithConfig(cfg).WithConsoleOutput(&bytes.Buffer{}).Build()
	require.NoError(t, err)
	assert.Equal(t, before, zerolog.GlobalLevel())
}

func TestBuild_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "feedwatch.log")
	cfg := config.NewDefaultLogConfig()
	cfg.LogFile = path
	cfg.LogFormat = "text"

	log, err := NewLoggerBuilder().WithConfig(cfg).WithConsoleOutput(&bytes.Buffer{}).Build()
	require.NoError(t, err)
	log.Info().Msg("written to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestBuild_InvalidLevel(t *testing.T) {
	cfg := config.NewDefaultLogConfig()
	cfg.LogLevel = "loud"

	_, err := NewLoggerBuilder().WithConfig(cfg).Build()
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, ParseFormat("JSON"))
	assert.Equal(t, FormatText, ParseFormat("text"))
	assert.Equal(t, FormatConsole, ParseFormat(""))
	assert.Equal(t, FormatConsole, ParseFormat("unknown"))
}
