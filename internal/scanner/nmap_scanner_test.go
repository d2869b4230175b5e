package scanner

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outputPath returns the value following -oX.
func outputPath(t *testing.T, args []string) string {
	t.Helper()
	for i, a := range args {
		if a == "-oX" && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("no -oX argument in %v", args)
	return ""
}

func TestNmapScanner_ScanHostTCPPorts(t *testing.T) {
	var gotName string
	var gotArgs []string
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return nil, os.WriteFile(outputPath(t, args), []byte(nmapUpXML), 0644)
	}

	s := NewNmapScannerWithRunner(config.NewDefaultScannerConfig(), runner, zerolog.Nop())
	result, err := s.ScanHostTCPPorts(context.Background(), "example.com")
	require.NoError(t, err)

	assert.Equal(t, "nmap", gotName)
	assert.Equal(t, []string{"-vv", "-Pn", "-sT", "-p0-65535", "example.com", "-oX"}, gotArgs[:6])
	assert.Equal(t, HostStatusUp, result.Status)
	assert.Equal(t, []int{22, 443}, result.OpenTCPPorts)

	_, err = os.Stat(outputPath(t, gotArgs))
	assert.True(t, os.IsNotExist(err), "temporary scan output is removed")
}

func TestNmapScanner_CommandFailure(t *testing.T) {
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("nmap: not found"), errors.New("exit status 127")
	}

	s := NewNmapScannerWithRunner(config.NewDefaultScannerConfig(), runner, zerolog.Nop())
	_, err := s.ScanHostTCPPorts(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrScanFailed)
}

func TestNmapScanner_Timeout(t *testing.T) {
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		<-ctx.Done()
		return nil, errors.New("signal: killed")
	}

	cfg := config.NewDefaultScannerConfig()
	cfg.TimeoutSecs = 1
	s := NewNmapScannerWithRunner(cfg, runner, zerolog.Nop())

	_, err := s.ScanHostTCPPorts(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrScanFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNmapScanner_NoHostInOutput(t *testing.T) {
	runner := func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, os.WriteFile(outputPath(t, args), []byte(`<nmaprun/>`), 0644)
	}

	s := NewNmapScannerWithRunner(config.NewDefaultScannerConfig(), runner, zerolog.Nop())
	_, err := s.ScanHostTCPPorts(context.Background(), "example.com")
	assert.ErrorIs(t, err, ErrScanFailed)
}
