package scanner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/aleister1102/feedwatch/internal/common"
	"github.com/aleister1102/feedwatch/internal/config"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

// CommandRunner executes an external program and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// NmapScanner implements HostScanner by running nmap with XML output.
type NmapScanner struct {
	config config.ScannerConfig
	run    CommandRunner
	logger zerolog.Logger
}

// NewNmapScanner creates a scanner using the scanner_config section.
func NewNmapScanner(cfg config.ScannerConfig, logger zerolog.Logger) *NmapScanner {
	return NewNmapScannerWithRunner(cfg, execRunner, logger)
}

// NewNmapScannerWithRunner replaces process execution, mainly for tests.
func NewNmapScannerWithRunner(cfg config.ScannerConfig, run CommandRunner, logger zerolog.Logger) *NmapScanner {
	return &NmapScanner{
		config: cfg,
		run:    run,
		logger: logger.With().Str("component", "NmapScanner").Logger(),
	}
}

// ScanHostTCPPorts runs a TCP connect scan of the configured port range.
func (s *NmapScanner) ScanHostTCPPorts(ctx context.Context, host string) (*ScanResult, error) {
	if s.config.TimeoutSecs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(s.config.TimeoutSecs)*time.Second)
		defer cancel()
	}

	tempDir, err := os.MkdirTemp("", "feedwatch-nmap-")
	if err != nil {
		return nil, common.WrapError(err, "failed to create scan directory")
	}
	defer os.RemoveAll(tempDir)

	xmlPath := filepath.Join(tempDir, fmt.Sprintf("nmap_scan_result_%s_%d.xml", slug.Make(host), time.Now().UnixNano()))
	args := []string{"-vv", "-Pn", "-sT", "-p" + s.config.PortRange, host, "-oX", xmlPath}

	start := time.Now()
	s.logger.Info().Str("host", host).Str("output", xmlPath).Msg("Scanning host")

	if output, err := s.run(ctx, s.config.NmapPath, args...); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		s.logger.Debug().Str("host", host).Bytes("output", output).Msg("nmap failed")
		return nil, fmt.Errorf("%w: nmap scan of %s: %w", ErrScanFailed, host, err)
	}

	f, err := os.Open(xmlPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading nmap output for %s: %w", ErrScanFailed, host, err)
	}
	defer f.Close()

	results, err := ParseNmapXML(f, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: nmap reported no host for %s", ErrScanFailed, host)
	}

	result := results[0]
	s.logger.Info().
		Str("host", host).
		Str("status", result.Status.String()).
		Ints("open_ports", result.OpenTCPPorts).
		Ints("filtered_ports", result.FilteredPorts).
		Dur("duration", time.Since(start)).
		Msg("Scan finished")
	return &result, nil
}
