// Package scanner reports which TCP ports of a host are reachable.
package scanner

import (
	"context"
	"errors"
	"strconv"
)

// ErrScanFailed wraps every failure to obtain a scan result.
var ErrScanFailed = errors.New("host scan failed")

// HostStatus is the coarse reachability of a scanned host.
type HostStatus int

const (
	HostStatusDown HostStatus = iota
	HostStatusUp
	HostStatusUnknown
)

func (s HostStatus) String() string {
	switch s {
	case HostStatusDown:
		return "down"
	case HostStatusUp:
		return "up"
	case HostStatusUnknown:
		return "unknown"
	default:
		return "HostStatus(" + strconv.Itoa(int(s)) + ")"
	}
}

// ScanResult is the outcome of one TCP port scan.
type ScanResult struct {
	Host          string
	Address       string
	Status        HostStatus
	OpenTCPPorts  []int
	FilteredPorts []int
}

// HostScanner scans every TCP port of host.
type HostScanner interface {
	ScanHostTCPPorts(ctx context.Context, host string) (*ScanResult, error)
}
