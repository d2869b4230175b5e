package config

// ScannerConfig configures the nmap based host scanner.
type ScannerConfig struct {
	NmapPath  string `json:"nmap_path,omitempty" yaml:"nmap_path,omitempty" validate:"required"`
	PortRange string `json:"port_range,omitempty" yaml:"port_range,omitempty" validate:"required"`
	// TimeoutSecs bounds a single host scan. Zero disables the bound.
	TimeoutSecs int `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=0"`
}

// NewDefaultScannerConfig creates default scanner configuration
func NewDefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		NmapPath:  DefaultScannerNmapPath,
		PortRange: DefaultScannerPortRange,
	}
}
