package config

// StorageConfig defines where subject state lives and how long outcome logs are kept.
type StorageConfig struct {
	BaseDir string `json:"base_dir,omitempty" yaml:"base_dir,omitempty" validate:"required"`
	// MaxLogMonths bounds the number of monthly request logs kept per subject.
	// Zero keeps every month.
	MaxLogMonths      int    `json:"max_log_months,omitempty" yaml:"max_log_months,omitempty" validate:"min=0"`
	ArchivePrunedLogs bool   `json:"archive_pruned_logs" yaml:"archive_pruned_logs"`
	CompressionCodec  string `json:"compression_codec,omitempty" yaml:"compression_codec,omitempty" validate:"omitempty,oneof=zstd gzip snappy none"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		BaseDir:           DefaultStorageBaseDir,
		MaxLogMonths:      0,
		ArchivePrunedLogs: false,
		CompressionCodec:  DefaultStorageCompressionCodec,
	}
}
