package config

// SchedulerConfig defines configuration for automated mode
type SchedulerConfig struct {
	CycleMinutes int `json:"cycle_minutes,omitempty" yaml:"cycle_minutes,omitempty" validate:"min=1"`
	// Cron takes precedence over CycleMinutes when set. Standard five field syntax.
	Cron         string `json:"cron,omitempty" yaml:"cron,omitempty" validate:"omitempty,cronexpr"`
	SQLiteDBPath string `json:"sqlite_db_path,omitempty" yaml:"sqlite_db_path,omitempty" validate:"required"`
}

// NewDefaultSchedulerConfig creates default scheduler configuration
func NewDefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		CycleMinutes: DefaultSchedulerCycleMinutes,
		SQLiteDBPath: DefaultSchedulerSQLiteDBPath,
	}
}
