package config

const (
	// Mode values
	ModeOnetime   = "onetime"
	ModeAutomated = "automated"

	// Log Defaults
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "console"
	DefaultLogFile       = ""
	DefaultMaxLogSizeMB  = 100
	DefaultMaxLogBackups = 3

	// Storage Defaults
	DefaultStorageBaseDir          = "data"
	DefaultStorageCompressionCodec = "zstd"
	DefaultSavedContentCount       = 50

	// HTTP client Defaults
	DefaultHTTPUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultHTTPTimeoutSecs     = 30
	DefaultHTTPMaxRedirects    = 10
	DefaultHTTPMaxResponseSize = 10 * 1024 * 1024

	// Browser Defaults
	DefaultBrowserPageLoadTimeoutSecs = 30
	DefaultBrowserWindowWidth         = 1920
	DefaultBrowserWindowHeight        = 1080

	// Scanner Defaults
	DefaultScannerNmapPath  = "nmap"
	DefaultScannerPortRange = "0-65535"

	// Notification Defaults
	DefaultSMTPPort = 587

	// Scheduler Defaults
	DefaultSchedulerCycleMinutes = 60
	DefaultSchedulerSQLiteDBPath = "data/scheduler/cycle_history.db"
)
