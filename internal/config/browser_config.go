package config

// BrowserConfig configures the headless browser used for rendered pages.
type BrowserConfig struct {
	ChromePath          string   `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	UserDataDir         string   `json:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty"`
	WindowWidth         int      `json:"window_width,omitempty" yaml:"window_width,omitempty" validate:"omitempty,min=100"`
	WindowHeight        int      `json:"window_height,omitempty" yaml:"window_height,omitempty" validate:"omitempty,min=100"`
	PageLoadTimeoutSecs int      `json:"page_load_timeout_secs,omitempty" yaml:"page_load_timeout_secs,omitempty" validate:"omitempty,min=1"`
	DisableImages       bool     `json:"disable_images" yaml:"disable_images"`
	BrowserArgs         []string `json:"browser_args,omitempty" yaml:"browser_args,omitempty"`
}

// NewDefaultBrowserConfig creates default browser configuration
func NewDefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		WindowWidth:         DefaultBrowserWindowWidth,
		WindowHeight:        DefaultBrowserWindowHeight,
		PageLoadTimeoutSecs: DefaultBrowserPageLoadTimeoutSecs,
		DisableImages:       true,
	}
}
