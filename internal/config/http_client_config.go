package config

import "time"

// HTTPClientConfig configures the shared HTTP fetcher.
type HTTPClientConfig struct {
	TimeoutSecs        int               `json:"timeout_secs,omitempty" yaml:"timeout_secs,omitempty" validate:"min=1"`
	UserAgent          string            `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	InsecureSkipVerify bool              `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	FollowRedirects    bool              `json:"follow_redirects" yaml:"follow_redirects"`
	MaxRedirects       int               `json:"max_redirects,omitempty" yaml:"max_redirects,omitempty" validate:"min=0"`
	MaxResponseBytes   int64             `json:"max_response_bytes,omitempty" yaml:"max_response_bytes,omitempty" validate:"min=0"`
	EnableHTTP2        bool              `json:"enable_http2" yaml:"enable_http2"`
	CustomHeaders      map[string]string `json:"custom_headers,omitempty" yaml:"custom_headers,omitempty"`
}

// NewDefaultHTTPClientConfig creates default HTTP client configuration
func NewDefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		TimeoutSecs:      DefaultHTTPTimeoutSecs,
		UserAgent:        DefaultHTTPUserAgent,
		FollowRedirects:  true,
		MaxRedirects:     DefaultHTTPMaxRedirects,
		MaxResponseBytes: DefaultHTTPMaxResponseSize,
		EnableHTTP2:      true,
		CustomHeaders: map[string]string{
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.9",
		},
	}
}

// Timeout returns the request timeout as a duration.
func (c HTTPClientConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}
