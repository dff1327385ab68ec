package types

import "time"

// HTTPConfig holds shared HTTP settings used for requests to the search endpoint.
type HTTPConfig struct {
	// Timeout bounds one search call, retries included.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "tmsearch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the remote search client.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the scheme and host of the search endpoint; the client
	// appends /api/v3/{country}.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Rows is the page size requested from the endpoint (default 10).
	Rows int `json:"rows" yaml:"rows"`

	// MaxAttempts caps attempts per search on 429/503 responses (1 or 2).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RateLimit is the maximum sustained requests per second; 0 disables pacing.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`
}

// ControllerConfig holds settings for the search controller.
type ControllerConfig struct {
	// FetchTimeout is imposed on every fetch the controller issues (default 10s).
	FetchTimeout time.Duration `json:"fetch_timeout" yaml:"fetch_timeout"`

	// KeepStaleResult keeps the last good result visible after a failure.
	KeepStaleResult bool `json:"keep_stale_result" yaml:"keep_stale_result"`
}

// Config groups everything the CLI loads from flags, file and environment.
type Config struct {
	Search     SearchConfig     `json:"search" yaml:"search"`
	Controller ControllerConfig `json:"controller" yaml:"controller"`
	LogLevel   string           `json:"log_level" yaml:"log_level"`
}
