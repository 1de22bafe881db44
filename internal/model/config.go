package model

import (
	"runtime"
	"time"
)

// DefaultBaseURL is used when no API URL is configured
const DefaultBaseURL = "http://localhost:3000"

// Config holds every tunable of the dashboard client
type Config struct {
	API    APIConfig    `yaml:"api" mapstructure:"api"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// APIConfig configures the backend client
type APIConfig struct {
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// CacheConfig configures the query cache. With Enabled false every read
// goes to the backend, but concurrent reads of one key are still shared.
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	StaleTime       time.Duration `yaml:"stale_time" mapstructure:"stale_time"`
	GCTime          time.Duration `yaml:"gc_time" mapstructure:"gc_time"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// BatchConfig configures batch verification
type BatchConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
	// VerifiesPerSecond paces verify-batch on its own; 0 keeps the API rate
	VerifiesPerSecond float64 `yaml:"verifies_per_second" mapstructure:"verifies_per_second"`
}

// OutputConfig configures what the CLI prints
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	NoColor bool `yaml:"no_color" mapstructure:"no_color"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           DefaultBaseURL,
			Timeout:           30 * time.Second,
			UserAgent:         "Trustboard/0.1 (+https://github.com/ppiankov/trustboard)",
			MaxBodyBytes:      5_000_000,
			RequestsPerSecond: 10,
			Burst:             5,
		},
		Cache: CacheConfig{
			Enabled:         true,
			StaleTime:       time.Minute,
			GCTime:          5 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Batch: BatchConfig{
			Workers:           runtime.NumCPU(),
			VerifiesPerSecond: 2,
		},
	}
}
