package config

import "time"

type Duration struct {
	Duration time.Duration
}

type HTTPConfig struct {
	Addr              string   `json:"addr"`
	ReadHeaderTimeout Duration `json:"read_header_timeout"`
	IdleTimeout       Duration `json:"idle_timeout"`
	ShutdownTimeout   Duration `json:"shutdown_timeout"`
	MaxRequestBytes   int64    `json:"max_request_bytes"`

	// AllowedOrigins overrides the local dev origins used for CORS.
	AllowedOrigins []string `json:"allowed_origins,omitempty"`
}

type FailurePolicy string

const (
	// PolicySoft substitutes a local fallback response for any remote failure.
	PolicySoft FailurePolicy = "soft"
	// PolicyHard surfaces remote failures as typed errors.
	PolicyHard FailurePolicy = "hard"
)

type Backend string

const (
	// BackendRemote posts to the generation service at BaseURL.
	BackendRemote Backend = "remote"
	// BackendLocal answers from the course catalog without any network call.
	BackendLocal Backend = "local"
)

type GenerationConfig struct {
	Backend Backend `json:"backend"`

	// BaseURL is the generation backend root; requests go to {BaseURL}/generate.
	BaseURL    string   `json:"base_url"`
	Timeout    Duration `json:"timeout"`
	MaxRetries int      `json:"max_retries"`

	FailurePolicy FailurePolicy `json:"failure_policy"`

	// Validate checks quiz and mindmap shapes before a remote response is accepted.
	Validate          bool `json:"validate"`
	RejectEmptyPrompt bool `json:"reject_empty_prompt"`
}

type CacheConfig struct {
	// RedisAddr enables the response cache when set.
	RedisAddr string   `json:"redis_addr,omitempty"`
	TTL       Duration `json:"ttl"`
	KeyPrefix string   `json:"key_prefix"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled"`
}

type Config struct {
	Env        string           `json:"env"`
	HTTP       HTTPConfig       `json:"http"`
	Generation GenerationConfig `json:"generation"`
	Cache      CacheConfig      `json:"cache"`
	Metrics    MetricsConfig    `json:"metrics"`
}
