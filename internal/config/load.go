package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

func (d *Duration) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		d.Duration = 0
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		u, err := strconv.Unquote(s)
		if err != nil {
			return err
		}
		if strings.TrimSpace(u) == "" {
			d.Duration = 0
			return nil
		}
		dd, err := time.ParseDuration(u)
		if err != nil {
			return err
		}
		d.Duration = dd
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("duration must be a JSON string like \"5s\" or an int nanoseconds: %w", err)
	}
	d.Duration = time.Duration(n)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

const DefaultGenerationBaseURL = "http://localhost:3001/api"

func Default() *Config {
	return &Config{
		Env: "development",
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: Duration{Duration: 5 * time.Second},
			IdleTimeout:       Duration{Duration: 2 * time.Minute},
			ShutdownTimeout:   Duration{Duration: 15 * time.Second},
			MaxRequestBytes:   1 << 20,
		},
		Generation: GenerationConfig{
			Backend:           BackendRemote,
			BaseURL:           DefaultGenerationBaseURL,
			Timeout:           Duration{Duration: 20 * time.Second},
			MaxRetries:        1,
			FailurePolicy:     PolicySoft,
			Validate:          true,
			RejectEmptyPrompt: true,
		},
		Cache: CacheConfig{
			TTL:       Duration{Duration: 10 * time.Minute},
			KeyPrefix: "coursehub:gen:",
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load applies, in order: defaults, the JSON file at COURSEHUB_CONFIG_PATH (or
// ./config/config.json when present), environment overrides, validation.
func Load() (*Config, error) {
	cfg := Default()

	cfgPath := strings.TrimSpace(os.Getenv("COURSEHUB_CONFIG_PATH"))
	if cfgPath == "" {
		if wd, err := os.Getwd(); err == nil {
			p := filepath.Join(wd, "config", "config.json")
			if _, err := os.Stat(p); err == nil {
				cfgPath = p
			}
		}
	}

	if cfgPath != "" {
		b, err := os.ReadFile(cfgPath)
		if err != nil {
			return nil, err
		}
		// Decode over the defaults so a partial file only overrides what it names.
		if err := json.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("LOG_MODE")); v != "" {
		cfg.Env = v
	}
	if v := strings.TrimSpace(os.Getenv("COURSEHUB_HTTP_ADDR")); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("COURSEHUB_ALLOWED_ORIGINS")); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("GENERATION_BACKEND")); v != "" {
		cfg.Generation.Backend = Backend(strings.ToLower(v))
	}
	if v := strings.TrimSpace(os.Getenv("GENERATION_BASE_URL")); v != "" {
		cfg.Generation.BaseURL = v
	}
	if n, ok := intEnv("GENERATION_TIMEOUT_SECONDS"); ok {
		cfg.Generation.Timeout = Duration{Duration: time.Duration(n) * time.Second}
	}
	if n, ok := intEnv("GENERATION_MAX_RETRIES"); ok {
		cfg.Generation.MaxRetries = n
	}
	if v := strings.TrimSpace(os.Getenv("GENERATION_FAILURE_POLICY")); v != "" {
		cfg.Generation.FailurePolicy = FailurePolicy(strings.ToLower(v))
	}
	if v := strings.TrimSpace(os.Getenv("GENERATION_VALIDATE")); v != "" {
		cfg.Generation.Validate = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv("GENERATION_REJECT_EMPTY_PROMPT")); v != "" {
		cfg.Generation.RejectEmptyPrompt = parseBool(v)
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok {
		cfg.Cache.RedisAddr = strings.TrimSpace(v)
	}
	if n, ok := intEnv("GENERATION_CACHE_TTL_SECONDS"); ok {
		cfg.Cache.TTL = Duration{Duration: time.Duration(n) * time.Second}
	}
	if v := strings.TrimSpace(os.Getenv("METRICS_ENABLED")); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

func (cfg *Config) normalize() error {
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.MaxRequestBytes <= 0 {
		cfg.HTTP.MaxRequestBytes = 1 << 20
	}

	g := &cfg.Generation
	switch Backend(strings.ToLower(strings.TrimSpace(string(g.Backend)))) {
	case "", BackendRemote:
		g.Backend = BackendRemote
	case BackendLocal:
		g.Backend = BackendLocal
	default:
		return fmt.Errorf("generation.backend %q must be remote or local", g.Backend)
	}
	g.BaseURL = strings.TrimRight(strings.TrimSpace(g.BaseURL), "/")
	if g.BaseURL == "" {
		return errors.New("generation.base_url is required")
	}
	u, err := url.Parse(g.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("generation.base_url %q is not an absolute URL", g.BaseURL)
	}
	if g.Timeout.Duration <= 0 {
		g.Timeout = Duration{Duration: 20 * time.Second}
	}
	if g.MaxRetries < 0 {
		return fmt.Errorf("generation.max_retries must be >= 0, got %d", g.MaxRetries)
	}
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(string(g.FailurePolicy)))) {
	case "", PolicySoft:
		g.FailurePolicy = PolicySoft
	case PolicyHard:
		g.FailurePolicy = PolicyHard
	default:
		return fmt.Errorf("generation.failure_policy %q must be soft or hard", g.FailurePolicy)
	}

	if cfg.Cache.TTL.Duration < 0 {
		return errors.New("cache.ttl must not be negative")
	}
	if cfg.Cache.TTL.Duration == 0 {
		cfg.Cache.TTL = Duration{Duration: 10 * time.Minute}
	}
	if strings.TrimSpace(cfg.Cache.KeyPrefix) == "" {
		cfg.Cache.KeyPrefix = "coursehub:gen:"
	}
	return nil
}

func intEnv(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}
