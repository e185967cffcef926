package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, k := range []string{
		"COURSEHUB_CONFIG_PATH", "LOG_MODE", "COURSEHUB_HTTP_ADDR", "COURSEHUB_ALLOWED_ORIGINS",
		"GENERATION_BACKEND", "GENERATION_BASE_URL", "GENERATION_TIMEOUT_SECONDS", "GENERATION_MAX_RETRIES",
		"GENERATION_FAILURE_POLICY", "GENERATION_VALIDATE", "GENERATION_REJECT_EMPTY_PROMPT",
		"GENERATION_CACHE_TTL_SECONDS", "METRICS_ENABLED",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("REDIS_ADDR", "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generation.BaseURL != DefaultGenerationBaseURL {
		t.Fatalf("BaseURL: want=%q got=%q", DefaultGenerationBaseURL, cfg.Generation.BaseURL)
	}
	if cfg.Generation.FailurePolicy != PolicySoft {
		t.Fatalf("FailurePolicy: want=%q got=%q", PolicySoft, cfg.Generation.FailurePolicy)
	}
	if cfg.Generation.Backend != BackendRemote {
		t.Fatalf("Backend: want=%q got=%q", BackendRemote, cfg.Generation.Backend)
	}
	if !cfg.Generation.Validate {
		t.Fatalf("Validate: want=true")
	}
	if !cfg.Generation.RejectEmptyPrompt {
		t.Fatalf("RejectEmptyPrompt: want=true")
	}
	if cfg.Generation.Timeout.Duration != 20*time.Second {
		t.Fatalf("Timeout: got=%s", cfg.Generation.Timeout.Duration)
	}
	if cfg.Cache.RedisAddr != "" {
		t.Fatalf("RedisAddr: want empty got=%q", cfg.Cache.RedisAddr)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("Addr: got=%q", cfg.HTTP.Addr)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GENERATION_BASE_URL", "http://gen.internal:9000/api/")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "3")
	t.Setenv("GENERATION_MAX_RETRIES", "0")
	t.Setenv("GENERATION_FAILURE_POLICY", "HARD")
	t.Setenv("GENERATION_VALIDATE", "false")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("GENERATION_CACHE_TTL_SECONDS", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generation.BaseURL != "http://gen.internal:9000/api" {
		t.Fatalf("BaseURL: got=%q", cfg.Generation.BaseURL)
	}
	if cfg.Generation.Timeout.Duration != 3*time.Second {
		t.Fatalf("Timeout: got=%s", cfg.Generation.Timeout.Duration)
	}
	if cfg.Generation.MaxRetries != 0 {
		t.Fatalf("MaxRetries: got=%d", cfg.Generation.MaxRetries)
	}
	if cfg.Generation.FailurePolicy != PolicyHard {
		t.Fatalf("FailurePolicy: got=%q", cfg.Generation.FailurePolicy)
	}
	if cfg.Generation.Validate {
		t.Fatalf("Validate: want=false")
	}
	if cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.TTL.Duration != 30*time.Second {
		t.Fatalf("Cache: got=%+v", cfg.Cache)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	isolate(t)
	p := filepath.Join(t.TempDir(), "config.json")
	body := `{"http":{"addr":":9090"},"generation":{"base_url":"http://file:1/api","timeout":"7s","failure_policy":"hard"}}`
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("COURSEHUB_CONFIG_PATH", p)
	t.Setenv("GENERATION_FAILURE_POLICY", "soft")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("Addr: got=%q", cfg.HTTP.Addr)
	}
	if cfg.Generation.Timeout.Duration != 7*time.Second {
		t.Fatalf("Timeout: got=%s", cfg.Generation.Timeout.Duration)
	}
	if cfg.Generation.FailurePolicy != PolicySoft {
		t.Fatalf("env should win over file, got=%q", cfg.Generation.FailurePolicy)
	}
	// Keys the file does not name keep their defaults.
	if !cfg.Generation.Validate {
		t.Fatalf("Validate: want default true")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "policy", env: map[string]string{"GENERATION_FAILURE_POLICY": "maybe"}},
		{name: "relative url", env: map[string]string{"GENERATION_BASE_URL": "localhost/api"}},
		{name: "negative retries", env: map[string]string{"GENERATION_MAX_RETRIES": "-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("Load: expected error")
			}
		})
	}
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	if err := d.UnmarshalJSON([]byte(`"1m30s"`)); err != nil {
		t.Fatalf("string: %v", err)
	}
	if d.Duration != 90*time.Second {
		t.Fatalf("got=%s", d.Duration)
	}
	if err := d.UnmarshalJSON([]byte(`1000`)); err != nil {
		t.Fatalf("int: %v", err)
	}
	if d.Duration != time.Microsecond {
		t.Fatalf("got=%s", d.Duration)
	}
	if err := d.UnmarshalJSON([]byte(`"soon"`)); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func TestLoadGenerationBackend(t *testing.T) {
	isolate(t)

	t.Setenv("GENERATION_BACKEND", "Local")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Generation.Backend != BackendLocal {
		t.Fatalf("Backend: want=%q got=%q", BackendLocal, cfg.Generation.Backend)
	}

	t.Setenv("GENERATION_BACKEND", "cloud")
	if _, err := Load(); err == nil {
		t.Fatalf("Load: want error for unknown backend")
	}
}
