package config

import (
	"errors"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		AppEnv:              "development",
		DataServiceURL:      "https://catalog.example.supabase.co",
		DataServiceKey:      "anon-key",
		LaptopTable:         "laptop_models",
		RequestTable:        "laptop_requests",
		RequestTimeout:      10 * time.Second,
		ListenAddr:          ":8080",
		LogLevel:            "info",
		LogFormat:           "console",
		SessionIdleTimeout:  30 * time.Minute,
		SubmitRatePerSecond: 1,
		SubmitBurst:         5,
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("DATA_SERVICE_URL", "https://catalog.example.supabase.co")
	t.Setenv("DATA_SERVICE_KEY", "anon-key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.LaptopTable != "laptop_models" {
		t.Errorf("Expected default LAPTOP_TABLE, got %s", cfg.LaptopTable)
	}
	if cfg.RequestTable != "laptop_requests" {
		t.Errorf("Expected default REQUEST_TABLE, got %s", cfg.RequestTable)
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("Expected default LISTEN_ADDR, got %s", cfg.ListenAddr)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("Expected default REQUEST_TIMEOUT, got %v", cfg.RequestTimeout)
	}
	if cfg.SessionIdleTimeout != 30*time.Minute {
		t.Errorf("Expected default SESSION_IDLE_TIMEOUT, got %v", cfg.SessionIdleTimeout)
	}
	if cfg.EnableMetrics {
		t.Error("Expected metrics to be disabled by default")
	}
}

func TestLoadWithEnvironment(t *testing.T) {
	t.Setenv("DATA_SERVICE_URL", "postgres://catalog@db.internal:5432/catalog")
	t.Setenv("DATA_SERVICE_KEY", "s3cret")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("ENABLE_METRICS", "true")
	t.Setenv("REQUEST_TIMEOUT", "3s")
	t.Setenv("LAPTOP_TABLE", "models")

	cfg, err := LoadAndValidate()
	if err != nil {
		t.Fatalf("LoadAndValidate() failed: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("Expected LISTEN_ADDR from env, got %s", cfg.ListenAddr)
	}
	if !cfg.EnableMetrics {
		t.Error("Expected ENABLE_METRICS from env")
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("Expected REQUEST_TIMEOUT from env, got %v", cfg.RequestTimeout)
	}
	if cfg.LaptopTable != "models" {
		t.Errorf("Expected LAPTOP_TABLE from env, got %s", cfg.LaptopTable)
	}
}

func TestLoadAndValidateMissingService(t *testing.T) {
	t.Setenv("DATA_SERVICE_URL", "")
	t.Setenv("DATA_SERVICE_KEY", "")

	_, err := LoadAndValidate()
	var cfgErr *StartupConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected StartupConfigError, got %v", err)
	}
	if len(cfgErr.Missing) != 2 {
		t.Errorf("Expected both variables reported missing, got %v", cfgErr.Missing)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "postgres endpoint", mutate: func(c *Config) { c.DataServiceURL = "postgresql://db.internal/catalog" }},
		{name: "missing url", mutate: func(c *Config) { c.DataServiceURL = "" }, expectError: true},
		{name: "blank key", mutate: func(c *Config) { c.DataServiceKey = "   " }, expectError: true},
		{name: "unsupported scheme", mutate: func(c *Config) { c.DataServiceURL = "ftp://catalog.example.com" }, expectError: true},
		{name: "missing host", mutate: func(c *Config) { c.DataServiceURL = "https://" }, expectError: true},
		{name: "empty table", mutate: func(c *Config) { c.LaptopTable = "" }, expectError: true},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }, expectError: true},
		{name: "idle timeout too short", mutate: func(c *Config) { c.SessionIdleTimeout = 30 * time.Second }, expectError: true},
		{name: "unknown log format", mutate: func(c *Config) { c.LogFormat = "xml" }, expectError: true},
		{name: "zero burst", mutate: func(c *Config) { c.SubmitBurst = 0 }, expectError: true},
		{name: "short admin secret", mutate: func(c *Config) { c.AdminKeySecret = "short" }, expectError: true},
		{name: "production without session secret", mutate: func(c *Config) { c.AppEnv = "production" }, expectError: true},
		{
			name: "production with session secret",
			mutate: func(c *Config) {
				c.AppEnv = "production"
				c.SessionSecret = "a-session-secret-that-is-long-enough"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.expectError {
				t.Errorf("Validate() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

func TestStartupConfigErrorMessage(t *testing.T) {
	err := &StartupConfigError{Missing: []string{"DATA_SERVICE_URL", "DATA_SERVICE_KEY"}}
	want := "missing required configuration: DATA_SERVICE_URL, DATA_SERVICE_KEY"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestBackendHelpers(t *testing.T) {
	cfg := validConfig()
	if cfg.IsPostgres() {
		t.Error("Expected https endpoint not to be reported as postgres")
	}
	if cfg.AdminEnabled() {
		t.Error("Expected admin surface disabled without a secret")
	}

	cfg.DataServiceURL = "postgres://catalog@db.internal/catalog"
	cfg.AdminKeySecret = "an-admin-signing-secret-of-32-chars!"
	if !cfg.IsPostgres() {
		t.Error("Expected postgres endpoint to be reported as postgres")
	}
	if !cfg.AdminEnabled() {
		t.Error("Expected admin surface enabled with a secret")
	}
}
