package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds the startup parameters of the catalog application.
type Config struct {
	AppEnv string `env:"APP_ENV" default:"development"`

	// DataServiceURL and DataServiceKey locate and authorize the hosted
	// data store. Both are required.
	DataServiceURL string        `env:"DATA_SERVICE_URL"`
	DataServiceKey string        `env:"DATA_SERVICE_KEY"`
	LaptopTable    string        `env:"LAPTOP_TABLE" default:"laptop_models"`
	RequestTable   string        `env:"REQUEST_TABLE" default:"laptop_requests"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" default:"10s"`

	ListenAddr    string `env:"LISTEN_ADDR" default:":8080"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"console"`
	EnableMetrics bool   `env:"ENABLE_METRICS" default:"false"`

	SessionSecret      string        `env:"SESSION_SECRET"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" default:"30m"`

	SubmitRatePerSecond float64 `env:"SUBMIT_RATE_PER_SECOND" default:"1"`
	SubmitBurst         int     `env:"SUBMIT_BURST" default:"5"`

	// AdminKeySecret enables the catalog import endpoint when set. Admin
	// keys are HS256 JWTs signed with it carrying the service_role role.
	AdminKeySecret    string `env:"ADMIN_KEY_SECRET"`
	AdminKeyIssuer    string `env:"ADMIN_KEY_ISSUER" default:"laptop-request-catalog"`
	ImportMappingPath string `env:"IMPORT_MAPPING_PATH"`
}

// StartupConfigError reports configuration that prevents the application
// from starting. It is never recovered from.
type StartupConfigError struct {
	Missing []string
	Err     error
}

func (e *StartupConfigError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *StartupConfigError) Unwrap() error { return e.Err }

// Load reads the configuration from the environment. A .env file in the
// working directory is honoured when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, &StartupConfigError{Err: err}
	}
	return &cfg, nil
}

// LoadAndValidate loads the configuration and validates it.
func LoadAndValidate() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.DataServiceURL) == "" {
		missing = append(missing, "DATA_SERVICE_URL")
	}
	if strings.TrimSpace(c.DataServiceKey) == "" {
		missing = append(missing, "DATA_SERVICE_KEY")
	}
	if len(missing) > 0 {
		return &StartupConfigError{Missing: missing}
	}

	u, err := url.Parse(c.DataServiceURL)
	if err != nil {
		return &StartupConfigError{Err: fmt.Errorf("DATA_SERVICE_URL: %w", err)}
	}
	switch u.Scheme {
	case "http", "https", "postgres", "postgresql":
	default:
		return &StartupConfigError{Err: fmt.Errorf("DATA_SERVICE_URL: unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return &StartupConfigError{Err: errors.New("DATA_SERVICE_URL: host is required")}
	}

	if c.LaptopTable == "" || c.RequestTable == "" {
		return &StartupConfigError{Err: errors.New("LAPTOP_TABLE and REQUEST_TABLE must not be empty")}
	}
	if c.RequestTimeout <= 0 {
		return &StartupConfigError{Err: errors.New("REQUEST_TIMEOUT must be positive")}
	}
	if c.SessionIdleTimeout < time.Minute {
		return &StartupConfigError{Err: errors.New("SESSION_IDLE_TIMEOUT must be at least 1m")}
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return &StartupConfigError{Err: fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)}
	}
	if c.SubmitRatePerSecond <= 0 || c.SubmitBurst <= 0 {
		return &StartupConfigError{Err: errors.New("SUBMIT_RATE_PER_SECOND and SUBMIT_BURST must be positive")}
	}
	if c.AdminKeySecret != "" && len(c.AdminKeySecret) < 32 {
		return &StartupConfigError{Err: errors.New("ADMIN_KEY_SECRET must be at least 32 characters")}
	}
	if c.IsProduction() && len(c.SessionSecret) < 32 {
		return &StartupConfigError{Err: errors.New("SESSION_SECRET must be at least 32 characters in production")}
	}
	return nil
}

// AdminEnabled reports whether the admin import surface is configured.
func (c *Config) AdminEnabled() bool {
	return c.AdminKeySecret != ""
}

// IsPostgres reports whether the data service is reached directly over the
// Postgres protocol.
func (c *Config) IsPostgres() bool {
	u, err := url.Parse(c.DataServiceURL)
	return err == nil && (u.Scheme == "postgres" || u.Scheme == "postgresql")
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
