// Package config loads and stores CLI configuration in the XDG config dir.
// Only non-secret settings are kept here; the session token goes to the
// configured durable storage backend.
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

	"irms/cli/internal/dsn"
	apperrors "irms/cli/internal/errors"
	"irms/cli/internal/xdg"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Storage backend names accepted in StorageConfig.Backend.
const (
	StorageKeyring  = "keyring"
	StorageFile     = "file"
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config holds non-sensitive CLI settings. Fields tagged env can be
// overridden by the named IRMS_* variable.
type Config struct {
	BaseURL            string        `json:"base_url" env:"IRMS_BASE_URL"`
	Endpoints          Endpoints     `json:"endpoints"`
	LoginPath          string        `json:"login_path" env:"IRMS_LOGIN_PATH"`
	LogLevel           string        `json:"log_level" env:"IRMS_LOG_LEVEL"`
	HTTPTimeoutSeconds int           `json:"http_timeout_seconds" env:"IRMS_HTTP_TIMEOUT_SECONDS"`
	Storage            StorageConfig `json:"storage"`
	// Verbose forces debug logging; env only.
	Verbose bool `json:"-" env:"IRMS_VERBOSE"`
}

// Endpoints contains REST API endpoint paths on BaseURL.
type Endpoints struct {
	Token   string `json:"token"`   // e.g., "/token"
	Profile string `json:"profile"` // e.g., "/users/me"
}

// StorageConfig selects where the session token is persisted.
type StorageConfig struct {
	Backend   string `json:"backend" env:"IRMS_STORAGE"`
	RedisAddr string `json:"redis_addr,omitempty" env:"IRMS_REDIS_ADDR"`
	RedisDB   int    `json:"redis_db,omitempty" env:"IRMS_REDIS_DB"`
	// PostgresDSN is normally supplied through IRMS_POSTGRES_DSN and never saved.
	PostgresDSN string `json:"-" env:"IRMS_POSTGRES_DSN"`
	// KeyringPassword unlocks the file keyring; env only.
	KeyringPassword string `json:"-" env:"IRMS_KEYRING_PASSWORD"`
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		BaseURL: "http://localhost:8000",
		Endpoints: Endpoints{
			Token:   "/token",
			Profile: "/users/me",
		},
		LoginPath:          "/login",
		LogLevel:           "info",
		HTTPTimeoutSeconds: 10,
		Storage:            StorageConfig{Backend: StorageKeyring},
	}
}

// HTTPTimeout returns the per-request timeout for the remote service.
func (c Config) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// Validate reports settings the CLI cannot run with.
func (c Config) Validate() error {
	if err := c.validateSettings(); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case StorageRedis:
		if c.Storage.RedisAddr == "" {
			return apperrors.New(apperrors.ConfigInvalid, "storage backend redis requires redis_addr or IRMS_REDIS_ADDR")
		}
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			return apperrors.New(apperrors.ConfigInvalid, "storage backend postgres requires IRMS_POSTGRES_DSN")
		}
		if _, err := dsn.Parse(c.Storage.PostgresDSN); err != nil {
			return apperrors.Wrap(apperrors.ConfigInvalid, "IRMS_POSTGRES_DSN", err)
		}
	}
	return nil
}

// validateSettings checks what a config file can express on its own; values
// that may still arrive from the environment are left to Validate.
func (c Config) validateSettings() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.New(apperrors.ConfigInvalid, fmt.Sprintf("base_url %q must be an absolute URL", c.BaseURL))
	}
	if !strings.HasPrefix(c.LoginPath, "/") {
		return apperrors.New(apperrors.ConfigInvalid, fmt.Sprintf("login_path %q must start with /", c.LoginPath))
	}
	switch c.Storage.Backend {
	case StorageKeyring, StorageFile, StorageMemory, StorageRedis, StoragePostgres:
	default:
		return apperrors.New(apperrors.ConfigInvalid, fmt.Sprintf("unknown storage backend %q", c.Storage.Backend))
	}
	return nil
}

// Path returns the path to the config file.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads configuration from the XDG config dir; missing file returns defaults.
// Environment overrides are applied last, after a .env file in the working
// directory has been loaded without replacing variables already set.
func Load() (Config, error) {
	_ = godotenv.Load()

	p, err := Path()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(p)
}

// LoadFrom reads configuration from p and applies environment overrides;
// missing file returns defaults.
func LoadFrom(p string) (Config, error) {
	c, err := ReadFile(p)
	if err != nil {
		return c, err
	}
	if err := env.Load(&c, nil); err != nil {
		return c, apperrors.Wrap(apperrors.ConfigInvalid, "read IRMS_* environment", err)
	}
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	return c, nil
}

// ReadFile reads configuration from p without environment overrides;
// missing file returns defaults.
func ReadFile(p string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, err
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return c, apperrors.Wrap(apperrors.ConfigInvalid, "parse "+p, err)
		}
	}
	return c, nil
}

// Keys accepted by Set.
var Keys = []string{
	"base_url", "login_path", "log_level", "http_timeout_seconds",
	"endpoints.token", "endpoints.profile",
	"storage.backend", "storage.redis_addr", "storage.redis_db",
}

// Set assigns value to the setting named key (see Keys), checking the value.
// Secrets are not settable; they come from the environment only.
func Set(c *Config, key, value string) error {
	value = strings.TrimSpace(value)
	invalid := func(reason string) error {
		return apperrors.New(apperrors.ConfigInvalid, fmt.Sprintf("%s: %s", key, reason))
	}
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return 0, invalid(fmt.Sprintf("%q is not a non-negative integer", value))
		}
		return n, nil
	}

	next := *c
	switch key {
	case "base_url":
		next.BaseURL = strings.TrimRight(value, "/")
	case "login_path":
		next.LoginPath = value
	case "log_level":
		next.LogLevel = value
	case "http_timeout_seconds":
		n, err := atoi()
		if err != nil {
			return err
		}
		next.HTTPTimeoutSeconds = n
	case "endpoints.token", "endpoints.profile":
		if !strings.HasPrefix(value, "/") {
			return invalid("must start with /")
		}
		if key == "endpoints.token" {
			next.Endpoints.Token = value
		} else {
			next.Endpoints.Profile = value
		}
	case "storage.backend":
		next.Storage.Backend = value
	case "storage.redis_addr":
		next.Storage.RedisAddr = value
	case "storage.redis_db":
		n, err := atoi()
		if err != nil {
			return err
		}
		next.Storage.RedisDB = n
	default:
		return invalid("unknown setting, expected one of " + strings.Join(Keys, ", "))
	}

	if err := next.validateSettings(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Save writes configuration to the XDG config dir with 0600 permissions.
func Save(c Config) error {
	p, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(p, c)
}

// SaveTo writes configuration to p with 0600 permissions.
func SaveTo(p string, c Config) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o600)
}
