// Package config loads projectchat settings.
//
// Settings are layered, later layers winning:
//   - built-in defaults
//   - ~/.projectchat/config.toml (or an explicit path)
//   - a .env file in the working directory
//   - PROJECTCHAT_* environment variables
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	defaultBaseURL  = "http://127.0.0.1:8000"
	defaultDirName  = ".projectchat"
	configFileName  = "config.toml"
	stateFileName   = "state.db"
	defaultLogLevel = "info"
)

// Store backends
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
)

// Duration is a time.Duration that reads from TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	BaseURL string `toml:"base_url"`
	// RequestTimeout bounds every API call. Zero means no timeout.
	RequestTimeout Duration        `toml:"request_timeout"`
	LogLevel       string          `toml:"log_level"`
	Store          StoreConfig     `toml:"store"`
	DevServer      DevServerConfig `toml:"devserver"`
}

// StoreConfig selects where the session (token, selected project) is kept.
type StoreConfig struct {
	Backend  string `toml:"backend"`
	Path     string `toml:"path"`
	RedisURL string `toml:"redis_url"`
}

type DevServerConfig struct {
	Addr               string `toml:"addr"`
	LoginRatePerMinute int    `toml:"login_rate_per_minute"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		BaseURL:  defaultBaseURL,
		LogLevel: defaultLogLevel,
		Store: StoreConfig{
			Backend: StoreSQLite,
			Path:    filepath.Join(Dir(), stateFileName),
		},
		DevServer: DevServerConfig{
			Addr:               ":8000",
			LoginRatePerMinute: 10,
		},
	}
}

// NewConfig returns the defaults pointed at baseURL with an in-memory store
func NewConfig(baseURL string) *Config {
	cfg := Default()
	cfg.BaseURL = baseURL
	cfg.Store.Backend = StoreMemory
	return cfg
}

// Dir returns the projectchat directory under the user's home
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDirName
	}
	return filepath.Join(home, defaultDirName)
}

// DefaultPath returns the default config file location
func DefaultPath() string {
	return filepath.Join(Dir(), configFileName)
}

// Load builds the configuration. An empty path means DefaultPath, which may be
// missing; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	// .env is optional
	_ = godotenv.Load(".env")
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies PROJECTCHAT_* environment variables
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PROJECTCHAT_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("PROJECTCHAT_STORE"); v != "" {
		c.Store.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("PROJECTCHAT_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("PROJECTCHAT_REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
	if v := os.Getenv("PROJECTCHAT_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("PROJECTCHAT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.RequestTimeout = Duration{d}
		}
	}
	if v := os.Getenv("PROJECTCHAT_DEVSERVER_ADDR"); v != "" {
		c.DevServer.Addr = v
	}
}

// Validate reports every problem with the configuration at once
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("base_url must be an http(s) URL, got %q", c.BaseURL))
	}
	if c.RequestTimeout.Duration < 0 {
		errs = append(errs, errors.New("request_timeout must not be negative"))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel))
	}
	switch c.Store.Backend {
	case StoreMemory:
	case StoreSQLite:
		if c.Store.Path == "" {
			errs = append(errs, errors.New("store.path is required for the sqlite backend"))
		}
	case StoreRedis:
		if c.Store.RedisURL == "" {
			errs = append(errs, errors.New("store.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be memory, sqlite or redis, got %q", c.Store.Backend))
	}
	if c.DevServer.LoginRatePerMinute < 0 {
		errs = append(errs, errors.New("devserver.login_rate_per_minute must not be negative"))
	}

	return errors.Join(errs...)
}
