package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrylevesque/navshell/internal/models"
)

// ConfigFileName is looked up in the project root when no path is given.
const ConfigFileName = "navshell.yaml"

type Config struct {
	Addr    string        `yaml:"addr"`
	Env     string        `yaml:"env"`
	Menu    MenuConfig    `yaml:"menu"`
	Redis   RedisConfig   `yaml:"redis"`
	Auth    AuthConfig    `yaml:"auth"`
	Session SessionConfig `yaml:"session"`
	TLS     TLSConfig     `yaml:"tls"`
	Logging LoggingConfig `yaml:"logging"`
}

type MenuConfig struct {
	Source string `yaml:"source"` // file|redis
	File   string `yaml:"file"`
	Watch  bool   `yaml:"watch"`
}

type RedisConfig struct {
	Addr          string `yaml:"addr"`
	Password      string `yaml:"password"`
	DB            int    `yaml:"db"`
	MenuKey       string `yaml:"menu_key"`
	MenuChannel   string `yaml:"menu_channel"`
	ProfilePrefix string `yaml:"profile_prefix"`
}

type AuthConfig struct {
	URL    string `yaml:"url"`
	Cookie string `yaml:"cookie"`
	Store  string `yaml:"store"` // memory|redis
	// ProfileCreationThreshold (YYYY-MM-DD) marks profiles created after it
	// as new. Empty disables the check.
	ProfileCreationThreshold string `yaml:"profile_creation_threshold"`
	// DevProfiles seeds the memory store, keyed by token.
	DevProfiles map[string]models.Profile `yaml:"dev_profiles"`
}

// CreationThreshold parses ProfileCreationThreshold. The zero time means
// no threshold.
func (c AuthConfig) CreationThreshold() (time.Time, error) {
	if c.ProfileCreationThreshold == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, c.ProfileCreationThreshold)
}

// SessionConfig bounds the in-memory shell sessions. Zero disables the
// respective limit.
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
	Max int           `yaml:"max"`
}

// TLSConfig enables HTTPS when both files are set.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" && t.KeyFile != ""
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json|console
	File   string `yaml:"file"`
}

// IsTest reports whether the shell runs in the test environment.
func (c Config) IsTest() bool {
	return c.Env == "test"
}

// DefaultConfig is used as the base every config file is merged onto.
func DefaultConfig() Config {
	return Config{
		Addr: ":8080",
		Env:  "production",
		Menu: MenuConfig{
			Source: "file",
			File:   "menu.yaml",
			Watch:  true,
		},
		Redis: RedisConfig{
			Addr:          "localhost:6379",
			MenuKey:       "navshell:menu",
			MenuChannel:   "navshell:menu:updates",
			ProfilePrefix: "navshell:profile:",
		},
		Auth: AuthConfig{
			URL:    "https://accounts-auth0.topcoder.com",
			Cookie: "v3jwt",
			Store:  "memory",
		},
		Session: SessionConfig{
			TTL: 12 * time.Hour,
			Max: 10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig reads path (or navshell.yaml in the project root when path is
// empty), applies NAVSHELL_* environment overrides and validates the result.
// A missing default file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(GetProjectRoot(), ConfigFileName)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		if cfg.Menu.File != "" && !filepath.IsAbs(cfg.Menu.File) {
			cfg.Menu.File = filepath.Join(filepath.Dir(path), cfg.Menu.File)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("NAVSHELL_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("NAVSHELL_ENV"); v != "" {
		cfg.Env = v
	}
	if v := os.Getenv("NAVSHELL_MENU_SOURCE"); v != "" {
		cfg.Menu.Source = v
	}
	if v := os.Getenv("NAVSHELL_MENU_FILE"); v != "" {
		cfg.Menu.File = v
	}
	if v := os.Getenv("NAVSHELL_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("NAVSHELL_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("NAVSHELL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks enumerated fields and required values.
func (c Config) Validate() error {
	var errs []string
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, "addr is required")
	}
	switch c.Menu.Source {
	case "file":
		if c.Menu.File == "" {
			errs = append(errs, "menu.file is required for the file source")
		}
	case "redis":
		if c.Redis.Addr == "" || c.Redis.MenuKey == "" {
			errs = append(errs, "redis.addr and redis.menu_key are required for the redis source")
		}
	default:
		errs = append(errs, fmt.Sprintf("menu.source %q is not valid (use: file, redis)", c.Menu.Source))
	}
	switch c.Auth.Store {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Sprintf("auth.store %q is not valid (use: memory, redis)", c.Auth.Store))
	}
	if _, err := c.Auth.CreationThreshold(); err != nil {
		errs = append(errs, fmt.Sprintf("auth.profile_creation_threshold %q is not a YYYY-MM-DD date", c.Auth.ProfileCreationThreshold))
	}
	if c.Session.TTL < 0 || c.Session.Max < 0 {
		errs = append(errs, "session.ttl and session.max must not be negative")
	}
	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		errs = append(errs, "tls.cert_file and tls.key_file must be set together")
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q is not valid (use: json, console)", c.Logging.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// GetProjectRoot returns the absolute path to the project root directory.
func GetProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "." // fallback
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached root
		}
		dir = parent
	}
	return "." // fallback
}
