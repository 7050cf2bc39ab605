// ABOUTME: Configuration for campaigndash loaded from YAML, CAMPAIGNDASH_* env vars, and bound CLI flags.
// ABOUTME: Viper merges the sources; yaml.v3 writes the file back out.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces environment overrides, e.g. CAMPAIGNDASH_ENDPOINT.
const EnvPrefix = "CAMPAIGNDASH"

// Handoff backends.
const (
	BackendMemory = "memory"
	BackendSqlite = "sqlite"
)

// Config is the full application configuration.
type Config struct {
	Endpoint         string        `mapstructure:"endpoint" yaml:"endpoint"`
	ReconnectDelay   time.Duration `mapstructure:"reconnect_delay" yaml:"reconnect_delay"`
	SendRetryDelay   time.Duration `mapstructure:"send_retry_delay" yaml:"send_retry_delay"`
	AutoStartDelay   time.Duration `mapstructure:"auto_start_delay" yaml:"auto_start_delay"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" yaml:"handshake_timeout"`
	Handoff          HandoffConfig `mapstructure:"handoff" yaml:"handoff"`
	Web              WebConfig     `mapstructure:"web" yaml:"web"`
	Log              LogConfig     `mapstructure:"log" yaml:"log"`
}

// HandoffConfig selects where artifacts handed to the web views are stored.
type HandoffConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // memory or sqlite
	Path    string `mapstructure:"path" yaml:"path"`       // sqlite database file
}

// WebConfig controls the handoff views server.
type WebConfig struct {
	Addr    string `mapstructure:"addr" yaml:"addr"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"` // empty derives from Addr
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	File   string `mapstructure:"file" yaml:"file"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Endpoint:       "ws://localhost:8000/ws_stream_campaign",
		ReconnectDelay: 3 * time.Second,
		SendRetryDelay: time.Second,
		AutoStartDelay: time.Second,
		Handoff:        HandoffConfig{Backend: BackendMemory},
		Web:            WebConfig{Addr: "127.0.0.1:5173"},
		Log:            LogConfig{Level: "info", Format: "text"},
	}
}

// SetDefaults registers every default with v so env vars and flags can
// override keys the file leaves out.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("reconnect_delay", d.ReconnectDelay)
	v.SetDefault("send_retry_delay", d.SendRetryDelay)
	v.SetDefault("auto_start_delay", d.AutoStartDelay)
	v.SetDefault("handshake_timeout", d.HandshakeTimeout)
	v.SetDefault("handoff.backend", d.Handoff.Backend)
	v.SetDefault("handoff.path", d.Handoff.Path)
	v.SetDefault("web.addr", d.Web.Addr)
	v.SetDefault("web.base_url", d.Web.BaseURL)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.format", d.Log.Format)
}

// LoadWithEnv reads path (if it exists) into v, layers CAMPAIGNDASH_* env vars
// over it, and decodes the result. Flags bound to v before the call win over
// both.
func LoadWithEnv(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Load reads a config file with no env or flag layering. A missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	return LoadWithEnv(viper.New(), path)
}

// fileConfig is the on-disk shape; durations are written as "3s" strings.
type fileConfig struct {
	Endpoint         string        `yaml:"endpoint"`
	ReconnectDelay   string        `yaml:"reconnect_delay"`
	SendRetryDelay   string        `yaml:"send_retry_delay"`
	AutoStartDelay   string        `yaml:"auto_start_delay"`
	HandshakeTimeout string        `yaml:"handshake_timeout"`
	Handoff          HandoffConfig `yaml:"handoff"`
	Web              WebConfig     `yaml:"web"`
	Log              LogConfig     `yaml:"log"`
}

// Save writes cfg as YAML, creating the parent directory.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(fileConfig{
		Endpoint:         cfg.Endpoint,
		ReconnectDelay:   cfg.ReconnectDelay.String(),
		SendRetryDelay:   cfg.SendRetryDelay.String(),
		AutoStartDelay:   cfg.AutoStartDelay.String(),
		HandshakeTimeout: cfg.HandshakeTimeout.String(),
		Handoff:          cfg.Handoff,
		Web:              cfg.Web,
		Log:              cfg.Log,
	})
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate rejects configurations the dashboard cannot run with.
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.Endpoint)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("endpoint: %w", err))
	case u.Scheme != "ws" && u.Scheme != "wss":
		errs = append(errs, fmt.Errorf("endpoint %q: scheme must be ws or wss", c.Endpoint))
	case u.Host == "":
		errs = append(errs, fmt.Errorf("endpoint %q: missing host", c.Endpoint))
	}

	for name, d := range map[string]time.Duration{
		"reconnect_delay":   c.ReconnectDelay,
		"send_retry_delay":  c.SendRetryDelay,
		"auto_start_delay":  c.AutoStartDelay,
		"handshake_timeout": c.HandshakeTimeout,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, d))
		}
	}

	switch c.Handoff.Backend {
	case BackendMemory, BackendSqlite:
	default:
		errs = append(errs, fmt.Errorf("handoff.backend %q: want %s or %s", c.Handoff.Backend, BackendMemory, BackendSqlite))
	}

	if c.Web.Addr == "" {
		errs = append(errs, errors.New("web.addr must be set"))
	}
	if c.Web.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.Web.BaseURL); err != nil {
			errs = append(errs, fmt.Errorf("web.base_url: %w", err))
		}
	}

	return errors.Join(errs...)
}

// WebBaseURL returns the URL handoff views are opened at.
func (c *Config) WebBaseURL() string {
	if c.Web.BaseURL != "" {
		return strings.TrimRight(c.Web.BaseURL, "/")
	}
	return "http://" + c.Web.Addr
}

// HandoffPath returns the sqlite database path, defaulting into the data dir.
func (c *Config) HandoffPath() (string, error) {
	if c.Handoff.Path != "" {
		return c.Handoff.Path, nil
	}
	dir, err := DefaultDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "handoff.db"), nil
}
