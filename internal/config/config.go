package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/janusbot/janus/internal/station"
)

const (
	DefaultConfigDir       = ".janus"
	DefaultConfigFile      = "config.yaml"
	DefaultEnvFile         = ".env"
	DefaultUserAgent       = "JanusBot/1.0 (+https://github.com/janusbot/janus)"
	DefaultTableTimeout    = 15 * time.Second
	DefaultGenericTimeout  = 12 * time.Second
	DefaultDelay           = 1500 * time.Millisecond
	DefaultOutputPath      = "docs/data/dati.json"
	DefaultIntervalMinutes = 15
	DefaultStoragePath     = ".janus/history.db"
	DefaultRetainDays      = 30
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

// Duration wraps time.Duration for YAML unmarshaling from strings like "1.5s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

type Config struct {
	Stations []station.Station `yaml:"stations"`
	Fetch    FetchConfig       `yaml:"fetch"`
	Output   OutputConfig      `yaml:"output"`
	Storage  StorageConfig     `yaml:"storage"`
	Log      LogConfig         `yaml:"log"`
}

type FetchConfig struct {
	UserAgent      string   `yaml:"user_agent"`
	UserAgentEnv   string   `yaml:"user_agent_env"`
	TableTimeout   Duration `yaml:"table_timeout"`
	GenericTimeout Duration `yaml:"generic_timeout"`
	Delay          Duration `yaml:"delay"`
}

type OutputConfig struct {
	Path            string `yaml:"path"`
	IntervalMinutes int    `yaml:"interval_minutes"`
}

type StorageConfig struct {
	// Enabled is a pointer so an explicit false survives applyDefaults.
	Enabled    *bool  `yaml:"enabled"`
	Path       string `yaml:"path"`
	RetainDays int    `yaml:"retain_days"`
}

// On reports whether run history is recorded.
func (s StorageConfig) On() bool {
	return s.Enabled == nil || *s.Enabled
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SlogLevel maps the configured level name onto a slog.Level.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default returns a config with every default applied and the built-in stations.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load reads config.yaml from dir, applies defaults, resolves env vars, and validates.
// A missing config file is not an error: the defaults are returned.
// Variables in dir/.env are loaded first without overriding the process environment.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	var cfg Config

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyDefaults(&cfg)
	if err := loadEnvFile(filepath.Join(dir, DefaultEnvFile)); err != nil {
		return nil, err
	}
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if len(cfg.Stations) == 0 {
		cfg.Stations = station.Defaults()
	}
	for i := range cfg.Stations {
		if cfg.Stations[i].Type == "" {
			cfg.Stations[i].Type = station.TypeGeneric
		}
		if cfg.Stations[i].Row == "" {
			cfg.Stations[i].Row = station.RowFirst
		}
		if cfg.Stations[i].Name == "" {
			cfg.Stations[i].Name = cfg.Stations[i].ID
		}
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = DefaultUserAgent
	}
	if cfg.Fetch.TableTimeout.Duration == 0 {
		cfg.Fetch.TableTimeout.Duration = DefaultTableTimeout
	}
	if cfg.Fetch.GenericTimeout.Duration == 0 {
		cfg.Fetch.GenericTimeout.Duration = DefaultGenericTimeout
	}
	if cfg.Fetch.Delay.Duration == 0 {
		cfg.Fetch.Delay.Duration = DefaultDelay
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = DefaultOutputPath
	}
	if cfg.Output.IntervalMinutes == 0 {
		cfg.Output.IntervalMinutes = DefaultIntervalMinutes
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = DefaultStoragePath
	}
	if cfg.Storage.RetainDays == 0 {
		cfg.Storage.RetainDays = DefaultRetainDays
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func resolveEnv(cfg *Config) {
	if cfg.Fetch.UserAgentEnv != "" {
		if ua := os.Getenv(cfg.Fetch.UserAgentEnv); ua != "" {
			cfg.Fetch.UserAgent = ua
		}
	}
}

func validate(cfg *Config) error {
	if err := station.Validate(cfg.Stations); err != nil {
		return fmt.Errorf("stations: %w", err)
	}

	if cfg.Fetch.TableTimeout.Duration < 0 || cfg.Fetch.GenericTimeout.Duration < 0 {
		return errors.New("fetch: timeouts must be positive")
	}
	if cfg.Fetch.Delay.Duration < 0 {
		return errors.New("fetch.delay: must not be negative")
	}
	if cfg.Output.IntervalMinutes < 0 {
		return errors.New("output.interval_minutes: must not be negative")
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return fmt.Errorf("log.level: unknown level %q (want debug, info, warn or error)", cfg.Log.Level)
	}

	switch cfg.Log.Format {
	case "text", "json":
		// valid
	default:
		return fmt.Errorf("log.format: unknown format %q (want text or json)", cfg.Log.Format)
	}

	return nil
}
