package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Timer   TimerConfig   `mapstructure:"timer"`
	Verbose VerboseConfig `mapstructure:"verbose"`
	Store   StoreConfig   `mapstructure:"store"`
	Journal JournalConfig `mapstructure:"journal"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
	UI      UIConfig      `mapstructure:"ui"`
}

// TimerConfig controls the periodic clock.
type TimerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// VerboseConfig controls how long Increment keeps tracing on.
type VerboseConfig struct {
	Reset time.Duration `mapstructure:"reset"`
}

// StoreConfig sizes the action queue.
type StoreConfig struct {
	QueueSize int `mapstructure:"queue_size"`
}

// JournalConfig holds sqlite settings for the action journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// MetricsConfig enables the prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// LogConfig holds logger settings. An empty Path means stderr.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	StartBig bool `mapstructure:"start_big"`
}

func dataDir() string {
	return filepath.Join(os.Getenv("HOME"), ".local", "share", "teamperf")
}

// DefaultPath is where Load looks when neither an explicit path nor
// TEAMPERF_CONFIG is given.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "teamperf", "config.toml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timer.interval", 30*time.Millisecond)
	v.SetDefault("verbose.reset", 10*time.Millisecond)
	v.SetDefault("store.queue_size", 256)
	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", filepath.Join(dataDir(), "journal.db"))
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("ui.start_big", false)
}

// Load reads configuration from file and env. Env var overrides use prefix
// TEAMPERF_. path wins over TEAMPERF_CONFIG; a missing default file is fine,
// a missing explicit one is not.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("toml")

	if path == "" {
		path = os.Getenv("TEAMPERF_CONFIG")
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TEAMPERF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the runtime cannot honor.
func (c Config) Validate() error {
	if c.Timer.Interval <= 0 {
		return fmt.Errorf("timer.interval must be positive, got %s", c.Timer.Interval)
	}
	if c.Verbose.Reset <= 0 {
		return fmt.Errorf("verbose.reset must be positive, got %s", c.Verbose.Reset)
	}
	if c.Store.QueueSize <= 0 {
		return fmt.Errorf("store.queue_size must be positive, got %d", c.Store.QueueSize)
	}
	if c.Journal.Enabled && strings.TrimSpace(c.Journal.Path) == "" {
		return fmt.Errorf("journal.path required when journal is enabled")
	}
	return nil
}

// Save writes cfg as TOML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("timer.interval", cfg.Timer.Interval.String())
	v.Set("verbose.reset", cfg.Verbose.Reset.String())
	v.Set("store.queue_size", cfg.Store.QueueSize)
	v.Set("journal.enabled", cfg.Journal.Enabled)
	v.Set("journal.path", cfg.Journal.Path)
	v.Set("metrics.addr", cfg.Metrics.Addr)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.path", cfg.Log.Path)
	v.Set("ui.start_big", cfg.UI.StartBig)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
