// Package config loads and validates watcher configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all watcher configuration knobs loaded via Viper.
type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Acquire AcquireConfig `mapstructure:"acquire"`
	Store   StoreConfig   `mapstructure:"store"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SourceConfig locates the results page and its filter control.
type SourceConfig struct {
	URL            string `mapstructure:"url"`
	FilterTerm     string `mapstructure:"filter_term"`
	FilterSelector string `mapstructure:"filter_selector"`
	TableSelector  string `mapstructure:"table_selector"`
	RowSelector    string `mapstructure:"row_selector"`
	UserAgent      string `mapstructure:"user_agent"`
	SettleDelayMs  int    `mapstructure:"settle_delay_ms"`
}

// AcquireConfig governs the retry loop.
type AcquireConfig struct {
	MaxAttempts           int `mapstructure:"max_attempts"`
	InitialBackoffMs      int `mapstructure:"initial_backoff_ms"`
	AttemptTimeoutSeconds int `mapstructure:"attempt_timeout_seconds"`
}

// StoreConfig sets the path of the persisted latest entry.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// NotifyConfig selects and configures the notification channel.
type NotifyConfig struct {
	Provider string       `mapstructure:"provider"`
	Ntfy     NtfyConfig   `mapstructure:"ntfy"`
	PubSub   PubSubConfig `mapstructure:"pubsub"`
}

// NtfyConfig holds the HTTP push channel settings.
type NtfyConfig struct {
	Server         string `mapstructure:"server"`
	Topic          string `mapstructure:"topic"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// PubSubConfig holds metadata for queue-backed notifications.
type PubSubConfig struct {
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// WatchConfig controls scheduled-run mode.
type WatchConfig struct {
	IntervalMinutes int `mapstructure:"interval_minutes"`
	Port            int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ROUNDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source.filter_term", "Healthcare")
	v.SetDefault("source.filter_selector", `input[type="search"]`)
	v.SetDefault("source.table_selector", "table")
	v.SetDefault("source.row_selector", "tbody tr")
	v.SetDefault("source.user_agent", "rounds-watcher/0.1")
	v.SetDefault("source.settle_delay_ms", 500)
	v.SetDefault("acquire.max_attempts", 3)
	v.SetDefault("acquire.initial_backoff_ms", 2000)
	v.SetDefault("acquire.attempt_timeout_seconds", 45)
	v.SetDefault("store.path", "data/latest.json")
	v.SetDefault("notify.provider", "ntfy")
	v.SetDefault("notify.ntfy.server", "https://ntfy.sh")
	v.SetDefault("notify.ntfy.timeout_seconds", 10)
	v.SetDefault("watch.interval_minutes", 30)
	v.SetDefault("watch.port", 8080)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Source.URL) == "" {
		return fmt.Errorf("source.url must be set")
	}
	if c.Acquire.MaxAttempts < 1 {
		return fmt.Errorf("acquire.max_attempts must be >= 1")
	}
	if c.Acquire.InitialBackoffMs <= 0 {
		return fmt.Errorf("acquire.initial_backoff_ms must be > 0")
	}
	if c.Acquire.AttemptTimeoutSeconds <= 0 {
		return fmt.Errorf("acquire.attempt_timeout_seconds must be > 0")
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store.path must be set")
	}
	switch c.Notify.Provider {
	case "ntfy":
		if strings.TrimSpace(c.Notify.Ntfy.Topic) == "" {
			return fmt.Errorf("notify.ntfy.topic must be set when provider is ntfy")
		}
	case "pubsub":
		if c.Notify.PubSub.ProjectID == "" || c.Notify.PubSub.TopicName == "" {
			return fmt.Errorf("notify.pubsub.project_id and topic_name must be set when provider is pubsub")
		}
	case "noop":
	default:
		return fmt.Errorf("unknown notify provider: %s", c.Notify.Provider)
	}
	if c.Watch.IntervalMinutes <= 0 {
		return fmt.Errorf("watch.interval_minutes must be > 0")
	}
	if c.Watch.Port <= 0 {
		return fmt.Errorf("watch.port must be > 0")
	}
	return nil
}

// InitialBackoff returns the first inter-attempt delay.
func (c AcquireConfig) InitialBackoff() time.Duration {
	return time.Duration(c.InitialBackoffMs) * time.Millisecond
}

// AttemptTimeout returns the per-attempt deadline.
func (c AcquireConfig) AttemptTimeout() time.Duration {
	return time.Duration(c.AttemptTimeoutSeconds) * time.Second
}

// SettleDelay returns how long to wait after typing the filter term.
func (c SourceConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// Interval returns the pause between scheduled runs.
func (c WatchConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Timeout returns the push deadline for the ntfy channel.
func (c NtfyConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
