package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/airsplit/airsplit/internal/autosplit"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig    `yaml:"server"`
	Monitor MonitorConfig   `yaml:"monitor"`
	Timer   TimerConfig     `yaml:"timer"`
	History HistoryConfig   `yaml:"history"`
	Splits  map[string]bool `yaml:"splits"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AuthToken      string   `yaml:"auth_token"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MonitorConfig struct {
	PollInterval      time.Duration `yaml:"poll_interval"`
	AttachRetry       time.Duration `yaml:"attach_retry"`
	AttachMaxDelay    time.Duration `yaml:"attach_max_delay"`
	ProcessNames      []string      `yaml:"process_names"`
	HealthThreshold   int           `yaml:"health_threshold"`
	SnapshotInterval  time.Duration `yaml:"snapshot_interval"`
	BroadcastThrottle time.Duration `yaml:"broadcast_throttle"`
}

// TimerConfig selects the timer backend: "local" keeps time in-process,
// "livesplit" drives a LiveSplit Server.
type TimerConfig struct {
	Backend       string `yaml:"backend"`
	LiveSplitAddr string `yaml:"livesplit_addr"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

const (
	BackendLocal     = "local"
	BackendLiveSplit = "livesplit"
)

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "127.0.0.1",
		},
		Monitor: MonitorConfig{
			PollInterval:      time.Second / 60,
			AttachRetry:       time.Second,
			AttachMaxDelay:    10 * time.Second,
			ProcessNames:      append([]string(nil), autosplit.ProcessNames...),
			HealthThreshold:   60,
			SnapshotInterval:  5 * time.Second,
			BroadcastThrottle: 100 * time.Millisecond,
		},
		Timer: TimerConfig{
			Backend:       BackendLocal,
			LiveSplitAddr: "localhost:16834",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Splits: map[string]bool{},
	}
}

// Default returns the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

// Load reads path over the defaults. Fields absent from the file keep their
// default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Splits == nil {
		cfg.Splits = map[string]bool{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return defaultConfig(), nil
	}
	return cfg, err
}

func (c *Config) Validate() error {
	if c.Monitor.PollInterval <= 0 {
		return errors.New("monitor.poll_interval must be positive")
	}
	if c.Monitor.AttachRetry <= 0 {
		return errors.New("monitor.attach_retry must be positive")
	}
	if c.Monitor.AttachMaxDelay < c.Monitor.AttachRetry {
		return errors.New("monitor.attach_max_delay must not be below attach_retry")
	}
	if len(c.Monitor.ProcessNames) == 0 {
		return errors.New("monitor.process_names must not be empty")
	}
	if c.Monitor.SnapshotInterval <= 0 || c.Monitor.BroadcastThrottle <= 0 {
		return errors.New("monitor.snapshot_interval and broadcast_throttle must be positive")
	}
	switch c.Timer.Backend {
	case BackendLocal:
	case BackendLiveSplit:
		if c.Timer.LiveSplitAddr == "" {
			return errors.New("timer.livesplit_addr is required for the livesplit backend")
		}
	default:
		return fmt.Errorf("unknown timer.backend %q", c.Timer.Backend)
	}
	known := make(map[string]bool)
	for _, t := range autosplit.Toggles() {
		known[t.Key] = true
	}
	for k := range c.Splits {
		if !known[k] {
			return fmt.Errorf("unknown splits key %q", k)
		}
	}
	return nil
}

// Settings converts the splits section into run settings.
func (c *Config) Settings() autosplit.Settings {
	return autosplit.SettingsFromMap(c.Splits)
}
