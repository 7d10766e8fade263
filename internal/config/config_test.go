package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/airsplit/airsplit/internal/autosplit"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  auth_token: "secret"
monitor:
  poll_interval: 8ms
  process_names:
    - Sonic3AIR.exe
    - sonic3air_linux
timer:
  backend: livesplit
  livesplit_addr: "10.0.0.5:16834"
splits:
  reset: false
  hidden_palace: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want default 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Server.AuthToken != "secret" {
		t.Errorf("Server.AuthToken = %q", cfg.Server.AuthToken)
	}
	if cfg.Monitor.PollInterval != 8*time.Millisecond {
		t.Errorf("Monitor.PollInterval = %v, want 8ms", cfg.Monitor.PollInterval)
	}
	if len(cfg.Monitor.ProcessNames) != 2 {
		t.Errorf("Monitor.ProcessNames = %v", cfg.Monitor.ProcessNames)
	}
	if cfg.Monitor.AttachRetry != time.Second {
		t.Errorf("Monitor.AttachRetry = %v, want default 1s", cfg.Monitor.AttachRetry)
	}
	if cfg.Timer.Backend != BackendLiveSplit || cfg.Timer.LiveSplitAddr != "10.0.0.5:16834" {
		t.Errorf("Timer = %+v", cfg.Timer)
	}

	s := cfg.Settings()
	if s.Reset {
		t.Error("Settings().Reset = true, want false")
	}
	if s.SplitEnabled(autosplit.HiddenPalace) {
		t.Error("hidden_palace split should be disabled")
	}
	if !s.SplitEnabled(autosplit.SkySanctuary) {
		t.Error("unlisted splits should default to enabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("Load() on missing file should return error")
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Timer.Backend != BackendLocal {
		t.Errorf("Timer.Backend = %q, want local", cfg.Timer.Backend)
	}
	if got := cfg.Settings().SplitCount(); got != 25 {
		t.Errorf("default SplitCount() = %d, want 25", got)
	}
}

func TestLoadOrDefaultBadYAML(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")
	if _, err := LoadOrDefault(path); err == nil {
		t.Fatal("LoadOrDefault() should surface parse errors")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"zero poll", func(c *Config) { c.Monitor.PollInterval = 0 }, "poll_interval"},
		{"backoff inverted", func(c *Config) { c.Monitor.AttachMaxDelay = time.Millisecond }, "attach_max_delay"},
		{"no process names", func(c *Config) { c.Monitor.ProcessNames = nil }, "process_names"},
		{"unknown backend", func(c *Config) { c.Timer.Backend = "stopwatch" }, "timer.backend"},
		{"livesplit without addr", func(c *Config) {
			c.Timer.Backend = BackendLiveSplit
			c.Timer.LiveSplitAddr = ""
		}, "livesplit_addr"},
		{"unknown split key", func(c *Config) { c.Splits["green_hill_1"] = true }, "green_hill_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}
