package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func testConfig() *AppConfig {
	return &AppConfig{
		Bind:        "0.0.0.0",
		Port:        8080,
		GraceWindow: 30 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"defaults", func(c *AppConfig) {}, false},
		{"port too low", func(c *AppConfig) { c.Port = 0 }, true},
		{"port too high", func(c *AppConfig) { c.Port = 70000 }, true},
		{"zero grace window", func(c *AppConfig) { c.GraceWindow = 0 }, true},
		{"bad redis scheme", func(c *AppConfig) { c.RedisURL = "http://localhost:6379" }, true},
		{"good redis scheme", func(c *AppConfig) { c.RedisURL = "redis://localhost:6379/0" }, false},
		{"bad monitor scheme", func(c *AppConfig) { c.MonitorURL = "ftp://example.com" }, true},
		{"good monitor scheme", func(c *AppConfig) { c.MonitorURL = "https://example.com/hooks" }, false},
	}
	for _, tc := range cases {
		cfg := testConfig()
		tc.mutate(cfg)
		err := cfg.Validate()
		if tc.wantErr && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestLoadFromViper(t *testing.T) {
	v := viper.New()
	v.Set("bind", "127.0.0.1")
	v.Set("port", 9000)
	v.Set("grace-window", "45s")
	v.Set("log-level", "debug")
	v.Set("log-console", true)

	cfg := Load(v)
	if cfg.Addr() != "127.0.0.1:9000" {
		t.Fatalf("unexpected addr: %s", cfg.Addr())
	}
	if cfg.GraceWindow != 45*time.Second {
		t.Fatalf("unexpected grace window: %v", cfg.GraceWindow)
	}
	if cfg.LogLevel != "debug" || !cfg.LogConsole {
		t.Fatalf("log settings not loaded: %+v", cfg)
	}
}
