package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig carries everything the server needs at startup. Values come
// from flags with MANNCHESS_* environment overrides; the cmd package
// owns the flag definitions.
type AppConfig struct {
	Bind string
	Port int

	// External collaborators; all optional.
	RedisURL    string
	DatabaseURL string
	MonitorURL  string

	// Directory of YAML files overriding the embedded message catalog.
	MessagesDir string

	// How long a disconnected seat is held before eviction.
	GraceWindow time.Duration

	LogLevel   string
	LogFormat  string
	LogConsole bool
	LogFile    string
}

// Load materializes an AppConfig from a bound viper instance.
func Load(v *viper.Viper) *AppConfig {
	return &AppConfig{
		Bind:        strings.TrimSpace(v.GetString("bind")),
		Port:        v.GetInt("port"),
		RedisURL:    strings.TrimSpace(v.GetString("redis-url")),
		DatabaseURL: strings.TrimSpace(v.GetString("database-url")),
		MonitorURL:  strings.TrimSpace(v.GetString("monitor-url")),
		MessagesDir: strings.TrimSpace(v.GetString("messages-dir")),
		GraceWindow: v.GetDuration("grace-window"),
		LogLevel:    strings.TrimSpace(v.GetString("log-level")),
		LogFormat:   strings.TrimSpace(v.GetString("log-format")),
		LogConsole:  v.GetBool("log-console"),
		LogFile:     strings.TrimSpace(v.GetString("log-file")),
	}
}

// Validate rejects configurations the server cannot start with.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.GraceWindow <= 0 {
		return errors.New("grace-window must be positive")
	}
	if c.RedisURL != "" {
		if err := checkScheme(c.RedisURL, "redis", "rediss"); err != nil {
			return fmt.Errorf("redis-url: %w", err)
		}
	}
	if c.MonitorURL != "" {
		if err := checkScheme(c.MonitorURL, "http", "https"); err != nil {
			return fmt.Errorf("monitor-url: %w", err)
		}
	}
	return nil
}

// Addr returns the bind address passed to the HTTP listener.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Bind, c.Port)
}

func checkScheme(raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("unsupported scheme: %s", u.Scheme)
}
