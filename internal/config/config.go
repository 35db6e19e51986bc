package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level JSON configuration document. The notification
// keys keep their legacy names (dingtalk_bot, webhook_url, secret, name)
// so existing config.json files keep working.
type Config struct {
	Notification Notification `mapstructure:",squash"`
	// Names is the shared participant pool from the legacy document. It
	// seeds create requests that list no participants of their own.
	Names    []string      `mapstructure:"name"`
	DataFile string        `mapstructure:"data_file"`
	History  HistoryConfig `mapstructure:"history"`
	Log      LogConfig     `mapstructure:"log"`
	Server   ServerConfig  `mapstructure:"server"`
}

// Notification configures the webhook robot.
type Notification struct {
	// Switch is the tri-state master toggle: "on" enables delivery,
	// anything else (off, empty, legacy localized values) disables it.
	Switch     string `mapstructure:"dingtalk_bot"`
	WebhookURL string `mapstructure:"webhook_url"`
	Secret     string `mapstructure:"secret"`
}

// Enabled reports whether notifications should be delivered: the switch
// must be on and both endpoint and secret configured.
func (n Notification) Enabled() bool {
	sw := strings.TrimSpace(n.Switch)
	if sw != "on" && sw != "开启" {
		return false
	}
	return strings.TrimSpace(n.WebhookURL) != "" && n.Secret != ""
}

// HistoryConfig selects an optional audit sink by DSN (see
// history/factory for supported formats). Empty disables export.
type HistoryConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LogConfig describes the daemon log file; rotation parameters follow
// lumberjack semantics.
type LogConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ServerConfig describes the embedded HTTP API. MetricsListen, when
// set, exposes Prometheus metrics on a separate listener.
type ServerConfig struct {
	Listen        string `mapstructure:"listen"`
	BasePath      string `mapstructure:"base_path"`
	MetricsListen string `mapstructure:"metrics_listen"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		DataFile: filepath.Join("data", "process.json"),
		Server: ServerConfig{
			Listen:   "127.0.0.1:8080",
			BasePath: "/api",
		},
	}
}

// Load reads a JSON config file. A missing file is not an error: the
// defaults apply, matching the storage policy for the process document.
// A present but unparseable file is surfaced to the caller.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.DataFile == "" {
		cfg.DataFile = Default().DataFile
	}
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = Default().Server.Listen
	}
	if cfg.Server.BasePath == "" {
		cfg.Server.BasePath = Default().Server.BasePath
	}
	return cfg, nil
}
