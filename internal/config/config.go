// Package config loads the agent's TOML configuration.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ShauryaManiTripathi/Gemini-Coder-CLI/internal/logger"
)

// Config is the root of the TOML file.
type Config struct {
	WorkDir     string `toml:"workdir" mapstructure:"workdir"`
	HistoryDSN  string `toml:"history_dsn" mapstructure:"history_dsn"`
	Listen      string `toml:"listen" mapstructure:"listen"`
	AutoConfirm bool   `toml:"auto_confirm" mapstructure:"auto_confirm"`
	Env         []string `toml:"env" mapstructure:"env"`

	Generator GeneratorConfig   `toml:"generator" mapstructure:"generator"`
	Log       logger.SlogConfig `toml:"log" mapstructure:"log"`
	ProcLog   ProcLogConfig     `toml:"process_log" mapstructure:"process_log"`
}

// GeneratorConfig tunes the retry loop around the text generator.
type GeneratorConfig struct {
	Model      string `toml:"model" mapstructure:"model"`
	MaxRetries int    `toml:"max_retries" mapstructure:"max_retries"`
}

// ProcLogConfig configures per-process output mirrors.
type ProcLogConfig struct {
	Dir        string `toml:"dir" mapstructure:"dir"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// MirrorConfig converts the process-log section into the writer config
// consumed by the supervisor.
func (p ProcLogConfig) MirrorConfig() logger.Config {
	return logger.Config{
		Dir:        p.Dir,
		MaxSizeMB:  p.MaxSizeMB,
		MaxBackups: p.MaxBackups,
		MaxAgeDays: p.MaxAgeDays,
		Compress:   p.Compress,
	}
}

// Load reads a TOML config file. A missing path returns defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Listen: "127.0.0.1:8890",
		Generator: GeneratorConfig{
			Model:      "gemini-2.0-flash",
			MaxRetries: 3,
		},
		Log: logger.SlogConfig{
			Level:  "info",
			Format: logger.FormatText,
			Color:  true,
		},
	}
}
