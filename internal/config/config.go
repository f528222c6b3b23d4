// Package config loads build settings from notesite.yaml, environment
// variables (NOTESITE_ prefix) and flags, in that order of increasing
// precedence.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all build and serve settings.
type Config struct {
	Site struct {
		Title     string `mapstructure:"title"`
		PageLevel int    `mapstructure:"page_level"`
	} `mapstructure:"site"`

	Merge struct {
		Threshold float64 `mapstructure:"threshold"`
	} `mapstructure:"merge"`

	Build struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"build"`

	Render struct {
		HighlightStyle string `mapstructure:"highlight_style"`
	} `mapstructure:"render"`

	Serve struct {
		Addr  string `mapstructure:"addr"`
		Watch bool   `mapstructure:"watch"`
	} `mapstructure:"serve"`
}

// Init sets defaults and reads the config file if one exists.
func Init() error {
	viper.SetDefault("site.title", "Notes")
	viper.SetDefault("site.page_level", 1)
	viper.SetDefault("merge.threshold", 0.85)
	viper.SetDefault("build.workers", 4)
	viper.SetDefault("render.highlight_style", "github")
	viper.SetDefault("serve.addr", ":8080")
	viper.SetDefault("serve.watch", true)

	viper.SetConfigName("notesite")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "notesite"))
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("NOTESITE")
	viper.AutomaticEnv()

	// Missing or malformed config files are not fatal; defaults apply.
	_ = viper.ReadInConfig()
	return nil
}

// Load unmarshals the current viper state and clamps nonsensical values.
func Load() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	if cfg.Site.Title == "" {
		cfg.Site.Title = "Notes"
	}
	if cfg.Site.PageLevel < 1 || cfg.Site.PageLevel > 6 {
		cfg.Site.PageLevel = 1
	}
	if cfg.Merge.Threshold <= 0 || cfg.Merge.Threshold > 1 {
		cfg.Merge.Threshold = 0.85
	}
	if cfg.Build.Workers <= 0 {
		cfg.Build.Workers = 4
	}
	if cfg.Render.HighlightStyle == "" {
		cfg.Render.HighlightStyle = "github"
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = ":8080"
	}

	return cfg, nil
}
