package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Store backends
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// LogSettings controls the zap logger
type LogSettings struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

// Settings are the program settings read from settings.yaml and SHORTCUTS_* variables
type Settings struct {
	Store            string      `mapstructure:"store"`
	MenuTitle        string      `mapstructure:"menu_title"`
	Browser          string      `mapstructure:"browser"`
	InternalPrefixes []string    `mapstructure:"internal_prefixes"`
	Log              LogSettings `mapstructure:"log"`
}

// LoadSettings reads SettingsFile, applying defaults and environment overrides
// (SHORTCUTS_STORE, SHORTCUTS_LOG_LEVEL, ...). A missing file is not an error.
func LoadSettings() (*Settings, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(SettingsFile)

	v.SetDefault("store", StoreFile)
	v.SetDefault("menu_title", "Custom Search")
	v.SetDefault("browser", "")
	v.SetDefault("internal_prefixes", []string{"chrome-extension://", "chrome://", "about:"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetEnvPrefix("shortcuts")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if SettingsFile != "" {
		if _, err := os.Stat(SettingsFile); err == nil {
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read settings: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks enumerated settings
func (s *Settings) Validate() error {
	switch s.Store {
	case StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("invalid store %q (want %s or %s)", s.Store, StoreFile, StoreSQLite)
	}
	switch s.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q (want console or json)", s.Log.Format)
	}
	return nil
}
