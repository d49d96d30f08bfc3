package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API     APIConfig
	Catalog CatalogConfig
	UI      UIConfig
	Log     LogConfig
}

// APIConfig holds the storefront endpoint settings.
type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// CatalogConfig holds catalog fetch settings.
type CatalogConfig struct {
	PageSize int `mapstructure:"page_size"`
	// RootCategoryID is the parent of the top-level category listing;
	// Magento's default store root is "2".
	RootCategoryID string `mapstructure:"root_category_id"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads configuration from file and env. Env var overrides use prefix MAGPOS_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("api.base_url", "http://localhost")
	v.SetDefault("api.timeout_seconds", 15)
	v.SetDefault("catalog.page_size", 50)
	v.SetDefault("catalog.root_category_id", "2")
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("log.path", filepath.Join(os.Getenv("HOME"), ".local", "state", "magpos", "magpos.log"))

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MAGPOS_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "magpos"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MAGPOS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used by the settings view for non-sensitive preferences; the
// session token never goes here.
func Save(cfg Config) error {
	path := os.Getenv("MAGPOS_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "magpos", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout_seconds", cfg.API.TimeoutSeconds)
	v.Set("catalog.page_size", cfg.Catalog.PageSize)
	v.Set("catalog.root_category_id", cfg.Catalog.RootCategoryID)
	v.Set("ui.currency_symbol", cfg.UI.CurrencySymbol)
	v.Set("log.path", cfg.Log.Path)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
