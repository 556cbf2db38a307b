package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// APIConfig holds settings for the FoodBridge REST API.
type APIConfig struct {
	// BaseURL is the root URL of the API (e.g. https://api.foodbridge.example/api).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec is the per-request upper bound in seconds.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// PushConfig holds settings for the realtime event stream.
type PushConfig struct {
	// URL is the event-stream endpoint. Empty means derive it from the
	// API base URL.
	URL string `mapstructure:"url" yaml:"url"`
}

// GeoConfig holds settings for the optional geolocation lookup.
type GeoConfig struct {
	// Endpoint is an HTTP service returning the caller's approximate
	// longitude/latitude. Empty disables the lookup.
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// RadiusKm is the default radius for nearby-listing queries.
	RadiusKm int `mapstructure:"radius_km" yaml:"radius_km"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Push    PushConfig    `mapstructure:"push" yaml:"push"`
	Geo     GeoConfig     `mapstructure:"geo" yaml:"geo"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// StreamURL returns the effective event-stream endpoint, deriving it
// from the API base URL when not set explicitly.
func (c *AppConfig) StreamURL() string {
	if c.Push.URL != "" {
		return c.Push.URL
	}
	return c.API.BaseURL + "/events"
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/foodbridge/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "foodbridge", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:5000/api",
			TimeoutSec: 15,
		},
		Geo: GeoConfig{
			RadiusKm: 5,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.timeout_sec", 15)
	v.SetDefault("geo.radius_km", 5)
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 15
	}
	if cfg.Geo.RadiusKm <= 0 {
		cfg.Geo.RadiusKm = 5
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("push", cfg.Push)
	v.Set("geo", cfg.Geo)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
