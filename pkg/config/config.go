// Package config loads adhdo settings from a .adhdo file and ADHDO_ environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/adhdo/pkg/timeutil"
)

// Defaults.
const (
	DefaultPath         = "~/.adhdo.db"
	DefaultDriver       = "diskv"
	DefaultDevice       = "local"
	DefaultModel        = "claude-sonnet-4-20250514"
	DefaultParseModel   = "claude-haiku-4-5-20251001"
	DefaultRefreshDelay = 1500 * time.Millisecond
)

// Config is the resolved configuration. It satisfies store.Config.
type Config struct {
	Path         string        `json:"path"`
	StoreDriver  string        `json:"driver"`
	StoreDSN     string        `json:"dsn,omitempty"`
	Device       string        `json:"device"`
	APIKey       string        `json:"-"`
	RelayURL     string        `json:"relayUrl,omitempty"`
	Model        string        `json:"model"`
	ParseModel   string        `json:"parseModel"`
	GiphyKey     string        `json:"-"`
	Latitude     float64       `json:"latitude,omitempty"`
	Longitude    float64       `json:"longitude,omitempty"`
	Retention    time.Duration `json:"retention"`
	RefreshDelay time.Duration `json:"refreshDelay"`
}

func (c *Config) BasePath() string { return c.Path }
func (c *Config) Driver() string   { return c.StoreDriver }
func (c *Config) DSN() string      { return c.StoreDSN }
func (c *Config) Owner() string    { return c.Device }

// HasLocation reports whether weather coordinates were configured.
func (c *Config) HasLocation() bool {
	return c.Latitude != 0 || c.Longitude != 0
}

// Load reads configuration into a fresh viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom walks the config search path using v, which lets callers bind
// flags before loading.
func LoadFrom(v *viper.Viper) (*Config, error) {
	v.SetDefault("path", DefaultPath)
	v.SetDefault("driver", DefaultDriver)
	v.SetDefault("device", DefaultDevice)
	v.SetDefault("model", DefaultModel)
	v.SetDefault("parse_model", DefaultParseModel)
	v.SetDefault("retention", timeutil.DefaultRetention)
	v.SetDefault("refresh_delay", DefaultRefreshDelay.String())
	v.SetConfigName(".adhdo") // .yaml is implicit
	v.SetEnvPrefix("ADHDO")
	v.AutomaticEnv()

	if override := os.Getenv("ADHDO_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	retention, _, err := timeutil.ParseWindow(v.GetString("retention"))
	if err != nil {
		return nil, fmt.Errorf("config: retention: %w", err)
	}
	delay, err := time.ParseDuration(v.GetString("refresh_delay"))
	if err != nil || delay < 0 {
		return nil, fmt.Errorf("config: refresh_delay %q is not a duration", v.GetString("refresh_delay"))
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: path: %w", err)
	}

	key := v.GetString("api_key")
	if key == "" {
		key = os.Getenv("ANTHROPIC_API_KEY")
	}

	return &Config{
		Path:         path,
		StoreDriver:  v.GetString("driver"),
		StoreDSN:     v.GetString("dsn"),
		Device:       v.GetString("device"),
		APIKey:       key,
		RelayURL:     v.GetString("relay_url"),
		Model:        v.GetString("model"),
		ParseModel:   v.GetString("parse_model"),
		GiphyKey:     v.GetString("giphy_key"),
		Latitude:     v.GetFloat64("latitude"),
		Longitude:    v.GetFloat64("longitude"),
		Retention:    retention,
		RefreshDelay: delay,
	}, nil
}
