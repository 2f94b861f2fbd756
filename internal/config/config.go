// This file defines the configuration structure for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"

	// use Viper for loading the config.yml file.
	"github.com/spf13/viper"
)

// Config holds all configuration settings for the application.
// It maps directly to the structure of config.yml.
type Config struct {
	Backend struct {
		URL     string `mapstructure:"url"`
		Timeout int    `mapstructure:"timeout"` // seconds per request
	} `mapstructure:"backend"`
	Identity struct {
		URL      string `mapstructure:"url"`
		ClientID string `mapstructure:"client_id"`
	} `mapstructure:"identity"`
	Storage struct {
		Path string `mapstructure:"path"` // upload journal database
	} `mapstructure:"storage"`
	State struct {
		Dir string `mapstructure:"dir"` // token cache and friends
	} `mapstructure:"state"`
	Inbox struct {
		Path string `mapstructure:"path"` // hot folder; empty disables the watcher
	} `mapstructure:"inbox"`
	Dashboard struct {
		Port int    `mapstructure:"port"`
		Bind string `mapstructure:"bind"`
	} `mapstructure:"dashboard"`
	Poll struct {
		ListInterval   int `mapstructure:"list_interval"`   // seconds
		DetailInterval int `mapstructure:"detail_interval"` // seconds
		BurstInterval  int `mapstructure:"burst_interval"`  // seconds
		BurstLimit     int `mapstructure:"burst_limit"`     // max runs per burst
	} `mapstructure:"poll"`
	Upload struct {
		MaxSizeMB         int      `mapstructure:"max_size_mb"`
		AllowedExtensions []string `mapstructure:"allowed_extensions"`
	} `mapstructure:"upload"`
}

// Load reads configuration from the given file, or, when path is empty,
// from a "config.yml" found in the current directory or ~/.scandesk/.
// Every key has a default and can be overridden by a SCANDESK_* environment
// variable (e.g. SCANDESK_BACKEND_URL overrides `backend.url`).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config") // name of config file (without extension)
		v.SetConfigType("yml")    // or "yaml"
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".scandesk"))
		}
	}

	v.SetEnvPrefix("SCANDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	stateDir := "."
	if home, err := os.UserHomeDir(); err == nil {
		stateDir = filepath.Join(home, ".scandesk")
	}

	// Set default values
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.timeout", 20)
	v.SetDefault("identity.url", "")
	v.SetDefault("identity.client_id", "")
	v.SetDefault("storage.path", filepath.Join(stateDir, "scandesk.db"))
	v.SetDefault("state.dir", stateDir)
	v.SetDefault("inbox.path", "")
	v.SetDefault("dashboard.port", 8818)
	v.SetDefault("dashboard.bind", "127.0.0.1")
	v.SetDefault("poll.list_interval", 30)
	v.SetDefault("poll.detail_interval", 5)
	v.SetDefault("poll.burst_interval", 3)
	v.SetDefault("poll.burst_limit", 40)
	v.SetDefault("upload.max_size_mb", 50)
	v.SetDefault("upload.allowed_extensions", []string{"pdf", "png", "jpg", "jpeg", "tif", "tiff"})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			// Config file not found; ignore error and use defaults
		} else {
			// Config file was found but another error was produced,
			// or an explicitly named file is missing.
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
