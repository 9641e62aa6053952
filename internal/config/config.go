package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Client  ClientConfig  `mapstructure:"client"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Player  PlayerConfig  `mapstructure:"player"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds media server connection settings
type ServerConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Timeout  int    `mapstructure:"timeout"` // seconds
}

// ClientConfig identifies this client to the server
type ClientConfig struct {
	Name       string `mapstructure:"name"`
	DeviceName string `mapstructure:"device_name"` // empty uses the hostname
}

// CatalogConfig controls how episodes are labelled
type CatalogConfig struct {
	EpisodeTemplate string   `mapstructure:"episode_template"`
	EpisodePrefix   string   `mapstructure:"episode_prefix"` // prepended to episode titles
	EpisodeDetails  []string `mapstructure:"episode_details"`
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// StorageConfig locates the durable session/cache store
type StorageConfig struct {
	Path string `mapstructure:"path"` // empty keeps everything in memory
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// Episode detail names accepted in catalog.episode_details
const (
	DetailOverview = "Overview"
	DetailSize     = "Size"
	DetailRuntime  = "Runtime"
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Timeout: 30,
		},
		Client: ClientConfig{
			Name: "Reel",
		},
		Catalog: CatalogConfig{
			EpisodeTemplate: "{number} - {title}",
			EpisodePrefix:   "",
			EpisodeDetails:  []string{DetailOverview, DetailSize, DetailRuntime},
		},
		Player: PlayerConfig{
			Args: []string{},
		},
		Storage: StorageConfig{
			Path: defaultDataPath(),
		},
		Logging: LoggingConfig{
			File:       filepath.Join(defaultDataPath(), "reel.log"),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reel")
	}
}

// DefaultConfigFile is where Save writes when no path was given
func DefaultConfigFile() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix("REEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.url", d.Server.URL)
	v.SetDefault("server.username", d.Server.Username)
	v.SetDefault("server.password", d.Server.Password)
	v.SetDefault("server.timeout", d.Server.Timeout)
	v.SetDefault("client.name", d.Client.Name)
	v.SetDefault("client.device_name", d.Client.DeviceName)
	v.SetDefault("catalog.episode_template", d.Catalog.EpisodeTemplate)
	v.SetDefault("catalog.episode_prefix", d.Catalog.EpisodePrefix)
	v.SetDefault("catalog.episode_details", d.Catalog.EpisodeDetails)
	v.SetDefault("player.command", d.Player.Command)
	v.SetDefault("player.args", d.Player.Args)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
}

// Load reads configuration from path (or the default search paths when
// empty) and the environment. A missing config file is not an error.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail at request time
func (c *Config) Validate() error {
	if c.Server.URL != "" {
		normalized, err := ValidateServerURL(c.Server.URL)
		if err != nil {
			return err
		}
		c.Server.URL = normalized
	}
	for _, d := range c.Catalog.EpisodeDetails {
		switch d {
		case DetailOverview, DetailSize, DetailRuntime:
		default:
			return &domain.ConfigurationError{
				Field:  "catalog.episode_details",
				Value:  d,
				Reason: "must be one of Overview, Size, Runtime",
			}
		}
	}
	return nil
}

// IsConfigured returns true if a server URL and username are set
func (c *Config) IsConfigured() bool {
	return c.Server.URL != "" && c.Server.Username != ""
}

// ValidateServerURL checks that raw is an absolute http(s) URL and returns it
// without a trailing slash.
func ValidateServerURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", &domain.ConfigurationError{Field: "server.url", Reason: "must not be empty"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", &domain.ConfigurationError{Field: "server.url", Value: raw, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &domain.ConfigurationError{Field: "server.url", Value: raw, Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return "", &domain.ConfigurationError{Field: "server.url", Value: raw, Reason: "missing host"}
	}

	return strings.TrimRight(raw, "/"), nil
}

// SetServerURL validates and stores a new server URL
func (c *Config) SetServerURL(raw string) error {
	normalized, err := ValidateServerURL(raw)
	if err != nil {
		return err
	}
	c.Server.URL = normalized
	return nil
}

// Save writes cfg to path (DefaultConfigFile when empty)
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigFile()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.Set("server.url", cfg.Server.URL)
	v.Set("server.username", cfg.Server.Username)
	v.Set("server.password", cfg.Server.Password)
	v.Set("server.timeout", cfg.Server.Timeout)
	v.Set("client.name", cfg.Client.Name)
	v.Set("client.device_name", cfg.Client.DeviceName)
	v.Set("catalog.episode_template", cfg.Catalog.EpisodeTemplate)
	v.Set("catalog.episode_prefix", cfg.Catalog.EpisodePrefix)
	v.Set("catalog.episode_details", cfg.Catalog.EpisodeDetails)
	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.Set("logging.max_backups", cfg.Logging.MaxBackups)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
