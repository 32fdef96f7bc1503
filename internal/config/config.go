package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// StorageConfig selects where layout state is persisted
type StorageConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // "json" or "sqlite"
	Path    string `yaml:"path,omitempty" mapstructure:"path"`
}

// HostConfig points at the media center bridge
type HostConfig struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	Token         string        `yaml:"token,omitempty" mapstructure:"token"`
	ReadyAttempts int           `yaml:"ready_attempts" mapstructure:"ready_attempts"`
	ReadyInterval time.Duration `yaml:"ready_interval" mapstructure:"ready_interval"`
	ReadyTimeout  time.Duration `yaml:"ready_timeout" mapstructure:"ready_timeout"`
}

// ParentalConfig controls the PIN gate in front of protected sources
type ParentalConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	PINSHA256 string `yaml:"pin_sha256,omitempty" mapstructure:"pin_sha256"`
}

// Config holds application configuration
type Config struct {
	Theme    string         `yaml:"theme" mapstructure:"theme"`
	Catalog  string         `yaml:"catalog,omitempty" mapstructure:"catalog"`
	Activity string         `yaml:"activity" mapstructure:"activity"`
	LogLevel string         `yaml:"log_level" mapstructure:"log_level"`
	LogFile  string         `yaml:"log_file,omitempty" mapstructure:"log_file"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Host     HostConfig     `yaml:"host" mapstructure:"host"`
	Parental ParentalConfig `yaml:"parental" mapstructure:"parental"`
}

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	envPrefix = "BUTTON_LAYOUT"
)

var defaults = map[string]any{
	"theme":               "default",
	"catalog":             "",
	"activity":            "full",
	"log_level":           "info",
	"log_file":            "",
	"storage.backend":     BackendJSON,
	"storage.path":        "",
	"host.base_url":       "",
	"host.token":          "",
	"host.ready_attempts": 100,
	"host.ready_interval": 50 * time.Millisecond,
	"host.ready_timeout":  10 * time.Second,
	"parental.enabled":    false,
	"parental.pin_sha256": "",
}

// Load loads configuration from the config file and environment variables.
// Environment variables (BUTTON_LAYOUT_HOST_BASE_URL, ...) take precedence
// over config file values.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath := getConfigPath(); configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Host.ReadyAttempts < 1 {
		return fmt.Errorf("host.ready_attempts must be at least 1")
	}
	if c.Host.ReadyInterval <= 0 || c.Host.ReadyTimeout <= 0 {
		return fmt.Errorf("host.ready_interval and host.ready_timeout must be positive")
	}
	return nil
}

// StorePath returns the layout store location, defaulting to a file in the
// config directory named after the backend.
func (c *Config) StorePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	configDir, err := EnsureConfigDir()
	if err != nil {
		return "", err
	}
	if c.Storage.Backend == BackendSQLite {
		return filepath.Join(configDir, "layout.db"), nil
	}
	return filepath.Join(configDir, "layout_store.json"), nil
}

// getConfigPath returns the path to the config file
// Priority: $BUTTON_LAYOUT_CONFIG > ~/.config/button-layout/config.yaml
func getConfigPath() string {
	if configPath := os.Getenv("BUTTON_LAYOUT_CONFIG"); configPath != "" {
		return configPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "button-layout", "config.yaml")
}

func GetConfigDir() (string, error) {
	configPath := getConfigPath()
	if configPath == "" {
		return "", fmt.Errorf("cannot determine config path")
	}
	return filepath.Dir(configPath), nil
}

// EnsureConfigDir ensures the config directory exists
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return configDir, nil
}

// SaveExampleConfig creates an example config file
func SaveExampleConfig() error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		return nil // Already exists, don't overwrite
	}

	example := `# Button Layout Configuration

# Optional: Color theme (default, catppuccin, dracula, nord, gruvbox)
theme: "default"

# Optional: Offline catalog of buttons and sources (YAML).
# Used when host.base_url is empty.
# catalog: "~/.config/button-layout/catalog.yaml"

# Optional: Page whose buttons are laid out (default: full)
activity: "full"

# Optional: Logging (debug, info, warn, error). While the editor is open
# logs go to log_file; without one they are discarded.
log_level: "info"
# log_file: "/tmp/button-layout.log"

storage:
  backend: "json"          # "json" or "sqlite"
  # path: ""               # defaults to the config directory

# Optional: media center bridge. BUTTON_LAYOUT_HOST_TOKEN also works.
host:
  base_url: ""
  # token: ""
  ready_attempts: 100
  ready_interval: 50ms
  ready_timeout: 10s

# Optional: PIN gate for adult sources. pin_sha256 is the hex SHA-256 of the
# PIN; "button-layout pin" prints it.
parental:
  enabled: false
  # pin_sha256: ""
`

	return os.WriteFile(configPath, []byte(example), 0600)
}

func (c *Config) Save() error {
	if _, err := EnsureConfigDir(); err != nil {
		return err
	}
	configPath := getConfigPath()

	// Load existing config to preserve fields like tokens
	existing := &Config{}
	if data, err := os.ReadFile(configPath); err == nil {
		_ = yaml.Unmarshal(data, existing)
	}

	// Update only the fields the editor manages
	existing.Theme = c.Theme
	existing.Activity = c.Activity
	existing.Catalog = c.Catalog
	existing.Storage = c.Storage
	existing.Parental.Enabled = c.Parental.Enabled
	if c.Parental.PINSHA256 != "" {
		existing.Parental.PINSHA256 = c.Parental.PINSHA256
	}
	if existing.Host.ReadyAttempts == 0 {
		existing.Host.ReadyAttempts = c.Host.ReadyAttempts
		existing.Host.ReadyInterval = c.Host.ReadyInterval
		existing.Host.ReadyTimeout = c.Host.ReadyTimeout
	}

	data, err := yaml.Marshal(existing)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# Button Layout Configuration\n# Note: Sensitive values (tokens) can be set via environment variables or this file\n\n")
	return os.WriteFile(configPath, append(header, data...), 0600)
}
