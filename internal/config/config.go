package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// configDir is the configuration directory path
	// Can be set via SetConfigDir before loading config
	configDir     string
	configDirInit bool
)

// SetConfigDir sets a custom configuration directory
// Must be called before any config loading functions
func SetConfigDir(dir string) {
	configDir = dir
	configDirInit = true
}

// GetConfigDir returns the configuration directory
// Priority: 1. Manually set via SetConfigDir, 2. ./config in current directory
func GetConfigDir() string {
	if !configDirInit {
		cwd, err := os.Getwd()
		if err == nil {
			configDir = filepath.Join(cwd, "config")
		}
		configDirInit = true
	}
	return configDir
}

// Config application configuration structure
type Config struct {
	Search   SearchConfig   `yaml:"search"`
	Download DownloadConfig `yaml:"download"`
	Log      LogConfig      `yaml:"log"`
}

// SearchConfig search provider configuration
type SearchConfig struct {
	Provider       string `yaml:"provider"`
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"api_key"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ResultsPerPage int    `yaml:"results_per_page"`
	MaxResults     int    `yaml:"max_results"`
}

// DownloadConfig download configuration
type DownloadConfig struct {
	Dir              string  `yaml:"dir"`
	ForceDirectories bool    `yaml:"force_directories"`
	TimeoutSeconds   float64 `yaml:"timeout_seconds"` // 0 means no timeout
	UserAgent        string  `yaml:"user_agent"`
	Proxy            string  `yaml:"proxy"`
	MetricsFile      string  `yaml:"metrics_file"`
}

// LogConfig logging configuration
type LogConfig struct {
	Level   string `yaml:"level"`
	Dir     string `yaml:"dir"` // empty disables the log file
	MaxDays int    `yaml:"max_days"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Provider:       "duckduckgo",
			BaseURL:        "",
			APIKey:         "",
			UserAgent:      "",
			TimeoutSeconds: 15,
			ResultsPerPage: 50,
			MaxResults:     1000,
		},
		Download: DownloadConfig{
			Dir:              ".",
			ForceDirectories: false,
			TimeoutSeconds:   0,
			UserAgent:        "",
		},
		Log: LogConfig{
			Level:   "info",
			Dir:     "",
			MaxDays: 7,
		},
	}
}

// ConfigPath returns the configuration file path
func ConfigPath() (string, error) {
	dir := GetConfigDir()
	if dir == "" {
		return "", fmt.Errorf("failed to determine config directory")
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration file at path, or the default location when
// path is empty. A missing file yields the defaults; nothing is written.
// The result is not validated so command line overrides can be applied
// first; call Validate before use.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Secrets fill in keys the config file leaves empty
	secrets, err := LoadSecrets(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read secrets file %s: %w", SecretsPath(filepath.Dir(path)), err)
	}
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = secrets.GetSearchAPIKey()
	}

	return cfg, nil
}

// Save saves configuration to file
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Keys belong in .secrets
	out := *cfg
	out.Search.APIKey = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	content := "# searchdl configuration file\n# Command line flags override these values.\n\n" + string(data)

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	provider := strings.ToLower(strings.TrimSpace(c.Search.Provider))
	switch provider {
	case "", "duckduckgo", "ddg":
	case "searxng":
		if strings.TrimSpace(c.Search.BaseURL) == "" {
			return fmt.Errorf("config error: search.base_url cannot be empty for searxng provider")
		}
	default:
		return fmt.Errorf("config error: unknown search.provider %q", c.Search.Provider)
	}
	if c.Search.TimeoutSeconds <= 0 {
		return fmt.Errorf("config error: search.timeout_seconds must be greater than 0")
	}
	if c.Search.ResultsPerPage <= 0 {
		return fmt.Errorf("config error: search.results_per_page must be greater than 0")
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("config error: search.max_results must be greater than 0")
	}

	if strings.TrimSpace(c.Download.Dir) == "" {
		return fmt.Errorf("config error: download.dir cannot be empty")
	}
	if c.Download.TimeoutSeconds < 0 {
		return fmt.Errorf("config error: download.timeout_seconds cannot be negative")
	}

	if c.Log.MaxDays < 0 {
		return fmt.Errorf("config error: log.max_days cannot be negative")
	}

	return nil
}

// SearchTimeout returns the search request timeout
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Search.TimeoutSeconds) * time.Second
}

// DownloadTimeout returns the download socket timeout, 0 when unset
func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.Download.TimeoutSeconds * float64(time.Second))
}

// String returns string representation of config (hides sensitive info)
func (c *Config) String() string {
	return fmt.Sprintf(`searchdl configuration:
  Search:
    Provider: %s
    Base URL: %s
    API Key: %s
    User Agent: %s
    Timeout Seconds: %d
    Results Per Page: %d
    Max Results: %d
  Download:
    Dir: %s
    Force Directories: %v
    Timeout Seconds: %g
    User Agent: %s
    Proxy: %s
    Metrics File: %s
  Log:
    Level: %s
    Dir: %s
    Max Days: %d`,
		c.Search.Provider,
		displayOrDefault(c.Search.BaseURL),
		redactAPIKey(c.Search.APIKey),
		displayOrDefault(c.Search.UserAgent),
		c.Search.TimeoutSeconds,
		c.Search.ResultsPerPage,
		c.Search.MaxResults,
		c.Download.Dir,
		c.Download.ForceDirectories,
		c.Download.TimeoutSeconds,
		displayOrDefault(c.Download.UserAgent),
		displayOrDefault(c.Download.Proxy),
		displayOrDefault(c.Download.MetricsFile),
		c.Log.Level,
		displayOrDefault(c.Log.Dir),
		c.Log.MaxDays,
	)
}

func displayOrDefault(value string) string {
	if value == "" {
		return "(default)"
	}
	return value
}

func redactAPIKey(value string) string {
	if value == "" {
		return "(not configured)"
	}
	if len(value) > 8 {
		return value[:8] + "..."
	}
	return "***"
}
