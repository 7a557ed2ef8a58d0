package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAPIURL         = "http://localhost:8000/api"
	DefaultPageSize       = 20
	DefaultPollInterval   = 5 * time.Minute
	DefaultUnreadInterval = 60 * time.Second
	DefaultView           = "tasks"
	DefaultLogLevel       = "info"
)

// Config holds the unified application configuration
type Config struct {
	APIURL         string
	PageSize       int
	PollInterval   time.Duration
	UnreadInterval time.Duration
	StateDir       string
	LogLevel       string
	DefaultView    string
}

// Settings represents the config file structure
type Settings struct {
	APIURL         string `json:"api_url,omitempty"`
	PageSize       int    `json:"page_size,omitempty"`
	PollInterval   string `json:"poll_interval,omitempty"`
	UnreadInterval string `json:"unread_interval,omitempty"`
	StateDir       string `json:"state_dir,omitempty"`
	LogLevel       string `json:"log_level,omitempty"`
	DefaultView    string `json:"default_view,omitempty"`
}

// CLIFlags holds parsed CLI flags
type CLIFlags struct {
	APIURL   string
	StateDir string
	View     string
}

var globalConfig *Config

// Load loads configuration with priority: CLI flags > env vars > config file > default
func Load(flags CLIFlags) (*Config, error) {
	stateDir, err := GetDefaultStateDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIURL:         DefaultAPIURL,
		PageSize:       DefaultPageSize,
		PollInterval:   DefaultPollInterval,
		UnreadInterval: DefaultUnreadInterval,
		StateDir:       stateDir,
		LogLevel:       DefaultLogLevel,
		DefaultView:    DefaultView,
	}

	// Try loading config file first for base values
	configPath, err := getConfigPath()
	if err == nil {
		if fileConfig, err := loadConfigFile(configPath); err == nil {
			if err := cfg.apply(fileConfig); err != nil {
				return nil, fmt.Errorf("config file %s: %w", configPath, err)
			}
		}
	}

	// Priority 2: Environment variables override config file
	env := &Settings{
		APIURL:         os.Getenv("HUB_API_URL"),
		PollInterval:   os.Getenv("HUB_POLL_INTERVAL"),
		UnreadInterval: os.Getenv("HUB_UNREAD_INTERVAL"),
		StateDir:       os.Getenv("HUB_STATE_DIR"),
		LogLevel:       os.Getenv("HUB_LOG_LEVEL"),
		DefaultView:    os.Getenv("HUB_DEFAULT_VIEW"),
	}
	if v := os.Getenv("HUB_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("HUB_PAGE_SIZE: %w", err)
		}
		env.PageSize = n
	}
	if err := cfg.apply(env); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	// Priority 1: CLI flags override everything
	if flags.APIURL != "" {
		cfg.APIURL = flags.APIURL
	}
	if flags.StateDir != "" {
		cfg.StateDir = expandPath(flags.StateDir)
	}
	if flags.View != "" {
		cfg.DefaultView = flags.View
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	globalConfig = cfg
	return cfg, nil
}

func (c *Config) apply(s *Settings) error {
	if s.APIURL != "" {
		c.APIURL = s.APIURL
	}
	if s.PageSize != 0 {
		c.PageSize = s.PageSize
	}
	if s.PollInterval != "" {
		d, err := time.ParseDuration(s.PollInterval)
		if err != nil {
			return fmt.Errorf("poll interval: %w", err)
		}
		c.PollInterval = d
	}
	if s.UnreadInterval != "" {
		d, err := time.ParseDuration(s.UnreadInterval)
		if err != nil {
			return fmt.Errorf("unread interval: %w", err)
		}
		c.UnreadInterval = d
	}
	if s.StateDir != "" {
		c.StateDir = expandPath(s.StateDir)
	}
	if s.LogLevel != "" {
		c.LogLevel = s.LogLevel
	}
	if s.DefaultView != "" {
		c.DefaultView = s.DefaultView
	}
	return nil
}

// Validate checks the loaded values
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api url is required")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("api url must start with http:// or https://: %q", c.APIURL)
	}
	if c.PageSize < 1 || c.PageSize > 500 {
		return fmt.Errorf("page size must be between 1 and 500")
	}
	if c.PollInterval < time.Second || c.UnreadInterval < time.Second {
		return fmt.Errorf("poll intervals must be at least 1s")
	}
	switch c.DefaultView {
	case "tasks", "notes", "events", "contacts", "mail":
	default:
		return fmt.Errorf("unknown default view %q", c.DefaultView)
	}
	return nil
}

// Get returns the loaded config
func Get() *Config {
	return globalConfig
}

// StorePath returns the path of the local state database
func (c *Config) StorePath() string {
	return filepath.Join(c.StateDir, "hub.db")
}

// GetDefaultStateDir returns the default state directory path
func GetDefaultStateDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "state", "hub"), nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "hub", "config.json"), nil
}

// loadConfigFile loads configuration from the settings file
func loadConfigFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// EnsureConfigFile creates the config file with defaults if it doesn't exist
func EnsureConfigFile() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	settings := Settings{
		APIURL:         DefaultAPIURL,
		PageSize:       DefaultPageSize,
		PollInterval:   DefaultPollInterval.String(),
		UnreadInterval: DefaultUnreadInterval.String(),
		LogLevel:       DefaultLogLevel,
		DefaultView:    DefaultView,
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// ParseCommaSeparated splits a comma-separated string into a slice
func ParseCommaSeparated(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
