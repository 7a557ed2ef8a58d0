package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points HOME at a temp dir so a developer's real config file
// never leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"HUB_API_URL", "HUB_PAGE_SIZE", "HUB_POLL_INTERVAL", "HUB_UNREAD_INTERVAL", "HUB_STATE_DIR", "HUB_LOG_LEVEL", "HUB_DEFAULT_VIEW"} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoad_Default(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default api url, got %q", cfg.APIURL)
	}
	if cfg.PageSize != 20 {
		t.Errorf("expected page size 20, got %d", cfg.PageSize)
	}
	if cfg.DefaultView != "tasks" {
		t.Errorf("expected default view 'tasks', got %q", cfg.DefaultView)
	}
	if cfg.StateDir != filepath.Join(home, ".local", "state", "hub") {
		t.Errorf("unexpected state dir %q", cfg.StateDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "hub")
	os.MkdirAll(dir, 0755)
	os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"api_url":"https://hub.example.com/api/","page_size":50,"poll_interval":"10m"}`), 0644)

	cfg, err := Load(CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != "https://hub.example.com/api" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if cfg.PageSize != 50 {
		t.Errorf("expected 50, got %d", cfg.PageSize)
	}
	if cfg.PollInterval != 10*time.Minute {
		t.Errorf("expected 10m, got %v", cfg.PollInterval)
	}
}

func TestLoad_EnvVar(t *testing.T) {
	isolate(t)
	t.Setenv("HUB_API_URL", "http://env.example.com/api")
	t.Setenv("HUB_PAGE_SIZE", "10")
	t.Setenv("HUB_UNREAD_INTERVAL", "30s")

	cfg, err := Load(CLIFlags{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIURL != "http://env.example.com/api" {
		t.Errorf("expected env api url, got %q", cfg.APIURL)
	}
	if cfg.PageSize != 10 {
		t.Errorf("expected 10, got %d", cfg.PageSize)
	}
	if cfg.UnreadInterval != 30*time.Second {
		t.Errorf("expected 30s, got %v", cfg.UnreadInterval)
	}
}

func TestLoad_BadEnvVar(t *testing.T) {
	isolate(t)
	t.Setenv("HUB_PAGE_SIZE", "lots")

	if _, err := Load(CLIFlags{}); err == nil {
		t.Fatal("expected error for non-numeric page size")
	}
}

func TestLoad_CLIFlags(t *testing.T) {
	isolate(t)
	t.Setenv("HUB_API_URL", "http://env.example.com/api")

	cfg, err := Load(CLIFlags{
		APIURL: "http://cli.example.com/api",
		View:   "mail",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// CLI flags should override env vars
	if cfg.APIURL != "http://cli.example.com/api" {
		t.Errorf("expected cli api url, got %q", cfg.APIURL)
	}
	if cfg.DefaultView != "mail" {
		t.Errorf("expected view mail, got %q", cfg.DefaultView)
	}
}

func TestLoad_PathExpansion(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(CLIFlags{StateDir: "~/hub-state"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := filepath.Join(home, "hub-state")
	if cfg.StateDir != expected {
		t.Errorf("expected %q, got %q", expected, cfg.StateDir)
	}
	if cfg.StorePath() != filepath.Join(expected, "hub.db") {
		t.Errorf("unexpected store path %q", cfg.StorePath())
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		APIURL:         DefaultAPIURL,
		PageSize:       20,
		PollInterval:   time.Minute,
		UnreadInterval: time.Minute,
		DefaultView:    "tasks",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no scheme", func(c *Config) { c.APIURL = "localhost:8000" }, true},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, true},
		{"tiny interval", func(c *Config) { c.PollInterval = time.Millisecond }, true},
		{"unknown view", func(c *Config) { c.DefaultView = "boards" }, true},
	}

	for _, tt := range tests {
		c := base
		tt.mutate(&c)
		err := c.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: wantErr=%v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestEnsureConfigFile(t *testing.T) {
	home := isolate(t)

	if err := EnsureConfigFile(); err != nil {
		t.Fatalf("EnsureConfigFile: %v", err)
	}
	path := filepath.Join(home, ".config", "hub", "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}

	cfg, err := Load(CLIFlags{})
	if err != nil {
		t.Fatalf("load after ensure: %v", err)
	}
	if cfg.PollInterval != DefaultPollInterval {
		t.Errorf("expected default poll interval round-trip, got %v", cfg.PollInterval)
	}
}

func TestParseCommaSeparated(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"a", 1},
		{"a,b,c", 3},
		{" a , b , c ", 3},
		{"a,,b", 2},
	}

	for _, tt := range tests {
		result := ParseCommaSeparated(tt.input)
		if len(result) != tt.expected {
			t.Errorf("ParseCommaSeparated(%q): expected %d items, got %d", tt.input, tt.expected, len(result))
		}
	}
}
