package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_FromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HYDRO_API_BASE_URL", "http://hydro.example:8080")
	t.Setenv("HYDRO_DATABASE_PATH", filepath.Join(tmpDir, "db", "hydro.db"))
	t.Setenv("HYDRO_STATIONS_PATH", filepath.Join(tmpDir, "stations.json"))
	t.Setenv("HYDRO_EXPORT_DIR", filepath.Join(tmpDir, "exports"))
	t.Setenv("HYDRO_POLL_INTERVAL", "1m")
	t.Setenv("HYDRO_AUTOLOOP_DWELL", "45s")

	cfg, err := Load(filepath.Join(tmpDir, "missing.yaml"))
	if err == nil {
		// An explicit config path that does not exist is an error.
		t.Fatalf("expected error for missing explicit config file, got %+v", cfg)
	}

	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.API.BaseURL != "http://hydro.example:8080" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.PollInterval != time.Minute {
		t.Errorf("PollInterval = %v, want 1m", cfg.PollInterval)
	}
	if cfg.AutoLoop.Dwell != 45*time.Second {
		t.Errorf("Dwell = %v, want 45s", cfg.AutoLoop.Dwell)
	}
	if cfg.AutoLoop.Inactivity != defaultInactivity {
		t.Errorf("Inactivity = %v, want %v", cfg.AutoLoop.Inactivity, defaultInactivity)
	}
	if cfg.Export.Mode != ExportModeRemote {
		t.Errorf("Export.Mode = %q, want remote", cfg.Export.Mode)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, "db")); err != nil {
		t.Error("database directory was not created")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "exports")); err != nil {
		t.Error("export directory was not created")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	content := `
api:
  base_url: http://file.example
  timeout: 5s
database_path: ` + filepath.Join(tmpDir, "hydro.db") + `
stations_path: ` + filepath.Join(tmpDir, "stations.json") + `
export:
  dir: ` + filepath.Join(tmpDir, "out") + `
  mode: local
autoloop:
  min_width: 160
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.API.BaseURL != "http://file.example" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.API.Timeout)
	}
	if cfg.Export.Mode != ExportModeLocal {
		t.Errorf("Mode = %q, want local", cfg.Export.Mode)
	}
	if cfg.AutoLoop.MinWidth != 160 {
		t.Errorf("MinWidth = %d, want 160", cfg.AutoLoop.MinWidth)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		API:          APIConfig{BaseURL: "http://localhost", Timeout: time.Second},
		DatabasePath: "hydro.db",
		StationsPath: "stations.json",
		Export:       ExportConfig{Dir: "out", Mode: ExportModeRemote},
		PollInterval: time.Minute,
		AutoLoop:     AutoLoopConfig{Inactivity: time.Second, Dwell: time.Second},
		Log:          LogConfig{Level: "info"},
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Valid", func(c *Config) {}, ""},
		{"MissingBaseURL", func(c *Config) { c.API.BaseURL = "" }, "BaseURL"},
		{"BadMode", func(c *Config) { c.Export.Mode = "ftp" }, "Mode"},
		{"ShortPoll", func(c *Config) { c.PollInterval = time.Millisecond }, "PollInterval"},
		{"BadLevel", func(c *Config) { c.Log.Level = "loud" }, "Level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetConfigDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test because user home dir cannot be found")
	}

	if got := getConfigDir(); got != filepath.Join(home, ".config", "hydro-tui") {
		t.Errorf("getConfigDir() = %q", got)
	}
}
