package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.Schedule.Workdays) != 5 {
		t.Errorf("expected 5 workdays, got %d", len(cfg.Schedule.Workdays))
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected provider openai, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("expected model gpt-4o, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != "http://localhost:11434" {
		t.Errorf("expected base_url http://localhost:11434, got %s", cfg.LLM.BaseURL)
	}
	if cfg.UI.Theme != "frappe" {
		t.Errorf("expected theme frappe, got %s", cfg.UI.Theme)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should return defaults
	if len(cfg.Schedule.Workdays) != 5 {
		t.Errorf("expected default workdays, got %v", cfg.Schedule.Workdays)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[schedule]
workdays = ["monday", "tuesday", "wednesday", "saturday"]

[llm]
provider = "lmstudio"
model = "gpt-4o-mini"
base_url = "http://localhost:11435"

[storage]
db_path = "/tmp/test.db"

[ui]
theme = "latte"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Schedule.Workdays) != 4 {
		t.Errorf("expected 4 workdays, got %d", len(cfg.Schedule.Workdays))
	}
	if !cfg.IsWorkday("saturday") {
		t.Error("expected saturday to be a workday")
	}
	if cfg.LLM.Provider != "lmstudio" {
		t.Errorf("expected provider lmstudio, got %s", cfg.LLM.Provider)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %s", cfg.LLM.Model)
	}
	if cfg.Storage.DBPath != "/tmp/test.db" {
		t.Errorf("expected db_path /tmp/test.db, got %s", cfg.Storage.DBPath)
	}
	if cfg.UI.Theme != "latte" {
		t.Errorf("expected theme latte, got %s", cfg.UI.Theme)
	}
}

func TestLoadFrom_EnvOverrides(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[schedule]
workdays = ["monday"]

[storage]
db_path = "/tmp/test.db"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("CREWPLAN_WORKDAYS", "tuesday,thursday")
	t.Setenv("CREWPLAN_LLM_MODEL", "gpt-4o-mini")
	t.Setenv("CREWPLAN_LLM_BASE_URL", "http://localhost:11436")
	t.Setenv("CREWPLAN_DB_PATH", "/tmp/env.db")

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Env should override file
	if len(cfg.Schedule.Workdays) != 2 || cfg.Schedule.Workdays[0] != "tuesday" {
		t.Errorf("expected env workdays, got %v", cfg.Schedule.Workdays)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.BaseURL != "http://localhost:11436" {
		t.Errorf("expected base_url http://localhost:11436, got %s", cfg.LLM.BaseURL)
	}
	if cfg.Storage.DBPath != "/tmp/env.db" {
		t.Errorf("expected db_path /tmp/env.db, got %s", cfg.Storage.DBPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"no workdays", func(c *Config) { c.Schedule.Workdays = nil }, true},
		{"bad workday name", func(c *Config) { c.Schedule.Workdays = []string{"payday"} }, true},
		{"mixed case workday", func(c *Config) { c.Schedule.Workdays = []string{"Monday"} }, false},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveToAndReload(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.toml")

	cfg := Default()
	cfg.UI.Theme = "mocha"
	cfg.Storage.DBPath = "/tmp/saved.db"
	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if loaded.UI.Theme != "mocha" {
		t.Errorf("theme = %s, want mocha", loaded.UI.Theme)
	}
	if loaded.Storage.DBPath != "/tmp/saved.db" {
		t.Errorf("db_path = %s, want /tmp/saved.db", loaded.Storage.DBPath)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}

	got := expandPath("~/data/crewplan.db")
	want := filepath.Join(home, "data", "crewplan.db")
	if got != want {
		t.Errorf("expandPath() = %s, want %s", got, want)
	}

	if got := expandPath("/abs/path.db"); got != "/abs/path.db" {
		t.Errorf("expandPath() = %s, want unchanged", got)
	}
}
