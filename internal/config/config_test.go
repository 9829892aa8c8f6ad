package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated")
	}

	if cfg.LLM.Model != "gemini-2.0-flash" {
		t.Errorf("expected model 'gemini-2.0-flash', got %q", cfg.LLM.Model)
	}

	if cfg.Defaults.Mode != "STANDARD" {
		t.Errorf("expected mode 'STANDARD', got %q", cfg.Defaults.Mode)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
llm:
  model: gemini-2.5-pro
defaults:
  output_language: TR
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.LLM.Model != "gemini-2.5-pro" {
		t.Errorf("expected model 'gemini-2.5-pro', got %q", cfg.LLM.Model)
	}
	if cfg.Defaults.OutputLanguage != "TR" {
		t.Errorf("expected output language 'TR', got %q", cfg.Defaults.OutputLanguage)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.LLM.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("expected default api_key_env, got %q", cfg.LLM.APIKeyEnv)
	}
	if cfg.Defaults.SummaryLengthSeconds != 30 {
		t.Errorf("expected default summary length 30, got %d", cfg.Defaults.SummaryLengthSeconds)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Sources.Feeds) == 0 {
		t.Error("expected feeds to be populated from file")
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	defaultDir := cfg.GetDataDir()
	if defaultDir == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}

func TestSessionFromEnvironment(t *testing.T) {
	cfg := &Config{
		Remote: Remote{
			AccessTokenEnv: "TEST_BREVITA_TOKEN",
			UserIDEnv:      "TEST_BREVITA_USER",
		},
	}

	t.Setenv("TEST_BREVITA_TOKEN", "jwt")
	t.Setenv("TEST_BREVITA_USER", "user-1")

	userID, token := cfg.Session()
	if userID != "user-1" || token != "jwt" {
		t.Errorf("unexpected session: %q %q", userID, token)
	}
}
