package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Model.ConfidenceThreshold != 0.1 {
		t.Errorf("threshold = %v", cfg.Model.ConfidenceThreshold)
	}
	if len(cfg.Model.Candidates) == 0 {
		t.Error("expected default candidates")
	}
	if cfg.Service.Simulate {
		t.Error("simulation must be off by default")
	}
	if cfg.Service.Language != "en" {
		t.Errorf("language = %q", cfg.Service.Language)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.yaml")
	data := []byte(`
app:
  name: leafdoc
  log_level: debug
server:
  port: "9090"
model:
  candidates:
    - https://models.example.com/plant/model.json
  fetch_timeout: 3s
service:
  simulate: true
  language: id
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PLANTDX_SERVER_PORT", "7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Name != "leafdoc" || cfg.App.LogLevel != "debug" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("env override not applied, port = %q", cfg.Server.Port)
	}
	if len(cfg.Model.Candidates) != 1 || cfg.Model.Candidates[0] != "https://models.example.com/plant/model.json" {
		t.Errorf("candidates = %v", cfg.Model.Candidates)
	}
	if cfg.Model.FetchTimeout != 3*time.Second {
		t.Errorf("fetch timeout = %v", cfg.Model.FetchTimeout)
	}
	if !cfg.Service.Simulate || cfg.Service.Language != "id" {
		t.Errorf("service = %+v", cfg.Service)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatal(err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no name", func(c *Config) { c.App.Name = "" }},
		{"no port", func(c *Config) { c.Server.Port = "" }},
		{"no upload size", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"threshold too high", func(c *Config) { c.Model.ConfidenceThreshold = 1.5 }},
		{"no threads", func(c *Config) { c.Model.Threads = 0 }},
		{"unknown language", func(c *Config) { c.Service.Language = "fr" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
