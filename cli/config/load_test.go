package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prospector.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	t.Setenv("TEST_PROVIDER_TOKEN", "tok-123")

	path := writeConfig(t, `
provider:
  base_url: https://search.example.com
  token: ${TEST_PROVIDER_TOKEN}
  timeout: 20s
  retries: 1
sink:
  backend: file
  path: ./out
adapter:
  type: redis
  url: redis://localhost:6379
  channel: harvests
  timeout: 3s
concurrency:
  items: 4
  pages: 2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Provider.BaseURL != "https://search.example.com" {
		t.Errorf("provider base_url = %q", cfg.Provider.BaseURL)
	}
	if cfg.Provider.Token != "tok-123" {
		t.Errorf("env expansion failed: token = %q", cfg.Provider.Token)
	}
	if cfg.Provider.Timeout.Duration != 20*time.Second {
		t.Errorf("provider timeout = %v, want 20s", cfg.Provider.Timeout.Duration)
	}
	if cfg.Provider.Retries == nil || *cfg.Provider.Retries != 1 {
		t.Errorf("provider retries = %v, want 1", cfg.Provider.Retries)
	}
	if cfg.Sink.Backend != "file" || cfg.Sink.Path != "./out" {
		t.Errorf("sink = %+v", cfg.Sink)
	}
	if cfg.Adapter.Type != "redis" || cfg.Adapter.Channel != "harvests" {
		t.Errorf("adapter = %+v", cfg.Adapter)
	}
	if cfg.Concurrency.Items != 4 || cfg.Concurrency.Pages != 2 {
		t.Errorf("concurrency = %+v", cfg.Concurrency)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error should say not found, got: %v", err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "provider: [unclosed")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "invalid YAML") {
		t.Errorf("error should say invalid YAML, got: %v", err)
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"seconds", `"10s"`, 10 * time.Second, false},
		{"compound", `"5m30s"`, 5*time.Minute + 30*time.Second, false},
		{"empty keeps zero", `""`, 0, false},
		{"garbage", `"soon"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := yaml.Unmarshal([]byte(tt.input), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unmarshal error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && d.Duration != tt.want {
				t.Errorf("duration = %v, want %v", d.Duration, tt.want)
			}
		})
	}
}
