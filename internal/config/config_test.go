package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	return path
}

func TestLoad_Success(t *testing.T) {
	path := writeConfig(t, `server:
  port: 8080
  shutdownTimeout: 3s
model:
  path: /srv/model.onnx
  metadataPath: /srv/meta.json
  resizeFilter: lanczos3
images:
  maxFileSize: 1048576
cache:
  enabled: true
  addr: localhost:6379
  ttl: 1h
`)

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Server.Port != 8080 {
		t.Errorf("Expected port to be 8080, got %d", config.Server.Port)
	}
	if config.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Expected shutdown timeout 3s, got %s", config.Server.ShutdownTimeout)
	}
	if config.Model.Path != "/srv/model.onnx" || config.Model.ResizeFilter != "lanczos3" {
		t.Errorf("unexpected model config %+v", config.Model)
	}
	if config.Images.MaxFileSize != 1<<20 {
		t.Errorf("unexpected image limits %+v", config.Images)
	}
	if !config.Cache.Enabled || config.Cache.TTL != time.Hour {
		t.Errorf("unexpected cache config %+v", config.Cache)
	}
	// defaults survive for keys the file does not set
	if config.Log.Level != "info" {
		t.Errorf("expected default log level, got %q", config.Log.Level)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	config, err := Load("/path/that/does/not/exist/config.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Server.Port != 5000 {
		t.Errorf("expected default port 5000, got %d", config.Server.Port)
	}
	if config.Address() != ":5000" {
		t.Errorf("unexpected address %q", config.Address())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_PATH", "/tmp/m.onnx")
	t.Setenv("REDIS_ADDR", "redis:6379")

	config, err := Load(writeConfig(t, "server:\n  port: 8080\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Server.Port != 9090 {
		t.Errorf("expected env port 9090, got %d", config.Server.Port)
	}
	if config.Model.Path != "/tmp/m.onnx" {
		t.Errorf("expected env model path, got %q", config.Model.Path)
	}
	if !config.Cache.Enabled || config.Cache.Addr != "redis:6379" {
		t.Errorf("expected redis cache from env, got %+v", config.Cache)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "server: [unclosed"},
		{"port out of range", "server:\n  port: 70000\n"},
		{"unknown filter", "model:\n  resizeFilter: sinc\n"},
		{"unknown log format", "log:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoad_InvalidPortEnv(t *testing.T) {
	t.Setenv("PORT", "http")
	if _, err := Load(writeConfig(t, "")); err == nil {
		t.Fatal("expected error for non-numeric PORT")
	}
}
