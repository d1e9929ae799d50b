package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
geminiAPIKey: "key"
jwtSecret: "secret"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ChatModel != "gemini-1.5-flash" || cfg.EmbedModel != "models/embedding-001" {
		t.Fatalf("model defaults = %q %q", cfg.ChatModel, cfg.EmbedModel)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 200 {
		t.Fatalf("chunk defaults = %d %d", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.SessionTTLHours != 24 || cfg.RetrievalTopK != 4 {
		t.Fatalf("defaults = %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
geminiAPIKey: "from-file"
jwtSecret: "secret"
`)
	t.Setenv("GEMINI_API_KEY", "from-env")
	t.Setenv("PORT", "9090")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GeminiAPIKey != "from-env" || cfg.Port != "9090" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
jwtSecret: "secret"
`)
	t.Setenv("GEMINI_API_KEY", "")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "geminiAPIKey") {
		t.Fatalf("expected geminiAPIKey error, got %v", err)
	}
}

func TestLoadRejectsOverlapLargerThanSize(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
geminiAPIKey: "key"
jwtSecret: "secret"
chunkSize: 100
chunkOverlap: 100
`)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected overlap validation error")
	}
}

func TestLoadRejectsPartialMinio(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
geminiAPIKey: "key"
jwtSecret: "secret"
minioEndpoint: "localhost:9000"
`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "minio") {
		t.Fatalf("expected minio validation error, got %v", err)
	}
}
