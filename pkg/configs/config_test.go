package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestInitConfigDefaults 目录中没有配置文件时使用默认值.
func TestInitConfigDefaults(t *testing.T) {
	dir := t.TempDir()

	if err := InitConfig(dir); err != nil {
		t.Fatalf("InitConfig() error = %v", err)
	}

	cfg := GetConfig()
	if cfg.Server.Port != 8080 || cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("server = %d/%v, want 8080/10s", cfg.Server.Port, cfg.Server.ShutdownTimeout)
	}

	if cfg.Log.Format != "console" {
		t.Errorf("log.format = %q, want console", cfg.Log.Format)
	}

	if cfg.Documents.DefaultPageSize != DefaultPageSize || cfg.Documents.MaxPageSize != DefaultMaxPageSize {
		t.Errorf("page sizes = %d/%d", cfg.Documents.DefaultPageSize, cfg.Documents.MaxPageSize)
	}

	if cfg.Documents.PreviewTTL != DefaultPreviewTTL {
		t.Errorf("preview_ttl = %v, want %v", cfg.Documents.PreviewTTL, DefaultPreviewTTL)
	}

	if cfg.DB.Type != SQLite {
		t.Errorf("db.type = %s, want sqlite", cfg.DB.Type)
	}
}

// TestInitConfigFile 文件中的值覆盖默认值.
func TestInitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9191
  reload_config: false
documents:
  max_page_size: 50
  preview_ttl: 5m
  max_upload_size: 2MB
db:
  type: postgres
  host: db.internal
  port: 5433
`)

	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := InitConfig(path); err != nil {
		t.Fatalf("InitConfig() error = %v", err)
	}

	cfg := GetConfig()
	if cfg.Server.Port != 9191 {
		t.Errorf("server.port = %d, want 9191", cfg.Server.Port)
	}

	if cfg.Documents.MaxPageSize != 50 {
		t.Errorf("max_page_size = %d, want 50", cfg.Documents.MaxPageSize)
	}

	if cfg.Documents.PreviewTTL != 5*time.Minute {
		t.Errorf("preview_ttl = %v, want 5m", cfg.Documents.PreviewTTL)
	}

	n, err := cfg.Documents.MaxUploadBytes()
	if err != nil || n != 2_000_000 {
		t.Errorf("MaxUploadBytes() = %d, %v; want 2000000", n, err)
	}

	if got := cfg.DB.GetDBType(); got != "PostgreSQL" {
		t.Errorf("GetDBType() = %s", got)
	}

	if dsn := cfg.DB.GetDSN(); dsn == "" {
		t.Error("GetDSN() returned empty string")
	}
}

func TestMaxUploadBytesInvalid(t *testing.T) {
	c := DocumentsConfig{MaxUploadSize: "lots"}
	if _, err := c.MaxUploadBytes(); err == nil {
		t.Error("expected error for invalid size")
	}
}
