package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.trai.ch/lode/internal/adapters/config"
)

func TestLoader_Defaults(t *testing.T) {
	settings, err := config.NewLoader().Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if settings.StoreDir == "" {
		t.Error("expected a default store directory")
	}
	if settings.RegistryURL != "https://registry.npmjs.org" {
		t.Errorf("unexpected default registry: %q", settings.RegistryURL)
	}
	if settings.HTTPTimeout != 30*time.Second {
		t.Errorf("unexpected default timeout: %v", settings.HTTPTimeout)
	}
	if settings.HTTPHeaders == nil {
		t.Error("expected empty headers map, not nil")
	}
}

func TestLoader_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	doc := `
storeDir: /var/lode/store
registry: https://registry.example.test
metaCacheMaxAge: 1h
http:
  timeout: 5s
  headers:
    Authorization: Bearer token
`
	if err := os.WriteFile(filepath.Join(dir, config.Filename), []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	settings, err := config.NewLoader().Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if settings.StoreDir != "/var/lode/store" {
		t.Errorf("storeDir: got %q", settings.StoreDir)
	}
	if settings.RegistryURL != "https://registry.example.test" {
		t.Errorf("registry: got %q", settings.RegistryURL)
	}
	if settings.MetaCacheMaxAge != time.Hour {
		t.Errorf("metaCacheMaxAge: got %v", settings.MetaCacheMaxAge)
	}
	if settings.HTTPTimeout != 5*time.Second {
		t.Errorf("timeout: got %v", settings.HTTPTimeout)
	}
	if settings.HTTPHeaders["Authorization"] != "Bearer token" {
		t.Errorf("headers: got %v", settings.HTTPHeaders)
	}
}

func TestLoader_InvalidTimeout(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.Filename), []byte("http:\n  timeout: soon\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if _, err := config.NewLoader().Load(dir); err == nil {
		t.Fatal("expected error for unparseable timeout")
	}
}
