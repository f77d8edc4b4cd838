package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	path := writeConfig(t, "port: 9000\nhost: 127.0.0.1\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
	if cfg.Pipeline.RenderDPI != 300 {
		t.Errorf("Pipeline.RenderDPI = %d, want default 300", cfg.Pipeline.RenderDPI)
	}
	if cfg.Worker.PoolSize != 4 {
		t.Errorf("Worker.PoolSize = %d, want default 4", cfg.Worker.PoolSize)
	}
	if cfg.OCR.Language != "por" {
		t.Errorf("OCR.Language = %q, want default \"por\"", cfg.OCR.Language)
	}
	if cfg.Auth.TokenTTLMin != 60 {
		t.Errorf("Auth.TokenTTLMin = %d, want default 60", cfg.Auth.TokenTTLMin)
	}
}

func TestLoadPreservesExplicitValuesOverDefaults(t *testing.T) {
	path := writeConfig(t, "pipeline:\n  render_dpi: 600\nworker:\n  pool_size: 8\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Pipeline.RenderDPI != 600 {
		t.Errorf("Pipeline.RenderDPI = %d, want 600 (explicit value should not be overwritten)", cfg.Pipeline.RenderDPI)
	}
	if cfg.Worker.PoolSize != 8 {
		t.Errorf("Worker.PoolSize = %d, want 8", cfg.Worker.PoolSize)
	}
}

func TestLoadEnvOverridesTakePrecedence(t *testing.T) {
	path := writeConfig(t, "port: 9000\nworker:\n  pool_size: 4\n")

	t.Setenv("PORT", "9090")
	t.Setenv("WORKER_POOL_SIZE", "16")
	t.Setenv("OCR_LANGUAGE", "eng")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090 from PORT env override", cfg.Port)
	}
	if cfg.Worker.PoolSize != 16 {
		t.Errorf("Worker.PoolSize = %d, want 16 from WORKER_POOL_SIZE env override", cfg.Worker.PoolSize)
	}
	if cfg.OCR.Language != "eng" {
		t.Errorf("OCR.Language = %q, want \"eng\" from OCR_LANGUAGE env override", cfg.OCR.Language)
	}
}

func TestLoadFailsForMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() error = nil for a missing config file, want an error")
	}
}
