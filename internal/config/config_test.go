package config

import (
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STAGING_DIR", filepath.Join(t.TempDir(), "staging"))

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Port)
	}
	if cfg.Engine != EngineExec {
		t.Errorf("Expected default engine %q, got %q", EngineExec, cfg.Engine)
	}
	if cfg.DefaultQuality != 0.85 {
		t.Errorf("Expected default quality 0.85, got %v", cfg.DefaultQuality)
	}
	if cfg.Workers < 1 {
		t.Errorf("Expected at least one worker, got %d", cfg.Workers)
	}
	if cfg.WatchManifest {
		t.Error("Expected manifest watching disabled without MANIFEST_PATH")
	}
}

func TestLoadConfigInvalidEngine(t *testing.T) {
	t.Setenv("ENGINE", "quantum")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("Expected error for invalid ENGINE, got nil")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	staging := filepath.Join(t.TempDir(), "work")
	t.Setenv("PORT", "9999")
	t.Setenv("ENGINE", EngineWasm)
	t.Setenv("STAGING_DIR", staging)
	t.Setenv("DEFAULT_QUALITY", "0.5")
	t.Setenv("MAX_IMAGE_DIMENSION", "1024")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", cfg.Port)
	}
	if cfg.Engine != EngineWasm {
		t.Errorf("Expected wasm engine, got %s", cfg.Engine)
	}
	if cfg.StagingDir != staging {
		t.Errorf("Expected staging dir %s, got %s", staging, cfg.StagingDir)
	}
	if cfg.DefaultQuality != 0.5 {
		t.Errorf("Expected quality 0.5, got %v", cfg.DefaultQuality)
	}
	if cfg.MaxImageDimension != 1024 {
		t.Errorf("Expected max dimension 1024, got %d", cfg.MaxImageDimension)
	}
}

func TestLoadConfigOutOfRangeQuality(t *testing.T) {
	t.Setenv("STAGING_DIR", filepath.Join(t.TempDir(), "staging"))
	t.Setenv("DEFAULT_QUALITY", "1.5")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.DefaultQuality != 0.85 {
		t.Errorf("Expected out-of-range quality to fall back to 0.85, got %v", cfg.DefaultQuality)
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected non-empty version")
	}
	if info.GoVersion == "" {
		t.Error("Expected non-empty Go version")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be populated")
	}
}
