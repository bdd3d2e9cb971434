package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	// Create temp config file
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "imgcatalog.yaml")

	configContent := `
catalog:
  extensions: [".jpg", ".jpeg", ".png", ".gif"]
  originals_dir: "originais"

images:
  quality: 90
  thumb_width: 480
  filter: "lanczos"

converter:
  base_dir: "assets/extras/imagens projeto"
  keep_failed_entries: false

normalizer:
  base_dir: "assets/extras/albuns"

watch:
  debounce: 2s
  normalize: true

logging:
  level: "debug"
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Images.Quality != 90 {
		t.Errorf("Expected quality 90, got %d", cfg.Images.Quality)
	}

	if cfg.Images.ThumbWidth != 480 {
		t.Errorf("Expected thumb_width 480, got %d", cfg.Images.ThumbWidth)
	}

	if cfg.Catalog.OriginalsDir != "originais" {
		t.Errorf("Expected originals_dir 'originais', got '%s'", cfg.Catalog.OriginalsDir)
	}

	if len(cfg.Catalog.Extensions) != 4 {
		t.Errorf("Expected 4 extensions, got %d", len(cfg.Catalog.Extensions))
	}

	if cfg.Converter.KeepFailedEntries {
		t.Error("Expected keep_failed_entries to be overridden to false")
	}

	if cfg.Watch.Debounce != 2*time.Second {
		t.Errorf("Expected debounce 2s, got %v", cfg.Watch.Debounce)
	}

	// Unset keys keep their defaults
	if cfg.Archiver.BaseDir != "assets/extras/imagens projeto" {
		t.Errorf("Expected default archiver base_dir, got '%s'", cfg.Archiver.BaseDir)
	}
	if cfg.Catalog.FullDir != "full" {
		t.Errorf("Expected default full_dir, got '%s'", cfg.Catalog.FullDir)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault failed: %v", err)
	}

	if cfg.Images.Quality != 80 || cfg.Images.ThumbWidth != 300 {
		t.Errorf("Expected default quality/width 80/300, got %d/%d", cfg.Images.Quality, cfg.Images.ThumbWidth)
	}
}

func TestLoadInvalidConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "imgcatalog.yaml")
	if err := os.WriteFile(configFile, []byte("images:\n  quality: 120\n"), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	if _, err := LoadOrDefault(configFile); err == nil {
		t.Error("Expected validation error for quality 120")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "no extensions",
			mutate:  func(c *Config) { c.Catalog.Extensions = nil },
			wantErr: true,
		},
		{
			name:    "zero thumb width",
			mutate:  func(c *Config) { c.Images.ThumbWidth = 0 },
			wantErr: true,
		},
		{
			name:    "negative quality",
			mutate:  func(c *Config) { c.Images.Quality = -1 },
			wantErr: true,
		},
		{
			name:    "unknown filter",
			mutate:  func(c *Config) { c.Images.Filter = "bilinear" },
			wantErr: true,
		},
		{
			name:    "missing converter base_dir",
			mutate:  func(c *Config) { c.Converter.BaseDir = "" },
			wantErr: true,
		},
		{
			name:    "alt format without section",
			mutate:  func(c *Config) { c.Catalog.AltFormat = "Imagem %d" },
			wantErr: true,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAltText(t *testing.T) {
	cfg := Default()
	if got := cfg.AltText(2, "caixa2"); got != "Imagem 2 da seção caixa2" {
		t.Errorf("Expected 'Imagem 2 da seção caixa2', got '%s'", got)
	}
}
