package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Catalog    CatalogConfig    `yaml:"catalog"`
	Images     ImagesConfig     `yaml:"images"`
	Converter  ConverterConfig  `yaml:"converter"`
	Archiver   ArchiverConfig   `yaml:"archiver"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// CatalogConfig describes the section folder layout shared by all tools
type CatalogConfig struct {
	Extensions   []string `yaml:"extensions"`
	FullDir      string   `yaml:"full_dir"`
	ThumbsDir    string   `yaml:"thumbs_dir"`
	OriginalsDir string   `yaml:"originals_dir"`
	AltFormat    string   `yaml:"alt_format"`
}

type ImagesConfig struct {
	Quality    int    `yaml:"quality"`
	ThumbWidth int    `yaml:"thumb_width"`
	Lossless   bool   `yaml:"lossless"`
	Filter     string `yaml:"filter"`
}

type ConverterConfig struct {
	BaseDir string `yaml:"base_dir"`

	// Failed images still get a manifest entry when set
	KeepFailedEntries bool `yaml:"keep_failed_entries"`
}

type ArchiverConfig struct {
	BaseDir         string `yaml:"base_dir"`
	ContinueOnError bool   `yaml:"continue_on_error"`
}

type NormalizerConfig struct {
	BaseDir string `yaml:"base_dir"`
}

type WatchConfig struct {
	Debounce  time.Duration `yaml:"debounce"`
	Normalize bool          `yaml:"normalize"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Filters lists the resample filter names accepted in images.filter
var Filters = []string{"nearest", "linear", "catmullrom", "lanczos"}

// LogLevels lists the accepted logging.level values
var LogLevels = []string{"debug", "info", "progress", "warn", "error"}

// Default returns the configuration the catalog scripts always ran with
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Extensions:   []string{".jpg", ".jpeg", ".png"},
			FullDir:      "full",
			ThumbsDir:    "thumbs",
			OriginalsDir: "originals",
			AltFormat:    "Imagem %d da seção %s",
		},
		Images: ImagesConfig{
			Quality:    80,
			ThumbWidth: 300,
			Filter:     "catmullrom",
		},
		Converter: ConverterConfig{
			BaseDir:           "assets/extras/imagens projeto",
			KeepFailedEntries: true,
		},
		Archiver: ArchiverConfig{
			BaseDir: "assets/extras/imagens projeto",
		},
		Normalizer: NormalizerConfig{
			BaseDir: "assets/extras/albuns",
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level: "progress",
		},
	}
}

// Load reads and parses the configuration file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks if required configuration fields are set
func (c *Config) Validate() error {
	if len(c.Catalog.Extensions) == 0 {
		return fmt.Errorf("catalog.extensions must not be empty")
	}
	if c.Catalog.FullDir == "" || c.Catalog.ThumbsDir == "" || c.Catalog.OriginalsDir == "" {
		return fmt.Errorf("catalog.full_dir, catalog.thumbs_dir and catalog.originals_dir are required")
	}
	if strings.Count(c.Catalog.AltFormat, "%") != 2 {
		return fmt.Errorf("catalog.alt_format must contain one number and one section verb, got %q", c.Catalog.AltFormat)
	}
	if c.Images.Quality < 0 || c.Images.Quality > 100 {
		return fmt.Errorf("images.quality must be between 0 and 100, got %d", c.Images.Quality)
	}
	if c.Images.ThumbWidth <= 0 {
		return fmt.Errorf("images.thumb_width must be positive, got %d", c.Images.ThumbWidth)
	}
	if !contains(Filters, c.Images.Filter) {
		return fmt.Errorf("images.filter %q is not one of %v", c.Images.Filter, Filters)
	}
	if c.Converter.BaseDir == "" {
		return fmt.Errorf("converter.base_dir is required")
	}
	if c.Archiver.BaseDir == "" {
		return fmt.Errorf("archiver.base_dir is required")
	}
	if c.Normalizer.BaseDir == "" {
		return fmt.Errorf("normalizer.base_dir is required")
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if !contains(LogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level %q is not one of %v", c.Logging.Level, LogLevels)
	}
	return nil
}

// AltText renders the alt text for the n-th image of a section
func (c *Config) AltText(n int, section string) string {
	return fmt.Sprintf(c.Catalog.AltFormat, n, section)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
