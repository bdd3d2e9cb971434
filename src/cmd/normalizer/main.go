// Command normalizer rewrites legacy section manifests under
// normalizer.base_dir into the canonical {"images": [...]} shape.
package main

import (
	"os"

	"imgcatalog/src/config"
	"imgcatalog/src/log"
	"imgcatalog/src/normalizer"
)

const configPath = "imgcatalog.yaml"

func main() {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		log.Errorf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Init(log.Config{Level: log.LogLevel(cfg.Logging.Level), Output: os.Stdout})
	defer log.Sync()

	if _, err := normalizer.NewNormalizer(cfg).Run(); err != nil {
		log.Errorf("Normalization failed: %v", err)
		log.Sync()
		os.Exit(1)
	}
}
