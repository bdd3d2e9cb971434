// Command converter encodes every section under converter.base_dir into full
// and thumbnail WebP variants and writes the section manifests.
package main

import (
	"os"

	"imgcatalog/src/common"
	"imgcatalog/src/config"
	"imgcatalog/src/converter"
	"imgcatalog/src/log"
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

	c, err := converter.NewConverter(cfg)
	if err != nil {
		log.Errorf("Failed to create converter: %v", err)
		os.Exit(1)
	}

	reports, err := c.Run()
	if err != nil {
		log.Errorf("Conversion failed: %v", err)
		log.Sync()
		os.Exit(1)
	}

	s := common.Summarize(reports)
	log.Progressf("🎉 Conversion finished: %d sections, %d images, %d failed", s.Sections, s.Files, s.FailedFiles)
}
