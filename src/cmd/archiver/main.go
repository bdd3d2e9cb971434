// Command archiver moves the raw images of every section under
// archiver.base_dir into the section's originals folder.
package main

import (
	"os"

	"imgcatalog/src/archiver"
	"imgcatalog/src/config"
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

	if _, err := archiver.NewMover(cfg).Run(); err != nil {
		log.Errorf("Archiving stopped: %v", err)
		log.Sync()
		os.Exit(1)
	}
}
