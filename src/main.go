package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"imgcatalog/src/archiver"
	"imgcatalog/src/common"
	"imgcatalog/src/config"
	"imgcatalog/src/converter"
	"imgcatalog/src/log"
	"imgcatalog/src/normalizer"
	"imgcatalog/src/watcher"
)

var (
	configPath      string
	logLevel        string
	baseDir         string
	continueOnError bool

	cfg *config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Errorf("%v", err)
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "imgcatalog",
		Short:         "Convert, archive and index catalog section images",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadOrDefault(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			level := cfg.Logging.Level
			if logLevel != "" {
				level = logLevel
			}
			log.Init(log.Config{Level: log.LogLevel(level), Output: os.Stdout})
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "imgcatalog.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, progress, warn, error")

	convertCmd := &cobra.Command{
		Use:   "convert",
		Short: "Encode full and thumbnail WebP variants and write section manifests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseDir != "" {
				cfg.Converter.BaseDir = baseDir
			}
			return runConvert()
		},
	}
	convertCmd.Flags().StringVar(&baseDir, "base", "", "override converter.base_dir")

	archiveCmd := &cobra.Command{
		Use:   "archive",
		Short: "Move raw section images into their originals folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseDir != "" {
				cfg.Archiver.BaseDir = baseDir
			}
			if cmd.Flags().Changed("continue-on-error") {
				cfg.Archiver.ContinueOnError = continueOnError
			}
			return runArchive()
		},
	}
	archiveCmd.Flags().StringVar(&baseDir, "base", "", "override archiver.base_dir")
	archiveCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "keep moving files after a failed move")

	normalizeCmd := &cobra.Command{
		Use:   "normalize",
		Short: "Rewrite legacy section manifests into the canonical schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseDir != "" {
				cfg.Normalizer.BaseDir = baseDir
			}
			return runNormalize()
		},
	}
	normalizeCmd.Flags().StringVar(&baseDir, "base", "", "override normalizer.base_dir")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Convert, archive and normalize in that order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runConvert(); err != nil {
				return err
			}
			if err := runArchive(); err != nil {
				return err
			}
			return runNormalize()
		},
	}

	webpCmd := &cobra.Command{
		Use:   "webp <dir>",
		Short: "Write a .webp next to every source image below dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := converter.NewConverter(cfg)
			if err != nil {
				return err
			}

			report, err := c.ConvertTree(args[0])
			if err != nil {
				return err
			}

			log.Progressf("🎉 %d files converted, %d failed", len(report.Results)-len(report.Failed()), len(report.Failed()))
			return nil
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-convert sections whenever raw images are added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if baseDir != "" {
				cfg.Converter.BaseDir = baseDir
			}
			return runWatch()
		},
	}
	watchCmd.Flags().StringVar(&baseDir, "base", "", "override converter.base_dir")

	rootCmd.AddCommand(convertCmd, archiveCmd, normalizeCmd, runCmd, webpCmd, watchCmd)
	return rootCmd
}

func runConvert() error {
	c, err := converter.NewConverter(cfg)
	if err != nil {
		return err
	}

	reports, err := c.Run()
	if err != nil {
		return err
	}

	logSummary("Conversion", reports)
	return nil
}

func runArchive() error {
	reports, err := archiver.NewMover(cfg).Run()
	logSummary("Archiving", reports)
	return err
}

func runNormalize() error {
	reports, err := normalizer.NewNormalizer(cfg).Run()
	if err != nil {
		return err
	}

	logSummary("Normalization", reports)
	return nil
}

func runWatch() error {
	w, err := watcher.NewWatcher(cfg)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Start watching
	if err := w.Start(); err != nil {
		w.Stop()
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	log.Progressf("Press Ctrl+C to stop")

	// Listen for events
	eventsDone := make(chan struct{})
	go func() {
		defer close(eventsDone)
		for event := range w.Events() {
			log.Debugf("📄 Event: %v - %s", event.Type, event.FilePath)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Progressf("Shutting down...")
	err = w.Stop()
	<-eventsDone
	return err
}

func logSummary(stage string, reports []common.SectionReport) {
	s := common.Summarize(reports)
	log.Progressf("%s: %d sections (%d done, %d unchanged, %d missing, %d failed), %d files, %d failed",
		stage, s.Sections, s.Done, s.Unchanged, s.Missing, s.Failed, s.Files, s.FailedFiles)
}
