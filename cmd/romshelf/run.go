package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/romshelf/romshelf-builder/internal/config"
	"github.com/romshelf/romshelf-builder/internal/console"
	"github.com/romshelf/romshelf-builder/internal/enrich"
	"github.com/romshelf/romshelf-builder/internal/library"
	"github.com/romshelf/romshelf-builder/internal/logger"
	"github.com/romshelf/romshelf-builder/internal/media/images"
	"github.com/romshelf/romshelf-builder/internal/metadata/igdb"
	"github.com/romshelf/romshelf-builder/internal/scanner"
	"github.com/romshelf/romshelf-builder/internal/watch"
)

func run(cmd *cobra.Command, flags *rootFlags) error {
	cfg, err := config.Load(flags.configPath, flags.overrides())
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Format: cfg.Logger.Format,
		Level:  logger.ParseLevel(cfg.Logger.Level),
	}).WithField("run_id", uuid.NewString())

	if _, err := os.Stat(cfg.Paths.Roms); err != nil {
		log.Error("ROM root does not exist", "path", cfg.Paths.Roms)
		return fmt.Errorf("ROM root %q: %w", cfg.Paths.Roms, err)
	}
	if err := os.MkdirAll(cfg.Paths.Output, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if !cfg.Settings.LazyDownload && !cfg.Settings.Offline {
		if err := os.MkdirAll(cfg.Paths.Images, 0o755); err != nil {
			return fmt.Errorf("creating images directory: %w", err)
		}
	}
	warnMissingCores(cfg.Paths.Cores, log)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	installInterruptHandler(cancel, log)

	client := igdb.New(igdb.Config{
		ClientID:     cfg.IGDB.ClientID,
		ClientSecret: cfg.IGDB.ClientSecret,
		Offline:      cfg.Settings.Offline,
		Concurrency:  cfg.Settings.Concurrency,
		AdaptiveRate: cfg.Settings.AdaptiveRate,
	}, log.Logger)
	defer client.Close()
	if err := client.Initialize(ctx); err != nil {
		log.WithError(err).Error("catalog client initialization failed")
		return err
	}

	store := library.NewStore(cfg.Paths.Output, cfg.Settings.ValidateSchema, log.Logger)
	if err := store.Load(); err != nil {
		return err
	}

	var downloader *images.Downloader
	if !cfg.Settings.LazyDownload {
		downloader = images.NewDownloader(images.NewStorage(cfg.Paths.Images), log.Logger)
	}

	enricher := enrich.New(client, store, downloader, enrich.Options{
		Offline:       cfg.Settings.Offline,
		SkipExisting:  cfg.Settings.SkipExistingMetadata,
		LazyDownload:  cfg.Settings.LazyDownload,
		TagGeneration: cfg.Settings.TagGeneration,
		SaveEvery:     cfg.Settings.SaveEvery,
		CoresDir:      cfg.Paths.Cores,
	}, newBarReporter(), log.Logger)

	if err := buildOnce(ctx, cfg, enricher, log); err != nil {
		return err
	}
	if !flags.watch {
		return ctx.Err()
	}
	return watchLoop(ctx, cfg, enricher, log)
}

func buildOnce(ctx context.Context, cfg *config.Config, enricher *enrich.Enricher, log *logger.Logger) error {
	entries := scanner.New(log.Logger).Scan(cfg.Paths.Roms)
	log.Info("scan complete", "entries", len(entries), "roms", cfg.Paths.Roms)

	summary, err := enricher.Run(ctx, entries)
	if err != nil {
		return fmt.Errorf("saving library: %w", err)
	}

	fmt.Fprintln(os.Stderr, renderSummary(summary))
	log.Success("library build complete", "total_games", summary.TotalRecords)
	return nil
}

func watchLoop(ctx context.Context, cfg *config.Config, enricher *enrich.Enricher, log *logger.Logger) error {
	w, err := watch.New(log.Logger, 0)
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Watch(cfg.Paths.Roms); err != nil {
		return err
	}
	go w.Run(ctx)
	log.Info("watching for changes", "roms", cfg.Paths.Roms)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.Triggers():
			log.Info("ROM tree changed, rebuilding")
			if err := buildOnce(ctx, cfg, enricher, log); err != nil {
				return err
			}
		}
	}
}

// warnMissingCores flags consoles whose emulator core is not on disk.
// The library still builds; the shell just cannot launch those games.
func warnMissingCores(coresDir string, log *logger.Logger) {
	if coresDir == "" {
		return
	}
	for name, corePath := range console.KnownCores(coresDir) {
		if _, err := os.Stat(corePath); err != nil {
			log.Warn("emulator core not found", "console", name, "core", corePath)
		}
	}
}

// installInterruptHandler cancels the run on the first interrupt so the
// enricher finishes with a final save, and exits hard on the second.
func installInterruptHandler(cancel context.CancelFunc, log *logger.Logger) {
	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Warn("interrupt received, saving progress before exit")
		cancel()
		<-sigs
		log.Error("second interrupt, exiting immediately")
		os.Exit(1)
	}()
}
