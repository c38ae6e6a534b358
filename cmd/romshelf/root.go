package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/romshelf/romshelf-builder/internal/config"
)

type rootFlags struct {
	configPath  string
	romsPath    string
	outputPath  string
	offline     bool
	offlineSet  bool
	concurrency int
	logLevel    string
	watch       bool
}

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "romshelf",
		Short:         "Build a game library from a ROM directory tree",
		Long: "romshelf scans a ROM collection, enriches each game with catalog\n" +
			"metadata, and writes per-console JSON libraries plus an index.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.offlineSet = cmd.Flags().Changed("offline")
			return run(cmd, flags)
		},
	}

	rootCmd.Flags().StringVarP(&flags.configPath, "config", "c", "romshelf.toml", "configuration file path")
	rootCmd.Flags().StringVar(&flags.romsPath, "roms", "", "ROM root directory")
	rootCmd.Flags().StringVar(&flags.outputPath, "output", "", "output directory for library JSON")
	rootCmd.Flags().BoolVar(&flags.offline, "offline", false, "skip all catalog and image requests")
	rootCmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "max in-flight catalog requests")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&flags.watch, "watch", false, "stay running and rebuild when the ROM tree changes")

	return rootCmd
}

func (f *rootFlags) overrides() config.Overrides {
	ov := config.Overrides{
		RomsPath:   f.romsPath,
		OutputPath: f.outputPath,
		LogLevel:   f.logLevel,
	}
	if f.offlineSet {
		ov.Offline = strconv.FormatBool(f.offline)
	}
	if f.concurrency > 0 {
		ov.Concurrency = strconv.Itoa(f.concurrency)
	}
	return ov
}
