// Package config provides builder configuration loaded from a TOML
// file, environment variables, and command-line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the full builder configuration.
type Config struct {
	Paths    PathsConfig    `toml:"paths"`
	IGDB     IGDBConfig     `toml:"igdb"`
	Settings SettingsConfig `toml:"settings"`
	Logger   LoggerConfig   `toml:"logger"`
}

// PathsConfig holds filesystem locations used by the pipeline.
type PathsConfig struct {
	Roms   string `toml:"roms"`
	Output string `toml:"output"`
	Images string `toml:"images"`
	Cores  string `toml:"cores"`
}

// IGDBConfig holds catalog API credentials (twitch client-credentials grant).
type IGDBConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// SettingsConfig holds pipeline behavior toggles.
type SettingsConfig struct {
	Offline              bool `toml:"offline"`
	SkipExistingMetadata bool `toml:"skip_existing_metadata"`
	Concurrency          int  `toml:"concurrency"`
	LazyDownload         bool `toml:"lazy_download"`
	AdaptiveRate         bool `toml:"adaptive_rate"`
	ValidateSchema       bool `toml:"validate_schema"`
	TagGeneration        bool `toml:"tag_generation"`
	SaveEvery            int  `toml:"save_every"`
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Overrides carries command-line values that take precedence over the
// file and the environment. Empty strings mean "not set".
type Overrides struct {
	RomsPath    string
	OutputPath  string
	Offline     string
	Concurrency string
	LogLevel    string
}

// Load reads configuration with precedence:
// command-line overrides > environment variables > TOML file > defaults.
// A .env file next to the working directory is folded into the
// environment first (silently skipped when absent).
func Load(path string, ov Overrides) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// No config file is fine; env vars and flags may carry everything.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnv(cfg)
	applyOverrides(cfg, ov)

	if cfg.Settings.Concurrency < 1 {
		cfg.Settings.Concurrency = 2
	}
	if cfg.Settings.SaveEvery < 1 {
		cfg.Settings.SaveEvery = 20
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Paths: PathsConfig{
			Output: "data",
			Images: filepath.Join("data", "images"),
		},
		Settings: SettingsConfig{
			Concurrency:   2,
			AdaptiveRate:  true,
			TagGeneration: true,
			SaveEvery:     20,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "pretty",
		},
	}
}

func applyEnv(cfg *Config) {
	cfg.Paths.Roms = envString("ROMS_PATH", cfg.Paths.Roms)
	cfg.Paths.Output = envString("OUTPUT_PATH", cfg.Paths.Output)
	cfg.Paths.Images = envString("IMAGES_PATH", cfg.Paths.Images)
	cfg.Paths.Cores = envString("CORES_PATH", cfg.Paths.Cores)

	cfg.IGDB.ClientID = envString("IGDB_CLIENT_ID", cfg.IGDB.ClientID)
	cfg.IGDB.ClientSecret = envString("IGDB_CLIENT_SECRET", cfg.IGDB.ClientSecret)

	cfg.Settings.Offline = envBool("OFFLINE_MODE", cfg.Settings.Offline)
	cfg.Settings.SkipExistingMetadata = envBool("SKIP_EXISTING_METADATA", cfg.Settings.SkipExistingMetadata)
	cfg.Settings.Concurrency = envInt("CONCURRENCY", cfg.Settings.Concurrency)
	cfg.Settings.LazyDownload = envBool("LAZY_DOWNLOAD", cfg.Settings.LazyDownload)
	cfg.Settings.AdaptiveRate = envBool("ADAPTIVE_RATE", cfg.Settings.AdaptiveRate)
	cfg.Settings.ValidateSchema = envBool("VALIDATE_SCHEMA", cfg.Settings.ValidateSchema)
	cfg.Settings.TagGeneration = envBool("TAG_GENERATION", cfg.Settings.TagGeneration)
	cfg.Settings.SaveEvery = envInt("SAVE_EVERY", cfg.Settings.SaveEvery)

	cfg.Logger.Level = envString("LOG_LEVEL", cfg.Logger.Level)
	cfg.Logger.Format = envString("LOG_FORMAT", cfg.Logger.Format)
}

func applyOverrides(cfg *Config, ov Overrides) {
	if ov.RomsPath != "" {
		cfg.Paths.Roms = ov.RomsPath
	}
	if ov.OutputPath != "" {
		cfg.Paths.Output = ov.OutputPath
	}
	if ov.Offline != "" {
		if v, err := strconv.ParseBool(ov.Offline); err == nil {
			cfg.Settings.Offline = v
		}
	}
	if ov.Concurrency != "" {
		if v, err := strconv.Atoi(ov.Concurrency); err == nil {
			cfg.Settings.Concurrency = v
		}
	}
	if ov.LogLevel != "" {
		cfg.Logger.Level = ov.LogLevel
	}
}

// expandPaths converts relative paths to absolute ones anchored at the
// working directory so log lines and stored rom paths stay unambiguous.
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Paths.Roms, &c.Paths.Output, &c.Paths.Images, &c.Paths.Cores} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("expand path %q: %w", *p, err)
		}
		*p = abs
	}
	return nil
}

// Validate checks that required config values are present and valid.
// Catalog credentials are required only in online mode.
func (c *Config) Validate() error {
	if c.Paths.Roms == "" {
		return errors.New("roms path is required")
	}
	if c.Paths.Output == "" {
		return errors.New("output path is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if !c.Settings.Offline {
		if c.IGDB.ClientID == "" || c.IGDB.ClientSecret == "" {
			return errors.New("IGDB client_id and client_secret are required unless offline mode is enabled")
		}
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
