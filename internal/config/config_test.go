package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "builder.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
[paths]
roms = "/tmp/roms"

[settings]
offline = true
`)

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Settings.Concurrency)
	assert.Equal(t, 20, cfg.Settings.SaveEvery)
	assert.True(t, cfg.Settings.AdaptiveRate)
	assert.True(t, cfg.Settings.TagGeneration)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.True(t, filepath.IsAbs(cfg.Paths.Output))
}

func TestLoadOnlineRequiresCredentials(t *testing.T) {
	path := writeConfig(t, `
[paths]
roms = "/tmp/roms"
`)

	_, err := Load(path, Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client_id")
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	t.Setenv("IGDB_CLIENT_ID", "abc")
	t.Setenv("IGDB_CLIENT_SECRET", "xyz")

	path := writeConfig(t, `
[paths]
roms = "/tmp/roms"
`)

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.IGDB.ClientID)
	assert.Equal(t, "xyz", cfg.IGDB.ClientSecret)
}

func TestOverridesBeatEnvAndFile(t *testing.T) {
	t.Setenv("CONCURRENCY", "8")

	path := writeConfig(t, `
[paths]
roms = "/from/file"

[settings]
offline = true
concurrency = 4
`)

	cfg, err := Load(path, Overrides{
		RomsPath:    "/from/flag",
		Concurrency: "3",
		LogLevel:    "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "/from/flag", cfg.Paths.Roms)
	assert.Equal(t, 3, cfg.Settings.Concurrency)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestConcurrencyFloor(t *testing.T) {
	path := writeConfig(t, `
[paths]
roms = "/tmp/roms"

[settings]
offline = true
concurrency = 0
`)

	cfg, err := Load(path, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Settings.Concurrency)
}

func TestMissingConfigFileIsNotFatal(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"), Overrides{
		RomsPath: "/tmp/roms",
		Offline:  "true",
	})
	require.NoError(t, err)
	assert.True(t, cfg.Settings.Offline)
}

func TestInvalidLogLevelRejected(t *testing.T) {
	path := writeConfig(t, `
[paths]
roms = "/tmp/roms"

[settings]
offline = true

[logger]
level = "loud"
`)

	_, err := Load(path, Overrides{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}
