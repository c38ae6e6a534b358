package scanner

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("rom"), 0644))
}

func TestScanDiscoversConsoleFromPath(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "NES", "Zelda II (USA).nes"))

	entries := New(testLogger()).Scan(root)

	require.Len(t, entries, 1)
	assert.Equal(t, "Zelda II", entries[0].Title)
	assert.Equal(t, "NES", entries[0].Console)
	assert.Equal(t, filepath.Join(root, "NES", "Zelda II (USA).nes"), entries[0].RomPath)
}

func TestScanTransparentIntermediateDirs(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "Nintendo", "SNES", "Chrono Trigger.sfc"))

	entries := New(testLogger()).Scan(root)

	require.Len(t, entries, 1)
	// "Nintendo" holds only a subdirectory, so the console boundary is
	// the directory that directly contains files.
	assert.Equal(t, "Nintendo / SNES", entries[0].Console)
}

func TestScanSkipsUnknownExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "NES", "readme.txt"))
	touch(t, filepath.Join(root, "NES", "Metroid.nes"))

	entries := New(testLogger()).Scan(root)

	require.Len(t, entries, 1)
	assert.Equal(t, "Metroid", entries[0].Title)
}

func TestScanMultipleConsoles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "NES", "Contra.nes"))
	touch(t, filepath.Join(root, "Genesis", "Sonic.bin"))
	touch(t, filepath.Join(root, "Genesis", "Sonic 2.bin"))

	entries := New(testLogger()).Scan(root)

	consoles := map[string]int{}
	for _, e := range entries {
		consoles[e.Console]++
	}
	assert.Equal(t, 1, consoles["NES"])
	assert.Equal(t, 2, consoles["Genesis"])
}

func TestScanMissingRootIsEmpty(t *testing.T) {
	entries := New(testLogger()).Scan(filepath.Join(t.TempDir(), "missing"))
	assert.Empty(t, entries)
}

func TestBaseTitle(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"Zelda II (USA).nes", "Zelda II"},
		{"Super Mario Bros [!].nes", "Super Mario Bros"},
		{"Secret of Mana (USA) (Rev 1).sfc", "Secret of Mana"},
		{"Monkey Island (Disk 1 of 2).adf", "Monkey Island"},
		{"Plain.gb", "Plain"},
		{"Dots.In.Name.zip", "Dots.In"},
		{"{proto} Starfox.sfc", "Starfox"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, BaseTitle(tt.filename))
		})
	}
}

func TestDiskSetSize(t *testing.T) {
	tests := []struct {
		path     string
		expected int
	}{
		{"/roms/Amiga/Monkey Island (Disk 1 of 2).adf", 2},
		{"/roms/Amiga/Monkey Island (disk 2 OF 3).adf", 3},
		{"/roms/Amiga/Monkey Island (Disk2of11).adf", 11},
		{"/roms/NES/Zelda.nes", 0},
		{"/roms/NES/(Disc 1 of 2) Zelda.nes", 0},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, DiskSetSize(tt.path))
		})
	}
}

func TestValidExtensionCaseInsensitive(t *testing.T) {
	assert.True(t, ValidExtension(".NES"))
	assert.True(t, ValidExtension(".zip"))
	assert.False(t, ValidExtension(".exe"))
	assert.False(t, ValidExtension(""))
}
