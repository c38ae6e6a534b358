package library

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sega / Genesis", "Sega  Genesis"},
		{"Nintendo 64", "Nintendo 64"},
		{`What<is>this:"name"`, "Whatisthisname"},
		{"Trailing dots...", "Trailing dots"},
		{"Trailing space ", "Trailing space"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFileName(tt.in))
	}
}

func TestKeyIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, Key("NES", "Super Mario Bros"), Key("nes", "super mario bros"))
	assert.Equal(t, Key(" NES ", "Metroid"), Key("nes", "Metroid"))
}

func TestNewRecordDefaults(t *testing.T) {
	rec := NewRecord("Doom", "PC", 6, "/cores/dosbox", "/roms/doom.zip", 1024)

	assert.Equal(t, "Unknown", rec.Genre)
	assert.Equal(t, 1, rec.DiskCount)
	assert.Equal(t, 1, rec.Players)
	assert.Equal(t, "Gamepad", rec.ControllerType)
	assert.Equal(t, []string{"/roms/doom.zip"}, rec.RomPaths)
	assert.False(t, rec.MetadataFetched)
}

func TestAddRomPathDeduplicates(t *testing.T) {
	rec := NewRecord("Turrican", "Amiga", 34, "", "/roms/t1.adf", 0)
	rec.AddRomPath("/roms/t2.adf")
	rec.AddRomPath("/roms/t1.adf")

	assert.Equal(t, []string{"/roms/t1.adf", "/roms/t2.adf"}, rec.RomPaths)
}

func TestRaiseDiskCountOnlyIncreases(t *testing.T) {
	rec := NewRecord("Monkey Island", "Amiga", 34, "", "/roms/mi1.adf", 0)
	rec.RaiseDiskCount(4)
	assert.Equal(t, 4, rec.DiskCount)
	rec.RaiseDiskCount(2)
	assert.Equal(t, 4, rec.DiskCount)
}

func TestStoreSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := NewStore(dir, false, testLogger())
	require.NoError(t, s.Load())

	rec := NewRecord("Sonic the Hedgehog", "Sega / Genesis", 29, "", "/roms/sonic.bin", 512)
	rec.IGDBID = 1022
	rec.MetadataFetched = true
	s.Put(Key(rec.Console, rec.Title), rec)
	s.AddUnmatched(UnmatchedEntry{Title: "Obscure Game", Console: "Sega / Genesis", RomPath: "/roms/obscure.bin"})
	require.NoError(t, s.Save())

	// The slash in the console name must not leak into the file name.
	_, err := os.Stat(filepath.Join(dir, "Sega  Genesis.json"))
	require.NoError(t, err)

	reloaded := NewStore(dir, false, testLogger())
	require.NoError(t, reloaded.Load())
	got := reloaded.Get(Key("sega / genesis", "sonic the hedgehog"))
	require.NotNil(t, got)
	assert.Equal(t, 1022, got.IGDBID)
	assert.True(t, got.MetadataFetched)
	assert.Equal(t, "Gamepad", got.ControllerType)
}

func TestStoreLoadSkipsReservedAndCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, UnmatchedFile), []byte(`[{"title":"x"}]`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConsoleIndexFile), []byte(`{"consoles":[]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Broken.json"), []byte(`{"Games":[`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "NES.json"),
		[]byte(`{"Games":[{"Title":"Metroid","Console":"NES","RomPaths":["/roms/metroid.nes"],"DiskCount":1,"Players":1}]}`), 0o644))

	s := NewStore(dir, false, testLogger())
	require.NoError(t, s.Load())

	assert.Equal(t, 1, s.Len())
	assert.NotNil(t, s.Get(Key("NES", "Metroid")))
}

func TestStoreSaveIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, false, testLogger())
	require.NoError(t, s.Load())
	s.Put(Key("NES", "Zelda II"), NewRecord("Zelda II", "NES", 18, "", "/roms/z2.nes", 128))
	s.Put(Key("NES", "Metroid"), NewRecord("Metroid", "NES", 18, "", "/roms/metroid.nes", 128))
	require.NoError(t, s.Save())

	first, err := os.ReadFile(filepath.Join(dir, "NES.json"))
	require.NoError(t, err)

	reloaded := NewStore(dir, false, testLogger())
	require.NoError(t, reloaded.Load())
	require.NoError(t, reloaded.Save())

	second, err := os.ReadFile(filepath.Join(dir, "NES.json"))
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestStoreIndexAndUnmatchedContents(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, false, testLogger())
	require.NoError(t, s.Load())
	s.Put(Key("NES", "Metroid"), NewRecord("Metroid", "NES", 18, "", "/roms/metroid.nes", 0))
	s.Put(Key("Amiga", "Turrican"), NewRecord("Turrican", "Amiga", 34, "", "/roms/turrican.adf", 0))
	s.AddUnmatched(UnmatchedEntry{Title: "Mystery", Console: "NES", RomPath: "/roms/mystery.nes"})
	require.NoError(t, s.Save())

	indexData, err := os.ReadFile(filepath.Join(dir, ConsoleIndexFile))
	require.NoError(t, err)
	var index struct {
		Consoles []ConsoleEntry `json:"consoles"`
	}
	require.NoError(t, json.Unmarshal(indexData, &index))
	require.Len(t, index.Consoles, 2)
	assert.Equal(t, "Amiga", index.Consoles[0].Console)
	assert.Equal(t, "Amiga.json", index.Consoles[0].File)
	assert.Equal(t, 1, index.Consoles[0].Count)
	assert.Equal(t, "NES", index.Consoles[1].Console)

	unmatchedData, err := os.ReadFile(filepath.Join(dir, UnmatchedFile))
	require.NoError(t, err)
	var unmatched []UnmatchedEntry
	require.NoError(t, json.Unmarshal(unmatchedData, &unmatched))
	require.Len(t, unmatched, 1)
	assert.Equal(t, "/roms/mystery.nes", unmatched[0].RomPath)
}

func TestStoreSchemaCheckDoesNotBlockSave(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, true, testLogger())
	require.NoError(t, s.Load())

	// Missing RomPaths violates the schema; save must still succeed.
	s.Put(Key("NES", "Ghost"), &GameRecord{Title: "Ghost", Console: "NES", DiskCount: 1, Players: 1})
	require.NoError(t, s.Save())

	_, err := os.Stat(filepath.Join(dir, "NES.json"))
	require.NoError(t, err)
}
