// Package console maps console names to IGDB platform identifiers and
// libretro emulator core paths. Lookups are exact on the lowercased
// name first, then fall back to substring containment.
package console

import (
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// platformIDs maps lowercased console names to IGDB platform codes.
var platformIDs = map[string]int{
	"amiga":              34,
	"atari 2600":         59,
	"atari 7800":         60,
	"atari lynx":         68,
	"atari jaguar":       62,
	"colecovision":       56,
	"commodore 64":       15,
	"c64":                15,
	"intellivision":      57,
	"neo geo aes":        12,
	"nes":                18,
	"snes":               19,
	"super nintendo":     19,
	"nintendo / snes":    19,
	"nintendo 64":        4,
	"game boy":           33,
	"game boy color":     22,
	"game boy advance":   24,
	"genesis":            29,
	"sega genesis":       29,
	"sega master system": 64,
	"sega game gear":     35,
	"dreamcast":          23,
	"psx":                7,
	"playstation":        7,
	"playstation 1":      7,
	"turbografx-16":      86,
}

// coreStems maps lowercased console names to libretro core file stems.
var coreStems = map[string]string{
	"amiga":              "puae_libretro",
	"atari 2600":         "stella_libretro",
	"atari 7800":         "prosystem_libretro",
	"atari lynx":         "handy_libretro",
	"atari jaguar":       "virtualjaguar_libretro",
	"colecovision":       "blueMSX_libretro",
	"commodore 64":       "vice_x64_libretro",
	"intellivision":      "freeintv_libretro",
	"neo geo aes":        "fbneo_libretro",
	"nes":                "nestopia_libretro",
	"snes":               "snes9x_libretro",
	"nintendo 64":        "mupen64plus_next_libretro",
	"game boy":           "sameboy_libretro",
	"game boy color":     "sameboy_libretro",
	"game boy advance":   "mgba_libretro",
	"genesis":            "picodrive_libretro",
	"sega game gear":     "genesis_plus_gx_libretro",
	"sega master system": "genesis_plus_gx_libretro",
	"dreamcast":          "flycast_libretro",
	"psx":                "mednafen_psx_libretro",
	"playstation":        "mednafen_psx_libretro",
	"turbografx-16":      "mednafen_pce_fast_libretro",
}

// PlatformID resolves a console name to its IGDB platform code.
// Returns 0 when the console is unknown; callers skip catalog searches
// for unresolved platforms.
func PlatformID(name string) int {
	normalized := strings.ToLower(name)
	if id, ok := platformIDs[normalized]; ok {
		return id
	}
	// Longest key wins, so "sega / genesis" matches "genesis" and
	// never the "nes" buried inside it.
	for _, key := range keysByLength(platformIDs) {
		if strings.Contains(normalized, key) {
			return platformIDs[key]
		}
	}
	return 0
}

// CorePath resolves a console name to the emulator core the desktop
// shell should launch, anchored at coresBase. Returns "" when unknown.
func CorePath(coresBase, name string) string {
	normalized := strings.ToLower(name)
	if stem, ok := coreStems[normalized]; ok {
		return filepath.Join(coresBase, stem+coreExt())
	}
	for _, key := range keysByLength(coreStems) {
		if strings.Contains(normalized, key) {
			return filepath.Join(coresBase, coreStems[key]+coreExt())
		}
	}
	return ""
}

// keysByLength orders map keys longest first, ties alphabetical, so
// substring fallback is deterministic and prefers the most specific key.
func keysByLength[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// KnownCores returns every core path for startup existence checks,
// keyed by console name.
func KnownCores(coresBase string) map[string]string {
	cores := make(map[string]string, len(coreStems))
	for name, stem := range coreStems {
		cores[name] = filepath.Join(coresBase, stem+coreExt())
	}
	return cores
}

func coreExt() string {
	switch runtime.GOOS {
	case "windows":
		return ".dll"
	case "darwin":
		return ".dylib"
	default:
		return ".so"
	}
}
