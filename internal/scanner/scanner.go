// Package scanner discovers ROM files under a library root and infers
// console names from directory structure.
package scanner

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Entry is a discovered ROM candidate. One per matched file.
type Entry struct {
	Title   string
	Console string
	RomPath string
}

// validExtensions is the allow-list of ROM container formats.
var validExtensions = map[string]bool{
	".nes": true, ".sfc": true, ".smc": true, ".gba": true, ".gb": true,
	".gbc": true, ".n64": true, ".z64": true, ".v64": true, ".a26": true,
	".lnx": true, ".c64": true, ".col": true, ".int": true, ".sms": true,
	".gg": true, ".pce": true, ".cue": true, ".iso": true, ".bin": true,
	".adf": true, ".rom": true, ".img": true, ".chd": true, ".cso": true,
	".gdi": true, ".cdi": true, ".zip": true,
}

// Scanner walks a ROM tree and emits candidate entries.
type Scanner struct {
	logger *slog.Logger
}

// New creates a new scanner.
func New(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{logger: logger}
}

// Scan discovers all ROM entries under root. A directory becomes a
// console boundary when it directly contains at least one file; its
// path relative to root, joined with " / ", is the console name.
// Directories holding only subdirectories are transparent. Read
// failures skip the affected subtree and never abort the scan.
func (s *Scanner) Scan(root string) []Entry {
	var entries []Entry
	s.scanConsoles(root, nil, &entries)
	return entries
}

// scanConsoles recurses looking for console boundaries.
func (s *Scanner) scanConsoles(dir string, relParts []string, out *[]Entry) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Error("failed to read directory", "path", dir, "error", err)
		return
	}

	hasFiles := false
	for _, de := range dirEntries {
		if de.IsDir() {
			s.scanConsoles(filepath.Join(dir, de.Name()), append(relParts, de.Name()), out)
		} else {
			hasFiles = true
		}
	}

	if hasFiles {
		console := strings.TrimSpace(strings.Join(relParts, " / "))
		s.collectGames(dir, console, out)
	}
}

// collectGames gathers every valid ROM under dir, recursively, all
// attributed to the same console.
func (s *Scanner) collectGames(dir, console string, out *[]Entry) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Error("failed to read directory", "path", dir, "error", err)
		return
	}

	for _, de := range dirEntries {
		fullPath := filepath.Join(dir, de.Name())
		if de.IsDir() {
			s.collectGames(fullPath, console, out)
			continue
		}
		if !ValidExtension(filepath.Ext(de.Name())) {
			continue
		}
		*out = append(*out, Entry{
			Title:   BaseTitle(de.Name()),
			Console: console,
			RomPath: fullPath,
		})
	}
}

// ValidExtension reports whether ext (with leading dot) is an accepted
// ROM container format.
func ValidExtension(ext string) bool {
	return validExtensions[strings.ToLower(ext)]
}
