// Package images stores downloaded cover art and screenshots on disk
// and fetches them from the catalog CDN.
package images

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/romshelf/romshelf-builder/internal/library"
)

// Storage lays out game art under a base directory as
// <console>/<title>/cover.jpg and <console>/<title>/screenshots/N.jpg,
// with console and title sanitized for the filesystem. Paths handed
// back to callers are slash-separated and relative to the base, so
// they stay portable inside library records.
type Storage struct {
	baseDir string
}

// NewStorage creates storage rooted at baseDir.
func NewStorage(baseDir string) *Storage {
	return &Storage{baseDir: baseDir}
}

// CoverPath returns the relative path for a game's cover image.
func (s *Storage) CoverPath(console, title string) string {
	return path.Join(gameDir(console, title), "cover.jpg")
}

// ScreenshotPath returns the relative path for the n-th screenshot,
// counted from 1.
func (s *Storage) ScreenshotPath(console, title string, n int) string {
	return path.Join(gameDir(console, title), "screenshots", fmt.Sprintf("%d.jpg", n))
}

// Exists reports whether the file at the relative path is on disk.
func (s *Storage) Exists(rel string) bool {
	if rel == "" {
		return false
	}
	info, err := os.Stat(s.abs(rel))
	return err == nil && !info.IsDir()
}

// Save writes data to the relative path, creating parent directories.
func (s *Storage) Save(rel string, data []byte) error {
	abs := s.abs(rel)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("creating image directory: %w", err)
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("writing image: %w", err)
	}
	return nil
}

func (s *Storage) abs(rel string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(rel))
}

func gameDir(console, title string) string {
	return path.Join(library.SanitizeFileName(console), library.SanitizeFileName(title))
}
