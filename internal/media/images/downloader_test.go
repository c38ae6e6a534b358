package images

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoragePathsAreSanitized(t *testing.T) {
	s := NewStorage(t.TempDir())

	cover := s.CoverPath("Sega / Genesis", "Sonic the Hedgehog")
	if cover != "Sega  Genesis/Sonic the Hedgehog/cover.jpg" {
		t.Fatalf("unexpected cover path %q", cover)
	}
	shot := s.ScreenshotPath("NES", "Metroid", 2)
	if shot != "NES/Metroid/screenshots/2.jpg" {
		t.Fatalf("unexpected screenshot path %q", shot)
	}
}

func TestFetchCoverWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := NewDownloader(NewStorage(dir), testLogger())

	rel, err := d.FetchCover(context.Background(), "NES", "Metroid", srv.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("FetchCover: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read stored cover: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("stored %q", data)
	}
}

func TestFetchCoverSkipsExisting(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("x"))
	}))
	defer srv.Close()

	d := NewDownloader(NewStorage(t.TempDir()), testLogger())

	for range 2 {
		if _, err := d.FetchCover(context.Background(), "NES", "Metroid", srv.URL); err != nil {
			t.Fatalf("FetchCover: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 download, got %d", got)
	}
}

func TestFetchCoverErrorIsNotFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader(NewStorage(t.TempDir()), testLogger())

	rel, err := d.FetchCover(context.Background(), "NES", "Metroid", srv.URL)
	if err == nil {
		t.Fatal("expected an error for 404")
	}
	if rel != "" {
		t.Fatalf("expected empty path, got %q", rel)
	}
}

func TestFetchScreenshotsSkipsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("shot"))
	}))
	defer srv.Close()

	d := NewDownloader(NewStorage(t.TempDir()), testLogger())

	rels := d.FetchScreenshots(context.Background(), "NES", "Metroid",
		[]string{srv.URL + "/one", srv.URL + "/bad", srv.URL + "/three"})
	if len(rels) != 2 {
		t.Fatalf("expected 2 screenshots, got %d: %v", len(rels), rels)
	}
	if rels[0] != "NES/Metroid/screenshots/1.jpg" || rels[1] != "NES/Metroid/screenshots/3.jpg" {
		t.Fatalf("unexpected paths %v", rels)
	}
}
