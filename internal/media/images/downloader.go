package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/romshelf/romshelf-builder/internal/ratelimit"
)

const (
	// maxImageSize caps downloads to prevent memory exhaustion.
	maxImageSize = 10 * 1024 * 1024 // 10MB

	downloadTimeout = 30 * time.Second

	// cdnRPS throttles requests per image host so art fetches stay
	// polite alongside the catalog traffic.
	cdnRPS   = 4
	cdnBurst = 2
)

// Downloader fetches game art over HTTP with a per-host rate limit.
// Failures are reported to the caller and logged; a missing image is
// never fatal to a run.
type Downloader struct {
	httpClient *http.Client
	storage    *Storage
	limiter    *ratelimit.HostLimiter
	logger     *slog.Logger
}

// NewDownloader creates a downloader writing through storage.
func NewDownloader(storage *Storage, logger *slog.Logger) *Downloader {
	return &Downloader{
		httpClient: &http.Client{Timeout: downloadTimeout},
		storage:    storage,
		limiter:    ratelimit.New(cdnRPS, cdnBurst),
		logger:     logger,
	}
}

// FetchCover downloads a cover if it is not already on disk and
// returns its relative path. Returns the existing path without a
// network call when the file is present.
func (d *Downloader) FetchCover(ctx context.Context, console, title, srcURL string) (string, error) {
	if srcURL == "" {
		return "", errors.New("empty cover URL")
	}
	rel := d.storage.CoverPath(console, title)
	if d.storage.Exists(rel) {
		return rel, nil
	}
	if err := d.fetch(ctx, srcURL, rel); err != nil {
		d.logger.Warn("cover download failed",
			"console", console,
			"title", title,
			"url", srcURL,
			"error", err)
		return "", err
	}
	return rel, nil
}

// FetchScreenshots downloads up to len(srcURLs) screenshots, skipping
// ones already on disk. It returns the relative paths that exist after
// the call; individual failures are logged and skipped.
func (d *Downloader) FetchScreenshots(ctx context.Context, console, title string, srcURLs []string) []string {
	var rels []string
	for i, srcURL := range srcURLs {
		rel := d.storage.ScreenshotPath(console, title, i+1)
		if d.storage.Exists(rel) {
			rels = append(rels, rel)
			continue
		}
		if err := d.fetch(ctx, srcURL, rel); err != nil {
			d.logger.Warn("screenshot download failed",
				"console", console,
				"title", title,
				"url", srcURL,
				"error", err)
			continue
		}
		rels = append(rels, rel)
	}
	return rels
}

func (d *Downloader) fetch(ctx context.Context, srcURL, rel string) error {
	parsed, err := url.Parse(srcURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if err := d.limiter.Wait(ctx, parsed.Host); err != nil {
		return err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, srcURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize))
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}
	return d.storage.Save(rel, data)
}
