// Package enrich drives the build: it walks discovered ROM entries in
// scan order, fetches catalog metadata for each, merges the result
// into the library store, and checkpoints state periodically.
package enrich

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/romshelf/romshelf-builder/internal/console"
	"github.com/romshelf/romshelf-builder/internal/library"
	"github.com/romshelf/romshelf-builder/internal/logger"
	"github.com/romshelf/romshelf-builder/internal/match"
	"github.com/romshelf/romshelf-builder/internal/media/images"
	"github.com/romshelf/romshelf-builder/internal/metadata/igdb"
	"github.com/romshelf/romshelf-builder/internal/scanner"
)

const maxScreenshots = 3

// Catalog is the metadata search surface the enricher consumes.
type Catalog interface {
	Search(ctx context.Context, text string) []igdb.Game
}

// Options carries the per-run policy toggles.
type Options struct {
	Offline       bool
	SkipExisting  bool
	LazyDownload  bool
	TagGeneration bool
	SaveEvery     int
	CoresDir      string
}

// Summary totals a completed (or interrupted) run.
type Summary struct {
	Processed    int
	Counts       map[Status]int
	TotalRecords int
	Unmatched    int
}

// Enricher owns a single run over the scanned entries. Entries are
// processed one at a time in scan order; each is fully resolved before
// the next begins, so merge-map mutation never races.
type Enricher struct {
	catalog  Catalog
	store    *library.Store
	images   *images.Downloader
	opts     Options
	reporter Reporter
	logger   *slog.Logger
}

// New creates an enricher. downloader may be nil; without one the
// enricher records remote image URLs instead of fetching bytes, as in
// lazy mode.
func New(catalog Catalog, store *library.Store, downloader *images.Downloader, opts Options, reporter Reporter, logger *slog.Logger) *Enricher {
	if opts.SaveEvery < 1 {
		opts.SaveEvery = 20
	}
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Enricher{
		catalog:  catalog,
		store:    store,
		images:   downloader,
		opts:     opts,
		reporter: reporter,
		logger:   logger,
	}
}

// Run processes every entry and finishes with a full save. Cancelling
// ctx stops new work; entries already merged are preserved by the
// final save, which happens regardless of how the loop ended.
func (en *Enricher) Run(ctx context.Context, entries []scanner.Entry) (Summary, error) {
	summary := Summary{Counts: make(map[Status]int)}
	en.reporter.Start(len(entries))

	sinceSave := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			en.logger.Warn("interrupted, stopping before next entry",
				"processed", summary.Processed,
				"remaining", len(entries)-summary.Processed)
			break
		}

		status := en.process(ctx, entry)
		summary.Processed++
		summary.Counts[status]++
		en.reporter.Step(entry.Title, status)

		sinceSave++
		if sinceSave >= en.opts.SaveEvery {
			if err := en.store.Save(); err != nil {
				en.logger.Error("checkpoint save failed", "error", err)
			}
			sinceSave = 0
		}
	}
	en.reporter.Done()

	err := en.store.Save()
	summary.TotalRecords = en.store.Len()
	summary.Unmatched = len(en.store.Unmatched())
	return summary, err
}

func (en *Enricher) process(ctx context.Context, entry scanner.Entry) Status {
	key := library.Key(entry.Console, entry.Title)

	var size int64
	if info, err := os.Stat(entry.RomPath); err != nil {
		en.logger.Error("failed to stat ROM file", "path", entry.RomPath, "error", err)
	} else {
		size = info.Size()
	}

	var status Status
	rec := en.store.Get(key)
	if rec == nil {
		rec, status = en.processNew(ctx, entry, size)
		en.store.Put(key, rec)
	} else {
		status = en.processExisting(ctx, entry, rec, size)
	}

	if total := scanner.DiskSetSize(entry.RomPath); total > 0 {
		rec.RaiseDiskCount(total)
	}
	return status
}

func (en *Enricher) processNew(ctx context.Context, entry scanner.Entry, size int64) (*library.GameRecord, Status) {
	var game *igdb.Game
	status := StatusOfflineSkip
	if !en.opts.Offline {
		game = en.fetchMetadata(ctx, match.NormalizeTitle(entry.Title), entry.Console)
		if game != nil {
			status = StatusFound
			en.logger.Log(ctx, logger.LevelSuccess, "metadata found", "title", entry.Title, "console", entry.Console)
		} else {
			status = StatusNotFound
			en.logger.Warn("no metadata found", "title", entry.Title, "console", entry.Console)
			en.store.AddUnmatched(library.UnmatchedEntry{
				Title:   entry.Title,
				Console: entry.Console,
				RomPath: entry.RomPath,
			})
		}
	}

	rec := library.NewRecord(
		entry.Title,
		entry.Console,
		console.PlatformID(entry.Console),
		console.CorePath(en.opts.CoresDir, entry.Console),
		entry.RomPath,
		size,
	)
	if game != nil {
		en.populate(rec, game)
		en.applyAssets(ctx, rec, game, entry.Console, entry.Title)
	}
	return rec, status
}

func (en *Enricher) processExisting(ctx context.Context, entry scanner.Entry, rec *library.GameRecord, size int64) Status {
	known := false
	for _, p := range rec.RomPaths {
		if p == entry.RomPath {
			known = true
			break
		}
	}
	if !known {
		rec.AddRomPath(entry.RomPath)
		rec.FileSize += size
	}

	if en.opts.Offline {
		return StatusOffline
	}
	if en.opts.SkipExisting && rec.MetadataFetched {
		return StatusSkipped
	}

	game := en.fetchMetadata(ctx, match.NormalizeTitle(entry.Title), entry.Console)
	if game == nil {
		en.store.AddUnmatched(library.UnmatchedEntry{
			Title:   entry.Title,
			Console: entry.Console,
			RomPath: entry.RomPath,
		})
		return StatusNoNew
	}

	en.merge(rec, game)
	en.applyAssets(ctx, rec, game, entry.Console, entry.Title)
	return StatusRefreshed
}

// fetchMetadata runs the search ladder: the title (with a platform
// hint word for Amiga, whose titles collide heavily across systems),
// then the bare title, then the first token when long enough. Each
// step is a fresh catalog query.
func (en *Enricher) fetchMetadata(ctx context.Context, title, consoleName string) *igdb.Game {
	platformID := console.PlatformID(consoleName)
	if platformID == 0 {
		en.logger.Warn("no platform ID for console, skipping catalog search",
			"console", consoleName, "title", title)
		return nil
	}

	isAmiga := strings.Contains(strings.ToLower(consoleName), "amiga")
	first := title
	if isAmiga {
		first = title + " amiga"
	}

	if game := en.attempt(ctx, title, first, platformID); game != nil {
		return game
	}
	if isAmiga {
		if game := en.attempt(ctx, title, title, platformID); game != nil {
			return game
		}
	}
	token, _, _ := strings.Cut(title, " ")
	if len(token) > 2 && token != title {
		if game := en.attempt(ctx, title, token, platformID); game != nil {
			return game
		}
	}
	return nil
}

// attempt issues one catalog query and fuzzy-ranks the results,
// preferring candidates on the expected platform.
func (en *Enricher) attempt(ctx context.Context, title, searchText string, platformID int) *igdb.Game {
	results := en.catalog.Search(ctx, searchText)
	if len(results) == 0 {
		return nil
	}

	var onPlatform []igdb.Game
	for _, g := range results {
		if g.OnPlatform(platformID) {
			onPlatform = append(onPlatform, g)
		}
	}
	if game := pickGame(title, onPlatform); game != nil {
		return game
	}
	return pickGame(title, results)
}

func pickGame(title string, games []igdb.Game) *igdb.Game {
	if len(games) == 0 {
		return nil
	}
	candidates := make([][]string, 0, len(games))
	for _, g := range games {
		candidates = append(candidates, g.Names())
	}
	idx := match.PickBest(title, candidates)
	if idx < 0 {
		return nil
	}
	return &games[idx]
}

// populate fills a freshly created record from a catalog match.
func (en *Enricher) populate(rec *library.GameRecord, game *igdb.Game) {
	rec.IGDBID = game.ID
	if len(game.Genres) > 0 {
		rec.Genre = joinNames(game.Genres)
	}
	rec.NestedGenres = nestedGenres(game.Genres)
	rec.Description = game.Summary
	rec.Storyline = game.Storyline
	if game.Category != nil {
		rec.Category = strconv.Itoa(*game.Category)
	}
	if game.Status != nil {
		rec.Status = strconv.Itoa(*game.Status)
	}
	if len(game.GameModes) > 0 {
		rec.Players = playerCount(game.GameModes)
	}
	rec.Rating = rating(game.Rating)
	rec.ReleaseDate, rec.ReleaseYear = releaseDate(game.FirstReleaseDate)
	rec.Developer = developers(game.InvolvedCompanies)
	rec.Publisher = publishers(game.InvolvedCompanies)
	rec.Keywords = joinNames(game.Keywords)
	rec.AgeRatings = ageRatings(game.AgeRatings)
	if game.Collection != nil {
		rec.Collection = game.Collection.Name
	}
	if game.Franchise != nil {
		rec.Franchise = game.Franchise.Name
	}
	if en.opts.TagGeneration {
		rec.TagList = generateTags(tagSource{
			summary:   game.Summary,
			storyline: game.Storyline,
			genres:    genreNames(game.Genres),
			developer: rec.Developer,
		})
	}
	rec.MetadataFetched = true
}

// merge refreshes an existing record, overwriting a field only when
// the catalog supplies a value. Populated fields are never blanked.
func (en *Enricher) merge(rec *library.GameRecord, game *igdb.Game) {
	if game.ID != 0 {
		rec.IGDBID = game.ID
	}
	if game.Summary != "" {
		rec.Description = game.Summary
	}
	if game.Storyline != "" {
		rec.Storyline = game.Storyline
	}
	if game.Category != nil {
		rec.Category = strconv.Itoa(*game.Category)
	}
	if game.Status != nil {
		rec.Status = strconv.Itoa(*game.Status)
	}
	if len(game.GameModes) > 0 {
		rec.Players = playerCount(game.GameModes)
	}
	if game.Rating != 0 {
		rec.Rating = rating(game.Rating)
	}
	if game.FirstReleaseDate != 0 {
		rec.ReleaseDate, rec.ReleaseYear = releaseDate(game.FirstReleaseDate)
	}
	if len(game.InvolvedCompanies) > 0 {
		rec.Developer = developers(game.InvolvedCompanies)
		rec.Publisher = publishers(game.InvolvedCompanies)
	}
	if len(game.Keywords) > 0 {
		rec.Keywords = joinNames(game.Keywords)
	}
	if len(game.AgeRatings) > 0 {
		rec.AgeRatings = ageRatings(game.AgeRatings)
	}
	if game.Collection != nil {
		rec.Collection = game.Collection.Name
	}
	if game.Franchise != nil {
		rec.Franchise = game.Franchise.Name
	}
	if len(game.Genres) > 0 {
		rec.Genre = joinNames(game.Genres)
		rec.NestedGenres = nestedGenres(game.Genres)
	}
	if en.opts.TagGeneration {
		fresh := generateTags(tagSource{
			summary:   game.Summary,
			storyline: game.Storyline,
			genres:    genreNames(game.Genres),
			developer: rec.Developer,
		})
		rec.TagList = mergeTags(rec.TagList, fresh)
	}
	rec.MetadataFetched = true
}

// applyAssets resolves cover and screenshot references. Lazy mode
// records remote URLs; eager mode downloads bytes and records local
// relative paths. Both only fill fields that are currently empty.
func (en *Enricher) applyAssets(ctx context.Context, rec *library.GameRecord, game *igdb.Game, consoleName, title string) {
	var coverURL string
	if game.Cover != nil && game.Cover.ImageID != "" {
		coverURL = igdb.CoverURL(game.Cover.ImageID)
	}
	shots := game.Screenshots
	if len(shots) > maxScreenshots {
		shots = shots[:maxScreenshots]
	}

	// Without a downloader only remote URLs can be recorded.
	if en.opts.LazyDownload || en.images == nil {
		if rec.CoverImage == "" {
			rec.CoverImage = coverURL
		}
		if len(rec.Screenshots) == 0 {
			for _, s := range shots {
				rec.Screenshots = append(rec.Screenshots, igdb.ScreenshotURL(s.ImageID))
			}
		}
		return
	}

	if rec.CoverImage == "" && coverURL != "" {
		if rel, err := en.images.FetchCover(ctx, consoleName, title, coverURL); err == nil {
			rec.CoverImage = rel
		}
	}
	if len(rec.Screenshots) == 0 && len(shots) > 0 {
		urls := make([]string, 0, len(shots))
		for _, s := range shots {
			urls = append(urls, igdb.ScreenshotURL(s.ImageID))
		}
		rec.Screenshots = en.images.FetchScreenshots(ctx, consoleName, title, urls)
	}
}

func genreNames(genres []igdb.Named) []string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return names
}
