package library

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	// UnmatchedFile and ConsoleIndexFile are reserved names in the
	// output directory and are never parsed as console libraries.
	UnmatchedFile    = "unmatched.json"
	ConsoleIndexFile = "consoles_index.json"
)

var invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFileName strips characters that are unsafe in file names and
// trims trailing dots and spaces, so "Sega / Genesis" maps to the same
// file as "Sega  Genesis".
func SanitizeFileName(name string) string {
	clean := invalidFileChars.ReplaceAllString(name, "")
	return strings.TrimRight(clean, ". ")
}

// ConsoleEntry is one row of the console index file.
type ConsoleEntry struct {
	Console string `json:"console"`
	File    string `json:"file"`
	Count   int    `json:"count"`
}

type consoleIndex struct {
	Consoles []ConsoleEntry `json:"consoles"`
}

type consoleFile struct {
	Games []*GameRecord `json:"Games"`
}

// Store owns the in-memory merge map and the unmatched list, and reads
// and writes the per-console JSON files, the unmatched file, and the
// console index under a single output directory.
type Store struct {
	dir       string
	logger    *slog.Logger
	validate  *validator.Validate
	collator  *collate.Collator
	records   map[string]*GameRecord
	unmatched []UnmatchedEntry
}

// NewStore creates a store rooted at dir. When validateSchema is set,
// records are checked against their struct constraints on save;
// violations are logged and never block persistence.
func NewStore(dir string, validateSchema bool, logger *slog.Logger) *Store {
	s := &Store{
		dir:      dir,
		logger:   logger,
		collator: collate.New(language.English),
		records:  make(map[string]*GameRecord),
	}
	if validateSchema {
		s.validate = validator.New()
	}
	return s
}

// Load reads every console library file already present in the output
// directory into the merge map. Unparseable files are logged and
// skipped so one corrupt file cannot block a run.
func (s *Store) Load() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading output directory: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if name == UnmatchedFile || name == ConsoleIndexFile {
			continue
		}
		path := filepath.Join(s.dir, name)
		f, err := os.Open(path)
		if err != nil {
			s.logger.Warn("skipping unreadable library file", "file", name, "error", err)
			continue
		}
		var lib consoleFile
		err = json.UnmarshalRead(f, &lib)
		f.Close()
		if err != nil {
			s.logger.Warn("skipping unparseable library file", "file", name, "error", err)
			continue
		}
		for _, rec := range lib.Games {
			if rec == nil || rec.Title == "" || rec.Console == "" {
				continue
			}
			s.records[Key(rec.Console, rec.Title)] = rec
		}
	}
	return nil
}

// Get returns the record for key, or nil.
func (s *Store) Get(key string) *GameRecord {
	return s.records[key]
}

// Put inserts or replaces the record for key.
func (s *Store) Put(key string, rec *GameRecord) {
	s.records[key] = rec
}

// Len reports the number of records in the merge map.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns every record, in no particular order.
func (s *Store) Records() []*GameRecord {
	out := make([]*GameRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	return out
}

// AddUnmatched appends a ROM that found no catalog match.
func (s *Store) AddUnmatched(e UnmatchedEntry) {
	s.unmatched = append(s.unmatched, e)
}

// Unmatched returns the unmatched entries recorded so far.
func (s *Store) Unmatched() []UnmatchedEntry {
	return s.unmatched
}

// Save writes the full library state: one file per console with games
// sorted by title, the unmatched list, and the console index. Every
// file is rewritten whole, so repeated saves of unchanged state are
// byte-identical.
func (s *Store) Save() error {
	byConsole := make(map[string][]*GameRecord)
	for _, rec := range s.records {
		byConsole[rec.Console] = append(byConsole[rec.Console], rec)
	}

	consoles := make([]string, 0, len(byConsole))
	for console := range byConsole {
		consoles = append(consoles, console)
	}
	sort.Slice(consoles, func(i, j int) bool {
		return s.collator.CompareString(consoles[i], consoles[j]) < 0
	})

	index := consoleIndex{Consoles: make([]ConsoleEntry, 0, len(consoles))}
	for _, console := range consoles {
		games := byConsole[console]
		sort.SliceStable(games, func(i, j int) bool {
			return s.collator.CompareString(games[i].Title, games[j].Title) < 0
		})
		s.checkSchema(console, games)

		file := SanitizeFileName(console) + ".json"
		if err := s.writeJSON(file, consoleFile{Games: games}); err != nil {
			return fmt.Errorf("saving %s library: %w", console, err)
		}
		index.Consoles = append(index.Consoles, ConsoleEntry{
			Console: console,
			File:    file,
			Count:   len(games),
		})
	}

	if err := s.writeJSON(UnmatchedFile, s.unmatched); err != nil {
		return fmt.Errorf("saving unmatched list: %w", err)
	}
	if err := s.writeJSON(ConsoleIndexFile, index); err != nil {
		return fmt.Errorf("saving console index: %w", err)
	}
	return nil
}

func (s *Store) checkSchema(console string, games []*GameRecord) {
	if s.validate == nil {
		return
	}
	for _, rec := range games {
		if err := s.validate.Struct(rec); err != nil {
			s.logger.Warn("record fails schema check",
				"console", console,
				"title", rec.Title,
				"error", err)
		}
	}
}

func (s *Store) writeJSON(name string, v any) error {
	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if err := json.MarshalWrite(f, v, jsontext.WithIndent("  ")); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
