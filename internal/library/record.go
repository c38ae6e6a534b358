// Package library holds the persistent game library model and its
// per-console JSON persistence.
package library

import "strings"

// NestedGenre is a genre entry shaped for hierarchy display. The
// catalog provides no parent data, so Parent is always null; the field
// exists for consumers that render genre trees.
type NestedGenre struct {
	Name   string  `json:"name"`
	Parent *string `json:"parent"`
}

// GameRecord is the persistent unit of the library, keyed by
// (console, title) case-insensitively. Fields beyond the identity and
// catalog groups are user/runtime-editable defaults the pipeline
// initializes once and never touches again.
type GameRecord struct {
	Title      string `json:"Title" validate:"required"`
	Console    string `json:"Console" validate:"required"`
	PlatformID int    `json:"PlatformID" validate:"gte=0"`
	IGDBID     int    `json:"IGDB_ID" validate:"gte=0"`

	Genre        string        `json:"Genre"`
	NestedGenres []NestedGenre `json:"NestedGenres"`
	Description  string        `json:"Description"`
	Storyline    string        `json:"Storyline"`
	Category     string        `json:"Category"`
	Status       string        `json:"Status"`
	Keywords     string        `json:"Keywords"`
	AgeRatings   string        `json:"AgeRatings"`
	Collection   string        `json:"Collection"`
	Franchise    string        `json:"Franchise"`
	TagList      []string      `json:"TagList"`

	Developer   string `json:"Developer"`
	Publisher   string `json:"Publisher"`
	Rating      string `json:"Rating"`
	ReleaseDate string `json:"ReleaseDate"`
	ReleaseYear string `json:"ReleaseYear"`

	RomPaths  []string `json:"RomPaths" validate:"required,min=1"`
	CorePath  string   `json:"CorePath"`
	DiskCount int      `json:"DiskCount" validate:"gte=1"`
	FileSize  int64    `json:"FileSize" validate:"gte=0"`

	CoverImage  string   `json:"CoverImage"`
	Screenshots []string `json:"Screenshots"`

	MetadataFetched bool `json:"MetadataFetched"`

	// User/runtime-editable fields, initialized with defaults.
	Players          int    `json:"Players" validate:"gte=1"`
	Region           string `json:"Region"`
	Language         string `json:"Language"`
	PlayCount        int    `json:"PlayCount" validate:"gte=0"`
	PlayTime         int    `json:"PlayTime" validate:"gte=0"`
	LastPlayed       string `json:"LastPlayed"`
	ControllerType   string `json:"ControllerType"`
	SupportWebsite   string `json:"SupportWebsite"`
	BackgroundImage  string `json:"BackgroundImage"`
	HeaderImage      string `json:"HeaderImage"`
	SaveFileLocation string `json:"SaveFileLocation"`
	CheatsAvailable  bool   `json:"CheatsAvailable"`
	Achievements     string `json:"Achievements"`
	YouTubeTrailer   string `json:"YouTubeTrailer"`
	SoundtrackLink   string `json:"SoundtrackLink"`
	LaunchArguments  string `json:"LaunchArguments"`
	VRSupport        bool   `json:"VRSupport"`
	Notes            string `json:"Notes"`
	ControlScheme    string `json:"ControlScheme"`
	AdditionalNotes  string `json:"AdditionalNotes"`
}

// UnmatchedEntry records a discovered ROM that no catalog candidate
// matched. Append-only per run; the whole list is rewritten each save.
type UnmatchedEntry struct {
	Title   string `json:"title"`
	Console string `json:"console"`
	RomPath string `json:"romPath"`
}

// Key builds the unique merge-map key for a console/title pair.
func Key(console, title string) string {
	return strings.ToLower(strings.TrimSpace(console)) + ":" + strings.ToLower(strings.TrimSpace(title))
}

// NewRecord creates a bare record for a first discovery, with the
// user/runtime defaults set and no catalog data yet.
func NewRecord(title, console string, platformID int, corePath, romPath string, fileSize int64) *GameRecord {
	return &GameRecord{
		Title:          title,
		Console:        console,
		PlatformID:     platformID,
		IGDBID:         0,
		Genre:          "Unknown",
		RomPaths:       []string{romPath},
		CorePath:       corePath,
		FileSize:       fileSize,
		DiskCount:      1,
		Players:        1,
		ControllerType: "Gamepad",
	}
}

// AddRomPath appends a contributing path, skipping duplicates.
func (r *GameRecord) AddRomPath(path string) {
	for _, p := range r.RomPaths {
		if p == path {
			return
		}
	}
	r.RomPaths = append(r.RomPaths, path)
}

// RaiseDiskCount lifts DiskCount to total when greater. Disk counts
// only ever increase across merges.
func (r *GameRecord) RaiseDiskCount(total int) {
	if total > r.DiskCount {
		r.DiskCount = total
	}
}
