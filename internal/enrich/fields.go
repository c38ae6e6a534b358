package enrich

import (
	"fmt"
	"strings"
	"time"

	"github.com/romshelf/romshelf-builder/internal/library"
	"github.com/romshelf/romshelf-builder/internal/metadata/igdb"
)

// playerCount guesses a player count from catalog game modes. Any mode
// mentioning multiplayer counts as 2, everything else as 1.
func playerCount(modes []igdb.Named) int {
	for _, m := range modes {
		if strings.Contains(strings.ToLower(m.Name), "multiplayer") {
			return 2
		}
	}
	return 1
}

func developers(companies []igdb.InvolvedCompany) string {
	return joinCompanies(companies, func(c igdb.InvolvedCompany) bool { return c.Developer })
}

func publishers(companies []igdb.InvolvedCompany) string {
	return joinCompanies(companies, func(c igdb.InvolvedCompany) bool { return c.Publisher })
}

func joinCompanies(companies []igdb.InvolvedCompany, role func(igdb.InvolvedCompany) bool) string {
	var names []string
	for _, c := range companies {
		if role(c) {
			names = append(names, c.Company.Name)
		}
	}
	return strings.Join(names, ", ")
}

func joinNames(items []igdb.Named) string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return strings.Join(names, ", ")
}

func ageRatings(ratings []igdb.AgeRating) string {
	parts := make([]string, 0, len(ratings))
	for _, r := range ratings {
		parts = append(parts, fmt.Sprintf("%d: %d", r.Category, r.Rating))
	}
	return strings.Join(parts, ", ")
}

func nestedGenres(genres []igdb.Named) []library.NestedGenre {
	if len(genres) == 0 {
		return nil
	}
	out := make([]library.NestedGenre, 0, len(genres))
	for _, g := range genres {
		// The catalog exposes no genre hierarchy, so parent stays null.
		out = append(out, library.NestedGenre{Name: g.Name, Parent: nil})
	}
	return out
}

// releaseDate formats a unix timestamp as an ISO date and a year.
func releaseDate(unix int64) (date, year string) {
	if unix == 0 {
		return "", ""
	}
	t := time.Unix(unix, 0).UTC()
	return t.Format("2006-01-02"), fmt.Sprintf("%d", t.Year())
}

// rating rescales the catalog's 0-100 score to a 0.0-10.0 string with
// one decimal. A zero score yields the empty string.
func rating(score float64) string {
	if score == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f", score/10)
}
