package igdb

import (
	"context"
	"fmt"
	"strings"
)

// maxResults caps how many candidates a single search may return.
const maxResults = 50

// searchFields is the field list requested for every search.
var searchFields = strings.Join([]string{
	"name",
	"alternative_names.name",
	"cover.*",
	"genres.name",
	"first_release_date",
	"summary",
	"storyline",
	"platforms",
	"involved_companies.company.name",
	"involved_companies.publisher",
	"involved_companies.developer",
	"rating",
	"category",
	"status",
	"game_modes.name",
	"keywords.name",
	"age_ratings.*",
	"collection.name",
	"franchise.name",
	"screenshots.image_id",
}, ", ")

// Search queries the catalog for games matching text and returns up to
// 50 candidates. Offline mode and unrecoverable request failures both
// yield an empty slice; the caller treats that as "no data", never as
// a fatal condition.
func (c *Client) Search(ctx context.Context, text string) []Game {
	if c.cfg.Offline {
		return nil
	}
	return c.execute(ctx, buildSearchQuery(text))
}

// buildSearchQuery renders an apicalypse query for the games endpoint.
func buildSearchQuery(text string) string {
	escaped := strings.ReplaceAll(text, `"`, `\"`)
	return fmt.Sprintf(`search "%s"; fields %s; limit %d;`, escaped, searchFields, maxResults)
}
