package enrich

import (
	"regexp"
	"sort"
	"strings"
)

var tokenSplit = regexp.MustCompile(`\W+`)

const minTagLength = 4

// tagSource holds the free-text fields tags are derived from.
type tagSource struct {
	summary   string
	storyline string
	genres    []string
	developer string
}

// generateTags tokenizes the source fields into a deduplicated, sorted
// list of lower-cased tags of at least four characters.
func generateTags(src tagSource) []string {
	seen := make(map[string]struct{})
	add := func(text string) {
		for _, token := range tokenSplit.Split(strings.ToLower(text), -1) {
			if len(token) >= minTagLength {
				seen[token] = struct{}{}
			}
		}
	}
	add(src.summary)
	add(src.storyline)
	for _, g := range src.genres {
		if tag := strings.ToLower(g); len(tag) >= minTagLength {
			seen[tag] = struct{}{}
		}
	}
	add(src.developer)

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// mergeTags unions two tag lists, deduplicated and sorted.
func mergeTags(existing, fresh []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(fresh))
	for _, t := range existing {
		seen[t] = struct{}{}
	}
	for _, t := range fresh {
		seen[t] = struct{}{}
	}
	merged := make([]string, 0, len(seen))
	for t := range seen {
		merged = append(merged, t)
	}
	sort.Strings(merged)
	return merged
}
