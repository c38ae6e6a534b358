// Package match provides title normalization and fuzzy candidate
// selection for noisy ROM filenames.
package match

import (
	"regexp"
	"strings"
	"unicode"
)

// Threshold is the minimum similarity score for a catalog candidate to
// count as a match. Anything below is treated as no match.
const Threshold = 0.4

var (
	nonWordPattern    = regexp.MustCompile(`[^\w\s'-]`)
	whitespacePattern = regexp.MustCompile(`\s{2,}`)
)

// NormalizeTitle lowercases a title and collapses punctuation to spaces
// so it can be fed to catalog search and similarity scoring. Apostrophes
// and hyphens survive; everything else non-word becomes a space.
func NormalizeTitle(title string) string {
	s := strings.ToLower(title)
	s = nonWordPattern.ReplaceAllString(s, " ")
	s = whitespacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// PickBest scores base against every name variant of every candidate
// and returns the index of the candidate owning the best-scoring
// variant, or -1 when no variant reaches the threshold. Ties keep the
// first-encountered highest score, so iteration order is stable.
func PickBest(base string, candidates [][]string) int {
	if len(candidates) == 0 {
		return -1
	}

	normBase := strings.ToLower(base)
	bestScore := -1.0
	bestIdx := -1

	for i, names := range candidates {
		for _, name := range names {
			score := Similarity(normBase, strings.ToLower(name))
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
	}

	if bestScore < Threshold {
		return -1
	}
	return bestIdx
}

// Similarity calculates the similarity between two strings (0.0-1.0)
// as the Dice coefficient of their character bigram multisets, with
// whitespace stripped first. Bigram overlap keeps a short title close
// to a long canonical name that contains it, which edit distance does
// not: "zelda" still clears the threshold against "the legend of
// zelda".
func Similarity(a, b string) float64 {
	a = stripWhitespace(a)
	b = stripWhitespace(b)

	if a == b {
		if a == "" {
			return 0.0
		}
		return 1.0
	}

	ra := []rune(a)
	rb := []rune(b)
	if len(ra) < 2 || len(rb) < 2 {
		return 0.0
	}

	bigrams := make(map[string]int, len(ra)-1)
	for i := 0; i < len(ra)-1; i++ {
		bigrams[string(ra[i:i+2])]++
	}

	intersection := 0
	for i := 0; i < len(rb)-1; i++ {
		bigram := string(rb[i : i+2])
		if bigrams[bigram] > 0 {
			bigrams[bigram]--
			intersection++
		}
	}

	return 2.0 * float64(intersection) / float64(len(ra)+len(rb)-2)
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
