package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/romshelf/romshelf-builder/internal/metadata/igdb"
)

func TestGenerateTags(t *testing.T) {
	tags := generateTags(tagSource{
		summary:   "Run and jump through the Mushroom Kingdom!",
		storyline: "Save the princess.",
		genres:    []string{"Platform"},
		developer: "Nintendo",
	})

	assert.Equal(t, []string{
		"jump", "kingdom", "mushroom", "nintendo",
		"platform", "princess", "save", "through",
	}, tags)
}

func TestGenerateTagsDropsShortAndDuplicateTokens(t *testing.T) {
	tags := generateTags(tagSource{
		summary:   "war war war",
		storyline: "a big WAR",
	})
	assert.Empty(t, tags) // "war" and "big" are under four characters

	tags = generateTags(tagSource{summary: "wars and more WARS"})
	assert.Equal(t, []string{"more", "wars"}, tags)
}

func TestMergeTagsUnions(t *testing.T) {
	merged := mergeTags([]string{"puzzle", "retro"}, []string{"retro", "arcade"})
	assert.Equal(t, []string{"arcade", "puzzle", "retro"}, merged)
}

func TestPlayerCount(t *testing.T) {
	assert.Equal(t, 2, playerCount([]igdb.Named{{Name: "Multiplayer"}}))
	assert.Equal(t, 2, playerCount([]igdb.Named{{Name: "Single player"}, {Name: "Split screen multiplayer"}}))
	assert.Equal(t, 1, playerCount([]igdb.Named{{Name: "Single player"}}))
	assert.Equal(t, 1, playerCount(nil))
}

func TestRatingRescales(t *testing.T) {
	assert.Equal(t, "7.9", rating(79))
	assert.Equal(t, "10.0", rating(100))
	assert.Equal(t, "", rating(0))
}

func TestReleaseDate(t *testing.T) {
	date, year := releaseDate(537580800)
	assert.Equal(t, "1987-01-14", date)
	assert.Equal(t, "1987", year)

	date, year = releaseDate(0)
	assert.Empty(t, date)
	assert.Empty(t, year)
}

func TestAgeRatings(t *testing.T) {
	assert.Equal(t, "1: 9, 2: 12", ageRatings([]igdb.AgeRating{
		{Category: 1, Rating: 9},
		{Category: 2, Rating: 12},
	}))
	assert.Empty(t, ageRatings(nil))
}
