package igdb

import "fmt"

// imageBaseURL is where IGDB serves constructed image assets.
const imageBaseURL = "https://images.igdb.com/igdb/image/upload"

// Game is a catalog search result.
type Game struct {
	ID                int               `json:"id"`
	Name              string            `json:"name"`
	AlternativeNames  []AlternativeName `json:"alternative_names"`
	Cover             *Image            `json:"cover"`
	Genres            []Named           `json:"genres"`
	FirstReleaseDate  int64             `json:"first_release_date"`
	Summary           string            `json:"summary"`
	Storyline         string            `json:"storyline"`
	Platforms         []int             `json:"platforms"`
	InvolvedCompanies []InvolvedCompany `json:"involved_companies"`
	Rating            float64           `json:"rating"`
	Category          *int              `json:"category"`
	Status            *int              `json:"status"`
	GameModes         []Named           `json:"game_modes"`
	Keywords          []Named           `json:"keywords"`
	AgeRatings        []AgeRating       `json:"age_ratings"`
	Collection        *Named            `json:"collection"`
	Franchise         *Named            `json:"franchise"`
	Screenshots       []Image           `json:"screenshots"`
}

// Named is any catalog object carrying just a display name.
type Named struct {
	Name string `json:"name"`
}

// AlternativeName is a localized or regional title variant.
type AlternativeName struct {
	Name string `json:"name"`
}

// Image is a catalog image reference; assets are fetched by image id.
type Image struct {
	ImageID string `json:"image_id"`
}

// InvolvedCompany links a company to a game with role flags.
type InvolvedCompany struct {
	Company   Named `json:"company"`
	Developer bool  `json:"developer"`
	Publisher bool  `json:"publisher"`
}

// AgeRating is a rating body category plus its rating code.
type AgeRating struct {
	Category int `json:"category"`
	Rating   int `json:"rating"`
}

// Names returns the canonical name followed by every alternate name.
func (g *Game) Names() []string {
	names := make([]string, 0, 1+len(g.AlternativeNames))
	names = append(names, g.Name)
	for _, a := range g.AlternativeNames {
		names = append(names, a.Name)
	}
	return names
}

// OnPlatform reports whether the game lists the given platform id.
func (g *Game) OnPlatform(platformID int) bool {
	for _, p := range g.Platforms {
		if p == platformID {
			return true
		}
	}
	return false
}

// CoverURL constructs the download URL for a cover image id.
func CoverURL(imageID string) string {
	return fmt.Sprintf("%s/t_cover_big/%s.jpg", imageBaseURL, imageID)
}

// ScreenshotURL constructs the download URL for a screenshot image id.
func ScreenshotURL(imageID string) string {
	return fmt.Sprintf("%s/t_screenshot_big/%s.jpg", imageBaseURL, imageID)
}
