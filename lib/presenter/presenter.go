// Package presenter turns the request state into what should be drawn.
//
// Render is a pure function of (movies, isLoading). It decides between
// loading placeholders, a populated grid and nothing at all, and applies
// the per-card display rules. The TUI and the web templates both draw from
// the View it returns.
package presenter

import (
	"fmt"
	"strings"
	"time"

	"github.com/icco/moviefinder/models"
)

const (
	// SkeletonCount is the number of placeholders shown while loading.
	SkeletonCount = 5

	// MaxPlatforms is how many watch_on entries a card shows.
	MaxPlatforms = 3

	// PlaceholderPoster is used when a movie has no poster_url.
	PlaceholderPoster = "https://placehold.co/500x750/2D3748/E2E8F0?text=No+Image"

	// NoReleaseDate is shown when release_date is absent.
	NoReleaseDate = "N/A"

	// NoOverview is shown when overview is absent.
	NoOverview = "No description available."

	releaseDateLayout = "January 2, 2006"
)

// Kind is one of the three mutually exclusive render states.
type Kind int

const (
	KindHidden Kind = iota
	KindSkeleton
	KindGrid
)

func (k Kind) String() string {
	switch k {
	case KindHidden:
		return "hidden"
	case KindSkeleton:
		return "skeleton"
	case KindGrid:
		return "grid"
	default:
		return "unknown"
	}
}

// Card is the display form of one Movie.
type Card struct {
	Key         string
	Title       string
	PosterURL   string
	Rating      string // empty when the badge is suppressed
	ReleaseDate string
	Platforms   []string
	Overview    string
}

// HasRating reports whether the rating badge is shown.
func (c Card) HasRating() bool {
	return c.Rating != ""
}

// View is the output of Render.
type View struct {
	Kind         Kind
	Placeholders int
	Cards        []Card
}

// Render projects the state into a View. Loading always wins over any
// results passed alongside it.
func Render(movies []models.Movie, isLoading bool) View {
	if isLoading {
		return View{Kind: KindSkeleton, Placeholders: SkeletonCount}
	}
	if len(movies) == 0 {
		return View{Kind: KindHidden}
	}

	cards := make([]Card, len(movies))
	for i, m := range movies {
		cards[i] = NewCard(i, m)
	}
	return View{Kind: KindGrid, Cards: cards}
}

// NewCard applies the per-item display rules. The key combines the
// position in the response with the title, so repeated titles stay distinct.
func NewCard(index int, m models.Movie) Card {
	return Card{
		Key:         fmt.Sprintf("%d-%s", index, m.GetTitle()),
		Title:       m.GetTitle(),
		PosterURL:   posterURL(m.PosterURL),
		Rating:      ratingBadge(m.Rating),
		ReleaseDate: FormatReleaseDate(m.ReleaseDate),
		Platforms:   platforms(m.WatchOn),
		Overview:    overview(m.Overview),
	}
}

func posterURL(u *string) string {
	if u == nil || strings.TrimSpace(*u) == "" {
		return PlaceholderPoster
	}
	return *u
}

func ratingBadge(r *float64) string {
	if r == nil || *r <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1f", *r)
}

func platforms(watchOn []string) []string {
	n := len(watchOn)
	if n > MaxPlatforms {
		n = MaxPlatforms
	}
	if n == 0 {
		return nil
	}
	out := make([]string, n)
	copy(out, watchOn[:n])
	return out
}

func overview(o *string) string {
	if o == nil || *o == "" {
		return NoOverview
	}
	return *o
}

// dateLayouts are tried in order when formatting release_date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"2 January 2006",
	"2006-01",
	"2006",
}

// FormatReleaseDate renders a release date as "January 2, 2006". Absent
// dates become N/A; strings that do not parse are returned as-is.
func FormatReleaseDate(d *string) string {
	if d == nil {
		return NoReleaseDate
	}
	raw := strings.TrimSpace(*d)
	if raw == "" {
		return NoReleaseDate
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(releaseDateLayout)
		}
	}
	return *d
}
