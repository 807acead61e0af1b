package models

import (
	"strings"

	"github.com/goccy/go-json"
)

// MovieType is the regional preference sent as movie_type.
type MovieType string

const (
	MovieTypeHollywood   MovieType = "Hollywood"
	MovieTypeBollywood   MovieType = "Bollywood"
	MovieTypeSouthIndian MovieType = "South Indian"
	MovieTypeAny         MovieType = "Any"
)

// MovieTypes lists the selectable movie types in display order.
var MovieTypes = []MovieType{MovieTypeHollywood, MovieTypeBollywood, MovieTypeSouthIndian, MovieTypeAny}

// ReleasePref is the release-window preference sent as release_pref.
type ReleasePref string

const (
	ReleasePrefNew     ReleasePref = "Newly Released"
	ReleasePrefClassic ReleasePref = "Classic / Old"
	ReleasePrefAny     ReleasePref = "Any"
)

// ReleasePrefs lists the selectable release preferences in display order.
var ReleasePrefs = []ReleasePref{ReleasePrefNew, ReleasePrefClassic, ReleasePrefAny}

// PreferenceQuery is the request body of POST /recommend.
type PreferenceQuery struct {
	Description string      `json:"description" validate:"notblank"`
	MovieType   MovieType   `json:"movie_type" validate:"oneof=Hollywood Bollywood 'South Indian' Any"`
	ReleasePref ReleasePref `json:"release_pref" validate:"oneof='Newly Released' 'Classic / Old' Any"`
}

// DefaultQuery returns the draft a fresh form starts with.
func DefaultQuery() PreferenceQuery {
	return PreferenceQuery{
		MovieType:   MovieTypeHollywood,
		ReleasePref: ReleasePrefClassic,
	}
}

// Snapshot returns a copy of q with the description trimmed.
func (q PreferenceQuery) Snapshot() PreferenceQuery {
	q.Description = strings.TrimSpace(q.Description)
	return q
}

// Movie is a single recommendation as returned by the service. Optional
// fields are pointers so an absent value can be told apart from a zero one.
type Movie struct {
	Title       string   `json:"title"`
	PosterURL   *string  `json:"poster_url,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReleaseDate *string  `json:"release_date,omitempty"`
	WatchOn     []string `json:"watch_on,omitempty"`
	Overview    *string  `json:"overview,omitempty"`
}

// GetTitle returns the movie title.
func (m Movie) GetTitle() string {
	return m.Title
}

// UnmarshalJSON decodes each field on its own so one badly typed field
// never drops the movie. A field that does not fit its type is left absent,
// except title and release_date, which keep the raw JSON text. An entry
// that is not an object decodes as an empty Movie.
func (m *Movie) UnmarshalJSON(data []byte) error {
	*m = Movie{}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}

	if title := rawText(fields["title"]); title != nil {
		m.Title = *title
	}
	m.PosterURL = optionalString(fields["poster_url"])
	m.ReleaseDate = rawText(fields["release_date"])
	m.Overview = optionalString(fields["overview"])

	if raw, ok := fields["rating"]; ok {
		var r *float64
		if err := json.Unmarshal(raw, &r); err == nil {
			m.Rating = r
		}
	}

	if raw, ok := fields["watch_on"]; ok {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			for _, item := range items {
				var platform string
				if err := json.Unmarshal(item, &platform); err == nil {
					m.WatchOn = append(m.WatchOn, platform)
				}
			}
		}
	}

	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// optionalString returns raw as a string, or nil when it is absent, null or
// not a string.
func optionalString(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// rawText is like optionalString but keeps non-string values as their JSON
// text, so 2020 becomes "2020".
func rawText(raw json.RawMessage) *string {
	if isNull(raw) {
		return nil
	}
	if s := optionalString(raw); s != nil {
		return s
	}
	text := strings.TrimSpace(string(raw))
	return &text
}

// RecommendResponse is the success body of POST /recommend. The echoed
// preference is kept raw since nothing reads it.
type RecommendResponse struct {
	Preference json.RawMessage `json:"preference,omitempty"`
	Movies     []Movie         `json:"movies"`
}
