package model

import (
	"fmt"
	"strings"
	"time"
)

// SourceAggregated is the Source tag set on records produced by N-way
// field aggregation.
const SourceAggregated = "aggregated"

// Actress holds one cast member as reported by a source.
type Actress struct {
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	JapaneseName string `json:"japanese_name,omitempty"`
	ThumbURL     string `json:"thumb_url,omitempty"`
}

// FullName returns the romanized name in Western order (First Last).
func (a Actress) FullName() string {
	parts := make([]string, 0, 2)
	if a.FirstName != "" {
		parts = append(parts, a.FirstName)
	}
	if a.LastName != "" {
		parts = append(parts, a.LastName)
	}
	if len(parts) == 0 {
		return a.JapaneseName
	}
	return strings.Join(parts, " ")
}

// Key returns the natural dedup key used when merging cast lists from
// multiple sources: the Japanese name when present, otherwise the
// romanized full name.
func (a Actress) Key() string {
	if a.JapaneseName != "" {
		return a.JapaneseName
	}
	return a.FullName()
}

// Rating is a score with its vote count.
type Rating struct {
	Score float64 `json:"score"`
	Votes int     `json:"votes"`
}

// Metadata is the structured record one source returns for one catalog ID.
// Source always names the adapter that produced it (or "aggregated").
type Metadata struct {
	ID        string `json:"id"`
	ContentID string `json:"content_id,omitempty"`

	Title         string `json:"title"`
	OriginalTitle string `json:"original_title,omitempty"`

	Description string    `json:"description,omitempty"`
	ReleaseDate time.Time `json:"release_date,omitzero"`
	Runtime     int       `json:"runtime,omitempty"` // minutes

	Director string `json:"director,omitempty"`
	Maker    string `json:"maker,omitempty"`
	Label    string `json:"label,omitempty"`
	Series   string `json:"series,omitempty"`

	Actresses []Actress `json:"actresses,omitempty"`
	Genres    []string  `json:"genres,omitempty"`
	Tags      []string  `json:"tags,omitempty"`

	Rating *Rating `json:"rating,omitempty"`

	CoverURL       string   `json:"cover_url,omitempty"`
	ScreenshotURLs []string `json:"screenshot_urls,omitempty"`
	TrailerURL     string   `json:"trailer_url,omitempty"`

	Source string `json:"source"`
}

// Year returns the release year, or 0 when no release date is known.
func (m *Metadata) Year() int {
	if m.ReleaseDate.IsZero() {
		return 0
	}
	return m.ReleaseDate.Year()
}

// DisplayName formats the record as "[ID] Title".
func (m *Metadata) DisplayName() string {
	return fmt.Sprintf("[%s] %s", m.ID, m.Title)
}
