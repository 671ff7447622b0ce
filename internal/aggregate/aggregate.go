// Package aggregate reduces per-source metadata records into one resolved
// record under a deterministic field-priority policy. Everything here is
// pure: no I/O, inputs are never mutated.
package aggregate

import (
	"time"

	"github.com/javelin-media/javelin/internal/model"
	"github.com/javelin-media/javelin/internal/scraper"
)

// Aggregate merges records from multiple sources into one record.
// Scalar fields take the first non-empty value walking the policy's
// (alias-expanded) source order, falling back to any source's value when
// no prioritized source has one. Cast lists merge by natural key with
// first-seen-wins; genres and tags union. With a single input record it is
// returned as-is, source preserved; with two or more the result is tagged
// "aggregated". Returns nil for an empty map.
func Aggregate(records map[string]*model.Metadata, policy model.Policy) *model.Metadata {
	if len(records) == 0 {
		return nil
	}
	if len(records) == 1 {
		for _, m := range records {
			return m
		}
	}

	out := &model.Metadata{
		ID:             pickString(records, policy.Title, func(m *model.Metadata) string { return m.ID }),
		ContentID:      pickString(records, policy.Title, func(m *model.Metadata) string { return m.ContentID }),
		Title:          pickString(records, policy.Title, func(m *model.Metadata) string { return m.Title }),
		OriginalTitle:  pickString(records, policy.Title, func(m *model.Metadata) string { return m.OriginalTitle }),
		Description:    pickString(records, policy.Description, func(m *model.Metadata) string { return m.Description }),
		ReleaseDate:    pickTime(records, policy.ReleaseDate, func(m *model.Metadata) time.Time { return m.ReleaseDate }),
		Runtime:        pickInt(records, policy.Runtime, func(m *model.Metadata) int { return m.Runtime }),
		Director:       pickString(records, policy.Maker, func(m *model.Metadata) string { return m.Director }),
		Maker:          pickString(records, policy.Maker, func(m *model.Metadata) string { return m.Maker }),
		Label:          pickString(records, policy.Maker, func(m *model.Metadata) string { return m.Label }),
		Series:         pickString(records, policy.Maker, func(m *model.Metadata) string { return m.Series }),
		Actresses:      mergeActresses(records, policy.Actress),
		Genres:         unionStrings(records, policy.Genre, func(m *model.Metadata) []string { return m.Genres }),
		Tags:           unionStrings(records, nil, func(m *model.Metadata) []string { return m.Tags }),
		Rating:         pickRating(records, policy.Title),
		CoverURL:       pickString(records, policy.CoverURL, func(m *model.Metadata) string { return m.CoverURL }),
		ScreenshotURLs: pickStrings(records, policy.CoverURL, func(m *model.Metadata) []string { return m.ScreenshotURLs }),
		TrailerURL:     pickString(records, policy.CoverURL, func(m *model.Metadata) string { return m.TrailerURL }),
		Source:         model.SourceAggregated,
	}
	return out
}

// MergeTwo combines exactly two records, primary's values winning on ties.
// This is deliberately cheaper than the N-way path: the primary's cast
// list is used wholesale when non-empty rather than merged by key. The
// result's source is "primary+secondary".
func MergeTwo(primary, secondary *model.Metadata) *model.Metadata {
	out := &model.Metadata{
		ID:             firstNonEmpty(primary.ID, secondary.ID),
		ContentID:      firstNonEmpty(primary.ContentID, secondary.ContentID),
		Title:          firstNonEmpty(primary.Title, secondary.Title),
		OriginalTitle:  firstNonEmpty(primary.OriginalTitle, secondary.OriginalTitle),
		Description:    firstNonEmpty(primary.Description, secondary.Description),
		ReleaseDate:    primary.ReleaseDate,
		Runtime:        primary.Runtime,
		Director:       firstNonEmpty(primary.Director, secondary.Director),
		Maker:          firstNonEmpty(primary.Maker, secondary.Maker),
		Label:          firstNonEmpty(primary.Label, secondary.Label),
		Series:         firstNonEmpty(primary.Series, secondary.Series),
		Rating:         primary.Rating,
		CoverURL:       firstNonEmpty(primary.CoverURL, secondary.CoverURL),
		TrailerURL:     firstNonEmpty(primary.TrailerURL, secondary.TrailerURL),
		ScreenshotURLs: primary.ScreenshotURLs,
		Source:         primary.Source + "+" + secondary.Source,
	}
	if out.ReleaseDate.IsZero() {
		out.ReleaseDate = secondary.ReleaseDate
	}
	if out.Runtime == 0 {
		out.Runtime = secondary.Runtime
	}
	if out.Rating == nil {
		out.Rating = secondary.Rating
	}
	if len(out.ScreenshotURLs) == 0 {
		out.ScreenshotURLs = secondary.ScreenshotURLs
	}
	if len(primary.Actresses) > 0 {
		out.Actresses = append([]model.Actress(nil), primary.Actresses...)
	} else {
		out.Actresses = append([]model.Actress(nil), secondary.Actresses...)
	}
	out.Genres = unionPair(primary.Genres, secondary.Genres)
	out.Tags = unionPair(primary.Tags, secondary.Tags)
	return out
}

// pick walks the alias-expanded priority order and returns the first
// usable value, falling back to any record's value in map order. The
// fallback winner among equally-unprioritized sources is deliberately
// unspecified.
func pick[T any](records map[string]*model.Metadata, priority []string, get func(*model.Metadata) T, usable func(T) bool) T {
	for _, source := range scraper.ExpandSources(priority) {
		if m, ok := records[source]; ok {
			if v := get(m); usable(v) {
				return v
			}
		}
	}
	for _, m := range records {
		if v := get(m); usable(v) {
			return v
		}
	}
	var zero T
	return zero
}

func pickString(records map[string]*model.Metadata, priority []string, get func(*model.Metadata) string) string {
	return pick(records, priority, get, func(s string) bool { return s != "" })
}

func pickInt(records map[string]*model.Metadata, priority []string, get func(*model.Metadata) int) int {
	return pick(records, priority, get, func(n int) bool { return n != 0 })
}

func pickTime(records map[string]*model.Metadata, priority []string, get func(*model.Metadata) time.Time) time.Time {
	return pick(records, priority, get, func(t time.Time) bool { return !t.IsZero() })
}

func pickStrings(records map[string]*model.Metadata, priority []string, get func(*model.Metadata) []string) []string {
	return pick(records, priority, get, func(v []string) bool { return len(v) > 0 })
}

func pickRating(records map[string]*model.Metadata, priority []string) *model.Rating {
	return pick(records, priority,
		func(m *model.Metadata) *model.Rating { return m.Rating },
		func(r *model.Rating) bool { return r != nil })
}

// mergeActresses appends cast members in priority order, deduplicating by
// natural key with first occurrence winning, then sweeps the remaining
// records in map order for anyone never seen.
func mergeActresses(records map[string]*model.Metadata, priority []string) []model.Actress {
	var out []model.Actress
	seen := make(map[string]bool)

	add := func(list []model.Actress) {
		for _, a := range list {
			key := a.Key()
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, a)
		}
	}

	for _, source := range scraper.ExpandSources(priority) {
		if m, ok := records[source]; ok {
			add(m.Actresses)
		}
	}
	for _, m := range records {
		add(m.Actresses)
	}
	return out
}

// unionStrings unions a tag-set field across all records: priority sources
// first (for stable-ish insertion order), then everything else in map
// order. Dedup is exact string match.
func unionStrings(records map[string]*model.Metadata, priority []string, get func(*model.Metadata) []string) []string {
	var out []string
	seen := make(map[string]bool)

	add := func(tags []string) {
		for _, t := range tags {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}

	for _, source := range scraper.ExpandSources(priority) {
		if m, ok := records[source]; ok {
			add(get(m))
		}
	}
	for _, m := range records {
		add(get(m))
	}
	return out
}

func unionPair(a, b []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
