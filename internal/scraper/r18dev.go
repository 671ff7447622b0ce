package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/javelin-media/javelin/internal/fetch"
	"github.com/javelin-media/javelin/internal/model"
)

const r18devBaseURL = "https://r18.dev"

// R18Dev queries the r18.dev JSON API. Lookups are two-step: the DVD ID
// endpoint maps the catalog code to the site's content ID, then the
// combined endpoint returns the full record.
type R18Dev struct {
	client  *fetch.Client
	baseURL string
}

// NewR18Dev creates the r18.dev adapter.
func NewR18Dev(client *fetch.Client) *R18Dev {
	return &R18Dev{client: client, baseURL: r18devBaseURL}
}

// WithBaseURL overrides the API endpoint (tests).
func (s *R18Dev) WithBaseURL(u string) *R18Dev {
	s.baseURL = u
	return s
}

func (s *R18Dev) Name() string { return "r18dev" }

type r18devLookup struct {
	ContentID string `json:"content_id"`
}

type r18devDetail struct {
	DVDID         string `json:"dvd_id"`
	ContentID     string `json:"content_id"`
	TitleEn       string `json:"title_en"`
	TitleJa       string `json:"title_ja"`
	CommentEn     string `json:"comment_en"`
	ReleaseDate   string `json:"release_date"`
	RuntimeMins   int    `json:"runtime_mins"`
	DirectorRomaj string `json:"director_romaji"`
	MakerEn       string `json:"maker_name_en"`
	LabelEn       string `json:"label_name_en"`
	SeriesEn      string `json:"series_name_en"`
	JacketFullURL string `json:"jacket_full_url"`
	SampleURL     string `json:"sample_url"`
	Actresses     []struct {
		NameRomaji string `json:"name_romaji"`
		NameKanji  string `json:"name_kanji"`
		ImageURL   string `json:"image_url"`
	} `json:"actresses"`
	Categories []struct {
		NameEn string `json:"name_en"`
	} `json:"categories"`
	Gallery []struct {
		ImageFull string `json:"image_full"`
	} `json:"gallery"`
}

// Find resolves a catalog code via the JSON API.
func (s *R18Dev) Find(ctx context.Context, id string) (*model.Metadata, error) {
	id = model.NormalizeID(id)

	var lookup r18devLookup
	lookupURL := fmt.Sprintf("%s/videos/vod/movies/detail/-/dvd_id=%s/json", s.baseURL, id)
	if err := s.client.GetJSON(ctx, lookupURL, &lookup); err != nil {
		return nil, s.classify(err, id)
	}
	if lookup.ContentID == "" {
		return nil, &NotFoundError{Source: s.Name(), ID: id}
	}

	var detail r18devDetail
	detailURL := fmt.Sprintf("%s/videos/vod/movies/detail/-/combined=%s/json", s.baseURL, lookup.ContentID)
	if err := s.client.GetJSON(ctx, detailURL, &detail); err != nil {
		return nil, s.classify(err, id)
	}
	if detail.TitleEn == "" && detail.TitleJa == "" {
		return nil, &ParseError{Source: s.Name(), Err: fmt.Errorf("empty record for %s", id)}
	}

	return s.toMetadata(id, &detail), nil
}

func (s *R18Dev) classify(err error, id string) error {
	var se *fetch.StatusError
	if errors.As(err, &se) && se.Code == 404 {
		return &NotFoundError{Source: s.Name(), ID: id}
	}
	return err
}

func (s *R18Dev) toMetadata(id string, d *r18devDetail) *model.Metadata {
	m := &model.Metadata{
		ID:            id,
		ContentID:     d.ContentID,
		Title:         d.TitleEn,
		OriginalTitle: d.TitleJa,
		Description:   d.CommentEn,
		Runtime:       d.RuntimeMins,
		Director:      d.DirectorRomaj,
		Maker:         d.MakerEn,
		Label:         d.LabelEn,
		Series:        d.SeriesEn,
		CoverURL:      d.JacketFullURL,
		TrailerURL:    d.SampleURL,
		Source:        s.Name(),
	}
	if m.Title == "" {
		m.Title = d.TitleJa
	}
	if d.DVDID != "" {
		m.ID = model.NormalizeID(d.DVDID)
	}
	if t, err := time.Parse("2006-01-02", d.ReleaseDate); err == nil {
		m.ReleaseDate = t
	}
	for _, a := range d.Actresses {
		first, last := splitRomaji(a.NameRomaji)
		m.Actresses = append(m.Actresses, model.Actress{
			FirstName:    first,
			LastName:     last,
			JapaneseName: a.NameKanji,
			ThumbURL:     a.ImageURL,
		})
	}
	for _, c := range d.Categories {
		if c.NameEn != "" {
			m.Genres = append(m.Genres, c.NameEn)
		}
	}
	for _, g := range d.Gallery {
		if g.ImageFull != "" {
			m.ScreenshotURLs = append(m.ScreenshotURLs, g.ImageFull)
		}
	}
	return m
}
