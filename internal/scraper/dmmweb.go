package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/javelin-media/javelin/internal/fetch"
	"github.com/javelin-media/javelin/internal/model"
)

const dmmAPIBaseURL = "https://api.video.dmm.co.jp"

// DMMWeb queries DMM's newer JSON content API. It is the preferred
// implementation behind the "dmm" alias; the legacy HTML adapter is only
// consulted when this one comes up empty.
type DMMWeb struct {
	client  *fetch.Client
	baseURL string
}

// NewDMMWeb creates the preferred DMM adapter.
func NewDMMWeb(client *fetch.Client) *DMMWeb {
	return &DMMWeb{client: client, baseURL: dmmAPIBaseURL}
}

// WithBaseURL overrides the API endpoint (tests).
func (s *DMMWeb) WithBaseURL(u string) *DMMWeb {
	s.baseURL = u
	return s
}

func (s *DMMWeb) Name() string { return "dmmweb" }

type dmmContent struct {
	ContentID   string `json:"content_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DeliveryAt  string `json:"delivery_start_date"`
	Duration    int    `json:"duration"` // minutes
	Director    string `json:"director"`
	Maker       string `json:"maker_name"`
	Label       string `json:"label_name"`
	Series      string `json:"series_name"`
	PackageURL  string `json:"package_image_url"`
	SampleMovie string `json:"sample_movie_url"`
	Actresses   []struct {
		Name string `json:"name"`
		Ruby string `json:"ruby"`
	} `json:"actresses"`
	Genres []struct {
		Name string `json:"name"`
	} `json:"genres"`
	SampleImages []string `json:"sample_image_urls"`
}

// Find tries each alternate content-ID encoding of the catalog code in
// fixed priority order until one answers. Encodings are never mixed
// within a single lookup.
func (s *DMMWeb) Find(ctx context.Context, id string) (*model.Metadata, error) {
	id = model.NormalizeID(id)

	for _, cid := range model.ContentIDVariants(id) {
		var content dmmContent
		u := fmt.Sprintf("%s/v1/contents/%s", s.baseURL, cid)
		err := s.client.GetJSON(ctx, u, &content)
		if err != nil {
			var se *fetch.StatusError
			if errors.As(err, &se) && se.Code == 404 {
				continue // next encoding
			}
			return nil, err
		}
		if content.Title == "" {
			return nil, &ParseError{Source: s.Name(), Err: fmt.Errorf("empty record for %s", cid)}
		}
		return s.toMetadata(id, &content), nil
	}

	return nil, &NotFoundError{Source: s.Name(), ID: id}
}

func (s *DMMWeb) toMetadata(id string, c *dmmContent) *model.Metadata {
	m := &model.Metadata{
		ID:            id,
		ContentID:     c.ContentID,
		Title:         c.Title,
		OriginalTitle: c.Title,
		Description:   c.Description,
		Runtime:       c.Duration,
		Director:      c.Director,
		Maker:         c.Maker,
		Label:         c.Label,
		Series:        c.Series,
		CoverURL:      c.PackageURL,
		TrailerURL:    c.SampleMovie,
		Source:        s.Name(),
	}
	if t, err := time.Parse("2006-01-02", c.DeliveryAt); err == nil {
		m.ReleaseDate = t
	}
	for _, a := range c.Actresses {
		m.Actresses = append(m.Actresses, model.Actress{JapaneseName: a.Name})
	}
	for _, g := range c.Genres {
		if g.Name != "" {
			m.Genres = append(m.Genres, g.Name)
		}
	}
	m.ScreenshotURLs = append(m.ScreenshotURLs, c.SampleImages...)
	return m
}
