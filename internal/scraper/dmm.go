package scraper

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/javelin-media/javelin/internal/fetch"
	"github.com/javelin-media/javelin/internal/model"
)

const dmmBaseURL = "https://www.dmm.co.jp"

// DMM scrapes the legacy DMM digital video detail pages. Kept as the
// fallback behind the "dmm" alias for titles the newer API does not carry.
type DMM struct {
	client  *fetch.Client
	baseURL string
}

// NewDMM creates the legacy DMM adapter.
func NewDMM(client *fetch.Client) *DMM {
	return &DMM{client: client, baseURL: dmmBaseURL}
}

// WithBaseURL overrides the site root (tests).
func (s *DMM) WithBaseURL(u string) *DMM {
	s.baseURL = u
	return s
}

func (s *DMM) Name() string { return "dmm" }

var (
	dmmTitleRe   = regexp.MustCompile(`<h1[^>]*id="title"[^>]*>([^<]+)</h1>`)
	dmmDateRe    = regexp.MustCompile(`配信開始日[^0-9]*(\d{4}/\d{2}/\d{2})`)
	dmmRuntimeRe = regexp.MustCompile(`収録時間[^0-9]*(\d+)分`)
	dmmMakerRe   = regexp.MustCompile(`メーカー[^<]*(?:<[^>]*>\s*)*<a[^>]*>([^<]+)</a>`)
	dmmActressRe = regexp.MustCompile(`<a[^>]*href="[^"]*article=actress[^"]*"[^>]*>([^<]+)</a>`)
	dmmGenreRe   = regexp.MustCompile(`<a[^>]*href="[^"]*article=keyword[^"]*"[^>]*>([^<]+)</a>`)
	dmmCoverRe   = regexp.MustCompile(`<img[^>]*src="(https://pics\.dmm\.co\.jp/[^"]+pl\.jpg)"`)
)

// Find tries each alternate content-ID encoding against the legacy detail
// page URL until one answers.
func (s *DMM) Find(ctx context.Context, id string) (*model.Metadata, error) {
	id = model.NormalizeID(id)

	for _, cid := range model.ContentIDVariants(id) {
		u := fmt.Sprintf("%s/digital/videoa/-/detail/=/cid=%s/", s.baseURL, cid)
		body, err := s.client.Get(ctx, u, nil)
		if err != nil {
			var se *fetch.StatusError
			if errors.As(err, &se) && se.Code == 404 {
				continue
			}
			return nil, err
		}
		m, err := s.parse(id, cid, string(body))
		if err != nil {
			return nil, err
		}
		return m, nil
	}

	return nil, &NotFoundError{Source: s.Name(), ID: id}
}

func (s *DMM) parse(id, cid, page string) (*model.Metadata, error) {
	title := firstMatch(dmmTitleRe, page)
	if title == "" {
		return nil, &ParseError{Source: s.Name(), Err: fmt.Errorf("no title on detail page for %s", cid)}
	}

	m := &model.Metadata{
		ID:            id,
		ContentID:     cid,
		Title:         title,
		OriginalTitle: title,
		Maker:         firstMatch(dmmMakerRe, page),
		Genres:        allMatches(dmmGenreRe, page),
		CoverURL:      firstMatch(dmmCoverRe, page),
		Source:        s.Name(),
	}
	if d := firstMatch(dmmDateRe, page); d != "" {
		if t, err := time.Parse("2006/01/02", d); err == nil {
			m.ReleaseDate = t
		}
	}
	if r := firstMatch(dmmRuntimeRe, page); r != "" {
		m.Runtime, _ = strconv.Atoi(r)
	}
	for _, name := range allMatches(dmmActressRe, page) {
		if isValidActressName(name) {
			m.Actresses = append(m.Actresses, model.Actress{JapaneseName: name})
		}
	}
	return m, nil
}

// isValidActressName filters promotional link text that shares the actress
// anchor markup on DMM pages.
func isValidActressName(name string) bool {
	if name == "" || len([]rune(name)) > 30 {
		return false
	}
	for _, marker := range []string{"キャンペーン", "セール", "%OFF", "ポイント", "一覧", "▼"} {
		if strings.Contains(name, marker) {
			return false
		}
	}
	return true
}
