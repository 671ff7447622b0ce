package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/javelin-media/javelin/internal/fetch"
	"github.com/javelin-media/javelin/internal/model"
)

const javlibraryBaseURL = "https://www.javlibrary.com"

// JavLibrary scrapes javlibrary.com search-by-ID pages. The site sits
// behind Cloudflare; callers supply clearance cookies via config.
type JavLibrary struct {
	client  *fetch.Client
	baseURL string
	cookies map[string]string
}

// NewJavLibrary creates the javlibrary adapter with optional Cloudflare
// cookies.
func NewJavLibrary(client *fetch.Client, cookies map[string]string) *JavLibrary {
	return &JavLibrary{client: client, baseURL: javlibraryBaseURL, cookies: cookies}
}

// WithBaseURL overrides the site root (tests).
func (s *JavLibrary) WithBaseURL(u string) *JavLibrary {
	s.baseURL = u
	return s
}

func (s *JavLibrary) Name() string { return "javlibrary" }

var (
	jlTitleRe    = regexp.MustCompile(`<h3 class="post-title text">\s*<a[^>]*>([^<]+)</a>`)
	jlDateRe     = regexp.MustCompile(`(?s)<div id="video_date"[^>]*>.*?<td class="text">(\d{4}-\d{2}-\d{2})</td>`)
	jlRuntimeRe  = regexp.MustCompile(`(?s)<div id="video_length"[^>]*>.*?<span class="text">(\d+)</span>`)
	jlMakerRe    = regexp.MustCompile(`rel="maker"[^>]*>([^<]+)</a>`)
	jlLabelRe    = regexp.MustCompile(`rel="label"[^>]*>([^<]+)</a>`)
	jlDirectorRe = regexp.MustCompile(`rel="director"[^>]*>([^<]+)</a>`)
	jlGenreRe    = regexp.MustCompile(`rel="category"[^>]*>([^<]+)</a>`)
	jlActressRe  = regexp.MustCompile(`rel="cast"[^>]*><span class="star">([^<]+)</span>`)
	jlCoverRe    = regexp.MustCompile(`<img id="video_jacket_img" src="([^"]+)"`)
	jlNoResults  = regexp.MustCompile(`(?i)search returned no result|ID Search Result`)
)

// Find searches by exact catalog code. JavLibrary redirects straight to
// the detail page on a unique match.
func (s *JavLibrary) Find(ctx context.Context, id string) (*model.Metadata, error) {
	id = model.NormalizeID(id)

	u := fmt.Sprintf("%s/en/vl_searchbyid.php?keyword=%s", s.baseURL, url.QueryEscape(id))
	body, err := s.client.Get(ctx, u, s.header())
	if err != nil {
		var se *fetch.StatusError
		if errors.As(err, &se) && se.Code == 404 {
			return nil, &NotFoundError{Source: s.Name(), ID: id}
		}
		return nil, err
	}

	page := string(body)
	if jlNoResults.MatchString(page) {
		return nil, &NotFoundError{Source: s.Name(), ID: id}
	}
	return s.parse(id, page)
}

func (s *JavLibrary) header() http.Header {
	if len(s.cookies) == 0 {
		return nil
	}
	pairs := make([]string, 0, len(s.cookies))
	for k, v := range s.cookies {
		pairs = append(pairs, k+"="+v)
	}
	return http.Header{"Cookie": []string{strings.Join(pairs, "; ")}}
}

func (s *JavLibrary) parse(id, page string) (*model.Metadata, error) {
	title := firstMatch(jlTitleRe, page)
	if title == "" {
		return nil, &ParseError{Source: s.Name(), Err: fmt.Errorf("no title for %s", id)}
	}
	// The page title repeats the catalog code; strip it.
	title = strings.TrimSpace(strings.TrimPrefix(title, id))

	m := &model.Metadata{
		ID:       id,
		Title:    title,
		Director: firstMatch(jlDirectorRe, page),
		Maker:    firstMatch(jlMakerRe, page),
		Label:    firstMatch(jlLabelRe, page),
		Genres:   allMatches(jlGenreRe, page),
		Source:   s.Name(),
	}
	if d := firstMatch(jlDateRe, page); d != "" {
		if t, err := time.Parse("2006-01-02", d); err == nil {
			m.ReleaseDate = t
		}
	}
	if r := firstMatch(jlRuntimeRe, page); r != "" {
		m.Runtime, _ = strconv.Atoi(r)
	}
	if cover := firstMatch(jlCoverRe, page); cover != "" {
		if strings.HasPrefix(cover, "//") {
			cover = "https:" + cover
		}
		m.CoverURL = cover
	}
	for _, name := range allMatches(jlActressRe, page) {
		first, last := splitRomaji(name)
		m.Actresses = append(m.Actresses, model.Actress{FirstName: first, LastName: last})
	}
	return m, nil
}
