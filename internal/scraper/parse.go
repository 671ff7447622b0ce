package scraper

import (
	"html"
	"regexp"
	"strings"
)

// splitRomaji splits a romanized "First Last" name. Single-token names
// land in the first-name slot.
func splitRomaji(name string) (first, last string) {
	parts := strings.Fields(strings.TrimSpace(name))
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// firstMatch returns the first capture group of pattern in page, HTML
// entities decoded, or "".
func firstMatch(pattern *regexp.Regexp, page string) string {
	m := pattern.FindStringSubmatch(page)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(m[1]))
}

// allMatches returns every first-capture-group match, decoded and
// deduplicated keeping first occurrence.
func allMatches(pattern *regexp.Regexp, page string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range pattern.FindAllStringSubmatch(page, -1) {
		v := strings.TrimSpace(html.UnescapeString(m[1]))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
