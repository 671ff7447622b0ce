package model

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var idPattern = regexp.MustCompile(`^([A-Z]+)-?(\d+)`)

// NormalizeID canonicalizes a catalog code: full-width characters are
// folded to ASCII, the code is uppercased, and the prefix/number parts are
// joined with a single dash with the number zero-padded to three digits
// (e.g. "ipx486", "ＩＰＸ-486" -> "IPX-486"). Codes that don't match the
// prefix-number shape are returned uppercased as-is.
func NormalizeID(id string) string {
	id = strings.ToUpper(strings.TrimSpace(width.Fold.String(id)))

	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return id
	}
	return fmt.Sprintf("%s-%s", m[1], padNumber(m[2], 3))
}

// ContentIDVariants generates the alternate encodings different sources use
// for the same catalog code, most common first. Sources try each variant in
// this order until one answers; encodings are never mixed within one lookup.
//
//	IPX-486   -> ipx00486, 1ipx486, ipx486, 1ipx00486, h_ipx00486
//	START-422 -> start00422, 1start422, ...
func ContentIDVariants(id string) []string {
	id = strings.ToUpper(strings.TrimSpace(width.Fold.String(id)))

	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return []string{strings.ToLower(id)}
	}

	prefix := strings.ToLower(m[1])
	number := m[2]
	padded := padNumber(number, 5)

	return []string{
		prefix + padded,       // ipx00486, the most common form
		"1" + prefix + number, // 1start422, digit-prefixed releases
		prefix + number,       // unpadded
		"1" + prefix + padded,
		"h_" + prefix + padded, // amateur label prefix
	}
}

var contentIDPattern = regexp.MustCompile(`^(?i)(\d*)([a-z]+)0*(\d+)(.*)$`)

// ContentIDToID converts a source-side content ID back to the canonical
// catalog code form ("ipx00486" -> "IPX-486"). Unrecognized shapes are
// returned uppercased.
func ContentIDToID(contentID string) string {
	m := contentIDPattern.FindStringSubmatch(contentID)
	if m == nil {
		return strings.ToUpper(contentID)
	}
	prefix, number, suffix := m[2], m[3], m[4]
	return fmt.Sprintf("%s-%s%s",
		strings.ToUpper(prefix), padNumber(number, 3), strings.ToUpper(suffix))
}

func padNumber(n string, minWidth int) string {
	if len(n) >= minWidth {
		return n
	}
	return strings.Repeat("0", minWidth-len(n)) + n
}
