// Package names canonicalizes employer names into stable dedup keys.
package names

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Corporate suffixes stripped from the end of a normalized name, checked
// in this order. " corporation" must come before " corp".
var companySuffixes = []string{
	" inc", " llc", " ltd", " co", " corporation", " corp",
	" company", " incorporated", " limited",
}

var (
	nonNameChars = regexp.MustCompile(`[^\w\s&-]`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

// Key returns the normalized dedup key for a raw employer name.
// It is deterministic and idempotent: Key(Key(s)) == Key(s), and
// punctuation/casing/suffix variants of the same employer collapse to
// the same key ("Acme Inc." and "ACME, INC" both become "acme").
func Key(raw string) string {
	s := strings.ToLower(strings.TrimSpace(norm.NFKC.String(raw)))
	s = nonNameChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
	for _, suf := range companySuffixes {
		if strings.HasSuffix(s, suf) {
			s = strings.TrimSpace(strings.TrimSuffix(s, suf))
		}
	}
	return s
}
