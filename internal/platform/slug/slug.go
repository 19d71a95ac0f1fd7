package slug

import (
	"regexp"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases each part, collapses everything outside [a-z0-9] to a dash
// and joins the non-empty results. Parts longer than 24 runes are cut.
func Make(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.ToLower(strings.TrimSpace(p))
		s = nonAlphaNum.ReplaceAllString(s, "-")
		s = strings.Trim(s, "-")
		if len(s) > 24 {
			s = strings.TrimRight(s[:24], "-")
		}
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return "photo"
	}
	return strings.Join(out, "-")
}
