package doctree

import (
	"regexp"
	"strings"
)

// Separator splits the numeric components of a section index.
const Separator = "."

// indexRe accepts 1 to 4 single-digit components, each followed by the separator.
var indexRe = regexp.MustCompile(`^\d(\.\d)?(\.\d)?(\.\d)?\.$`)

// ParseIndex reports whether token is a section index such as "1.2.3.".
// The token must already carry the trailing separator.
func ParseIndex(token string) (string, bool) {
	if !indexRe.MatchString(token) {
		return "", false
	}
	return token, true
}

// NormalizeIndex appends the trailing separator if it is missing.
func NormalizeIndex(idx string) string {
	idx = strings.TrimSpace(idx)
	if idx == "" || strings.HasSuffix(idx, Separator) {
		return idx
	}
	return idx + Separator
}

// Components returns the non-empty parts of idx, most significant first.
func Components(idx string) []string {
	var parts []string
	for _, p := range strings.Split(idx, Separator) {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// ParentIndex drops the last component of idx. It returns false for a
// top-level index like "3.".
func ParentIndex(idx string) (string, bool) {
	parts := Components(idx)
	if len(parts) <= 1 {
		return "", false
	}
	return strings.Join(parts[:len(parts)-1], Separator) + Separator, true
}
