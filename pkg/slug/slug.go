// Package slug derives URL-friendly identifiers from menu names.
package slug

import (
	"regexp"
	"strings"
)

var separators = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Make creates a slug from the given name. Unicode letters are kept, so
// Korean menu names stay readable in paths.
//
// Examples:
//   - "Iced Americano" → "iced-americano"
//   - "김치찌개 (특)" → "김치찌개-특"
func Make(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = separators.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
