package validators

import "strings"

// maxSearchTermLen bounds free-text search input before it reaches a LIKE clause.
const maxSearchTermLen = 120

// SanitizeSearchTerm trims a free-text query parameter and caps its length.
func SanitizeSearchTerm(input string) string {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) > maxSearchTermLen {
		return trimmed[:maxSearchTermLen]
	}
	return trimmed
}
