package domain

import (
	"strings"
	"unicode"
)

// Slugify derives a URL-safe slug from an article title: runs of
// non-alphanumeric characters become single hyphens and everything is
// lowercased. Quote characters are dropped rather than treated as
// separators so contractions and possessives stay in one word
// ("Ben's Plan" -> "bens-plan").
func Slugify(title string) string {
	isQuote := func(r rune) bool { return r == '\'' || r == '"' }

	fields := strings.FieldsFunc(title, func(r rune) bool {
		return !(isQuote(r) || unicode.IsLetter(r) || unicode.IsDigit(r))
	})

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.Map(func(r rune) rune {
			if isQuote(r) {
				return -1
			}
			return unicode.ToLower(r)
		}, field)
		if field != "" {
			parts = append(parts, field)
		}
	}

	return strings.Join(parts, "-")
}
