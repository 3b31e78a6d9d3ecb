package domain

import "strings"

// Genre represents a category for classifying books.
// Genres are flat (no hierarchy) and deduplicated by exact name match.
type Genre struct {
	Syncable
	Name string `json:"name"`
}

// NormalizeGenreName prepares a provider category string for the
// dedup-by-name lookup: trimmed and truncated to the column width.
func NormalizeGenreName(name string) string {
	return Truncate(strings.TrimSpace(name), MaxGenreNameLength)
}
