// Package domain contains the core business entities and domain logic for the Bookshelf catalog.
package domain

// Column width limits enforced before persisting. Values longer than these
// are truncated, not rejected.
const (
	MaxAuthorNameLength = 100
	MaxGenreNameLength  = 50
	MaxISBNLength       = 20
)

// Book is the canonical local record a BookReference resolves to.
// Title and ISBN are required at creation. The store does not enforce ISBN
// uniqueness, but resolution always prefers an existing row with a matching
// ISBN over creating a new one.
type Book struct {
	Syncable
	Title         string   `json:"title"`
	ISBN          string   `json:"isbn"`
	ExternalID    string   `json:"external_id,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	Description   string   `json:"description,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	PageCount     int      `json:"page_count"`
	AuthorIDs     []string `json:"author_ids"`
	GenreIDs      []string `json:"genre_ids"`
}

// Truncate shortens s to at most max characters. Provider payloads regularly
// exceed our column widths.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
