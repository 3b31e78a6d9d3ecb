package domain

import "fmt"

// BookReference identifies a book to resolve. Exactly one of the three
// variants must be populated.
type BookReference struct {
	LocalID    string `json:"local_id,omitempty"`
	ISBN       string `json:"isbn,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// Validate checks that exactly one variant is populated.
func (r BookReference) Validate() error {
	populated := 0
	if r.LocalID != "" {
		populated++
	}
	if r.ISBN != "" {
		populated++
	}
	if r.ExternalID != "" {
		populated++
	}

	switch populated {
	case 0:
		return fmt.Errorf("book reference requires one of local_id, isbn, or external_id")
	case 1:
		return nil
	default:
		return fmt.Errorf("book reference must populate exactly one variant, got %d", populated)
	}
}

// String describes the populated variant for logging.
func (r BookReference) String() string {
	switch {
	case r.LocalID != "":
		return "local:" + r.LocalID
	case r.ISBN != "":
		return "isbn:" + r.ISBN
	case r.ExternalID != "":
		return "external:" + r.ExternalID
	default:
		return "empty"
	}
}
