package domain

import "time"

// AnonymousSubject is the shared subject key for unauthenticated callers.
// Every anonymous caller reads and overwrites this one bucket; last writer
// wins. Good enough for the demo flow, revisit when anonymous sessions land.
const AnonymousSubject = "anonymous"

// SubjectKey normalizes an optional user id into a storage key.
func SubjectKey(userID string) string {
	if userID == "" {
		return AnonymousSubject
	}
	return userID
}

// HistoryItem is one book from a subject's reading history, sent to the
// recommendation engine as input.
type HistoryItem struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Genre  string `json:"genre,omitempty"`
	Rating int    `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5"`
}

// RecommendedItem is one book inside a recommendation category.
type RecommendedItem struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	Language    string  `json:"language"`
	MatchScore  float64 `json:"match_score"`
}

// RecommendationCategory is one Netflix-style shelf of recommendations
// belonging to a subject. Items are stored JSON-encoded in a single column.
type RecommendationCategory struct {
	Syncable
	Subject     string            `json:"subject"`
	Title       string            `json:"title"`
	Type        string            `json:"type"`
	Items       []RecommendedItem `json:"items"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// RecommendationSet is the ordered list of categories currently stored for
// one subject, newest GeneratedAt first. Generating a new set replaces all
// prior categories for the subject.
type RecommendationSet struct {
	Subject    string                   `json:"subject"`
	Categories []RecommendationCategory `json:"categories"`
}
