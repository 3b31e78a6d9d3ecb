package recengine

// HistoryItem is one reading-history entry sent to the engine.
type HistoryItem struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre,omitempty"`
	Rating int    `json:"rating,omitempty"`
}

// RecommendRequest is the engine's recommendation request payload.
type RecommendRequest struct {
	UserID            string        `json:"user_id,omitempty"`
	PreferredLanguage string        `json:"preferred_language"`
	History           []HistoryItem `json:"history"`
}

// RecommendedItem is a single recommended book from the engine.
type RecommendedItem struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Description string  `json:"description,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	Language    string  `json:"language"`
	MatchScore  float64 `json:"match_score"`
}

// Category groups recommended items under a titled heading.
type Category struct {
	CategoryTitle string            `json:"category_title"`
	Type          string            `json:"type"`
	Items         []RecommendedItem `json:"items"`
}

// RecommendResponse is the engine's recommendation response payload.
type RecommendResponse struct {
	Recommendations []Category `json:"recommendations"`
}

// HealthStatus reports the engine's readiness. BooksIndexed is set when the
// engine is healthy; Error and Hint are set when it is degraded.
type HealthStatus struct {
	Status       string `json:"status"`
	BooksIndexed int    `json:"books_indexed,omitempty"`
	Error        string `json:"error,omitempty"`
	Hint         string `json:"hint,omitempty"`
}

// Healthy reports whether the engine is ready to serve recommendations.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy"
}
