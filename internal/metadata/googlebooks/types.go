package googlebooks

// ExternalBook is the normalized record parsed from a provider volume.
// All fields are optional except ExternalID, which is always present when
// the record came from a by-id lookup.
type ExternalBook struct {
	ExternalID    string   `json:"external_id"`
	ISBN          string   `json:"isbn,omitempty"`
	Title         string   `json:"title,omitempty"`
	Authors       []string `json:"authors"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	Description   string   `json:"description,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Categories    []string `json:"categories"`
	ThumbnailURL  string   `json:"thumbnail_url,omitempty"`
}

// Raw API response types (internal)

type rawVolumeList struct {
	TotalItems int         `json:"totalItems"`
	Items      []rawVolume `json:"items"`
}

type rawVolume struct {
	ID         string        `json:"id"`
	VolumeInfo rawVolumeInfo `json:"volumeInfo"`
}

type rawVolumeInfo struct {
	Title               string          `json:"title"`
	Subtitle            string          `json:"subtitle"`
	Authors             []string        `json:"authors"`
	Publisher           string          `json:"publisher"`
	PublishedDate       string          `json:"publishedDate"`
	Description         string          `json:"description"`
	PageCount           int             `json:"pageCount"`
	Categories          []string        `json:"categories"`
	IndustryIdentifiers []rawIdentifier `json:"industryIdentifiers"`
	ImageLinks          rawImageLinks   `json:"imageLinks"`
}

type rawIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type rawImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}
