package googlebooks

// identifierTypeISBN13 is the identifier type the provider uses for ISBN-13.
const identifierTypeISBN13 = "ISBN_13"

// parseVolume normalizes a raw provider volume into an ExternalBook.
//
// Fallback rules:
//   - ISBN: prefer the identifier typed ISBN_13; if none, take the first
//     identifier listed; if the provider lists none, the field stays empty.
//   - Authors and Categories: absent arrays become empty slices, never nil.
func parseVolume(raw rawVolume) ExternalBook {
	info := raw.VolumeInfo

	book := ExternalBook{
		ExternalID:    raw.ID,
		Title:         info.Title,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		PageCount:     info.PageCount,
		ThumbnailURL:  info.ImageLinks.Thumbnail,
		Authors:       make([]string, 0, len(info.Authors)),
		Categories:    make([]string, 0, len(info.Categories)),
	}

	book.Authors = append(book.Authors, info.Authors...)
	book.Categories = append(book.Categories, info.Categories...)

	book.ISBN = selectISBN(info.IndustryIdentifiers)

	return book
}

// selectISBN picks the best identifier from the provider's list.
func selectISBN(identifiers []rawIdentifier) string {
	for _, id := range identifiers {
		if id.Type == identifierTypeISBN13 {
			return id.Identifier
		}
	}
	if len(identifiers) > 0 {
		return identifiers[0].Identifier
	}
	return ""
}
