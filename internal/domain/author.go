package domain

import "strings"

// Author represents a book author.
// Resolution treats (FirstName, LastName) as a natural dedup key: reuse an
// exact match if one exists, create otherwise.
type Author struct {
	Syncable
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SplitAuthorName splits a display name into (firstName, lastName).
// The last whitespace token becomes the last name, the remaining leading
// tokens joined with spaces become the first name.
//
// A single-token name ("Prince") yields firstName == lastName == "Prince".
// Long-standing behavior that downstream data depends on; do not "fix"
// without a migration.
func SplitAuthorName(name string) (firstName, lastName string) {
	tokens := strings.Fields(name)
	if len(tokens) == 0 {
		return "", ""
	}

	lastName = tokens[len(tokens)-1]
	firstName = strings.Join(tokens[:len(tokens)-1], " ")
	if firstName == "" {
		firstName = strings.TrimSpace(name)
	}

	return Truncate(firstName, MaxAuthorNameLength), Truncate(lastName, MaxAuthorNameLength)
}
