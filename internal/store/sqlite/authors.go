package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/domain"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/id"
)

const authorColumns = `id, created_at, updated_at, first_name, last_name`

func scanAuthor(scanner interface{ Scan(dest ...any) error }) (*domain.Author, error) {
	var a domain.Author
	var createdAt, updatedAt string

	err := scanner.Scan(
		&a.ID,
		&createdAt,
		&updatedAt,
		&a.FirstName,
		&a.LastName,
	)
	if err != nil {
		return nil, err
	}

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAuthor retrieves an author by ID.
// Returns ErrNotFound if the author does not exist.
func (s *Store) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE id = ?`, id)

	a, err := scanAuthor(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAuthorByName retrieves an author by exact (firstName, lastName) match.
// Returns ErrNotFound if no such author exists.
func (s *Store) GetAuthorByName(ctx context.Context, firstName, lastName string) (*domain.Author, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+authorColumns+` FROM authors WHERE first_name = ? AND last_name = ?`,
		firstName, lastName)

	a, err := scanAuthor(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetOrCreateAuthor retrieves an existing author by exact name match or
// creates a new one. The UNIQUE(first_name, last_name) constraint closes
// the lookup/insert race: a concurrent insert of the same name surfaces as
// a unique violation, and the existing row is re-read.
func (s *Store) GetOrCreateAuthor(ctx context.Context, firstName, lastName string) (*domain.Author, error) {
	existing, err := s.GetAuthorByName(ctx, firstName, lastName)
	if err == nil {
		return existing, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	authorID, err := id.Generate("author")
	if err != nil {
		return nil, fmt.Errorf("generate author ID: %w", err)
	}

	a := &domain.Author{
		Syncable:  domain.Syncable{ID: authorID},
		FirstName: firstName,
		LastName:  lastName,
	}
	a.InitTimestamps()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO authors (id, created_at, updated_at, first_name, last_name)
		VALUES (?, ?, ?, ?, ?)`,
		a.ID,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
		a.FirstName,
		a.LastName,
	)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost the race; the winner's row is the canonical one.
			return s.GetAuthorByName(ctx, firstName, lastName)
		}
		return nil, fmt.Errorf("insert author: %w", err)
	}

	return a, nil
}

// ListAuthors returns all authors ordered by last name, then first name.
func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+authorColumns+` FROM authors ORDER BY last_name ASC, first_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return authors, nil
}
