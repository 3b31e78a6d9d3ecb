package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/domain"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/id"
)

const genreColumns = `id, created_at, updated_at, name`

func scanGenre(scanner interface{ Scan(dest ...any) error }) (*domain.Genre, error) {
	var g domain.Genre
	var createdAt, updatedAt string

	err := scanner.Scan(
		&g.ID,
		&createdAt,
		&updatedAt,
		&g.Name,
	)
	if err != nil {
		return nil, err
	}

	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	g.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetGenre retrieves a genre by ID.
// Returns ErrNotFound if the genre does not exist.
func (s *Store) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE id = ?`, id)

	g, err := scanGenre(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetGenreByName retrieves a genre by exact name match.
// Returns ErrNotFound if no such genre exists.
func (s *Store) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE name = ?`, name)

	g, err := scanGenre(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GetOrCreateGenre retrieves an existing genre by exact name match or
// creates a new one. The UNIQUE(name) constraint closes the lookup/insert
// race the same way GetOrCreateAuthor does.
func (s *Store) GetOrCreateGenre(ctx context.Context, name string) (*domain.Genre, error) {
	existing, err := s.GetGenreByName(ctx, name)
	if err == nil {
		return existing, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	genreID, err := id.Generate("genre")
	if err != nil {
		return nil, fmt.Errorf("generate genre ID: %w", err)
	}

	g := &domain.Genre{
		Syncable: domain.Syncable{ID: genreID},
		Name:     name,
	}
	g.InitTimestamps()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO genres (id, created_at, updated_at, name)
		VALUES (?, ?, ?, ?)`,
		g.ID,
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
		g.Name,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return s.GetGenreByName(ctx, name)
		}
		return nil, fmt.Errorf("insert genre: %w", err)
	}

	return g, nil
}

// ListGenres returns all genres sorted by name.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+genreColumns+` FROM genres ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []*domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return genres, nil
}
