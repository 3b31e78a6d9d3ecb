package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/domain"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, created_at, updated_at, title, isbn, external_id,
	cover_url, description, publisher, published_date, page_count`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
// Author and genre links are loaded separately.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt     string
		updatedAt     string
		isbn          sql.NullString
		externalID    sql.NullString
		coverURL      sql.NullString
		description   sql.NullString
		publisher     sql.NullString
		publishedDate sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&b.Title,
		&isbn,
		&externalID,
		&coverURL,
		&description,
		&publisher,
		&publishedDate,
		&b.PageCount,
	)
	if err != nil {
		return nil, err
	}

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	b.ISBN = stringOrEmpty(isbn)
	b.ExternalID = stringOrEmpty(externalID)
	b.CoverURL = stringOrEmpty(coverURL)
	b.Description = stringOrEmpty(description)
	b.Publisher = stringOrEmpty(publisher)
	b.PublishedDate = stringOrEmpty(publishedDate)

	return &b, nil
}

// CreateBook inserts a new book with its author and genre links in a single
// transaction. Link order follows the slice order in b.AuthorIDs / b.GenreIDs.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (
			id, created_at, updated_at, title, isbn, external_id,
			cover_url, description, publisher, published_date, page_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
		b.Title,
		nullString(b.ISBN),
		nullString(b.ExternalID),
		nullString(b.CoverURL),
		nullString(b.Description),
		nullString(b.Publisher),
		nullString(b.PublishedDate),
		b.PageCount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("insert book: %w", err)
	}

	for i, authorID := range b.AuthorIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO book_authors (book_id, author_id, position)
			VALUES (?, ?, ?)`,
			b.ID, authorID, i)
		if err != nil {
			return fmt.Errorf("insert book_authors: %w", err)
		}
	}

	for i, genreID := range b.GenreIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO book_genres (book_id, genre_id, position)
			VALUES (?, ?, ?)`,
			b.ID, genreID, i)
		if err != nil {
			return fmt.Errorf("insert book_genres: %w", err)
		}
	}

	return tx.Commit()
}

// GetBook retrieves a book by ID with its author and genre links.
// Returns ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	return s.finishBook(ctx, row)
}

// GetBookByISBN retrieves the oldest book matching an ISBN.
// Multiple rows may share an ISBN; the first created wins so repeated
// resolutions stay stable. Returns ErrNotFound when no row matches.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE isbn = ? ORDER BY created_at ASC LIMIT 1`, isbn)
	return s.finishBook(ctx, row)
}

// GetBookByExternalID retrieves the book matching a provider volume id.
// Returns ErrNotFound when no row matches.
func (s *Store) GetBookByExternalID(ctx context.Context, externalID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE external_id = ? ORDER BY created_at ASC LIMIT 1`, externalID)
	return s.finishBook(ctx, row)
}

// ListBooks returns all books ordered by creation time, links included.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, b := range books {
		if err := s.loadBookLinks(ctx, b); err != nil {
			return nil, err
		}
	}
	return books, nil
}

// CountBooks returns the total number of books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&count)
	return count, err
}

// finishBook completes a single-row book query: scan, map ErrNoRows, load links.
func (s *Store) finishBook(ctx context.Context, row *sql.Row) (*domain.Book, error) {
	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadBookLinks(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// loadBookLinks populates AuthorIDs and GenreIDs in link order.
func (s *Store) loadBookLinks(ctx context.Context, b *domain.Book) error {
	authorIDs, err := s.linkedIDs(ctx,
		`SELECT author_id FROM book_authors WHERE book_id = ? ORDER BY position ASC`, b.ID)
	if err != nil {
		return fmt.Errorf("load book authors: %w", err)
	}
	genreIDs, err := s.linkedIDs(ctx,
		`SELECT genre_id FROM book_genres WHERE book_id = ? ORDER BY position ASC`, b.ID)
	if err != nil {
		return fmt.Errorf("load book genres: %w", err)
	}

	b.AuthorIDs = authorIDs
	b.GenreIDs = genreIDs
	return nil
}

// linkedIDs runs a single-column query and collects the values.
func (s *Store) linkedIDs(ctx context.Context, query, bookID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0, 4)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
