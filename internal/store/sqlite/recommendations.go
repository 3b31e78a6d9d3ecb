package sqlite

import (
	"context"
	"encoding/json/v2"
	"fmt"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/domain"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/id"
)

// ReplaceCategories atomically replaces all stored recommendation categories
// for a subject with a new set. Delete and inserts run in one transaction;
// a failure partway leaves the previous set intact. Category order follows
// the slice order.
func (s *Store) ReplaceCategories(ctx context.Context, subject string, categories []domain.RecommendationCategory) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM recommendation_categories WHERE subject = ?`, subject); err != nil {
		return fmt.Errorf("delete categories: %w", err)
	}

	for i := range categories {
		cat := &categories[i]
		if cat.ID == "" {
			catID, err := id.Generate("rec")
			if err != nil {
				return fmt.Errorf("generate category ID: %w", err)
			}
			cat.ID = catID
			cat.InitTimestamps()
		}
		cat.Subject = subject

		items, err := json.Marshal(cat.Items)
		if err != nil {
			return fmt.Errorf("encode items: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO recommendation_categories (
				id, created_at, updated_at, subject, title, type, items,
				generated_at, position
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			cat.ID,
			formatTime(cat.CreatedAt),
			formatTime(cat.UpdatedAt),
			cat.Subject,
			cat.Title,
			cat.Type,
			string(items),
			formatTime(cat.GeneratedAt),
			i,
		)
		if err != nil {
			return fmt.Errorf("insert category: %w", err)
		}
	}

	return tx.Commit()
}

// GetCategories returns the stored recommendation categories for a subject,
// newest generated_at first; ties keep the engine's category order.
// An empty slice means no set is stored.
func (s *Store) GetCategories(ctx context.Context, subject string) ([]domain.RecommendationCategory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, updated_at, subject, title, type, items, generated_at
		FROM recommendation_categories
		WHERE subject = ?
		ORDER BY generated_at DESC, position ASC`, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.RecommendationCategory, 0, 8)
	for rows.Next() {
		var (
			cat         domain.RecommendationCategory
			createdAt   string
			updatedAt   string
			items       string
			generatedAt string
		)
		err := rows.Scan(
			&cat.ID,
			&createdAt,
			&updatedAt,
			&cat.Subject,
			&cat.Title,
			&cat.Type,
			&items,
			&generatedAt,
		)
		if err != nil {
			return nil, err
		}

		cat.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		cat.UpdatedAt, err = parseTime(updatedAt)
		if err != nil {
			return nil, err
		}
		cat.GeneratedAt, err = parseTime(generatedAt)
		if err != nil {
			return nil, err
		}

		cat.Items = make([]domain.RecommendedItem, 0, 8)
		if err := json.Unmarshal([]byte(items), &cat.Items); err != nil {
			return nil, fmt.Errorf("decode items: %w", err)
		}

		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

// CountCategories returns the number of stored categories for a subject.
func (s *Store) CountCategories(ctx context.Context, subject string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recommendation_categories WHERE subject = ?`, subject).Scan(&count)
	return count, err
}
