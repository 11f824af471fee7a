package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pdfarchive/internal/domain"
)

type TagRepository struct {
	db *sqlx.DB
}

func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	query := `
        INSERT INTO tags (name, color)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, tag.Name, tag.Color).
		Scan(&tag.ID, &tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("tag %s: %w", tag.Name, domain.ErrDuplicateCode)
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

func (r *TagRepository) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	var tag domain.Tag
	err := r.db.GetContext(ctx, &tag, `SELECT * FROM tags WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("tag %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}

	return &tag, nil
}

func (r *TagRepository) GetAll(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	err := r.db.SelectContext(ctx, &tags, `SELECT * FROM tags ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}

	return tags, nil
}

// GetOrCreateByName находит этикетку по имени или создает новую с цветом
// по умолчанию.
func (r *TagRepository) GetOrCreateByName(ctx context.Context, name string) (*domain.Tag, error) {
	var tag domain.Tag
	query := `
        INSERT INTO tags (name, color)
        VALUES ($1, $2)
        ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
        RETURNING *`

	err := r.db.GetContext(ctx, &tag, query, name, domain.DefaultTagColor)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create tag: %w", err)
	}

	return &tag, nil
}

func (r *TagRepository) GetByDocument(ctx context.Context, documentID int64) ([]domain.Tag, error) {
	var tags []domain.Tag
	query := `
        SELECT t.* FROM tags t
        JOIN document_tags dt ON dt.tag_id = t.id
        WHERE dt.document_id = $1
        ORDER BY t.name ASC`

	err := r.db.SelectContext(ctx, &tags, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get document tags: %w", err)
	}

	return tags, nil
}

func (r *TagRepository) Attach(ctx context.Context, documentID, tagID int64) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO document_tags (document_id, tag_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING`,
		documentID, tagID)
	if err != nil {
		return fmt.Errorf("failed to attach tag: %w", err)
	}

	return nil
}

func (r *TagRepository) Detach(ctx context.Context, documentID, tagID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM document_tags WHERE document_id = $1 AND tag_id = $2`,
		documentID, tagID)
	if err != nil {
		return fmt.Errorf("failed to detach tag: %w", err)
	}

	return nil
}
