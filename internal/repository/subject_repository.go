package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pdfarchive/internal/domain"
)

type SubjectRepository struct {
	db *sqlx.DB
}

func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

func (r *SubjectRepository) Create(ctx context.Context, subject *domain.Subject) error {
	query := `
        INSERT INTO subjects (code, title, description, parent_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		subject.Code,
		subject.Title,
		subject.Description,
		subject.ParentID,
	).Scan(&subject.ID, &subject.CreatedAt, &subject.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("subject code %s: %w", subject.Code, domain.ErrDuplicateCode)
		}
		return fmt.Errorf("failed to create subject: %w", err)
	}

	return nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, id int64) (*domain.Subject, error) {
	var subject domain.Subject
	query := `SELECT * FROM subjects WHERE id = $1`

	err := r.db.GetContext(ctx, &subject, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("subject %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	return &subject, nil
}

// GetAll возвращает темы. parentID фильтрует по родителю: rootOnly
// отбирает только главные темы (parent_id IS NULL).
func (r *SubjectRepository) GetAll(ctx context.Context, parentID *int64, rootOnly bool) ([]domain.Subject, error) {
	var subjects []domain.Subject
	var err error

	switch {
	case rootOnly:
		err = r.db.SelectContext(ctx, &subjects,
			`SELECT * FROM subjects WHERE parent_id IS NULL ORDER BY code ASC`)
	case parentID != nil:
		err = r.db.SelectContext(ctx, &subjects,
			`SELECT * FROM subjects WHERE parent_id = $1 ORDER BY code ASC`, *parentID)
	default:
		err = r.db.SelectContext(ctx, &subjects,
			`SELECT * FROM subjects ORDER BY code ASC`)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subjects: %w", err)
	}

	return subjects, nil
}

func (r *SubjectRepository) GetChildren(ctx context.Context, parentID int64) ([]domain.Subject, error) {
	var subjects []domain.Subject
	query := `SELECT * FROM subjects WHERE parent_id = $1 ORDER BY code ASC`

	err := r.db.SelectContext(ctx, &subjects, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child subjects: %w", err)
	}

	return subjects, nil
}

func (r *SubjectRepository) Update(ctx context.Context, subject *domain.Subject) error {
	query := `
        UPDATE subjects
        SET code = $1, title = $2, description = $3, parent_id = $4,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $5
        RETURNING updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		subject.Code,
		subject.Title,
		subject.Description,
		subject.ParentID,
		subject.ID,
	).Scan(&subject.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("subject %d: %w", subject.ID, domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("subject code %s: %w", subject.Code, domain.ErrDuplicateCode)
		}
		return fmt.Errorf("failed to update subject: %w", err)
	}

	return nil
}

func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("subject %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

func (r *SubjectRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM subjects WHERE code = $1 AND id != $2
        )`

	err := r.db.GetContext(ctx, &exists, query, code, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check subject code: %w", err)
	}

	return exists, nil
}

func (r *SubjectRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM subjects WHERE parent_id = $1
        )`

	err := r.db.GetContext(ctx, &exists, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to check child subjects: %w", err)
	}

	return exists, nil
}
