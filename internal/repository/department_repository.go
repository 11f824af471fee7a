package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pdfarchive/internal/domain"
)

type DepartmentRepository struct {
	db *sqlx.DB
}

func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) Create(ctx context.Context, department *domain.Department) error {
	query := `
        INSERT INTO departments (code, name, description, parent_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		department.Code,
		department.Name,
		department.Description,
		department.ParentID,
	).Scan(&department.ID, &department.CreatedAt, &department.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("department code %s: %w", department.Code, domain.ErrDuplicateCode)
		}
		return fmt.Errorf("failed to create department: %w", err)
	}

	return nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*domain.Department, error) {
	var department domain.Department
	query := `SELECT * FROM departments WHERE id = $1`

	err := r.db.GetContext(ctx, &department, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("department %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get department: %w", err)
	}

	return &department, nil
}

func (r *DepartmentRepository) GetAll(ctx context.Context) ([]domain.Department, error) {
	var departments []domain.Department
	query := `SELECT * FROM departments ORDER BY code ASC`

	err := r.db.SelectContext(ctx, &departments, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get departments: %w", err)
	}

	return departments, nil
}

func (r *DepartmentRepository) GetChildren(ctx context.Context, parentID int64) ([]domain.Department, error) {
	var departments []domain.Department
	query := `SELECT * FROM departments WHERE parent_id = $1 ORDER BY code ASC`

	err := r.db.SelectContext(ctx, &departments, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child departments: %w", err)
	}

	return departments, nil
}

func (r *DepartmentRepository) Update(ctx context.Context, department *domain.Department) error {
	query := `
        UPDATE departments
        SET code = $1, name = $2, description = $3, parent_id = $4,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $5
        RETURNING updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		department.Code,
		department.Name,
		department.Description,
		department.ParentID,
		department.ID,
	).Scan(&department.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("department %d: %w", department.ID, domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("department code %s: %w", department.Code, domain.ErrDuplicateCode)
		}
		return fmt.Errorf("failed to update department: %w", err)
	}

	return nil
}

func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete department: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("department %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// ExistsByCode проверяет занятость кода, исключая собственную строку при обновлении
func (r *DepartmentRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM departments WHERE code = $1 AND id != $2
        )`

	err := r.db.GetContext(ctx, &exists, query, code, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check department code: %w", err)
	}

	return exists, nil
}

func (r *DepartmentRepository) HasChildren(ctx context.Context, id int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM departments WHERE parent_id = $1
        )`

	err := r.db.GetContext(ctx, &exists, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to check child departments: %w", err)
	}

	return exists, nil
}
