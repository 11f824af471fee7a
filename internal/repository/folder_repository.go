package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pdfarchive/internal/domain"
)

type FolderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	query := `
        INSERT INTO folders (department_id, subject_id, sequence_number, name, description, cabinet_number)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		folder.DepartmentID,
		folder.SubjectID,
		folder.SequenceNumber,
		folder.Name,
		folder.Description,
		folder.CabinetNumber,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		// Уникальный индекс (subject_id, sequence_number) сериализует
		// конкурентную выдачу номеров: проигравший получает конфликт
		if isUniqueViolation(err) {
			return fmt.Errorf("sequence %d under subject: %w", folder.SequenceNumber, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create folder: %w", err)
	}

	return nil
}

func (r *FolderRepository) GetByID(ctx context.Context, id int64) (*domain.Folder, error) {
	var folder domain.Folder
	query := `SELECT * FROM folders WHERE id = $1`

	err := r.db.GetContext(ctx, &folder, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// List возвращает папки с количеством документов, опционально отфильтрованные
// по теме или кодам таксономии. Сортировка — новые сверху, как в интерфейсе.
func (r *FolderRepository) List(ctx context.Context, filter domain.FolderFilter) ([]domain.Folder, error) {
	query := `
        SELECT f.*,
               (SELECT COUNT(*) FROM documents d WHERE d.folder_id = f.id) AS document_count
        FROM folders f`
	var args []interface{}

	switch {
	case filter.SubjectID != nil:
		query += ` WHERE f.subject_id = $1`
		args = append(args, *filter.SubjectID)
	case filter.DepartmentCode != "":
		query += ` WHERE f.department_id = (SELECT id FROM departments WHERE code = $1)`
		args = append(args, filter.DepartmentCode)
	case filter.SubjectCode != "":
		query += ` WHERE f.subject_id = (SELECT id FROM subjects WHERE code = $1)`
		args = append(args, filter.SubjectCode)
	}
	query += ` ORDER BY f.created_at DESC`

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer rows.Close()

	var folders []domain.Folder
	for rows.Next() {
		var row struct {
			domain.Folder
			DocumentCount int `db:"document_count"`
		}
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		row.Folder.DocumentCount = row.DocumentCount
		folders = append(folders, row.Folder)
	}

	return folders, rows.Err()
}

func (r *FolderRepository) Update(ctx context.Context, folder *domain.Folder) error {
	query := `
        UPDATE folders
        SET name = $1, description = $2, sequence_number = $3, cabinet_number = $4,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $5
        RETURNING updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		folder.Name,
		folder.Description,
		folder.SequenceNumber,
		folder.CabinetNumber,
		folder.ID,
	).Scan(&folder.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("folder %d: %w", folder.ID, domain.ErrNotFound)
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("sequence %d under subject: %w", folder.SequenceNumber, domain.ErrConflict)
		}
		return fmt.Errorf("failed to update folder: %w", err)
	}

	return nil
}

func (r *FolderRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}

	return nil
}

// CountByDepartmentAndSubject считает папки пары (birim, konu) для
// автоматической выдачи следующего порядкового номера.
func (r *FolderRepository) CountByDepartmentAndSubject(ctx context.Context, departmentID, subjectID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM folders WHERE department_id = $1 AND subject_id = $2`

	err := r.db.GetContext(ctx, &count, query, departmentID, subjectID)
	if err != nil {
		return 0, fmt.Errorf("failed to count folders: %w", err)
	}

	return count, nil
}

// SequenceExists проверяет занятость номера в рамках темы, исключая
// собственную строку при обновлении.
func (r *FolderRepository) SequenceExists(ctx context.Context, subjectID int64, sequenceNumber int, excludeID int64) (bool, error) {
	var exists bool
	query := `
        SELECT EXISTS(
            SELECT 1 FROM folders
            WHERE subject_id = $1 AND sequence_number = $2 AND id != $3
        )`

	err := r.db.GetContext(ctx, &exists, query, subjectID, sequenceNumber, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check sequence number: %w", err)
	}

	return exists, nil
}

// DocumentCount возвращает число документов в папке. Тот же предикат
// определяет "пустую папку" в статистике.
func (r *FolderRepository) DocumentCount(ctx context.Context, folderID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM documents WHERE folder_id = $1`

	err := r.db.GetContext(ctx, &count, query, folderID)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}
