package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pdfarchive/internal/domain"
)

type DocumentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create вставляет запись о документе. Вызывается строго после успешной
// записи объекта в хранилище — порядок blob-then-row не нарушать.
func (r *DocumentRepository) Create(ctx context.Context, document *domain.Document) error {
	query := `
        INSERT INTO documents (folder_id, filename, original_filename, file_size,
                               mime_type, storage_path, storage_bucket, page_count)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		document.FolderID,
		document.Filename,
		document.OriginalFilename,
		document.FileSize,
		document.MIMEType,
		document.StoragePath,
		document.StorageBucket,
		document.PageCount,
	).Scan(&document.ID, &document.CreatedAt, &document.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}

	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*domain.Document, error) {
	var document domain.Document
	query := `SELECT * FROM documents WHERE id = $1`

	err := r.db.GetContext(ctx, &document, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	return &document, nil
}

func (r *DocumentRepository) GetByFolder(ctx context.Context, folderID int64) ([]domain.Document, error) {
	var documents []domain.Document
	query := `SELECT * FROM documents WHERE folder_id = $1 ORDER BY created_at DESC`

	err := r.db.SelectContext(ctx, &documents, query, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents by folder: %w", err)
	}

	return documents, nil
}

func (r *DocumentRepository) GetRecent(ctx context.Context, limit int) ([]domain.Document, error) {
	var documents []domain.Document
	query := `SELECT * FROM documents ORDER BY created_at DESC LIMIT $1`

	err := r.db.SelectContext(ctx, &documents, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent documents: %w", err)
	}

	return documents, nil
}

// GetWithoutMetadata возвращает документы, у которых нет ни одной записи
// метаданных, — рабочий список для операторов архива.
func (r *DocumentRepository) GetWithoutMetadata(ctx context.Context) ([]domain.Document, error) {
	var documents []domain.Document
	query := `
        SELECT d.* FROM documents d
        LEFT JOIN document_metadata m ON m.document_id = d.id
        WHERE m.id IS NULL
        ORDER BY d.created_at DESC`

	err := r.db.SelectContext(ctx, &documents, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get documents without metadata: %w", err)
	}

	return documents, nil
}

func (r *DocumentRepository) UpdateOriginalFilename(ctx context.Context, id int64, originalFilename string) (*domain.Document, error) {
	query := `
        UPDATE documents
        SET original_filename = $1, updated_at = CURRENT_TIMESTAMP
        WHERE id = $2
        RETURNING *`

	var document domain.Document
	err := r.db.GetContext(ctx, &document, query, originalFilename, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}

	return &document, nil
}

// Delete удаляет запись о документе. Вызывается строго после удаления
// объекта из хранилища.
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}

	return nil
}
