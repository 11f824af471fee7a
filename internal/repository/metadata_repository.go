package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"pdfarchive/internal/domain"
)

type MetadataRepository struct {
	db *sqlx.DB
}

func NewMetadataRepository(db *sqlx.DB) *MetadataRepository {
	return &MetadataRepository{db: db}
}

// Upsert записывает пару ключ/значение. Существующий ключ перезаписывается,
// дубликат строки невозможен благодаря ограничению (document_id, key).
func (r *MetadataRepository) Upsert(ctx context.Context, documentID int64, key, value string) (*domain.DocumentMetadata, error) {
	query := `
        INSERT INTO document_metadata (document_id, key, value)
        VALUES ($1, $2, $3)
        ON CONFLICT (document_id, key)
        DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP
        RETURNING *`

	var metadata domain.DocumentMetadata
	err := r.db.GetContext(ctx, &metadata, query, documentID, key, value)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert metadata: %w", err)
	}

	return &metadata, nil
}

// ReplaceAll полностью заменяет метаданные документа: сначала удаляет все
// существующие строки, затем вставляет переданный набор. Пустой набор
// оставляет документ без метаданных.
func (r *MetadataRepository) ReplaceAll(ctx context.Context, documentID int64, entries []domain.MetadataEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM document_metadata WHERE document_id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}

	for _, entry := range entries {
		if entry.Key == "" {
			continue
		}
		_, err = tx.ExecContext(ctx, `
            INSERT INTO document_metadata (document_id, key, value)
            VALUES ($1, $2, $3)
            ON CONFLICT (document_id, key)
            DO UPDATE SET value = EXCLUDED.value, updated_at = CURRENT_TIMESTAMP`,
			documentID, entry.Key, entry.Value)
		if err != nil {
			return fmt.Errorf("failed to insert metadata %s: %w", entry.Key, err)
		}
	}

	return tx.Commit()
}

func (r *MetadataRepository) GetByDocument(ctx context.Context, documentID int64) ([]domain.DocumentMetadata, error) {
	var metadata []domain.DocumentMetadata
	query := `SELECT * FROM document_metadata WHERE document_id = $1 ORDER BY key ASC`

	err := r.db.SelectContext(ctx, &metadata, query, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	return metadata, nil
}

func (r *MetadataRepository) DeleteKey(ctx context.Context, documentID int64, key string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM document_metadata WHERE document_id = $1 AND key = $2`,
		documentID, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("metadata key %s: %w", key, domain.ErrNotFound)
	}

	return nil
}
