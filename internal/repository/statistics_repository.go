package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pdfarchive/internal/domain"
)

// StatisticsRepository выполняет только чтение: производные выборки поверх
// таксономии, папок и документов.
type StatisticsRepository struct {
	db *sqlx.DB
}

func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

func (r *StatisticsRepository) CountDepartments(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM departments`)
}

func (r *StatisticsRepository) CountSubjects(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subjects`)
}

func (r *StatisticsRepository) CountFolders(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM folders`)
}

func (r *StatisticsRepository) CountDocuments(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM documents`)
}

// CountEmptyFolders использует тот же предикат "нет ни одного документа",
// что и защита удаления папки.
func (r *StatisticsRepository) CountEmptyFolders(ctx context.Context) (int64, error) {
	return r.count(ctx, `
        SELECT COUNT(*) FROM folders f
        WHERE NOT EXISTS (SELECT 1 FROM documents d WHERE d.folder_id = f.id)`)
}

func (r *StatisticsRepository) TotalFileSize(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(file_size), 0) FROM documents`)
	if err != nil {
		return 0, fmt.Errorf("failed to sum file sizes: %w", err)
	}
	return total, nil
}

func (r *StatisticsRepository) CountDocumentsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM documents WHERE created_at >= $1`, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count recent documents: %w", err)
	}
	return count, nil
}

func (r *StatisticsRepository) EmptyFolders(ctx context.Context) ([]domain.Folder, error) {
	var folders []domain.Folder
	query := `
        SELECT f.* FROM folders f
        WHERE NOT EXISTS (SELECT 1 FROM documents d WHERE d.folder_id = f.id)
        ORDER BY f.created_at DESC`

	err := r.db.SelectContext(ctx, &folders, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get empty folders: %w", err)
	}

	return folders, nil
}

// SubjectDocumentCounts возвращает число документов по каждой теме
// через связку документ → папка → тема.
func (r *StatisticsRepository) SubjectDocumentCounts(ctx context.Context) ([]domain.SubjectDocumentStats, error) {
	var stats []domain.SubjectDocumentStats
	query := `
        SELECT s.id, s.code, s.title, s.parent_id,
               (SELECT COUNT(*)
                FROM documents d
                JOIN folders f ON d.folder_id = f.id
                WHERE f.subject_id = s.id) AS document_count
        FROM subjects s
        ORDER BY s.code ASC`

	err := r.db.SelectContext(ctx, &stats, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get subject document counts: %w", err)
	}

	return stats, nil
}

// DailyUploadCounts группирует загрузки по календарным дням в границах
// [start, end].
func (r *StatisticsRepository) DailyUploadCounts(ctx context.Context, start, end time.Time) ([]domain.DailyUploadCount, error) {
	var counts []domain.DailyUploadCount
	query := `
        SELECT TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS date, COUNT(*) AS count
        FROM documents
        WHERE created_at BETWEEN $1 AND $2
        GROUP BY DATE(created_at)
        ORDER BY DATE(created_at) ASC`

	err := r.db.SelectContext(ctx, &counts, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily upload counts: %w", err)
	}

	return counts, nil
}

func (r *StatisticsRepository) CountUploadsBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM documents WHERE created_at BETWEEN $1 AND $2`, start, end)
	if err != nil {
		return 0, fmt.Errorf("failed to count uploads in range: %w", err)
	}
	return count, nil
}

func (r *StatisticsRepository) count(ctx context.Context, query string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}
	return count, nil
}
