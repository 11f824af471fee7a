package domain

import (
	"time"
)

// OverviewStatistics — сводные счетчики по всему архиву.
type OverviewStatistics struct {
	Departments int64          `json:"departments"`
	Subjects    int64          `json:"subjects"`
	Folders     FolderCounts   `json:"folders"`
	Documents   DocumentCounts `json:"documents"`
}

type FolderCounts struct {
	Total         int64 `json:"total"`
	Empty         int64 `json:"empty"`
	WithDocuments int64 `json:"with_documents"`
}

type DocumentCounts struct {
	Total          int64   `json:"total"`
	Last30Days     int64   `json:"last_30_days"`
	TotalSizeBytes int64   `json:"total_size_bytes"`
	TotalSizeMB    float64 `json:"total_size_mb"`
}

// SubjectDocumentStats — количество документов по теме, с необязательной
// сверткой подтем в итог главной темы.
type SubjectDocumentStats struct {
	ID            int64                  `json:"-" db:"id"`
	Code          string                 `json:"code" db:"code"`
	Title         string                 `json:"title" db:"title"`
	ParentID      *int64                 `json:"-" db:"parent_id"`
	DocumentCount int64                  `json:"document_count" db:"document_count"`
	TotalWithSubs *int64                 `json:"total_with_subs,omitempty" db:"-"`
	SubSubjects   []SubjectDocumentStats `json:"sub_subjects,omitempty" db:"-"`
}

// DocumentsBySubject — итоговый отчет по темам.
type DocumentsBySubject struct {
	TotalDocuments int64                  `json:"total_documents"`
	Subjects       []SubjectDocumentStats `json:"subjects"`
}

// DailyUploadCount — число загрузок за календарный день.
type DailyUploadCount struct {
	Date  string `json:"date" db:"date"`
	Count int64  `json:"count" db:"count"`
}

// UploadsByDateRange — загрузки в границах [StartDate, EndDate] включительно.
type UploadsByDateRange struct {
	StartDate      string             `json:"start_date"`
	EndDate        string             `json:"end_date"`
	TotalCount     int64              `json:"total_count"`
	DailyBreakdown []DailyUploadCount `json:"daily_breakdown"`
}

// EmptyFolders — папки без единого документа.
type EmptyFolders struct {
	Count   int      `json:"count"`
	Folders []Folder `json:"folders"`
}

// RecentWindow — окно "последних загрузок" для сводной статистики.
const RecentWindow = 30 * 24 * time.Hour
