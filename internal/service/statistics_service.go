package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"pdfarchive/internal/domain"
)

type statisticsRepository interface {
	CountDepartments(ctx context.Context) (int64, error)
	CountSubjects(ctx context.Context) (int64, error)
	CountFolders(ctx context.Context) (int64, error)
	CountDocuments(ctx context.Context) (int64, error)
	CountEmptyFolders(ctx context.Context) (int64, error)
	TotalFileSize(ctx context.Context) (int64, error)
	CountDocumentsSince(ctx context.Context, since time.Time) (int64, error)
	EmptyFolders(ctx context.Context) ([]domain.Folder, error)
	SubjectDocumentCounts(ctx context.Context) ([]domain.SubjectDocumentStats, error)
	DailyUploadCounts(ctx context.Context, start, end time.Time) ([]domain.DailyUploadCount, error)
	CountUploadsBetween(ctx context.Context, start, end time.Time) (int64, error)
}

// StatisticsService собирает производные отчеты; само состояние архива
// не меняет.
type StatisticsService struct {
	statsRepo      statisticsRepository
	departmentRepo departmentRepository
	subjectRepo    subjectRepository
}

func NewStatisticsService(
	statsRepo statisticsRepository,
	departmentRepo departmentRepository,
	subjectRepo subjectRepository,
) *StatisticsService {
	return &StatisticsService{
		statsRepo:      statsRepo,
		departmentRepo: departmentRepo,
		subjectRepo:    subjectRepo,
	}
}

// Overview возвращает сводные счетчики: таксономия, папки (всего, пустые,
// с документами), документы (всего, за последние 30 дней, суммарный объем).
func (s *StatisticsService) Overview(ctx context.Context) (*domain.OverviewStatistics, error) {
	departments, err := s.statsRepo.CountDepartments(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := s.statsRepo.CountSubjects(ctx)
	if err != nil {
		return nil, err
	}
	folders, err := s.statsRepo.CountFolders(ctx)
	if err != nil {
		return nil, err
	}
	emptyFolders, err := s.statsRepo.CountEmptyFolders(ctx)
	if err != nil {
		return nil, err
	}
	documents, err := s.statsRepo.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}
	totalSize, err := s.statsRepo.TotalFileSize(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.statsRepo.CountDocumentsSince(ctx, time.Now().Add(-domain.RecentWindow))
	if err != nil {
		return nil, err
	}

	return &domain.OverviewStatistics{
		Departments: departments,
		Subjects:    subjects,
		Folders: domain.FolderCounts{
			Total:         folders,
			Empty:         emptyFolders,
			WithDocuments: folders - emptyFolders,
		},
		Documents: domain.DocumentCounts{
			Total:          documents,
			Last30Days:     recent,
			TotalSizeBytes: totalSize,
			TotalSizeMB:    math.Round(float64(totalSize)/(1024*1024)*100) / 100,
		},
	}, nil
}

// DocumentsBySubject возвращает счетчики по темам. При includeSubSubjects
// подтемы складываются в итог главной темы и возвращаются вложенным списком,
// иначе отдается плоский список всех тем.
func (s *StatisticsService) DocumentsBySubject(ctx context.Context, includeSubSubjects bool) (*domain.DocumentsBySubject, error) {
	stats, err := s.statsRepo.SubjectDocumentCounts(ctx)
	if err != nil {
		return nil, err
	}

	var total int64
	for _, stat := range stats {
		total += stat.DocumentCount
	}

	if !includeSubSubjects {
		return &domain.DocumentsBySubject{
			TotalDocuments: total,
			Subjects:       stats,
		}, nil
	}

	// Свертка: подтемы уходят под свою главную тему, итог главной темы
	// включает собственные документы плюс документы подтем
	byParent := make(map[int64][]domain.SubjectDocumentStats)
	var roots []domain.SubjectDocumentStats
	for _, stat := range stats {
		if stat.ParentID != nil {
			byParent[*stat.ParentID] = append(byParent[*stat.ParentID], stat)
			continue
		}
		roots = append(roots, stat)
	}

	for i := range roots {
		children := byParent[roots[i].ID]
		withSubs := roots[i].DocumentCount
		for _, child := range children {
			withSubs += child.DocumentCount
		}
		roots[i].SubSubjects = children
		roots[i].TotalWithSubs = &withSubs
	}

	return &domain.DocumentsBySubject{
		TotalDocuments: total,
		Subjects:       roots,
	}, nil
}

// UploadsByDateRange считает загрузки в границах [startDate, endDate]
// включительно, даты в формате YYYY-MM-DD. Конец диапазона растягивается
// до конца календарного дня.
func (s *StatisticsService) UploadsByDateRange(ctx context.Context, startDate, endDate string) (*domain.UploadsByDateRange, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start_date %q is not YYYY-MM-DD", domain.ErrInvalidInput, startDate)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end_date %q is not YYYY-MM-DD", domain.ErrInvalidInput, endDate)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end_date is before start_date", domain.ErrInvalidInput)
	}

	end = end.Add(24*time.Hour - time.Second)

	total, err := s.statsRepo.CountUploadsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	daily, err := s.statsRepo.DailyUploadCounts(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &domain.UploadsByDateRange{
		StartDate:      startDate,
		EndDate:        endDate,
		TotalCount:     total,
		DailyBreakdown: daily,
	}, nil
}

// EmptyFolders возвращает все папки без документов с подтянутой таксономией.
func (s *StatisticsService) EmptyFolders(ctx context.Context) (*domain.EmptyFolders, error) {
	folders, err := s.statsRepo.EmptyFolders(ctx)
	if err != nil {
		return nil, err
	}

	for i := range folders {
		if folders[i].DepartmentID != nil {
			department, err := s.departmentRepo.GetByID(ctx, *folders[i].DepartmentID)
			if err == nil {
				folders[i].Department = department
			}
		}
		if folders[i].SubjectID != nil {
			subject, err := s.subjectRepo.GetByID(ctx, *folders[i].SubjectID)
			if err == nil {
				folders[i].Subject = subject
			}
		}
	}

	return &domain.EmptyFolders{
		Count:   len(folders),
		Folders: folders,
	}, nil
}
