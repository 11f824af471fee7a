package service

import (
	"context"
	"fmt"

	"pdfarchive/internal/domain"
)

type folderRepository interface {
	Create(ctx context.Context, folder *domain.Folder) error
	GetByID(ctx context.Context, id int64) (*domain.Folder, error)
	List(ctx context.Context, filter domain.FolderFilter) ([]domain.Folder, error)
	Update(ctx context.Context, folder *domain.Folder) error
	Delete(ctx context.Context, id int64) error
	CountByDepartmentAndSubject(ctx context.Context, departmentID, subjectID int64) (int, error)
	SequenceExists(ctx context.Context, subjectID int64, sequenceNumber int, excludeID int64) (bool, error)
	DocumentCount(ctx context.Context, folderID int64) (int64, error)
}

// CreateFolderInput описывает запрос на создание папки. Порядковый номер
// необязателен: при nil выдается count+1 по паре (birim, konu).
type CreateFolderInput struct {
	DepartmentID   int64
	SubjectID      int64
	SequenceNumber *int
	Name           *string
	Description    *string
	CabinetNumber  *string
}

type FolderService struct {
	folderRepo     folderRepository
	departmentRepo departmentRepository
	subjectRepo    subjectRepository
}

func NewFolderService(
	folderRepo folderRepository,
	departmentRepo departmentRepository,
	subjectRepo subjectRepository,
) *FolderService {
	return &FolderService{
		folderRepo:     folderRepo,
		departmentRepo: departmentRepo,
		subjectRepo:    subjectRepo,
	}
}

// CreateFolder создает папку под парой (birim, konu). Номер либо задан явно,
// либо вычисляется как count+1; занятость проверяется в рамках темы, а
// уникальный индекс БД страхует от гонки двух одновременных созданий.
func (s *FolderService) CreateFolder(ctx context.Context, input CreateFolderInput) (*domain.Folder, error) {
	department, err := s.departmentRepo.GetByID(ctx, input.DepartmentID)
	if err != nil {
		return nil, err
	}

	subject, err := s.subjectRepo.GetByID(ctx, input.SubjectID)
	if err != nil {
		return nil, err
	}

	sequenceNumber := 0
	if input.SequenceNumber != nil {
		sequenceNumber = *input.SequenceNumber
	} else {
		count, err := s.folderRepo.CountByDepartmentAndSubject(ctx, department.ID, subject.ID)
		if err != nil {
			return nil, err
		}
		sequenceNumber = count + 1
	}

	taken, err := s.folderRepo.SequenceExists(ctx, subject.ID, sequenceNumber, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("sequence %d under subject %d: %w", sequenceNumber, subject.ID, domain.ErrConflict)
	}

	folder := &domain.Folder{
		DepartmentID:   &department.ID,
		SubjectID:      &subject.ID,
		SequenceNumber: sequenceNumber,
		Name:           input.Name,
		Description:    input.Description,
		CabinetNumber:  input.CabinetNumber,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	folder.Department = department
	folder.Subject = subject

	return folder, nil
}

// GetFolder возвращает папку с таксономией и документами.
func (s *FolderService) GetFolder(ctx context.Context, id int64) (*domain.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.attachTaxonomy(ctx, folder); err != nil {
		return nil, err
	}

	count, err := s.folderRepo.DocumentCount(ctx, id)
	if err != nil {
		return nil, err
	}
	folder.DocumentCount = int(count)

	return folder, nil
}

func (s *FolderService) ListFolders(ctx context.Context, filter domain.FolderFilter) ([]domain.Folder, error) {
	folders, err := s.folderRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	for i := range folders {
		if err := s.attachTaxonomy(ctx, &folders[i]); err != nil {
			return nil, err
		}
	}

	return folders, nil
}

// UpdateFolder применяет частичное обновление. Смена номера перепроверяется
// на занятость в рамках темы, исключая саму папку.
func (s *FolderService) UpdateFolder(ctx context.Context, id int64, update domain.FolderUpdate) (*domain.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.SequenceNumber != nil && *update.SequenceNumber != folder.SequenceNumber {
		if folder.SubjectID != nil {
			taken, err := s.folderRepo.SequenceExists(ctx, *folder.SubjectID, *update.SequenceNumber, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, fmt.Errorf("sequence %d under subject %d: %w",
					*update.SequenceNumber, *folder.SubjectID, domain.ErrConflict)
			}
		}
		folder.SequenceNumber = *update.SequenceNumber
	}
	if update.Name != nil {
		folder.Name = update.Name
	}
	if update.Description != nil {
		folder.Description = update.Description
	}
	if update.CabinetNumber != nil {
		folder.CabinetNumber = update.CabinetNumber
	}

	if err := s.folderRepo.Update(ctx, folder); err != nil {
		return nil, err
	}

	return s.GetFolder(ctx, id)
}

// DeleteFolder удаляет только пустую папку; блоб-хранилище не трогаем,
// у пустой папки нет объектов.
func (s *FolderService) DeleteFolder(ctx context.Context, id int64) error {
	if _, err := s.folderRepo.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.folderRepo.DocumentCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("folder %d has %d documents: %w", id, count, domain.ErrNotEmpty)
	}

	return s.folderRepo.Delete(ctx, id)
}

func (s *FolderService) attachTaxonomy(ctx context.Context, folder *domain.Folder) error {
	if folder.DepartmentID != nil {
		department, err := s.departmentRepo.GetByID(ctx, *folder.DepartmentID)
		if err == nil {
			folder.Department = department
		}
	}
	if folder.SubjectID != nil {
		subject, err := s.subjectRepo.GetByID(ctx, *folder.SubjectID)
		if err != nil {
			return err
		}
		if subject.ParentID != nil {
			parent, err := s.subjectRepo.GetByID(ctx, *subject.ParentID)
			if err == nil {
				subject.Parent = parent
			}
		}
		folder.Subject = subject
	}
	return nil
}
