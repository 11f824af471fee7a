package service

import (
	"context"
	"fmt"

	"pdfarchive/internal/domain"
)

type subjectRepository interface {
	Create(ctx context.Context, subject *domain.Subject) error
	GetByID(ctx context.Context, id int64) (*domain.Subject, error)
	GetAll(ctx context.Context, parentID *int64, rootOnly bool) ([]domain.Subject, error)
	GetChildren(ctx context.Context, parentID int64) ([]domain.Subject, error)
	Update(ctx context.Context, subject *domain.Subject) error
	Delete(ctx context.Context, id int64) error
	ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error)
	HasChildren(ctx context.Context, id int64) (bool, error)
}

// SubjectUpdate — частичное обновление: nil-поле остается без изменений.
type SubjectUpdate struct {
	Code        *string
	Title       *string
	Description *string
}

type SubjectService struct {
	repo subjectRepository
}

func NewSubjectService(repo subjectRepository) *SubjectService {
	return &SubjectService{repo: repo}
}

func (s *SubjectService) Create(ctx context.Context, code, title string, description *string, parentID *int64) (*domain.Subject, error) {
	exists, err := s.repo.ExistsByCode(ctx, code, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check subject code: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("subject code %s: %w", code, domain.ErrDuplicateCode)
	}

	if parentID != nil {
		if _, err := s.repo.GetByID(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	subject := &domain.Subject{
		Code:        code,
		Title:       title,
		Description: description,
		ParentID:    parentID,
	}

	if err := s.repo.Create(ctx, subject); err != nil {
		return nil, err
	}

	return subject, nil
}

func (s *SubjectService) Get(ctx context.Context, id int64) (*domain.Subject, error) {
	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if subject.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *subject.ParentID)
		if err == nil {
			subject.Parent = parent
		}
	}

	children, err := s.repo.GetChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	subject.Children = children

	return subject, nil
}

// List возвращает темы; parentID фильтрует подтемы конкретной главной темы,
// rootOnly — только главные темы.
func (s *SubjectService) List(ctx context.Context, parentID *int64, rootOnly bool) ([]domain.Subject, error) {
	subjects, err := s.repo.GetAll(ctx, parentID, rootOnly)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Subject, len(subjects))
	for i := range subjects {
		byID[subjects[i].ID] = &subjects[i]
	}
	for i := range subjects {
		if pid := subjects[i].ParentID; pid != nil {
			if parent, ok := byID[*pid]; ok {
				parentCopy := *parent
				parentCopy.Children = nil
				subjects[i].Parent = &parentCopy
				parent.Children = append(parent.Children, subjects[i])
			}
		}
	}

	return subjects, nil
}

func (s *SubjectService) Update(ctx context.Context, id int64, update SubjectUpdate) (*domain.Subject, error) {
	subject, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Code != nil && *update.Code != subject.Code {
		exists, err := s.repo.ExistsByCode(ctx, *update.Code, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check subject code: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("subject code %s: %w", *update.Code, domain.ErrDuplicateCode)
		}
		subject.Code = *update.Code
	}
	if update.Title != nil {
		subject.Title = *update.Title
	}
	if update.Description != nil {
		subject.Description = update.Description
	}

	if err := s.repo.Update(ctx, subject); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *SubjectService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	hasChildren, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check child subjects: %w", err)
	}
	if hasChildren {
		return fmt.Errorf("subject %d: %w", id, domain.ErrHasChildren)
	}

	return s.repo.Delete(ctx, id)
}
