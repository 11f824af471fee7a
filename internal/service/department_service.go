package service

import (
	"context"
	"fmt"

	"pdfarchive/internal/domain"
)

type departmentRepository interface {
	Create(ctx context.Context, department *domain.Department) error
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	GetAll(ctx context.Context) ([]domain.Department, error)
	GetChildren(ctx context.Context, parentID int64) ([]domain.Department, error)
	Update(ctx context.Context, department *domain.Department) error
	Delete(ctx context.Context, id int64) error
	ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error)
	HasChildren(ctx context.Context, id int64) (bool, error)
}

// DepartmentUpdate — частичное обновление: nil-поле остается без изменений.
type DepartmentUpdate struct {
	Code        *string
	Name        *string
	Description *string
}

type DepartmentService struct {
	repo departmentRepository
}

func NewDepartmentService(repo departmentRepository) *DepartmentService {
	return &DepartmentService{repo: repo}
}

func (s *DepartmentService) Create(ctx context.Context, code, name string, description *string, parentID *int64) (*domain.Department, error) {
	exists, err := s.repo.ExistsByCode(ctx, code, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check department code: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("department code %s: %w", code, domain.ErrDuplicateCode)
	}

	// Родитель должен существовать
	if parentID != nil {
		if _, err := s.repo.GetByID(ctx, *parentID); err != nil {
			return nil, err
		}
	}

	department := &domain.Department{
		Code:        code,
		Name:        name,
		Description: description,
		ParentID:    parentID,
	}

	if err := s.repo.Create(ctx, department); err != nil {
		return nil, err
	}

	return department, nil
}

func (s *DepartmentService) Get(ctx context.Context, id int64) (*domain.Department, error) {
	department, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if department.ParentID != nil {
		parent, err := s.repo.GetByID(ctx, *department.ParentID)
		if err == nil {
			department.Parent = parent
		}
	}

	children, err := s.repo.GetChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	department.Children = children

	return department, nil
}

// List возвращает все единицы с заполненными parent/children, порядок по коду.
func (s *DepartmentService) List(ctx context.Context) ([]domain.Department, error) {
	departments, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[int64]*domain.Department, len(departments))
	for i := range departments {
		byID[departments[i].ID] = &departments[i]
	}
	for i := range departments {
		if pid := departments[i].ParentID; pid != nil {
			if parent, ok := byID[*pid]; ok {
				parentCopy := *parent
				parentCopy.Children = nil
				departments[i].Parent = &parentCopy
				parent.Children = append(parent.Children, departments[i])
			}
		}
	}

	return departments, nil
}

func (s *DepartmentService) Update(ctx context.Context, id int64, update DepartmentUpdate) (*domain.Department, error) {
	department, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Смена кода перепроверяется на дубликат, исключая собственную строку
	if update.Code != nil && *update.Code != department.Code {
		exists, err := s.repo.ExistsByCode(ctx, *update.Code, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check department code: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("department code %s: %w", *update.Code, domain.ErrDuplicateCode)
		}
		department.Code = *update.Code
	}
	if update.Name != nil {
		department.Name = *update.Name
	}
	if update.Description != nil {
		department.Description = update.Description
	}

	if err := s.repo.Update(ctx, department); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// Delete удаляет только листовую единицу: наличие дочерних — ошибка,
// каскадного удаления нет.
func (s *DepartmentService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	hasChildren, err := s.repo.HasChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check child departments: %w", err)
	}
	if hasChildren {
		return fmt.Errorf("department %d: %w", id, domain.ErrHasChildren)
	}

	return s.repo.Delete(ctx, id)
}
