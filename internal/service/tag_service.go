package service

import (
	"context"
	"strings"

	"pdfarchive/internal/domain"
)

type tagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	GetByID(ctx context.Context, id int64) (*domain.Tag, error)
	GetAll(ctx context.Context) ([]domain.Tag, error)
	GetOrCreateByName(ctx context.Context, name string) (*domain.Tag, error)
	GetByDocument(ctx context.Context, documentID int64) ([]domain.Tag, error)
	Attach(ctx context.Context, documentID, tagID int64) error
	Detach(ctx context.Context, documentID, tagID int64) error
}

type TagService struct {
	tagRepo      tagRepository
	documentRepo documentRepository
}

func NewTagService(tagRepo tagRepository, documentRepo documentRepository) *TagService {
	return &TagService{
		tagRepo:      tagRepo,
		documentRepo: documentRepo,
	}
}

func (s *TagService) Create(ctx context.Context, name, color string) (*domain.Tag, error) {
	if color == "" {
		color = domain.DefaultTagColor
	}

	tag := &domain.Tag{
		Name:  strings.TrimSpace(name),
		Color: color,
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	return tag, nil
}

func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	return s.tagRepo.GetAll(ctx)
}

// AttachByNames привязывает к документу этикетки по именам, создавая
// недостающие с цветом по умолчанию. Повторная привязка не ошибка.
func (s *TagService) AttachByNames(ctx context.Context, documentID int64, names []string) ([]domain.Tag, error) {
	if _, err := s.documentRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		tag, err := s.tagRepo.GetOrCreateByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if err := s.tagRepo.Attach(ctx, documentID, tag.ID); err != nil {
			return nil, err
		}
	}

	return s.tagRepo.GetByDocument(ctx, documentID)
}

func (s *TagService) Detach(ctx context.Context, documentID, tagID int64) error {
	if _, err := s.documentRepo.GetByID(ctx, documentID); err != nil {
		return err
	}
	if _, err := s.tagRepo.GetByID(ctx, tagID); err != nil {
		return err
	}

	return s.tagRepo.Detach(ctx, documentID, tagID)
}

func (s *TagService) DocumentTags(ctx context.Context, documentID int64) ([]domain.Tag, error) {
	if _, err := s.documentRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	return s.tagRepo.GetByDocument(ctx, documentID)
}
