package service

import (
	"context"
	"fmt"
	"strings"

	"pdfarchive/internal/domain"
)

type metadataRepository interface {
	Upsert(ctx context.Context, documentID int64, key, value string) (*domain.DocumentMetadata, error)
	ReplaceAll(ctx context.Context, documentID int64, entries []domain.MetadataEntry) error
	GetByDocument(ctx context.Context, documentID int64) ([]domain.DocumentMetadata, error)
	DeleteKey(ctx context.Context, documentID int64, key string) error
}

// MetadataService держит произвольные пары ключ/значение документа.
// Каждая операция сначала убеждается, что документ существует.
type MetadataService struct {
	metadataRepo metadataRepository
	documentRepo documentRepository
}

func NewMetadataService(metadataRepo metadataRepository, documentRepo documentRepository) *MetadataService {
	return &MetadataService{
		metadataRepo: metadataRepo,
		documentRepo: documentRepo,
	}
}

// Set записывает одну пару; существующий ключ перезаписывается значением.
func (s *MetadataService) Set(ctx context.Context, documentID int64, key, value string) (*domain.DocumentMetadata, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: empty metadata key", domain.ErrInvalidInput)
	}

	if _, err := s.documentRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	return s.metadataRepo.Upsert(ctx, documentID, key, value)
}

// SetBulk полностью заменяет набор метаданных документа переданным списком.
// Пустой список оставляет документ без метаданных.
func (s *MetadataService) SetBulk(ctx context.Context, documentID int64, entries []domain.MetadataEntry) ([]domain.DocumentMetadata, error) {
	if _, err := s.documentRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	if err := s.metadataRepo.ReplaceAll(ctx, documentID, entries); err != nil {
		return nil, err
	}

	return s.metadataRepo.GetByDocument(ctx, documentID)
}

func (s *MetadataService) Get(ctx context.Context, documentID int64) ([]domain.DocumentMetadata, error) {
	if _, err := s.documentRepo.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	return s.metadataRepo.GetByDocument(ctx, documentID)
}

func (s *MetadataService) Delete(ctx context.Context, documentID int64, key string) error {
	if _, err := s.documentRepo.GetByID(ctx, documentID); err != nil {
		return err
	}

	return s.metadataRepo.DeleteKey(ctx, documentID, key)
}
