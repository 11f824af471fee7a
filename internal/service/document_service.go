package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"pdfarchive/internal/domain"
	"pdfarchive/internal/service/s3"
)

// Ограничения загрузки, как в архивном интерфейсе
const (
	MaxFileSize   = 50 * 1024 * 1024 // 50MB на файл
	MaxBatchFiles = 10               // файлов за один запрос
)

type documentRepository interface {
	Create(ctx context.Context, document *domain.Document) error
	GetByID(ctx context.Context, id int64) (*domain.Document, error)
	GetByFolder(ctx context.Context, folderID int64) ([]domain.Document, error)
	GetRecent(ctx context.Context, limit int) ([]domain.Document, error)
	GetWithoutMetadata(ctx context.Context) ([]domain.Document, error)
	UpdateOriginalFilename(ctx context.Context, id int64, originalFilename string) (*domain.Document, error)
	Delete(ctx context.Context, id int64) error
}

// DocumentService управляет жизненным циклом документа: вывод ключа
// хранения из таксономии, загрузка blob-then-row, скачивание и удаление
// blob-first. Между хранилищем и БД нет общей транзакции — согласованность
// держится только на порядке операций.
type DocumentService struct {
	documentRepo documentRepository
	folderRepo   folderRepository
	subjectRepo  subjectRepository
	metadataRepo metadataRepository
	tagRepo      tagRepository
	storage      s3.Storage
}

func NewDocumentService(
	documentRepo documentRepository,
	folderRepo folderRepository,
	subjectRepo subjectRepository,
	metadataRepo metadataRepository,
	tagRepo tagRepository,
	storage s3.Storage,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		folderRepo:   folderRepo,
		subjectRepo:  subjectRepo,
		metadataRepo: metadataRepo,
		tagRepo:      tagRepo,
		storage:      storage,
	}
}

// StoragePrefix выводит иерархический префикс ключа для папки:
// [код главной темы/]код темы/порядковый номер, например 01.00/01.01/2.
// Префикс вычисляется один раз при загрузке; последующие правки кодов
// таксономии уже сохраненные пути не меняют.
func (s *DocumentService) StoragePrefix(ctx context.Context, folderID int64) (string, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return "", err
	}

	if folder.SubjectID == nil {
		return "", fmt.Errorf("folder %d: %w", folderID, domain.ErrMissingSubject)
	}

	subject, err := s.subjectRepo.GetByID(ctx, *folder.SubjectID)
	if err != nil {
		return "", err
	}

	var parts []string
	if subject.ParentID != nil {
		parent, err := s.subjectRepo.GetByID(ctx, *subject.ParentID)
		if err != nil {
			return "", err
		}
		parts = append(parts, parent.Code)
	}
	parts = append(parts, subject.Code, strconv.Itoa(folder.SequenceNumber))

	return strings.Join(parts, "/"), nil
}

// UploadBatch загружает пакет PDF в папку. Ошибки изолированы по файлам:
// сбой одного файла попадает в список ошибок, остальные продолжают
// обрабатываться. Для каждого файла сначала пишется объект в хранилище и
// только потом строка в БД; при сбое вставки объект удаляется компенсацией.
func (s *DocumentService) UploadBatch(ctx context.Context, folderID int64, files []domain.DocumentUpload) (*domain.UploadResult, error) {
	prefix, err := s.StoragePrefix(ctx, folderID)
	if err != nil {
		return nil, err
	}

	result := &domain.UploadResult{
		Uploaded: []domain.Document{},
		Errors:   []domain.UploadError{},
	}

	for _, file := range files {
		document, err := s.uploadOne(ctx, folderID, prefix, file)
		if err != nil {
			result.Errors = append(result.Errors, domain.UploadError{
				Filename: file.OriginalFilename,
				Error:    err.Error(),
			})
			continue
		}
		result.Uploaded = append(result.Uploaded, *document)
	}

	return result, nil
}

func (s *DocumentService) uploadOne(ctx context.Context, folderID int64, prefix string, file domain.DocumentUpload) (*domain.Document, error) {
	if err := validatePDF(file.OriginalFilename, file.MIMEType, int64(len(file.Data))); err != nil {
		return nil, err
	}

	// Свежий токен на каждую загрузку: имена глобально уникальны и не
	// зависят от пользовательского имени файла
	token := uuid.New().String()
	filename := token + strings.ToLower(filepath.Ext(file.OriginalFilename))
	key := prefix + "/" + filename

	if err := s.storage.UploadBytes(ctx, key, file.Data, "application/pdf", file.OriginalFilename); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageWrite, err)
	}

	document := &domain.Document{
		FolderID:         folderID,
		Filename:         filename,
		OriginalFilename: file.OriginalFilename,
		FileSize:         int64(len(file.Data)),
		MIMEType:         file.MIMEType,
		StoragePath:      key,
		StorageBucket:    s.storage.Bucket(),
		PageCount:        countPages(file.Data),
	}

	if err := s.documentRepo.Create(ctx, document); err != nil {
		// Объект уже записан — убираем его, чтобы не копить сирот
		if deleteErr := s.storage.DeleteObject(ctx, key); deleteErr != nil {
			log.Printf("failed to delete object %s after db error: %v", key, deleteErr)
		}
		return nil, err
	}

	return document, nil
}

// Download возвращает документ и поток его содержимого. Отсутствие объекта
// при живой записи в БД — обнаруженная рассинхронизация, наружу уходит
// ошибка чтения хранилища, а не тихий пропуск.
func (s *DocumentService) Download(ctx context.Context, id int64) (*domain.Document, s3.S3Object, error) {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	object, err := s.storage.GetObject(ctx, document.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("document %d at %s: %w: %v",
			id, document.StoragePath, domain.ErrStorageRead, err)
	}

	return document, object, nil
}

// Delete удаляет сначала объект, потом строку. Если объект удалить не
// удалось, строка остается — повтор удаления на совести вызывающего.
func (s *DocumentService) Delete(ctx context.Context, id int64) error {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.DeleteObject(ctx, document.StoragePath); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", document.StoragePath, err)
	}

	return s.documentRepo.Delete(ctx, id)
}

// Update меняет только отображаемое имя; объект и его ключ неизменны.
func (s *DocumentService) Update(ctx context.Context, id int64, originalFilename string) (*domain.Document, error) {
	return s.documentRepo.UpdateOriginalFilename(ctx, id, originalFilename)
}

// Get возвращает документ с папкой, таксономией, метаданными и этикетками.
func (s *DocumentService) Get(ctx context.Context, id int64) (*domain.Document, error) {
	document, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, document.FolderID)
	if err == nil {
		if folder.SubjectID != nil {
			subject, err := s.subjectRepo.GetByID(ctx, *folder.SubjectID)
			if err == nil {
				if subject.ParentID != nil {
					parent, err := s.subjectRepo.GetByID(ctx, *subject.ParentID)
					if err == nil {
						subject.Parent = parent
					}
				}
				folder.Subject = subject
			}
		}
		document.Folder = folder
	}

	metadata, err := s.metadataRepo.GetByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	document.Metadata = metadata

	tags, err := s.tagRepo.GetByDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	document.Tags = tags

	return document, nil
}

func (s *DocumentService) ListByFolder(ctx context.Context, folderID int64) ([]domain.Document, error) {
	if _, err := s.folderRepo.GetByID(ctx, folderID); err != nil {
		return nil, err
	}

	documents, err := s.documentRepo.GetByFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	for i := range documents {
		metadata, err := s.metadataRepo.GetByDocument(ctx, documents[i].ID)
		if err != nil {
			return nil, err
		}
		documents[i].Metadata = metadata
	}

	return documents, nil
}

func (s *DocumentService) Recent(ctx context.Context, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.documentRepo.GetRecent(ctx, limit)
}

func (s *DocumentService) WithoutMetadata(ctx context.Context) ([]domain.Document, error) {
	return s.documentRepo.GetWithoutMetadata(ctx)
}

// validatePDF отсекает не-PDF до любого обращения к хранилищу:
// проверяются расширение и заявленный MIME-тип.
func validatePDF(filename, mimeType string, size int64) error {
	if strings.ToLower(filepath.Ext(filename)) != ".pdf" {
		return fmt.Errorf("%w: %s: only PDF files are accepted", domain.ErrInvalidFile, filename)
	}
	if mimeType != "application/pdf" {
		return fmt.Errorf("%w: %s: unexpected content type %s", domain.ErrInvalidFile, filename, mimeType)
	}
	if size == 0 {
		return fmt.Errorf("%w: %s: empty file", domain.ErrInvalidFile, filename)
	}
	if size > MaxFileSize {
		return fmt.Errorf("%w: %s: file exceeds %d bytes", domain.ErrInvalidFile, filename, MaxFileSize)
	}
	return nil
}

// countPages извлекает число страниц. Ошибки не фатальны — поле остается
// пустым. Библиотека паникует на битых файлах, поэтому recover.
func countPages(data []byte) (n *int) {
	defer func() {
		if r := recover(); r != nil {
			n = nil
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil
	}

	pages := reader.NumPage()
	return &pages
}
