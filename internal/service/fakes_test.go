package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"pdfarchive/internal/domain"
	"pdfarchive/internal/service/s3"
)

// Общие in-memory заглушки репозиториев для тестов сервисного слоя.

type fakeDepartmentRepo struct {
	departments map[int64]*domain.Department
	nextID      int64
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{departments: make(map[int64]*domain.Department)}
}

func (f *fakeDepartmentRepo) Create(_ context.Context, department *domain.Department) error {
	f.nextID++
	department.ID = f.nextID
	department.CreatedAt = time.Now()
	department.UpdatedAt = department.CreatedAt
	copied := *department
	f.departments[department.ID] = &copied
	return nil
}

func (f *fakeDepartmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	department, ok := f.departments[id]
	if !ok {
		return nil, fmt.Errorf("department %d: %w", id, domain.ErrNotFound)
	}
	copied := *department
	return &copied, nil
}

func (f *fakeDepartmentRepo) GetAll(_ context.Context) ([]domain.Department, error) {
	var all []domain.Department
	for i := int64(1); i <= f.nextID; i++ {
		if department, ok := f.departments[i]; ok {
			all = append(all, *department)
		}
	}
	return all, nil
}

func (f *fakeDepartmentRepo) GetChildren(_ context.Context, parentID int64) ([]domain.Department, error) {
	var children []domain.Department
	for i := int64(1); i <= f.nextID; i++ {
		if d, ok := f.departments[i]; ok && d.ParentID != nil && *d.ParentID == parentID {
			children = append(children, *d)
		}
	}
	return children, nil
}

func (f *fakeDepartmentRepo) Update(_ context.Context, department *domain.Department) error {
	if _, ok := f.departments[department.ID]; !ok {
		return fmt.Errorf("department %d: %w", department.ID, domain.ErrNotFound)
	}
	copied := *department
	f.departments[department.ID] = &copied
	return nil
}

func (f *fakeDepartmentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.departments[id]; !ok {
		return fmt.Errorf("department %d: %w", id, domain.ErrNotFound)
	}
	delete(f.departments, id)
	return nil
}

func (f *fakeDepartmentRepo) ExistsByCode(_ context.Context, code string, excludeID int64) (bool, error) {
	for _, d := range f.departments {
		if d.Code == code && d.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDepartmentRepo) HasChildren(_ context.Context, id int64) (bool, error) {
	for _, d := range f.departments {
		if d.ParentID != nil && *d.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

type fakeSubjectRepo struct {
	subjects map[int64]*domain.Subject
	nextID   int64
}

func newFakeSubjectRepo() *fakeSubjectRepo {
	return &fakeSubjectRepo{subjects: make(map[int64]*domain.Subject)}
}

func (f *fakeSubjectRepo) Create(_ context.Context, subject *domain.Subject) error {
	f.nextID++
	subject.ID = f.nextID
	subject.CreatedAt = time.Now()
	subject.UpdatedAt = subject.CreatedAt
	copied := *subject
	f.subjects[subject.ID] = &copied
	return nil
}

func (f *fakeSubjectRepo) GetByID(_ context.Context, id int64) (*domain.Subject, error) {
	subject, ok := f.subjects[id]
	if !ok {
		return nil, fmt.Errorf("subject %d: %w", id, domain.ErrNotFound)
	}
	copied := *subject
	return &copied, nil
}

func (f *fakeSubjectRepo) GetAll(_ context.Context, parentID *int64, rootOnly bool) ([]domain.Subject, error) {
	var all []domain.Subject
	for i := int64(1); i <= f.nextID; i++ {
		s, ok := f.subjects[i]
		if !ok {
			continue
		}
		if parentID != nil && (s.ParentID == nil || *s.ParentID != *parentID) {
			continue
		}
		if rootOnly && s.ParentID != nil {
			continue
		}
		all = append(all, *s)
	}
	return all, nil
}

func (f *fakeSubjectRepo) GetChildren(_ context.Context, parentID int64) ([]domain.Subject, error) {
	var children []domain.Subject
	for i := int64(1); i <= f.nextID; i++ {
		if s, ok := f.subjects[i]; ok && s.ParentID != nil && *s.ParentID == parentID {
			children = append(children, *s)
		}
	}
	return children, nil
}

func (f *fakeSubjectRepo) Update(_ context.Context, subject *domain.Subject) error {
	if _, ok := f.subjects[subject.ID]; !ok {
		return fmt.Errorf("subject %d: %w", subject.ID, domain.ErrNotFound)
	}
	copied := *subject
	f.subjects[subject.ID] = &copied
	return nil
}

func (f *fakeSubjectRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.subjects[id]; !ok {
		return fmt.Errorf("subject %d: %w", id, domain.ErrNotFound)
	}
	delete(f.subjects, id)
	return nil
}

func (f *fakeSubjectRepo) ExistsByCode(_ context.Context, code string, excludeID int64) (bool, error) {
	for _, s := range f.subjects {
		if s.Code == code && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSubjectRepo) HasChildren(_ context.Context, id int64) (bool, error) {
	for _, s := range f.subjects {
		if s.ParentID != nil && *s.ParentID == id {
			return true, nil
		}
	}
	return false, nil
}

type fakeFolderRepo struct {
	folders   map[int64]*domain.Folder
	docCounts map[int64]int64
	nextID    int64
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{
		folders:   make(map[int64]*domain.Folder),
		docCounts: make(map[int64]int64),
	}
}

func (f *fakeFolderRepo) Create(_ context.Context, folder *domain.Folder) error {
	// Поведение уникального индекса (subject_id, sequence_number)
	if folder.SubjectID != nil {
		for _, existing := range f.folders {
			if existing.SubjectID != nil && *existing.SubjectID == *folder.SubjectID &&
				existing.SequenceNumber == folder.SequenceNumber {
				return fmt.Errorf("sequence %d: %w", folder.SequenceNumber, domain.ErrConflict)
			}
		}
	}
	f.nextID++
	folder.ID = f.nextID
	folder.CreatedAt = time.Now()
	folder.UpdatedAt = folder.CreatedAt
	copied := *folder
	f.folders[folder.ID] = &copied
	return nil
}

func (f *fakeFolderRepo) GetByID(_ context.Context, id int64) (*domain.Folder, error) {
	folder, ok := f.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	copied := *folder
	return &copied, nil
}

func (f *fakeFolderRepo) List(_ context.Context, filter domain.FolderFilter) ([]domain.Folder, error) {
	var all []domain.Folder
	for i := int64(1); i <= f.nextID; i++ {
		folder, ok := f.folders[i]
		if !ok {
			continue
		}
		if filter.SubjectID != nil && (folder.SubjectID == nil || *folder.SubjectID != *filter.SubjectID) {
			continue
		}
		copied := *folder
		copied.DocumentCount = int(f.docCounts[folder.ID])
		all = append(all, copied)
	}
	return all, nil
}

func (f *fakeFolderRepo) Update(_ context.Context, folder *domain.Folder) error {
	if _, ok := f.folders[folder.ID]; !ok {
		return fmt.Errorf("folder %d: %w", folder.ID, domain.ErrNotFound)
	}
	if folder.SubjectID != nil {
		for _, existing := range f.folders {
			if existing.ID != folder.ID && existing.SubjectID != nil &&
				*existing.SubjectID == *folder.SubjectID &&
				existing.SequenceNumber == folder.SequenceNumber {
				return fmt.Errorf("sequence %d: %w", folder.SequenceNumber, domain.ErrConflict)
			}
		}
	}
	copied := *folder
	f.folders[folder.ID] = &copied
	return nil
}

func (f *fakeFolderRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.folders[id]; !ok {
		return fmt.Errorf("folder %d: %w", id, domain.ErrNotFound)
	}
	delete(f.folders, id)
	return nil
}

func (f *fakeFolderRepo) CountByDepartmentAndSubject(_ context.Context, departmentID, subjectID int64) (int, error) {
	count := 0
	for _, folder := range f.folders {
		if folder.DepartmentID != nil && *folder.DepartmentID == departmentID &&
			folder.SubjectID != nil && *folder.SubjectID == subjectID {
			count++
		}
	}
	return count, nil
}

func (f *fakeFolderRepo) SequenceExists(_ context.Context, subjectID int64, sequenceNumber int, excludeID int64) (bool, error) {
	for _, folder := range f.folders {
		if folder.ID == excludeID {
			continue
		}
		if folder.SubjectID != nil && *folder.SubjectID == subjectID &&
			folder.SequenceNumber == sequenceNumber {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFolderRepo) DocumentCount(_ context.Context, folderID int64) (int64, error) {
	return f.docCounts[folderID], nil
}

type fakeDocumentRepo struct {
	documents  map[int64]*domain.Document
	nextID     int64
	failCreate error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{documents: make(map[int64]*domain.Document)}
}

func (f *fakeDocumentRepo) Create(_ context.Context, document *domain.Document) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	f.nextID++
	document.ID = f.nextID
	document.CreatedAt = time.Now()
	document.UpdatedAt = document.CreatedAt
	copied := *document
	f.documents[document.ID] = &copied
	return nil
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id int64) (*domain.Document, error) {
	document, ok := f.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}
	copied := *document
	return &copied, nil
}

func (f *fakeDocumentRepo) GetByFolder(_ context.Context, folderID int64) ([]domain.Document, error) {
	var all []domain.Document
	for i := int64(1); i <= f.nextID; i++ {
		if d, ok := f.documents[i]; ok && d.FolderID == folderID {
			all = append(all, *d)
		}
	}
	return all, nil
}

func (f *fakeDocumentRepo) GetRecent(_ context.Context, limit int) ([]domain.Document, error) {
	var all []domain.Document
	for i := f.nextID; i >= 1 && len(all) < limit; i-- {
		if d, ok := f.documents[i]; ok {
			all = append(all, *d)
		}
	}
	return all, nil
}

func (f *fakeDocumentRepo) GetWithoutMetadata(_ context.Context) ([]domain.Document, error) {
	return nil, nil
}

func (f *fakeDocumentRepo) UpdateOriginalFilename(_ context.Context, id int64, originalFilename string) (*domain.Document, error) {
	document, ok := f.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}
	document.OriginalFilename = originalFilename
	copied := *document
	return &copied, nil
}

func (f *fakeDocumentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.documents[id]; !ok {
		return fmt.Errorf("document %d: %w", id, domain.ErrNotFound)
	}
	delete(f.documents, id)
	return nil
}

type fakeMetadataRepo struct {
	entries map[int64][]domain.DocumentMetadata
	nextID  int64
}

func newFakeMetadataRepo() *fakeMetadataRepo {
	return &fakeMetadataRepo{entries: make(map[int64][]domain.DocumentMetadata)}
}

func (f *fakeMetadataRepo) Upsert(_ context.Context, documentID int64, key, value string) (*domain.DocumentMetadata, error) {
	for i := range f.entries[documentID] {
		if f.entries[documentID][i].Key == key {
			f.entries[documentID][i].Value = value
			copied := f.entries[documentID][i]
			return &copied, nil
		}
	}
	f.nextID++
	entry := domain.DocumentMetadata{
		ID:         f.nextID,
		DocumentID: documentID,
		Key:        key,
		Value:      value,
		CreatedAt:  time.Now(),
	}
	f.entries[documentID] = append(f.entries[documentID], entry)
	return &entry, nil
}

func (f *fakeMetadataRepo) ReplaceAll(ctx context.Context, documentID int64, entries []domain.MetadataEntry) error {
	f.entries[documentID] = nil
	for _, entry := range entries {
		if entry.Key == "" {
			continue
		}
		if _, err := f.Upsert(ctx, documentID, entry.Key, entry.Value); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeMetadataRepo) GetByDocument(_ context.Context, documentID int64) ([]domain.DocumentMetadata, error) {
	return f.entries[documentID], nil
}

func (f *fakeMetadataRepo) DeleteKey(_ context.Context, documentID int64, key string) error {
	for i, entry := range f.entries[documentID] {
		if entry.Key == key {
			f.entries[documentID] = append(f.entries[documentID][:i], f.entries[documentID][i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("metadata key %s: %w", key, domain.ErrNotFound)
}

type fakeTagRepo struct {
	tags     map[int64]*domain.Tag
	attached map[int64]map[int64]bool
	nextID   int64
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{
		tags:     make(map[int64]*domain.Tag),
		attached: make(map[int64]map[int64]bool),
	}
}

func (f *fakeTagRepo) Create(_ context.Context, tag *domain.Tag) error {
	for _, existing := range f.tags {
		if existing.Name == tag.Name {
			return fmt.Errorf("tag %s: %w", tag.Name, domain.ErrDuplicateCode)
		}
	}
	f.nextID++
	tag.ID = f.nextID
	tag.CreatedAt = time.Now()
	copied := *tag
	f.tags[tag.ID] = &copied
	return nil
}

func (f *fakeTagRepo) GetByID(_ context.Context, id int64) (*domain.Tag, error) {
	tag, ok := f.tags[id]
	if !ok {
		return nil, fmt.Errorf("tag %d: %w", id, domain.ErrNotFound)
	}
	copied := *tag
	return &copied, nil
}

func (f *fakeTagRepo) GetAll(_ context.Context) ([]domain.Tag, error) {
	var all []domain.Tag
	for i := int64(1); i <= f.nextID; i++ {
		if tag, ok := f.tags[i]; ok {
			all = append(all, *tag)
		}
	}
	return all, nil
}

func (f *fakeTagRepo) GetOrCreateByName(ctx context.Context, name string) (*domain.Tag, error) {
	for _, tag := range f.tags {
		if tag.Name == name {
			copied := *tag
			return &copied, nil
		}
	}
	tag := &domain.Tag{Name: name, Color: domain.DefaultTagColor}
	if err := f.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

func (f *fakeTagRepo) GetByDocument(_ context.Context, documentID int64) ([]domain.Tag, error) {
	var all []domain.Tag
	for i := int64(1); i <= f.nextID; i++ {
		if f.attached[documentID][i] {
			all = append(all, *f.tags[i])
		}
	}
	return all, nil
}

func (f *fakeTagRepo) Attach(_ context.Context, documentID, tagID int64) error {
	if f.attached[documentID] == nil {
		f.attached[documentID] = make(map[int64]bool)
	}
	f.attached[documentID][tagID] = true
	return nil
}

func (f *fakeTagRepo) Detach(_ context.Context, documentID, tagID int64) error {
	delete(f.attached[documentID], tagID)
	return nil
}

// fakeStorage имитирует S3: хранит объекты в памяти и умеет падать на записи.
type fakeStorage struct {
	objects    map[string][]byte
	deleted    []string
	failUpload error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (f *fakeStorage) UploadBytes(_ context.Context, key string, data []byte, _, _ string) error {
	if f.failUpload != nil {
		return f.failUpload
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) GetObject(_ context.Context, key string) (s3.S3Object, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, s3.ErrObjectNotFound
	}
	return &fakeObject{Reader: bytes.NewReader(data), size: int64(len(data))}, nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) Bucket() string {
	return "test-bucket"
}

type fakeObject struct {
	*bytes.Reader
	size int64
}

func (o *fakeObject) Close() error         { return nil }
func (o *fakeObject) ContentLength() int64 { return o.size }
func (o *fakeObject) ContentType() string  { return "application/pdf" }

var _ io.ReadCloser = (*fakeObject)(nil)
