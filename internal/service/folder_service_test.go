package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfarchive/internal/domain"
)

func newFolderFixture(t *testing.T) (*FolderService, *fakeFolderRepo, *domain.Department, *domain.Subject) {
	t.Helper()

	departmentRepo := newFakeDepartmentRepo()
	subjectRepo := newFakeSubjectRepo()
	folderRepo := newFakeFolderRepo()

	department := &domain.Department{Code: "01", Name: "Genel Sekreterlik"}
	require.NoError(t, departmentRepo.Create(context.Background(), department))

	subject := &domain.Subject{Code: "01.00", Title: "Yazismalar"}
	require.NoError(t, subjectRepo.Create(context.Background(), subject))

	return NewFolderService(folderRepo, departmentRepo, subjectRepo), folderRepo, department, subject
}

func TestCreateFolderAssignsSequence(t *testing.T) {
	svc, _, department, subject := newFolderFixture(t)
	ctx := context.Background()

	first, err := svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID: department.ID,
		SubjectID:    subject.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, first.SequenceNumber)

	second, err := svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID: department.ID,
		SubjectID:    subject.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, second.SequenceNumber)
}

func TestCreateFolderExplicitSequence(t *testing.T) {
	svc, _, department, subject := newFolderFixture(t)
	ctx := context.Background()

	seq := 7
	folder, err := svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID:   department.ID,
		SubjectID:      subject.ID,
		SequenceNumber: &seq,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, folder.SequenceNumber)
}

func TestCreateFolderSequenceConflict(t *testing.T) {
	svc, _, department, subject := newFolderFixture(t)
	ctx := context.Background()

	seq := 3
	_, err := svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID:   department.ID,
		SubjectID:      subject.ID,
		SequenceNumber: &seq,
	})
	require.NoError(t, err)

	_, err = svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID:   department.ID,
		SubjectID:      subject.ID,
		SequenceNumber: &seq,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// Репозиторий с промахивающимся пре-чеком: имитирует гонку, когда номер
// занимают между проверкой и вставкой. Конфликт обязан прийти из Create,
// как его вернул бы уникальный индекс БД.
type stalePrecheckFolderRepo struct {
	*fakeFolderRepo
}

func (r *stalePrecheckFolderRepo) SequenceExists(context.Context, int64, int, int64) (bool, error) {
	return false, nil
}

func TestCreateFolderRaceCaughtByUniqueIndex(t *testing.T) {
	ctx := context.Background()
	departmentRepo := newFakeDepartmentRepo()
	subjectRepo := newFakeSubjectRepo()
	folderRepo := &stalePrecheckFolderRepo{newFakeFolderRepo()}

	department := &domain.Department{Code: "01", Name: "Genel Sekreterlik"}
	require.NoError(t, departmentRepo.Create(ctx, department))
	subject := &domain.Subject{Code: "01.00", Title: "Yazismalar"}
	require.NoError(t, subjectRepo.Create(ctx, subject))

	svc := NewFolderService(folderRepo, departmentRepo, subjectRepo)

	seq := 1
	_, err := svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID:   department.ID,
		SubjectID:      subject.ID,
		SequenceNumber: &seq,
	})
	require.NoError(t, err)

	_, err = svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID:   department.ID,
		SubjectID:      subject.ID,
		SequenceNumber: &seq,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestCreateFolderUnknownTaxonomy(t *testing.T) {
	svc, _, department, _ := newFolderFixture(t)
	ctx := context.Background()

	_, err := svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID: department.ID,
		SubjectID:    999,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID: 999,
		SubjectID:    1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateFolderSequenceConflict(t *testing.T) {
	svc, _, department, subject := newFolderFixture(t)
	ctx := context.Background()

	first, err := svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID: department.ID,
		SubjectID:    subject.ID,
	})
	require.NoError(t, err)

	second, err := svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID: department.ID,
		SubjectID:    subject.ID,
	})
	require.NoError(t, err)

	_, err = svc.UpdateFolder(ctx, second.ID, domain.FolderUpdate{
		SequenceNumber: &first.SequenceNumber,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Перенос на свободный номер проходит
	free := 10
	updated, err := svc.UpdateFolder(ctx, second.ID, domain.FolderUpdate{
		SequenceNumber: &free,
	})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.SequenceNumber)
}

func TestDeleteFolderWithDocuments(t *testing.T) {
	svc, folderRepo, department, subject := newFolderFixture(t)
	ctx := context.Background()

	folder, err := svc.CreateFolder(ctx, CreateFolderInput{
		DepartmentID: department.ID,
		SubjectID:    subject.ID,
	})
	require.NoError(t, err)

	folderRepo.docCounts[folder.ID] = 2

	err = svc.DeleteFolder(ctx, folder.ID)
	assert.ErrorIs(t, err, domain.ErrNotEmpty)

	folderRepo.docCounts[folder.ID] = 0
	require.NoError(t, svc.DeleteFolder(ctx, folder.ID))

	_, err = svc.GetFolder(ctx, folder.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
