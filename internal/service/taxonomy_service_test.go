package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfarchive/internal/domain"
)

func TestDepartmentDuplicateCode(t *testing.T) {
	svc := NewDepartmentService(newFakeDepartmentRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, "01", "Genel Sekreterlik", nil, nil)
	require.NoError(t, err)

	_, err = svc.Create(ctx, "01", "Baska Birim", nil, nil)
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestDepartmentUpdateCodeChecksDuplicates(t *testing.T) {
	svc := NewDepartmentService(newFakeDepartmentRepo())
	ctx := context.Background()

	first, err := svc.Create(ctx, "01", "Genel Sekreterlik", nil, nil)
	require.NoError(t, err)
	second, err := svc.Create(ctx, "02", "Personel", nil, nil)
	require.NoError(t, err)

	// Чужой код занят
	code := "01"
	_, err = svc.Update(ctx, second.ID, DepartmentUpdate{Code: &code})
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)

	// Свой собственный код — не конфликт
	own := "01"
	updated, err := svc.Update(ctx, first.ID, DepartmentUpdate{Code: &own})
	require.NoError(t, err)
	assert.Equal(t, "01", updated.Code)
}

func TestDepartmentDeleteWithChildren(t *testing.T) {
	svc := NewDepartmentService(newFakeDepartmentRepo())
	ctx := context.Background()

	parent, err := svc.Create(ctx, "01", "Genel Sekreterlik", nil, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "01.A", "Alt Birim", nil, &parent.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, parent.ID)
	assert.ErrorIs(t, err, domain.ErrHasChildren)
}

func TestDepartmentCreateUnknownParent(t *testing.T) {
	svc := NewDepartmentService(newFakeDepartmentRepo())
	ctx := context.Background()

	missing := int64(42)
	_, err := svc.Create(ctx, "01", "Genel Sekreterlik", nil, &missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubjectHierarchy(t *testing.T) {
	svc := NewSubjectService(newFakeSubjectRepo())
	ctx := context.Background()

	main, err := svc.Create(ctx, "01.00", "Yazismalar", nil, nil)
	require.NoError(t, err)
	sub, err := svc.Create(ctx, "01.01", "Gelen Evrak", nil, &main.ID)
	require.NoError(t, err)

	got, err := svc.Get(ctx, sub.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Parent)
	assert.Equal(t, "01.00", got.Parent.Code)

	gotMain, err := svc.Get(ctx, main.ID)
	require.NoError(t, err)
	require.Len(t, gotMain.Children, 1)
	assert.Equal(t, "01.01", gotMain.Children[0].Code)
}

func TestSubjectListRootOnly(t *testing.T) {
	svc := NewSubjectService(newFakeSubjectRepo())
	ctx := context.Background()

	main, err := svc.Create(ctx, "01.00", "Yazismalar", nil, nil)
	require.NoError(t, err)
	_, err = svc.Create(ctx, "01.01", "Gelen Evrak", nil, &main.ID)
	require.NoError(t, err)

	roots, err := svc.List(ctx, nil, true)
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "01.00", roots[0].Code)

	subs, err := svc.List(ctx, &main.ID, false)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "01.01", subs[0].Code)
}

func TestSubjectDeleteWithChildren(t *testing.T) {
	svc := NewSubjectService(newFakeSubjectRepo())
	ctx := context.Background()

	main, err := svc.Create(ctx, "01.00", "Yazismalar", nil, nil)
	require.NoError(t, err)
	sub, err := svc.Create(ctx, "01.01", "Gelen Evrak", nil, &main.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, main.ID), domain.ErrHasChildren)

	require.NoError(t, svc.Delete(ctx, sub.ID))
	require.NoError(t, svc.Delete(ctx, main.ID))
}
