package domain

import (
	"errors"
)

// Ошибки уровня домена. Хендлеры транслируют их в HTTP-статусы через
// errors.Is; сервисы и репозитории оборачивают через fmt.Errorf("...: %w").
var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateCode  = errors.New("code already in use")
	ErrConflict       = errors.New("sequence number already taken")
	ErrHasChildren    = errors.New("entity has child entries")
	ErrNotEmpty       = errors.New("folder contains documents")
	ErrMissingSubject = errors.New("folder is not linked to a subject")
	ErrInvalidFile    = errors.New("invalid file")
	ErrInvalidInput   = errors.New("invalid input")
	ErrStorageRead    = errors.New("storage read failed")
	ErrStorageWrite   = errors.New("storage write failed")
)
