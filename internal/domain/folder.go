package domain

import (
	"time"
)

// Folder представляет физическую папку архива. Пара (subject_id,
// sequence_number) уникальна; номер выдается автоматически как count+1,
// если не задан явно.
type Folder struct {
	ID             int64     `json:"id" db:"id"`
	DepartmentID   *int64    `json:"department_id,omitempty" db:"department_id"`
	SubjectID      *int64    `json:"subject_id,omitempty" db:"subject_id"`
	SequenceNumber int       `json:"sequence_number" db:"sequence_number"`
	Name           *string   `json:"name,omitempty" db:"name"`
	Description    *string   `json:"description,omitempty" db:"description"`
	CabinetNumber  *string   `json:"cabinet_number,omitempty" db:"cabinet_number"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`

	Department *Department `json:"department,omitempty" db:"-"`
	Subject    *Subject    `json:"subject,omitempty" db:"-"`

	// Заполняется в списках для удобства клиента
	DocumentCount int `json:"document_count" db:"-"`
}

// FolderUpdate описывает частичное обновление папки: nil — поле не трогаем.
type FolderUpdate struct {
	Name           *string
	Description    *string
	SequenceNumber *int
	CabinetNumber  *string
}

// FolderFilter задает необязательные фильтры для списка папок.
type FolderFilter struct {
	SubjectID      *int64
	DepartmentCode string
	SubjectCode    string
}
