package domain

import (
	"time"
)

// Subject представляет тему (konu) классификации. Тема без родителя —
// главная тема, с родителем — подтема. Путь в хранилище строится по кодам тем.
type Subject struct {
	ID          int64     `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	ParentID    *int64    `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Parent   *Subject  `json:"parent,omitempty" db:"-"`
	Children []Subject `json:"children,omitempty" db:"-"`
}
