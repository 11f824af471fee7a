package domain

import (
	"time"
)

// Department представляет административную единицу (birim).
// Дерево через parent_id, на практике используется один уровень вложенности.
type Department struct {
	ID          int64     `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	ParentID    *int64    `json:"parent_id,omitempty" db:"parent_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Parent   *Department  `json:"parent,omitempty" db:"-"`
	Children []Department `json:"children,omitempty" db:"-"`
}
