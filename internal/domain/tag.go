package domain

import (
	"time"
)

// Tag — этикетка документа, many-to-many через document_tags.
type Tag struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Color     string    `json:"color" db:"color"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultTagColor — бордовый цвет этикетки по умолчанию.
const DefaultTagColor = "#8B1538"
