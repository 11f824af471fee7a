package repository

import (
	"errors"

	"github.com/lib/pq"
)

// isUniqueViolation распознает нарушение уникального ограничения PostgreSQL
// (код 23505). Гонки выдачи номеров и дубликаты кодов ловятся именно здесь.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
