package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"

	"pdfarchive/internal/domain"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError транслирует доменную ошибку в HTTP-статус. Неопознанная ошибка
// уходит как 500 с обобщенным текстом, детали только в лог.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(err))
	case errors.Is(err, domain.ErrDuplicateCode), errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody(err))
	case errors.Is(err, domain.ErrHasChildren),
		errors.Is(err, domain.ErrNotEmpty),
		errors.Is(err, domain.ErrMissingSubject),
		errors.Is(err, domain.ErrInvalidFile),
		errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err))
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func errorBody(err error) map[string]string {
	return map[string]string{"error": err.Error()}
}

func writeValidationError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "validation failed: " + err.Error()})
}
