package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pdfarchive/internal/domain"
	"pdfarchive/internal/service"
)

type MetadataHandler struct {
	metadataService *service.MetadataService
}

func NewMetadataHandler(metadataService *service.MetadataService) *MetadataHandler {
	return &MetadataHandler{metadataService: metadataService}
}

type setMetadataRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value"`
}

type setBulkMetadataRequest struct {
	Metadata []domain.MetadataEntry `json:"metadata" validate:"required"`
}

func (h *MetadataHandler) Set(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	var req setMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	metadata, err := h.metadataService.Set(r.Context(), documentID, req.Key, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, metadata)
}

// SetBulk полностью заменяет метаданные документа; пустой список очищает их.
func (h *MetadataHandler) SetBulk(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	var req setBulkMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Metadata == nil {
		http.Error(w, "Metadata list is required", http.StatusBadRequest)
		return
	}

	metadata, err := h.metadataService.SetBulk(r.Context(), documentID, req.Metadata)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, metadata)
}

func (h *MetadataHandler) Get(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	metadata, err := h.metadataService.Get(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, metadata)
}

func (h *MetadataHandler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	key := chi.URLParam(r, "key")
	if key == "" {
		http.Error(w, "Metadata key is required", http.StatusBadRequest)
		return
	}

	if err := h.metadataService.Delete(r.Context(), documentID, key); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "metadata deleted"})
}
