package handler

import (
	"encoding/json"
	"net/http"

	"pdfarchive/internal/service"
)

type TagHandler struct {
	tagService *service.TagService
}

func NewTagHandler(tagService *service.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

type createTagRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

type attachTagsRequest struct {
	Tags []string `json:"tags" validate:"required,min=1"`
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	tag, err := h.tagService.Create(r.Context(), req.Name, req.Color)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tagService.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tags)
}

// Attach привязывает этикетки к документу по именам; недостающие создаются.
func (h *TagHandler) Attach(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	var req attachTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	tags, err := h.tagService.AttachByNames(r.Context(), documentID, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tags)
}

func (h *TagHandler) Detach(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	tagID, err := parseID(r, "tagId")
	if err != nil {
		http.Error(w, "Invalid tag ID", http.StatusBadRequest)
		return
	}

	if err := h.tagService.Detach(r.Context(), documentID, tagID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "tag detached"})
}

func (h *TagHandler) DocumentTags(w http.ResponseWriter, r *http.Request) {
	documentID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	tags, err := h.tagService.DocumentTags(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tags)
}
