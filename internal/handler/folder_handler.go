package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"pdfarchive/internal/domain"
	"pdfarchive/internal/service"
)

type FolderHandler struct {
	folderService *service.FolderService
}

func NewFolderHandler(folderService *service.FolderService) *FolderHandler {
	return &FolderHandler{folderService: folderService}
}

type createFolderRequest struct {
	DepartmentID   int64   `json:"department_id" validate:"required"`
	SubjectID      int64   `json:"subject_id" validate:"required"`
	SequenceNumber *int    `json:"sequence_number,omitempty"`
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	CabinetNumber  *string `json:"cabinet_number,omitempty"`
}

type updateFolderRequest struct {
	SequenceNumber *int    `json:"sequence_number,omitempty"`
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	CabinetNumber  *string `json:"cabinet_number,omitempty"`
}

func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), service.CreateFolderInput{
		DepartmentID:   req.DepartmentID,
		SubjectID:      req.SubjectID,
		SequenceNumber: req.SequenceNumber,
		Name:           req.Name,
		Description:    req.Description,
		CabinetNumber:  req.CabinetNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, folder)
}

// List поддерживает фильтры ?subject_id=, ?department_code=, ?subject_code=.
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter domain.FolderFilter
	if raw := r.URL.Query().Get("subject_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid subject_id", http.StatusBadRequest)
			return
		}
		filter.SubjectID = &id
	}
	filter.DepartmentCode = r.URL.Query().Get("department_code")
	filter.SubjectCode = r.URL.Query().Get("subject_code")

	folders, err := h.folderService.ListFolders(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folders)
}

func (h *FolderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	var req updateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	folder, err := h.folderService.UpdateFolder(r.Context(), id, domain.FolderUpdate{
		SequenceNumber: req.SequenceNumber,
		Name:           req.Name,
		Description:    req.Description,
		CabinetNumber:  req.CabinetNumber,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, folder)
}

func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "folder deleted"})
}
