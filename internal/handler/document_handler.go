package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"pdfarchive/internal/domain"
	"pdfarchive/internal/service"
)

// Предел тела запроса загрузки: пакет целиком плюс накладные расходы
// multipart-кодирования. Срабатывает на уровне чтения потока, до буферизации.
var maxUploadBytes = int64(service.MaxBatchFiles)*service.MaxFileSize + 1<<20

type DocumentHandler struct {
	documentService *service.DocumentService
}

func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

type updateDocumentRequest struct {
	OriginalFilename string `json:"original_filename" validate:"required"`
}

// Upload принимает multipart-форму с полем files (до 10 PDF, до 50MB каждый).
// Ответ всегда 201 с разбивкой uploaded/errors: частичный успех — штатный
// исход пакета.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	folderID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Request body too large or malformed", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		http.Error(w, "No files uploaded", http.StatusBadRequest)
		return
	}
	if len(fileHeaders) > service.MaxBatchFiles {
		http.Error(w, fmt.Sprintf("Too many files: maximum %d per request", service.MaxBatchFiles), http.StatusBadRequest)
		return
	}

	uploads := make([]domain.DocumentUpload, 0, len(fileHeaders))
	for _, fileHeader := range fileHeaders {
		file, err := fileHeader.Open()
		if err != nil {
			http.Error(w, "Failed to open uploaded file", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
			return
		}

		uploads = append(uploads, domain.DocumentUpload{
			OriginalFilename: fileHeader.Filename,
			MIMEType:         fileHeader.Header.Get("Content-Type"),
			Data:             data,
		})
	}

	result, err := h.documentService.UploadBatch(r.Context(), folderID, uploads)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *DocumentHandler) ListByFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	documents, err := h.documentService.ListByFolder(r.Context(), folderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documents)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	document, err := h.documentService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, document)
}

// Download отдает содержимое как attachment с исходным именем файла.
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	document, object, err := h.documentService.Download(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", document.MIMEType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", document.OriginalFilename))
	w.Header().Set("Content-Length", strconv.FormatInt(document.FileSize, 10))

	io.Copy(w, object)
}

// Preview отдает содержимое inline для просмотра в браузере.
func (h *DocumentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	document, object, err := h.documentService.Download(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", document.MIMEType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=%q", document.OriginalFilename))

	io.Copy(w, object)
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	var req updateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	document, err := h.documentService.Update(r.Context(), id, req.OriginalFilename)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, document)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		http.Error(w, "Invalid document ID", http.StatusBadRequest)
		return
	}

	if err := h.documentService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "document deleted"})
}

// Recent отдает последние загрузки, ?limit= до 100, по умолчанию 10.
func (h *DocumentHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	documents, err := h.documentService.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documents)
}

func (h *DocumentHandler) WithoutMetadata(w http.ResponseWriter, r *http.Request) {
	documents, err := h.documentService.WithoutMetadata(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documents)
}
