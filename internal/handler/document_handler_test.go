package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfarchive/internal/service"
)

// Слишком большое тело отсекается на уровне чтения потока, до того как
// multipart-форма будет разобрана и сброшена на диск.
func TestUploadRejectsOversizedBody(t *testing.T) {
	oldLimit := maxUploadBytes
	maxUploadBytes = 1024
	defer func() { maxUploadBytes = oldLimit }()

	// До сервиса запрос дойти не должен
	h := NewDocumentHandler(service.NewDocumentService(nil, nil, nil, nil, nil, nil))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("files", "buyuk.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), 4096))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	router := chi.NewRouter()
	router.Post("/api/folders/{id}/documents", h.Upload)

	req := httptest.NewRequest(http.MethodPost, "/api/folders/1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
