package handler

import (
	"net/http"

	"pdfarchive/internal/service"
)

type StatisticsHandler struct {
	statisticsService *service.StatisticsService
}

func NewStatisticsHandler(statisticsService *service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.statisticsService.Overview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

// BySubject поддерживает ?include_sub_subjects=true для свертки подтем.
func (h *StatisticsHandler) BySubject(w http.ResponseWriter, r *http.Request) {
	includeSubs := r.URL.Query().Get("include_sub_subjects") == "true"

	report, err := h.statisticsService.DocumentsBySubject(r.Context(), includeSubs)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// ByDateRange требует ?start_date= и ?end_date= в формате YYYY-MM-DD.
func (h *StatisticsHandler) ByDateRange(w http.ResponseWriter, r *http.Request) {
	startDate := r.URL.Query().Get("start_date")
	endDate := r.URL.Query().Get("end_date")
	if startDate == "" || endDate == "" {
		http.Error(w, "start_date and end_date are required", http.StatusBadRequest)
		return
	}

	report, err := h.statisticsService.UploadsByDateRange(r.Context(), startDate, endDate)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *StatisticsHandler) EmptyFolders(w http.ResponseWriter, r *http.Request) {
	report, err := h.statisticsService.EmptyFolders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
