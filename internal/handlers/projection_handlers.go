package handlers

import (
	"net/http"
	"taskTimeline/internal/logger"
	"taskTimeline/internal/service"
	"time"

	"go.uber.org/zap"
)

// ProjectionHandler отдаёт представления календаря, диаграммы, доски и планировщика.
// Каждый запрос строит представление заново из свежего снимка.
type ProjectionHandler struct {
	Projections ProjectionService
}

func NewProjectionHandler(projections ProjectionService) *ProjectionHandler {
	return &ProjectionHandler{Projections: projections}
}

func (h *ProjectionHandler) query(w http.ResponseWriter, r *http.Request) (service.Query, bool) {
	q, err := parseQuery(r, h.Projections.Today())
	if err != nil {
		logger.Warn("HTTP: Неверные параметры представления",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return service.Query{}, false
	}
	return q, true
}

func (h *ProjectionHandler) done(r *http.Request, view string, start time.Time) {
	logger.Info("HTTP_OUT: Представление построено",
		zap.String("view", view),
		zap.String("query", r.URL.RawQuery),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))
}

func (h *ProjectionHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	q, ok := h.query(w, r)
	if !ok {
		return
	}

	view, err := h.Projections.Calendar(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err, "calendar")
		return
	}

	h.done(r, "calendar", start)
	respondJSON(w, http.StatusOK, view)
}

func (h *ProjectionHandler) Gantt(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	q, ok := h.query(w, r)
	if !ok {
		return
	}
	expanded, err := parseExpanded(r.URL.Query())
	if err != nil {
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.Projections.Gantt(r.Context(), q, expanded)
	if err != nil {
		handleServiceError(w, r, err, "gantt")
		return
	}

	h.done(r, "gantt", start)
	respondJSON(w, http.StatusOK, view)
}

func (h *ProjectionHandler) Kanban(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	q, ok := h.query(w, r)
	if !ok {
		return
	}

	view, err := h.Projections.Kanban(r.Context(), q, r.URL.Query().Get("layout"))
	if err != nil {
		handleServiceError(w, r, err, "kanban")
		return
	}

	h.done(r, "kanban", start)
	respondJSON(w, http.StatusOK, view)
}

func (h *ProjectionHandler) Planner(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	q, ok := h.query(w, r)
	if !ok {
		return
	}
	// у планировщика по умолчанию первая неделя месяца
	if r.URL.Query().Get("week") == "" {
		q.Week = 1
	}

	view, err := h.Projections.Planner(r.Context(), q)
	if err != nil {
		handleServiceError(w, r, err, "planner")
		return
	}

	h.done(r, "planner", start)
	respondJSON(w, http.StatusOK, view)
}

func (h *ProjectionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	q, ok := h.query(w, r)
	if !ok {
		return
	}

	view, err := h.Projections.Summary(r.Context(), q.Year, q.Scope)
	if err != nil {
		handleServiceError(w, r, err, "summary")
		return
	}

	h.done(r, "summary", start)
	respondJSON(w, http.StatusOK, view)
}
