package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tmaekawa/nippo/internal/auth"
	"github.com/tmaekawa/nippo/internal/models"
	"github.com/tmaekawa/nippo/internal/store"
)

// ReportHandler serves the report CRUD endpoints. All routes sit behind the
// bearer-token middleware; the author identity always comes from the verified
// token, never from the request body.
type ReportHandler struct {
	reports store.ReportStore
}

// NewReportHandler creates the report endpoints handler.
func NewReportHandler(reports store.ReportStore) *ReportHandler {
	return &ReportHandler{reports: reports}
}

type reportRequest struct {
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
}

// Collection handles GET and POST on /api/reports.
func (h *ReportHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		methodNotAllowed(w)
	}
}

// Item handles GET, PUT and DELETE on /api/reports/{id}.
func (h *ReportHandler) Item(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/reports/")
	if idStr == "" || strings.Contains(idStr, "/") {
		writeMessage(w, http.StatusBadRequest, "Valid report ID is required")
		return
	}

	reportID, err := uuid.Parse(idStr)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid report ID format")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, reportID)
	case http.MethodPut:
		h.update(w, r, reportID)
	case http.MethodDelete:
		h.delete(w, r, reportID)
	default:
		methodNotAllowed(w)
	}
}

func (h *ReportHandler) list(w http.ResponseWriter, r *http.Request) {
	opts := store.ListReportsOptions{
		Author: r.URL.Query().Get("author"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			writeMessage(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		opts.Limit = limit
	}

	reports, err := h.reports.List(r.Context(), opts)
	if err != nil {
		log.Error().Err(err).Msg("failed to list reports")
		internalError(w)
		return
	}

	if reports == nil {
		reports = []*models.Report{}
	}

	writeJSON(w, http.StatusOK, reports)
}

func (h *ReportHandler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Authorization required")
		return
	}

	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Title == "" || req.Content == "" || req.Date.IsZero() {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	userID, err := uuid.Parse(identity.UserID)
	if err != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	id, err := uuid.NewV7()
	if err != nil {
		internalError(w)
		return
	}

	now := time.Now()
	report := &models.Report{
		ID:        id,
		UserID:    userID,
		UserName:  identity.Username,
		Title:     req.Title,
		Content:   req.Content,
		Date:      req.Date,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.reports.Create(r.Context(), report); err != nil {
		log.Error().Err(err).Msg("failed to create report")
		internalError(w)
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (h *ReportHandler) get(w http.ResponseWriter, r *http.Request, reportID uuid.UUID) {
	report, err := h.reports.Get(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			writeMessage(w, http.StatusNotFound, "Report not found")
			return
		}
		log.Error().Err(err).Msg("failed to get report")
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) update(w http.ResponseWriter, r *http.Request, reportID uuid.UUID) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.Title == "" || req.Content == "" || req.Date.IsZero() {
		writeMessage(w, http.StatusBadRequest, "All fields are required")
		return
	}

	report, err := h.reports.Get(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			writeMessage(w, http.StatusNotFound, "Report not found")
			return
		}
		log.Error().Err(err).Msg("failed to get report")
		internalError(w)
		return
	}

	report.Title = req.Title
	report.Content = req.Content
	report.Date = req.Date
	report.UpdatedAt = time.Now()

	if err := h.reports.Update(r.Context(), report); err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			writeMessage(w, http.StatusNotFound, "Report not found")
			return
		}
		log.Error().Err(err).Msg("failed to update report")
		internalError(w)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) delete(w http.ResponseWriter, r *http.Request, reportID uuid.UUID) {
	if err := h.reports.Delete(r.Context(), reportID); err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			writeMessage(w, http.StatusNotFound, "Report not found")
			return
		}
		log.Error().Err(err).Msg("failed to delete report")
		internalError(w)
		return
	}

	writeMessage(w, http.StatusOK, "Report deleted successfully")
}
