package reportshandler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/appraisal"
	"pms/internal/domain/auth"
	"pms/internal/domain/reports"
	"pms/internal/transport/http/api"
	"pms/internal/transport/http/middleware"
)

type Handler struct {
	Service *reports.Service

	// ExportDir, when set, receives a copy of every generated export.
	ExportDir string
}

func NewHandler(service *reports.Service, exportDir string) *Handler {
	return &Handler{Service: service, ExportDir: exportDir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Use(middleware.RequireMinRole(auth.RankManager))
		r.Get("/summary", h.handleSummary)
		r.Get("/appraisals/{appraisalID}/pdf", h.handleAppraisalPDF)
		r.Get("/appraisals/export", h.handleAppraisalsExport)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "summary_failed", "failed to build summary", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAppraisalPDF(w http.ResponseWriter, r *http.Request) {
	appraisalID := chi.URLParam(r, "appraisalID")

	pdf, err := h.Service.AppraisalPDF(r.Context(), appraisalID)
	if err != nil {
		var notFoundErr *appraisal.NotFoundError
		if errors.As(err, &notFoundErr) {
			api.Fail(w, http.StatusNotFound, "not_found", notFoundErr.Error(), middleware.GetRequestID(r.Context()))
			return
		}
		api.Fail(w, http.StatusInternalServerError, "pdf_failed", "failed to generate pdf", middleware.GetRequestID(r.Context()))
		return
	}

	name := fmt.Sprintf("appraisal-%s.pdf", appraisalID)
	h.keepCopy(name, pdf)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("pdf write failed", "err", err)
	}
}

func (h *Handler) handleAppraisalsExport(w http.ResponseWriter, r *http.Request) {
	book, err := h.Service.AppraisalsXLSX(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "export_failed", "failed to generate export", middleware.GetRequestID(r.Context()))
		return
	}

	name := fmt.Sprintf("appraisals-%s.xlsx", time.Now().Format("20060102-150405"))
	h.keepCopy(name, book)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if _, err := w.Write(book); err != nil {
		slog.Warn("export write failed", "err", err)
	}
}

func (h *Handler) keepCopy(name string, data []byte) {
	if h.ExportDir == "" {
		return
	}
	path := filepath.Join(h.ExportDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		slog.Warn("export copy failed", "path", path, "err", err)
	}
}
