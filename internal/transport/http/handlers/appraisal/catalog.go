package appraisalhandler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/appraisal"
	"pms/internal/domain/auth"
	"pms/internal/transport/http/api"
	"pms/internal/transport/http/middleware"
	"pms/internal/transport/http/shared"
)

func (h *Handler) registerCatalogRoutes(r chi.Router) {
	r.Route("/appraisal-types", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListTypes)
		r.Get("/{typeID}/ranges", h.handleListRanges)
		r.With(middleware.RequireMinRole(auth.RankAdmin)).Post("/", h.handleCreateType)
	})
	r.With(middleware.RequireAuth).Get("/appraisal-dates", h.handleCalculateDates)
	r.With(middleware.RequireAuth).Get("/categories", h.handleListCategories)

	r.Route("/goal-templates", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleListTemplates)
		r.With(middleware.RequireMinRole(auth.RankManager)).Post("/", h.handleCreateTemplate)
		r.With(middleware.RequireMinRole(auth.RankManager)).Put("/{templateID}", h.handleUpdateTemplate)
		r.With(middleware.RequireMinRole(auth.RankManager)).Delete("/{templateID}", h.handleDeleteTemplate)
	})
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.Store().ListTypes(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "type_list_failed", "failed to list appraisal types", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, types, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateType(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name     string `json:"name"`
		HasRange bool   `json:"hasRange"`
		Ranges   []struct {
			Name       string `json:"name"`
			StartMonth int    `json:"startMonth"`
			EndMonth   int    `json:"endMonth"`
		} `json:"ranges"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	if payload.HasRange && len(payload.Ranges) == 0 {
		v.Add("ranges", "a ranged type needs at least one range")
	}
	if !payload.HasRange && len(payload.Ranges) > 0 {
		v.Add("ranges", "an unranged type cannot carry ranges")
	}
	ranges := make([]appraisal.AppraisalRange, 0, len(payload.Ranges))
	for i, rng := range payload.Ranges {
		field := "ranges[" + strconv.Itoa(i) + "]"
		v.Required(field+".name", rng.Name, "range name is required")
		v.Range(field+".startMonth", rng.StartMonth, 1, 12, "start month must be between 1 and 12")
		v.Range(field+".endMonth", rng.EndMonth, 1, 12, "end month must be between 1 and 12")
		ranges = append(ranges, appraisal.AppraisalRange{
			Name:       rng.Name,
			StartMonth: rng.StartMonth,
			EndMonth:   rng.EndMonth,
		})
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Store().CreateType(r.Context(), payload.Name, payload.HasRange, ranges)
	if err != nil {
		failAppraisal(w, r, err, "type_create_failed", "failed to create appraisal type")
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRanges(w http.ResponseWriter, r *http.Request) {
	typeID, err := strconv.Atoi(chi.URLParam(r, "typeID"))
	if err != nil || typeID <= 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid appraisal type id", middleware.GetRequestID(r.Context()))
		return
	}

	ranges, err := h.Service.Store().ListRanges(r.Context(), typeID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "range_list_failed", "failed to list ranges", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, ranges, middleware.GetRequestID(r.Context()))
}

// handleCalculateDates exposes the period calculator so clients can
// preview the window for a type and range before creating an appraisal.
func (h *Handler) handleCalculateDates(w http.ResponseWriter, r *http.Request) {
	typeName := r.URL.Query().Get("type")
	rangeName := r.URL.Query().Get("range")
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid year", middleware.GetRequestID(r.Context()))
			return
		}
		year = parsed
	}
	if typeName == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "type is required", middleware.GetRequestID(r.Context()))
		return
	}

	start, end, err := appraisal.CalculateDates(typeName, rangeName, year)
	if err != nil {
		failAppraisal(w, r, err, "date_calculation_failed", "failed to calculate dates")
		return
	}
	api.Success(w, map[string]string{
		"startDate": start.Format("2006-01-02"),
		"endDate":   end.Format("2006-01-02"),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.Store().ListCategories(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "category_list_failed", "failed to list categories", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, categories, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Service.Store().ListTemplates(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_list_failed", "failed to list goal templates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, templates, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var payload appraisal.GoalTemplate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Range("weightage", payload.Weightage, 1, 100, "weightage must be between 1 and 100")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.Store().CreateTemplate(r.Context(), payload)
	if err != nil {
		failAppraisal(w, r, err, "template_create_failed", "failed to create goal template")
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	var payload appraisal.GoalTemplate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	payload.ID = chi.URLParam(r, "templateID")

	v := shared.NewValidator()
	v.Required("title", payload.Title, "title is required")
	v.Range("weightage", payload.Weightage, 1, 100, "weightage must be between 1 and 100")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	if err := h.Service.Store().UpdateTemplate(r.Context(), payload); err != nil {
		failAppraisal(w, r, err, "template_update_failed", "failed to update goal template")
		return
	}
	api.Success(w, payload, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Store().DeleteTemplate(r.Context(), chi.URLParam(r, "templateID")); err != nil {
		failAppraisal(w, r, err, "template_delete_failed", "failed to delete goal template")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}
