package appraisalhandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/appraisal"
	"pms/internal/domain/auth"
	"pms/internal/transport/http/api"
	"pms/internal/transport/http/middleware"
	"pms/internal/transport/http/shared"
)

type Handler struct {
	Service *appraisal.Service
}

func NewHandler(service *appraisal.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/appraisals", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{appraisalID}", h.handleGet)
		r.With(middleware.RequireMinRole(auth.RankManager)).Post("/", h.handleCreate)
		r.Delete("/{appraisalID}", h.handleDelete)
		r.Post("/{appraisalID}/goals", h.handleAddGoal)
		r.Delete("/{appraisalID}/goals/{goalID}", h.handleRemoveGoal)
		r.Post("/{appraisalID}/submit", h.handleSubmit)
		r.Put("/{appraisalID}/self-assessment", h.handleSelfAssessment)
		r.Post("/{appraisalID}/self-assessment/complete", h.handleCompleteSelfAssessment)
		r.Put("/{appraisalID}/appraiser-evaluation", h.handleAppraiserEvaluation)
		r.Post("/{appraisalID}/appraiser-evaluation/complete", h.handleCompleteAppraiserEvaluation)
		r.Put("/{appraisalID}/reviewer-evaluation", h.handleReviewerEvaluation)
		r.Post("/{appraisalID}/reviewer-evaluation/complete", h.handleCompleteReviewerEvaluation)
	})

	h.registerCatalogRoutes(r)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AppraiseeID     string   `json:"appraiseeId"`
		AppraiserID     string   `json:"appraiserId"`
		ReviewerID      string   `json:"reviewerId"`
		AppraisalTypeID int      `json:"appraisalTypeId"`
		RangeID         *int     `json:"rangeId"`
		StartDate       string   `json:"startDate"`
		EndDate         string   `json:"endDate"`
		GoalIDs         []string `json:"goalIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("appraiseeId", payload.AppraiseeID, "appraisee id is required")
	v.Required("appraiserId", payload.AppraiserID, "appraiser id is required")
	v.Required("reviewerId", payload.ReviewerID, "reviewer id is required")
	if payload.AppraisalTypeID <= 0 {
		v.Add("appraisalTypeId", "a valid appraisal type id is required")
	}

	in := appraisal.CreateInput{
		AppraiseeID:     payload.AppraiseeID,
		AppraiserID:     payload.AppraiserID,
		ReviewerID:      payload.ReviewerID,
		AppraisalTypeID: payload.AppraisalTypeID,
		RangeID:         payload.RangeID,
		GoalIDs:         payload.GoalIDs,
	}
	// Dates are optional as a pair; when absent the service derives them
	// from the type and range.
	if payload.StartDate != "" || payload.EndDate != "" {
		if start, ok := v.Date("startDate", payload.StartDate); ok {
			in.StartDate = start
		}
		if end, ok := v.Date("endDate", payload.EndDate); ok {
			in.EndDate = end
		}
		v.DateOrder("startDate", in.StartDate, "endDate", in.EndDate)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	a, err := h.Service.Create(r.Context(), in)
	if err != nil {
		failAppraisal(w, r, err, "appraisal_create_failed", "failed to create appraisal")
		return
	}
	api.Created(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	// Managers and above may scope to any employee or list everything;
	// everyone else only sees appraisals they take part in.
	employeeID := user.EmployeeID
	if user.RoleRank >= auth.RankManager {
		employeeID = r.URL.Query().Get("employeeId")
	}

	appraisals, err := h.Service.List(r.Context(), employeeID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "appraisal_list_failed", "failed to list appraisals", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, appraisals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	a, err := h.Service.Get(r.Context(), chi.URLParam(r, "appraisalID"))
	if err != nil {
		failAppraisal(w, r, err, "appraisal_get_failed", "failed to load appraisal")
		return
	}
	if user.RoleRank < auth.RankManager && !isParticipant(a, user.EmployeeID) {
		api.Fail(w, http.StatusForbidden, "forbidden", "not allowed", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	admin := user.RoleRank >= auth.RankAdmin

	if err := h.Service.Delete(r.Context(), chi.URLParam(r, "appraisalID"), user.EmployeeID, admin); err != nil {
		failAppraisal(w, r, err, "appraisal_delete_failed", "failed to delete appraisal")
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload appraisal.GoalInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	goal, err := h.Service.AddGoal(r.Context(), chi.URLParam(r, "appraisalID"), user.EmployeeID, payload)
	if err != nil {
		failAppraisal(w, r, err, "goal_add_failed", "failed to add goal")
		return
	}
	api.Created(w, goal, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveGoal(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.RemoveGoal(r.Context(), chi.URLParam(r, "appraisalID"), chi.URLParam(r, "goalID"), user.EmployeeID); err != nil {
		failAppraisal(w, r, err, "goal_remove_failed", "failed to remove goal")
		return
	}
	api.Success(w, map[string]string{"status": "removed"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	a, err := h.Service.Submit(r.Context(), chi.URLParam(r, "appraisalID"), user.EmployeeID)
	if err != nil {
		failAppraisal(w, r, err, "appraisal_submit_failed", "failed to submit appraisal")
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSelfAssessment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Goals map[string]appraisal.GoalEvaluation `json:"goals"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.Goals) == 0 {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "at least one goal entry is required", middleware.GetRequestID(r.Context()))
		return
	}

	a, err := h.Service.UpdateSelfAssessment(r.Context(), chi.URLParam(r, "appraisalID"), user.EmployeeID, payload.Goals)
	if err != nil {
		failAppraisal(w, r, err, "self_assessment_failed", "failed to save self assessment")
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompleteSelfAssessment(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	a, err := h.Service.CompleteSelfAssessment(r.Context(), chi.URLParam(r, "appraisalID"), user.EmployeeID)
	if err != nil {
		failAppraisal(w, r, err, "self_assessment_complete_failed", "failed to complete self assessment")
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAppraiserEvaluation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload struct {
		Goals   map[string]appraisal.GoalEvaluation `json:"goals"`
		Overall *appraisal.OverallEvaluation        `json:"overall"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if len(payload.Goals) == 0 && payload.Overall == nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "goal entries or an overall evaluation are required", middleware.GetRequestID(r.Context()))
		return
	}

	a, err := h.Service.UpdateAppraiserEvaluation(r.Context(), chi.URLParam(r, "appraisalID"), user.EmployeeID, payload.Goals, payload.Overall)
	if err != nil {
		failAppraisal(w, r, err, "appraiser_evaluation_failed", "failed to save appraiser evaluation")
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompleteAppraiserEvaluation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	a, err := h.Service.CompleteAppraiserEvaluation(r.Context(), chi.URLParam(r, "appraisalID"), user.EmployeeID)
	if err != nil {
		failAppraisal(w, r, err, "appraiser_evaluation_complete_failed", "failed to complete appraiser evaluation")
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReviewerEvaluation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	var payload appraisal.OverallEvaluation
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	if payload.Comment == nil && payload.Rating == nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "a comment or rating is required", middleware.GetRequestID(r.Context()))
		return
	}

	a, err := h.Service.UpdateReviewerEvaluation(r.Context(), chi.URLParam(r, "appraisalID"), user.EmployeeID, payload)
	if err != nil {
		failAppraisal(w, r, err, "reviewer_evaluation_failed", "failed to save reviewer evaluation")
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCompleteReviewerEvaluation(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	a, err := h.Service.CompleteReviewerEvaluation(r.Context(), chi.URLParam(r, "appraisalID"), user.EmployeeID)
	if err != nil {
		failAppraisal(w, r, err, "reviewer_evaluation_complete_failed", "failed to complete reviewer evaluation")
		return
	}
	api.Success(w, a, middleware.GetRequestID(r.Context()))
}

func isParticipant(a appraisal.Appraisal, employeeID string) bool {
	return a.AppraiseeID == employeeID || a.AppraiserID == employeeID || a.ReviewerID == employeeID
}

// failAppraisal maps the appraisal package's typed errors onto HTTP
// statuses: validation 400, missing records 404, workflow violations and
// conflicts 409. Anything else is a 500 with the caller's code.
func failAppraisal(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())

	var validationErr *appraisal.ValidationError
	var notFoundErr *appraisal.NotFoundError
	var businessErr *appraisal.BusinessLogicError
	var conflictErr *appraisal.ConflictError
	switch {
	case errors.As(err, &validationErr):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", validationErr.Error(),
			map[string]any{"kind": validationErr.Kind}, requestID)
	case errors.As(err, &notFoundErr):
		api.Fail(w, http.StatusNotFound, "not_found", notFoundErr.Error(), requestID)
	case errors.As(err, &businessErr):
		api.FailWithDetails(w, http.StatusConflict, "workflow_violation", businessErr.Error(),
			map[string]any{"kind": businessErr.Kind}, requestID)
	case errors.As(err, &conflictErr):
		api.Fail(w, http.StatusConflict, "conflict", conflictErr.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
