package employeehandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pms/internal/domain/auth"
	"pms/internal/domain/employee"
	"pms/internal/transport/http/api"
	"pms/internal/transport/http/middleware"
	"pms/internal/transport/http/shared"
)

type Handler struct {
	Service *employee.Service
}

func NewHandler(service *employee.Service) *Handler {
	return &Handler{Service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", h.handleList)
		r.Get("/{employeeID}", h.handleGet)
		r.With(middleware.RequireMinRole(auth.RankAdmin)).Post("/", h.handleCreate)
		r.With(middleware.RequireMinRole(auth.RankAdmin)).Put("/{employeeID}", h.handleUpdate)
		r.With(middleware.RequireMinRole(auth.RankAdmin)).Delete("/{employeeID}", h.handleDeactivate)
	})
	r.With(middleware.RequireAuth).Get("/roles", h.handleListRoles)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	includeInactive := r.URL.Query().Get("includeInactive") == "true"

	employees, err := h.Service.List(r.Context(), includeInactive, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "employee_list_failed", "failed to list employees", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	e, err := h.Service.Get(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		failEmployee(w, r, err, "employee_get_failed", "failed to load employee")
		return
	}
	api.Success(w, e, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload employee.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "name is required")
	v.Required("email", payload.Email, "email is required")
	v.Required("password", payload.Password, "password is required")
	if payload.RoleID <= 0 {
		v.Add("roleId", "a valid role id is required")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	e, err := h.Service.Create(r.Context(), payload)
	if err != nil {
		failEmployee(w, r, err, "employee_create_failed", "failed to create employee")
		return
	}
	api.Created(w, e, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload employee.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	e, err := h.Service.Update(r.Context(), chi.URLParam(r, "employeeID"), payload)
	if err != nil {
		failEmployee(w, r, err, "employee_update_failed", "failed to update employee")
		return
	}
	api.Success(w, e, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Deactivate(r.Context(), chi.URLParam(r, "employeeID")); err != nil {
		failEmployee(w, r, err, "employee_deactivate_failed", "failed to deactivate employee")
		return
	}
	api.Success(w, map[string]string{"status": "deactivated"}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.Roles(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "role_list_failed", "failed to list roles", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, roles, middleware.GetRequestID(r.Context()))
}

// failEmployee translates the employee package's sentinel errors into the
// API envelope, falling back to a 500 with the caller's code.
func failEmployee(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, employee.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, employee.ErrEmailTaken):
		api.Fail(w, http.StatusConflict, "email_taken", err.Error(), requestID)
	case errors.Is(err, employee.ErrRoleNotFound):
		api.Fail(w, http.StatusBadRequest, "invalid_role", err.Error(), requestID)
	case errors.Is(err, employee.ErrReportingCycle):
		api.Fail(w, http.StatusConflict, "reporting_cycle", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, code, message, requestID)
	}
}
