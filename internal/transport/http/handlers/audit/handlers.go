package audithandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/audit"
	"perfeval/internal/domain/auth"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Service *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/audit", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAuditRead, h.Perms)).Get("/events", h.handleListEvents)
	})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	page := shared.ParsePagination(r, 100, 500)
	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
	}

	events, err := h.Service.List(r.Context(), user.TenantID, filter, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}
