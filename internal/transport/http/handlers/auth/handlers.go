package authhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/auth"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
)

const tokenTTL = 8 * time.Hour

type Handler struct {
	Store  *auth.Store
	Secret string
}

func NewHandler(store *auth.Store, secret string) *Handler {
	return &Handler{Store: store, Secret: secret}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Get("/auth/me", h.HandleMe)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	user, err := h.Store.FindActiveUserByEmail(r.Context(), payload.Email)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(user.Password, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		RoleID:   user.RoleID,
		RoleName: user.RoleName,
	}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("last login update failed", "err", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"role":  user.RoleName,
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]string{
		"userId":   user.UserID,
		"tenantId": user.TenantID,
		"role":     user.RoleName,
	}, middleware.GetRequestID(r.Context()))
}
