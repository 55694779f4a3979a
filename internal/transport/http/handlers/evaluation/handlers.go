package evaluationhandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"perfeval/internal/domain/audit"
	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/evaluation"
	"perfeval/internal/domain/reports"
	"perfeval/internal/transport/http/api"
	"perfeval/internal/transport/http/middleware"
	"perfeval/internal/transport/http/shared"
)

type Handler struct {
	Service *evaluation.Service
	Reports *reports.Service
	Perms   middleware.PermissionStore
	Audit   *audit.Service
}

func NewHandler(service *evaluation.Service, reportsSvc *reports.Service, perms middleware.PermissionStore, auditSvc *audit.Service) *Handler {
	return &Handler{Service: service, Reports: reportsSvc, Perms: perms, Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/categories", h.handleListCategories)
		r.With(middleware.RequirePermission(auth.PermTemplatesManage, h.Perms)).Post("/categories", h.handleCreateCategory)
		r.With(middleware.RequirePermission(auth.PermTemplatesManage, h.Perms)).Put("/categories/{categoryID}", h.handleUpdateCategory)
		r.With(middleware.RequirePermission(auth.PermTemplatesManage, h.Perms)).Delete("/categories/{categoryID}", h.handleDeleteCategory)

		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/templates", h.handleListTemplates)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/templates/{templateID}", h.handleGetTemplate)
		r.With(middleware.RequirePermission(auth.PermTemplatesManage, h.Perms)).Post("/templates", h.handleCreateTemplate)
		r.With(middleware.RequirePermission(auth.PermTemplatesManage, h.Perms)).Put("/templates/{templateID}", h.handleUpdateTemplate)
		r.With(middleware.RequirePermission(auth.PermTemplatesManage, h.Perms)).Delete("/templates/{templateID}", h.handleDeleteTemplate)
		r.With(middleware.RequirePermission(auth.PermTemplatesManage, h.Perms)).Post("/templates/{templateID}/duplicate", h.handleDuplicateTemplate)

		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/stats", h.handleStats)

		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEvaluationsAssign, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/{evaluationID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms)).Put("/{evaluationID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermEvaluationsAssign, h.Perms)).Delete("/{evaluationID}", h.handleDelete)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/{evaluationID}/report", h.handleReport)
	})
}

// failDomain translates domain sentinel errors into the HTTP error
// taxonomy. Anything unrecognized is a 500 with a generic message.
func failDomain(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, evaluation.ErrEvaluationNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", requestID)
	case errors.Is(err, evaluation.ErrTemplateNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "template not found", requestID)
	case errors.Is(err, evaluation.ErrCategoryNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "category not found", requestID)
	case errors.Is(err, evaluation.ErrEmployeeNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "employee not found", requestID)
	case errors.Is(err, evaluation.ErrTemplateInUse):
		api.Fail(w, http.StatusConflict, "template_in_use", "template is referenced by existing evaluations", requestID)
	case errors.Is(err, evaluation.ErrCategoryInUse):
		api.Fail(w, http.StatusConflict, "category_in_use", "category is referenced by existing questions", requestID)
	case errors.Is(err, evaluation.ErrStaleVersion):
		api.Fail(w, http.StatusConflict, "stale_version", "evaluation was modified by another writer; reload and retry", requestID)
	case errors.Is(err, evaluation.ErrRoleConcluded):
		api.Fail(w, http.StatusConflict, "role_concluded", "this side of the evaluation is concluded; send reopen to edit", requestID)
	case errors.Is(err, evaluation.ErrRoleForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "cannot write the other role's fields", requestID)
	case errors.Is(err, evaluation.ErrNotParticipant):
		api.Fail(w, http.StatusForbidden, "forbidden", "not a participant of this evaluation", requestID)
	case errors.Is(err, evaluation.ErrScoreOutOfRange):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "score must be between 0 and 10", requestID)
	case errors.Is(err, evaluation.ErrAnswerUnknown):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "answer does not belong to this evaluation", requestID)
	case errors.Is(err, evaluation.ErrTemplateNoQuestion):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "template must have at least one question", requestID)
	case errors.Is(err, evaluation.ErrNoEvaluator):
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "employee has no manager; evaluator id required", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
	}
}

func (h *Handler) record(r *http.Request, user auth.UserContext, action, entityType, entityID string, payload any) {
	if h.Audit == nil {
		return
	}
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), payload); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}

// actorEmployeeID resolves the acting user's employee row. HR users may
// not have one; they operate on the catalog and assignments only.
func (h *Handler) actorEmployeeID(r *http.Request, user auth.UserContext) string {
	id, err := h.Service.EmployeeIDByUserID(r.Context(), user.TenantID, user.UserID)
	if err != nil {
		if !errors.Is(err, evaluation.ErrEmployeeNotFound) {
			slog.Warn("actor employee lookup failed", "err", err)
		}
		return ""
	}
	return id
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	categories, err := h.Service.ListCategories(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "category_list_failed", "failed to list categories", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, categories, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "category name required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	category, err := h.Service.CreateCategory(r.Context(), user.TenantID, payload.Name, payload.Description)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "evaluation.category.create", "category", category.ID, payload)
	api.Created(w, category, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	categoryID := chi.URLParam(r, "categoryID")
	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("name", payload.Name, "category name required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	category := evaluation.Category{ID: categoryID, Name: payload.Name, Description: payload.Description}
	if err := h.Service.UpdateCategory(r.Context(), user.TenantID, category); err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "evaluation.category.update", "category", categoryID, payload)
	api.Success(w, category, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	categoryID := chi.URLParam(r, "categoryID")
	if err := h.Service.DeleteCategory(r.Context(), user.TenantID, categoryID); err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "evaluation.category.delete", "category", categoryID, nil)
	api.Success(w, map[string]string{"id": categoryID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	templates, err := h.Service.ListTemplates(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "template_list_failed", "failed to list templates", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, templates, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	template, err := h.Service.GetTemplate(r.Context(), user.TenantID, chi.URLParam(r, "templateID"))
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, template, middleware.GetRequestID(r.Context()))
}

type templatePayload struct {
	Name        string                     `json:"name"`
	Description string                     `json:"description"`
	Questions   []evaluation.QuestionInput `json:"questions"`
}

func (p templatePayload) validate(v *shared.Validator) {
	v.Required("name", p.Name, "template name required")
	if len(p.Questions) == 0 {
		v.Add("questions", "at least one question required")
	}
	for _, question := range p.Questions {
		v.Required("questions.text", question.Text, "question text required")
		v.Required("questions.categoryId", question.CategoryID, "question category required")
		score := question.ExpectedScore
		v.Score("questions.expectedScore", &score)
	}
}

func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload templatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	payload.validate(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	template, err := h.Service.CreateTemplate(r.Context(), user.TenantID, payload.Name, payload.Description, payload.Questions)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "evaluation.template.create", "template", template.ID, payload)
	api.Created(w, template, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	templateID := chi.URLParam(r, "templateID")
	var payload templatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	payload.validate(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	template, err := h.Service.UpdateTemplate(r.Context(), user.TenantID, templateID, payload.Name, payload.Description, payload.Questions)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "evaluation.template.update", "template", templateID, payload)
	api.Success(w, template, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	templateID := chi.URLParam(r, "templateID")
	if err := h.Service.DeleteTemplate(r.Context(), user.TenantID, templateID); err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "evaluation.template.delete", "template", templateID, nil)
	api.Success(w, map[string]string{"id": templateID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDuplicateTemplate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	templateID := chi.URLParam(r, "templateID")
	var payload struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
			return
		}
	}

	duplicated, err := h.Service.DuplicateTemplate(r.Context(), user.TenantID, templateID, payload.Name, payload.Description)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "evaluation.template.duplicate", "template", duplicated.ID, map[string]string{"sourceId": templateID})
	api.Created(w, duplicated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	employeeID := ""
	evaluatorID := ""
	switch user.RoleName {
	case auth.RoleEmployee:
		employeeID = h.actorEmployeeID(r, user)
		if employeeID == "" {
			api.Success(w, []evaluation.Summary{}, middleware.GetRequestID(r.Context()))
			return
		}
	case auth.RoleManager:
		evaluatorID = h.actorEmployeeID(r, user)
		if evaluatorID == "" {
			api.Success(w, []evaluation.Summary{}, middleware.GetRequestID(r.Context()))
			return
		}
	}

	summaries, err := h.Service.List(r.Context(), user.TenantID, employeeID, evaluatorID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "evaluation_list_failed", "failed to list evaluations", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, summaries, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID  string `json:"employeeId"`
		EvaluatorID string `json:"evaluatorId"`
		TemplateID  string `json:"templateId"`
		Date        string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id required")
	v.Required("templateId", payload.TemplateID, "template id required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	date := time.Now()
	if payload.Date != "" {
		parsed, err := shared.ParseDate(payload.Date)
		if err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid date", middleware.GetRequestID(r.Context()))
			return
		}
		date = parsed
	}

	ev, err := h.Service.Instantiate(r.Context(), user.TenantID, payload.EmployeeID, payload.EvaluatorID, payload.TemplateID, date)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "evaluation.create", "evaluation", ev.ID, payload)
	api.Created(w, ev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	ev, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "evaluationID"))
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if user.RoleName != auth.RoleHR {
		actorID := h.actorEmployeeID(r, user)
		if actorID == "" || (actorID != ev.EmployeeID && actorID != ev.EvaluatorID) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not a participant of this evaluation", middleware.GetRequestID(r.Context()))
			return
		}
	}
	api.Success(w, ev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	evaluationID := chi.URLParam(r, "evaluationID")
	var req evaluation.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	if req.Version <= 0 {
		v.Add("version", "current version required")
	}
	for _, patch := range req.Answers {
		v.Required("evaluationanswer.id", patch.ID, "answer id required")
		v.Score("evaluationanswer.selfScore", patch.SelfScore)
		v.Score("evaluationanswer.managerScore", patch.ManagerScore)
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	actorID := h.actorEmployeeID(r, user)
	if actorID == "" {
		api.Fail(w, http.StatusForbidden, "forbidden", "not a participant of this evaluation", middleware.GetRequestID(r.Context()))
		return
	}

	ev, err := h.Service.Update(r.Context(), user.TenantID, actorID, evaluationID, req)
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "evaluation.update", "evaluation", evaluationID, req)
	api.Success(w, ev, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	evaluationID := chi.URLParam(r, "evaluationID")
	if err := h.Service.Delete(r.Context(), user.TenantID, evaluationID); err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	h.record(r, user, "evaluation.delete", "evaluation", evaluationID, nil)
	api.Success(w, map[string]string{"id": evaluationID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	stats, err := h.Reports.EvaluationStats(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "stats_failed", "failed to compute stats", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, stats, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	ev, err := h.Service.Get(r.Context(), user.TenantID, chi.URLParam(r, "evaluationID"))
	if err != nil {
		failDomain(w, err, middleware.GetRequestID(r.Context()))
		return
	}

	if user.RoleName != auth.RoleHR {
		actorID := h.actorEmployeeID(r, user)
		if actorID == "" || (actorID != ev.EmployeeID && actorID != ev.EvaluatorID) {
			api.Fail(w, http.StatusForbidden, "forbidden", "not a participant of this evaluation", middleware.GetRequestID(r.Context()))
			return
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="evaluation-`+ev.ID+`.pdf"`)
	if err := h.Reports.WriteEvaluationPDF(r.Context(), w, user.TenantID, ev); err != nil {
		slog.Warn("evaluation pdf render failed", "err", err)
	}
}
