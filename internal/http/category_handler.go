package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/artist-booking/internal/application"
)

type categoryService interface {
	CreateCategory(ctx context.Context, input application.CategoryInput) (application.Category, error)
	UpdateCategory(ctx context.Context, id string, patch application.CategoryPatch) (application.Category, error)
	GetCategory(ctx context.Context, id string) (application.Category, error)
	ListCategories(ctx context.Context, categoryType string, req application.PageRequest) (application.PageResult[application.Category], error)
	DeleteCategory(ctx context.Context, id string) error
}

type CategoryHandler struct {
	service     categoryService
	responder   responder
	logger      *slog.Logger
	maxPageSize int
}

func NewCategoryHandler(service categoryService, maxPageSize int, logger *slog.Logger) *CategoryHandler {
	base := defaultLogger(logger)
	return &CategoryHandler{service: service, responder: newResponder(base), logger: base, maxPageSize: maxPageSize}
}

func (h *CategoryHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "CategoryHandler", operation, attrs...)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode category request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")
	category, err := h.service.CreateCategory(r.Context(), application.CategoryInput{
		Type:        strings.TrimSpace(deref(req.Type)),
		Name:        strings.TrimSpace(deref(req.Name)),
		Description: trimPtr(req.Description),
	})
	if err != nil {
		logger.WarnContext(r.Context(), "category creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("category_id", category.ID).InfoContext(r.Context(), "category created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toCategoryDTO(category))
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "category_id", id).WarnContext(r.Context(), "category lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCategoryDTO(category))
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePageRequest(r, h.maxPageSize)
	categoryType := r.URL.Query().Get("type")
	logger := h.log(r.Context(), "List", "category_type", categoryType)

	result, err := h.service.ListCategories(r.Context(), categoryType, page)
	if err != nil {
		logger.WarnContext(r.Context(), "category list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPageDTO(result, toCategoryDTO))
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Update", "category_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode category update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "category_id", id)
	category, err := h.service.UpdateCategory(r.Context(), id, application.CategoryPatch{
		Type:        trimPtr(req.Type),
		Name:        trimPtr(req.Name),
		Description: trimPtr(req.Description),
	})
	if err != nil {
		logger.WarnContext(r.Context(), "category update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "category updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCategoryDTO(category))
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	logger := h.log(r.Context(), "Delete", "category_id", id)
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		logger.WarnContext(r.Context(), "category delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "category deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type categoryRequest struct {
	Type        *string `json:"type"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type categoryDTO struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toCategoryDTO(category application.Category) categoryDTO {
	return categoryDTO{
		ID:          category.ID,
		Type:        category.Type,
		Name:        category.Name,
		Description: category.Description,
		CreatedAt:   formatTime(category.CreatedAt),
		UpdatedAt:   formatTime(category.UpdatedAt),
	}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
