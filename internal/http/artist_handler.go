package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/artist-booking/internal/application"
)

type artistService interface {
	CreateArtist(ctx context.Context, input application.ArtistInput) (application.Artist, error)
	UpdateArtist(ctx context.Context, id string, patch application.ArtistPatch) (application.Artist, error)
	GetArtist(ctx context.Context, id string) (application.Artist, error)
	ListArtists(ctx context.Context, req application.PageRequest) (application.PageResult[application.Artist], error)
	DeleteArtist(ctx context.Context, id string) error
}

type ArtistHandler struct {
	service     artistService
	responder   responder
	logger      *slog.Logger
	maxPageSize int
}

func NewArtistHandler(service artistService, maxPageSize int, logger *slog.Logger) *ArtistHandler {
	base := defaultLogger(logger)
	return &ArtistHandler{service: service, responder: newResponder(base), logger: base, maxPageSize: maxPageSize}
}

func (h *ArtistHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "ArtistHandler", operation, attrs...)
}

func (h *ArtistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req artistRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode artist request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input := application.ArtistInput{
		Name:       strings.TrimSpace(deref(req.Name)),
		Price:      strings.TrimSpace(deref(req.Price)),
		Location:   strings.TrimSpace(deref(req.Location)),
		CategoryID: strings.TrimSpace(deref(req.CategoryID)),
		ImageURL:   trimPtr(req.ImageURL),
	}
	if req.Tags != nil {
		input.Tags = *req.Tags
	}
	if req.Rating != nil {
		input.Rating = *req.Rating
	}

	logger := h.log(r.Context(), "Create")
	artist, err := h.service.CreateArtist(r.Context(), input)
	if err != nil {
		logger.WarnContext(r.Context(), "artist creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("artist_id", artist.ID).InfoContext(r.Context(), "artist created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toArtistDTO(artist))
}

func (h *ArtistHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	artist, err := h.service.GetArtist(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "artist_id", id).WarnContext(r.Context(), "artist lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toArtistDTO(artist))
}

func (h *ArtistHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListArtists(r.Context(), parsePageRequest(r, h.maxPageSize))
	if err != nil {
		h.log(r.Context(), "List").WarnContext(r.Context(), "artist list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPageDTO(result, toArtistDTO))
}

func (h *ArtistHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req artistRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Update", "artist_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode artist update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "artist_id", id)
	artist, err := h.service.UpdateArtist(r.Context(), id, application.ArtistPatch{
		Name:       trimPtr(req.Name),
		Tags:       req.Tags,
		Rating:     req.Rating,
		Price:      trimPtr(req.Price),
		Location:   trimPtr(req.Location),
		CategoryID: trimPtr(req.CategoryID),
		ImageURL:   trimPtr(req.ImageURL),
	})
	if err != nil {
		logger.WarnContext(r.Context(), "artist update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "artist updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toArtistDTO(artist))
}

func (h *ArtistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	logger := h.log(r.Context(), "Delete", "artist_id", id)
	if err := h.service.DeleteArtist(r.Context(), id); err != nil {
		logger.WarnContext(r.Context(), "artist delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "artist deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type artistRequest struct {
	Name       *string   `json:"name"`
	Tags       *[]string `json:"tags"`
	Rating     *int      `json:"rating"`
	Price      *string   `json:"price"`
	Location   *string   `json:"location"`
	CategoryID *string   `json:"category_id"`
	ImageURL   *string   `json:"image_url"`
}

type artistDTO struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Tags       []string     `json:"tags"`
	Rating     int          `json:"rating"`
	Price      string       `json:"price"`
	Location   string       `json:"location"`
	CategoryID string       `json:"category_id"`
	Category   *categoryDTO `json:"category,omitempty"`
	ImageURL   *string      `json:"image_url,omitempty"`
	CreatedAt  string       `json:"created_at"`
	UpdatedAt  string       `json:"updated_at"`
}

func toArtistDTO(artist application.Artist) artistDTO {
	dto := artistDTO{
		ID:         artist.ID,
		Name:       artist.Name,
		Tags:       artist.Tags,
		Rating:     artist.Rating,
		Price:      artist.Price,
		Location:   artist.Location,
		CategoryID: artist.CategoryID,
		ImageURL:   artist.ImageURL,
		CreatedAt:  formatTime(artist.CreatedAt),
		UpdatedAt:  formatTime(artist.UpdatedAt),
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if artist.Category != nil {
		category := toCategoryDTO(*artist.Category)
		dto.Category = &category
	}
	return dto
}
