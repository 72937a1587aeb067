package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/artist-booking/internal/application"
)

type momentService interface {
	CreateMoment(ctx context.Context, input application.MomentInput) (application.MomentResult, error)
	UpdateMoment(ctx context.Context, id string, patch application.MomentPatch) (application.MomentResult, error)
	GetMoment(ctx context.Context, id string) (application.Moment, error)
	ListMoments(ctx context.Context, req application.PageRequest) (application.PageResult[application.Moment], error)
	DeleteMoment(ctx context.Context, id string) (application.Moment, error)
}

type MomentHandler struct {
	service     momentService
	responder   responder
	logger      *slog.Logger
	maxPageSize int
}

func NewMomentHandler(service momentService, maxPageSize int, logger *slog.Logger) *MomentHandler {
	base := defaultLogger(logger)
	return &MomentHandler{service: service, responder: newResponder(base), logger: base, maxPageSize: maxPageSize}
}

func (h *MomentHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "MomentHandler", operation, attrs...)
}

func (h *MomentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req momentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode moment request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")
	result, err := h.service.CreateMoment(r.Context(), application.MomentInput{
		ArtistID:   strings.TrimSpace(deref(req.ArtistID)),
		CategoryID: strings.TrimSpace(deref(req.CategoryID)),
		Date:       strings.TrimSpace(deref(req.Date)),
		StartTime:  strings.TrimSpace(deref(req.StartTime)),
		EndTime:    strings.TrimSpace(deref(req.EndTime)),
		Location:   strings.TrimSpace(deref(req.Location)),
		Message:    trimPtr(req.Message),
	})
	if err != nil {
		logger.WarnContext(r.Context(), "moment creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("moment_id", result.Moment.ID, "warnings", len(result.Warnings)).InfoContext(r.Context(), "moment created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toMomentWriteResponse(result))
}

func (h *MomentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	moment, err := h.service.GetMoment(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "moment_id", id).WarnContext(r.Context(), "moment lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMomentDTO(moment))
}

func (h *MomentHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListMoments(r.Context(), parsePageRequest(r, h.maxPageSize))
	if err != nil {
		h.log(r.Context(), "List").WarnContext(r.Context(), "moment list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPageDTO(result, toMomentDTO))
}

func (h *MomentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req momentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Update", "moment_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode moment update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "moment_id", id)
	result, err := h.service.UpdateMoment(r.Context(), id, application.MomentPatch{
		ArtistID:   trimPtr(req.ArtistID),
		CategoryID: trimPtr(req.CategoryID),
		Date:       trimPtr(req.Date),
		StartTime:  trimPtr(req.StartTime),
		EndTime:    trimPtr(req.EndTime),
		Location:   trimPtr(req.Location),
		Message:    trimPtr(req.Message),
	})
	if err != nil {
		logger.WarnContext(r.Context(), "moment update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("warnings", len(result.Warnings)).InfoContext(r.Context(), "moment updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMomentWriteResponse(result))
}

// Delete removes a moment and echoes it back.
func (h *MomentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	logger := h.log(r.Context(), "Delete", "moment_id", id)
	moment, err := h.service.DeleteMoment(r.Context(), id)
	if err != nil {
		logger.WarnContext(r.Context(), "moment delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "moment deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMomentDTO(moment))
}

type momentRequest struct {
	ArtistID   *string `json:"artist_id"`
	CategoryID *string `json:"category_id"`
	Date       *string `json:"date"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	Location   *string `json:"location"`
	Message    *string `json:"message"`
}

type momentDTO struct {
	ID         string       `json:"id"`
	ArtistID   string       `json:"artist_id"`
	CategoryID string       `json:"category_id"`
	Artist     *artistDTO   `json:"artist,omitempty"`
	Category   *categoryDTO `json:"category,omitempty"`
	Date       string       `json:"date"`
	StartTime  string       `json:"start_time"`
	EndTime    string       `json:"end_time"`
	Location   string       `json:"location"`
	Message    *string      `json:"message,omitempty"`
	CreatedAt  string       `json:"created_at"`
	UpdatedAt  string       `json:"updated_at"`
}

type overlapDTO struct {
	MomentID string `json:"moment_id"`
	Start    string `json:"start"`
	End      string `json:"end"`
}

type momentWriteResponse struct {
	momentDTO
	Warnings []overlapDTO `json:"warnings"`
}

func toMomentDTO(moment application.Moment) momentDTO {
	dto := momentDTO{
		ID:         moment.ID,
		ArtistID:   moment.ArtistID,
		CategoryID: moment.CategoryID,
		Date:       moment.Date,
		StartTime:  moment.StartTime,
		EndTime:    moment.EndTime,
		Location:   moment.Location,
		Message:    moment.Message,
		CreatedAt:  formatTime(moment.CreatedAt),
		UpdatedAt:  formatTime(moment.UpdatedAt),
	}
	if moment.Artist != nil {
		artist := toArtistDTO(*moment.Artist)
		dto.Artist = &artist
	}
	if moment.Category != nil {
		category := toCategoryDTO(*moment.Category)
		dto.Category = &category
	}
	return dto
}

func toMomentWriteResponse(result application.MomentResult) momentWriteResponse {
	warnings := make([]overlapDTO, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnings = append(warnings, overlapDTO{
			MomentID: w.MomentID,
			Start:    formatTime(w.Start),
			End:      formatTime(w.End),
		})
	}
	return momentWriteResponse{momentDTO: toMomentDTO(result.Moment), Warnings: warnings}
}
