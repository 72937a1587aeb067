package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/artist-booking/internal/application"
)

type availabilityService interface {
	CreateSlot(ctx context.Context, input application.SlotInput) (application.AvailabilitySlot, error)
	UpdateSlot(ctx context.Context, id string, patch application.SlotPatch) (application.AvailabilitySlot, error)
	GetSlot(ctx context.Context, id string) (application.AvailabilitySlot, error)
	ListSlots(ctx context.Context, req application.PageRequest) (application.PageResult[application.AvailabilitySlot], error)
	ListSlotsByArtist(ctx context.Context, artistID string, req application.PageRequest) (application.PageResult[application.AvailabilitySlot], error)
	DeleteSlot(ctx context.Context, id string) error
}

type bookingResolver interface {
	BookedTimes(ctx context.Context, artistID string) ([]application.BookedTime, error)
	ConcludedBookings(ctx context.Context, artistID string) ([]application.BookedTime, error)
}

// AvailabilityHandler serves artist slots and the views derived from slots
// and moments.
type AvailabilityHandler struct {
	service     availabilityService
	resolver    bookingResolver
	responder   responder
	logger      *slog.Logger
	maxPageSize int
}

func NewAvailabilityHandler(service availabilityService, resolver bookingResolver, maxPageSize int, logger *slog.Logger) *AvailabilityHandler {
	base := defaultLogger(logger)
	return &AvailabilityHandler{
		service:     service,
		resolver:    resolver,
		responder:   newResponder(base),
		logger:      base,
		maxPageSize: maxPageSize,
	}
}

func (h *AvailabilityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "AvailabilityHandler", operation, attrs...)
}

func (h *AvailabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req slotRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode slot request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	vErr := &application.ValidationError{}
	start := parseInstant(req.Start, "start", vErr)
	end := parseInstant(req.End, "end", vErr)
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	input := application.SlotInput{ArtistID: strings.TrimSpace(deref(req.ArtistID))}
	if start != nil {
		input.Start = *start
	}
	if end != nil {
		input.End = *end
	}

	logger := h.log(r.Context(), "Create", "artist_id", input.ArtistID)
	slot, err := h.service.CreateSlot(r.Context(), input)
	if err != nil {
		logger.WarnContext(r.Context(), "slot creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("slot_id", slot.ID).InfoContext(r.Context(), "slot created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toSlotDTO(slot))
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	slot, err := h.service.GetSlot(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Get", "slot_id", id).WarnContext(r.Context(), "slot lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSlotDTO(slot))
}

func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListSlots(r.Context(), parsePageRequest(r, h.maxPageSize))
	if err != nil {
		h.log(r.Context(), "List").WarnContext(r.Context(), "slot list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPageDTO(result, toSlotDTO))
}

// Free lists the artist's slots that no moment overlaps.
func (h *AvailabilityHandler) Free(w http.ResponseWriter, r *http.Request) {
	artistID := r.PathValue("artistId")
	result, err := h.service.ListSlotsByArtist(r.Context(), artistID, parsePageRequest(r, h.maxPageSize))
	if err != nil {
		h.log(r.Context(), "Free", "artist_id", artistID).WarnContext(r.Context(), "free slot lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toPageDTO(result, toSlotDTO))
}

func (h *AvailabilityHandler) Booked(w http.ResponseWriter, r *http.Request) {
	artistID := r.PathValue("artistId")
	booked, err := h.resolver.BookedTimes(r.Context(), artistID)
	if err != nil {
		h.log(r.Context(), "Booked", "artist_id", artistID).WarnContext(r.Context(), "booked time lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookedResponse{Data: toBookedDTOs(booked)})
}

func (h *AvailabilityHandler) Concluded(w http.ResponseWriter, r *http.Request) {
	artistID := r.PathValue("artistId")
	concluded, err := h.resolver.ConcludedBookings(r.Context(), artistID)
	if err != nil {
		h.log(r.Context(), "Concluded", "artist_id", artistID).WarnContext(r.Context(), "concluded booking lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, bookedResponse{Data: toBookedDTOs(concluded)})
}

func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req slotRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Update", "slot_id", id, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode slot update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	vErr := &application.ValidationError{}
	patch := application.SlotPatch{
		ArtistID: trimPtr(req.ArtistID),
		Start:    parseInstant(req.Start, "start", vErr),
		End:      parseInstant(req.End, "end", vErr),
	}
	if vErr.HasErrors() {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	logger := h.log(r.Context(), "Update", "slot_id", id)
	slot, err := h.service.UpdateSlot(r.Context(), id, patch)
	if err != nil {
		logger.WarnContext(r.Context(), "slot update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "slot updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSlotDTO(slot))
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	logger := h.log(r.Context(), "Delete", "slot_id", id)
	if err := h.service.DeleteSlot(r.Context(), id); err != nil {
		logger.WarnContext(r.Context(), "slot delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "slot deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type slotRequest struct {
	ArtistID *string `json:"artist_id"`
	Start    *string `json:"start"`
	End      *string `json:"end"`
}

type slotDTO struct {
	ID        string     `json:"id"`
	ArtistID  string     `json:"artist_id"`
	Artist    *artistDTO `json:"artist,omitempty"`
	Start     string     `json:"start"`
	End       string     `json:"end"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

func toSlotDTO(slot application.AvailabilitySlot) slotDTO {
	dto := slotDTO{
		ID:        slot.ID,
		ArtistID:  slot.ArtistID,
		Start:     formatTime(slot.Start),
		End:       formatTime(slot.End),
		CreatedAt: formatTime(slot.CreatedAt),
		UpdatedAt: formatTime(slot.UpdatedAt),
	}
	if slot.Artist != nil {
		artist := toArtistDTO(*slot.Artist)
		dto.Artist = &artist
	}
	return dto
}

type bookedResponse struct {
	Data []bookedDTO `json:"data"`
}

type bookedDTO struct {
	MomentID   string  `json:"moment_id"`
	ArtistID   string  `json:"artist_id"`
	CategoryID string  `json:"category_id"`
	Date       string  `json:"date"`
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Location   string  `json:"location"`
	Message    *string `json:"message,omitempty"`
}

func toBookedDTOs(booked []application.BookedTime) []bookedDTO {
	out := make([]bookedDTO, 0, len(booked))
	for _, b := range booked {
		out = append(out, bookedDTO{
			MomentID:   b.MomentID,
			ArtistID:   b.ArtistID,
			CategoryID: b.CategoryID,
			Date:       b.Date,
			Start:      formatTime(b.Start),
			End:        formatTime(b.End),
			Location:   b.Location,
			Message:    b.Message,
		})
	}
	return out
}
