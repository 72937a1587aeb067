package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/artist-booking/internal/application"
)

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

type stubCategoryService struct {
	createErr error
	lastInput application.CategoryInput
	lastType  string
	lastPage  application.PageRequest
	deleteErr error
}

func (s *stubCategoryService) CreateCategory(_ context.Context, input application.CategoryInput) (application.Category, error) {
	s.lastInput = input
	if s.createErr != nil {
		return application.Category{}, s.createErr
	}
	return application.Category{ID: "cat-1", Type: input.Type, Name: input.Name, CreatedAt: testNow, UpdatedAt: testNow}, nil
}

func (s *stubCategoryService) UpdateCategory(_ context.Context, id string, patch application.CategoryPatch) (application.Category, error) {
	return application.Category{ID: id, Type: "artist", Name: deref(patch.Name)}, nil
}

func (s *stubCategoryService) GetCategory(_ context.Context, id string) (application.Category, error) {
	if id != "cat-1" {
		return application.Category{}, application.ErrNotFound
	}
	return application.Category{ID: id, Type: "artist", Name: "Band"}, nil
}

func (s *stubCategoryService) ListCategories(_ context.Context, categoryType string, req application.PageRequest) (application.PageResult[application.Category], error) {
	s.lastType = categoryType
	s.lastPage = req
	return application.PageResult[application.Category]{
		Items:      []application.Category{{ID: "cat-1", Type: "artist", Name: "Band"}},
		Total:      1,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: 1,
	}, nil
}

func (s *stubCategoryService) DeleteCategory(context.Context, string) error {
	return s.deleteErr
}

type stubAvailabilityService struct {
	createErr error
	lastInput application.SlotInput
	lastPatch application.SlotPatch
	freeErr   error
	lastPage  application.PageRequest
}

func (s *stubAvailabilityService) CreateSlot(_ context.Context, input application.SlotInput) (application.AvailabilitySlot, error) {
	s.lastInput = input
	if s.createErr != nil {
		return application.AvailabilitySlot{}, s.createErr
	}
	return application.AvailabilitySlot{ID: "slot-1", ArtistID: input.ArtistID, Start: input.Start, End: input.End}, nil
}

func (s *stubAvailabilityService) UpdateSlot(_ context.Context, id string, patch application.SlotPatch) (application.AvailabilitySlot, error) {
	s.lastPatch = patch
	return application.AvailabilitySlot{ID: id, ArtistID: "artist-1", Start: testNow, End: testNow.Add(time.Hour)}, nil
}

func (s *stubAvailabilityService) GetSlot(_ context.Context, id string) (application.AvailabilitySlot, error) {
	return application.AvailabilitySlot{}, application.ErrNotFound
}

func (s *stubAvailabilityService) ListSlots(_ context.Context, req application.PageRequest) (application.PageResult[application.AvailabilitySlot], error) {
	s.lastPage = req
	if req.Page < 1 || req.Limit < 1 {
		return application.PageResult[application.AvailabilitySlot]{}, &application.ValidationError{FieldErrors: map[string]string{"page": "page must be a positive integer"}}
	}
	return application.PageResult[application.AvailabilitySlot]{Items: []application.AvailabilitySlot{}, Page: req.Page, Limit: req.Limit}, nil
}

func (s *stubAvailabilityService) ListSlotsByArtist(_ context.Context, artistID string, req application.PageRequest) (application.PageResult[application.AvailabilitySlot], error) {
	if s.freeErr != nil {
		return application.PageResult[application.AvailabilitySlot]{}, s.freeErr
	}
	artist := application.Artist{ID: artistID, Name: "Quartet", CategoryID: "cat-1"}
	slot := application.AvailabilitySlot{ID: "slot-9", ArtistID: artistID, Artist: &artist, Start: testNow, End: testNow.Add(time.Hour)}
	return application.PageResult[application.AvailabilitySlot]{
		Items:      []application.AvailabilitySlot{slot},
		Total:      3,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: 3,
	}, nil
}

func (s *stubAvailabilityService) DeleteSlot(context.Context, string) error {
	return nil
}

type stubResolver struct {
	booked []application.BookedTime
	err    error
}

func (s *stubResolver) BookedTimes(context.Context, string) ([]application.BookedTime, error) {
	return s.booked, s.err
}

func (s *stubResolver) ConcludedBookings(context.Context, string) ([]application.BookedTime, error) {
	return s.booked, s.err
}

type stubMomentService struct {
	result application.MomentResult
	err    error
}

func (s *stubMomentService) CreateMoment(_ context.Context, input application.MomentInput) (application.MomentResult, error) {
	return s.result, s.err
}

func (s *stubMomentService) UpdateMoment(context.Context, string, application.MomentPatch) (application.MomentResult, error) {
	return s.result, s.err
}

func (s *stubMomentService) GetMoment(context.Context, string) (application.Moment, error) {
	return s.result.Moment, s.err
}

func (s *stubMomentService) ListMoments(_ context.Context, req application.PageRequest) (application.PageResult[application.Moment], error) {
	return application.PageResult[application.Moment]{Items: []application.Moment{s.result.Moment}, Total: 1, Page: req.Page, Limit: req.Limit, TotalPages: 1}, s.err
}

func (s *stubMomentService) DeleteMoment(context.Context, string) (application.Moment, error) {
	return s.result.Moment, s.err
}

func serve(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func TestCategoryHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create returns 201 with the category", func(t *testing.T) {
		t.Parallel()
		svc := &stubCategoryService{}
		router := NewRouter(RouterConfig{Categories: NewCategoryHandler(svc, 100, nil)})

		rec := serve(t, router, http.MethodPost, "/categories", `{"type":" artist ","name":" Band "}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "artist", svc.lastInput.Type)
		assert.Equal(t, "Band", svc.lastInput.Name)
		var body categoryDTO
		decodeBody(t, rec, &body)
		assert.Equal(t, "cat-1", body.ID)
		assert.Equal(t, "2025-01-10T12:00:00Z", body.CreatedAt)
	})

	t.Run("malformed JSON is rejected with 400", func(t *testing.T) {
		t.Parallel()
		router := NewRouter(RouterConfig{Categories: NewCategoryHandler(&stubCategoryService{}, 100, nil)})

		rec := serve(t, router, http.MethodPost, "/categories", `{"type":`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicates map to 409", func(t *testing.T) {
		t.Parallel()
		svc := &stubCategoryService{createErr: application.ErrAlreadyExists}
		router := NewRouter(RouterConfig{Categories: NewCategoryHandler(svc, 100, nil)})

		rec := serve(t, router, http.MethodPost, "/categories", `{"type":"artist","name":"Band"}`)

		require.Equal(t, http.StatusConflict, rec.Code)
		var body errorResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "ALREADY_EXISTS", body.ErrorCode)
	})

	t.Run("deleting a referenced category maps to 409 with the reason", func(t *testing.T) {
		t.Parallel()
		svc := &stubCategoryService{deleteErr: fmt.Errorf("category is referenced by artists or moments: %w", application.ErrConflict)}
		router := NewRouter(RouterConfig{Categories: NewCategoryHandler(svc, 100, nil)})

		rec := serve(t, router, http.MethodDelete, "/categories/cat-1", "")

		require.Equal(t, http.StatusConflict, rec.Code)
		var body errorResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "category is referenced by artists or moments", body.Message)
	})

	t.Run("unknown ids map to 404", func(t *testing.T) {
		t.Parallel()
		router := NewRouter(RouterConfig{Categories: NewCategoryHandler(&stubCategoryService{}, 100, nil)})

		rec := serve(t, router, http.MethodGet, "/categories/missing", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("list forwards the type filter and caps the limit", func(t *testing.T) {
		t.Parallel()
		svc := &stubCategoryService{}
		router := NewRouter(RouterConfig{Categories: NewCategoryHandler(svc, 50, nil)})

		rec := serve(t, router, http.MethodGet, "/categories?type=moment&page=2&limit=500", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "moment", svc.lastType)
		assert.Equal(t, application.PageRequest{Page: 2, Limit: 50}, svc.lastPage)
		var body pageDTO[categoryDTO]
		decodeBody(t, rec, &body)
		assert.Len(t, body.Data, 1)
		assert.Equal(t, 1, body.LastPage)
	})
}

func TestAvailabilityHandlers(t *testing.T) {
	t.Parallel()

	t.Run("create parses RFC3339 instants", func(t *testing.T) {
		t.Parallel()
		svc := &stubAvailabilityService{}
		router := NewRouter(RouterConfig{Availability: NewAvailabilityHandler(svc, &stubResolver{}, 100, nil)})

		rec := serve(t, router, http.MethodPost, "/availability", `{"artist_id":"artist-1","start":"2025-01-10T10:00:00+02:00","end":"2025-01-10T11:00:00Z"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "artist-1", svc.lastInput.ArtistID)
		assert.True(t, svc.lastInput.Start.Equal(time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)))
		var body slotDTO
		decodeBody(t, rec, &body)
		assert.Equal(t, "2025-01-10T08:00:00Z", body.Start)
	})

	t.Run("invalid instants are validation errors", func(t *testing.T) {
		t.Parallel()
		router := NewRouter(RouterConfig{Availability: NewAvailabilityHandler(&stubAvailabilityService{}, &stubResolver{}, 100, nil)})

		rec := serve(t, router, http.MethodPost, "/availability", `{"artist_id":"artist-1","start":"tomorrow","end":"2025-01-10T11:00:00Z"}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var body errorResponse
		decodeBody(t, rec, &body)
		assert.Contains(t, body.Errors, "start")
	})

	t.Run("overlapping slots map to 409", func(t *testing.T) {
		t.Parallel()
		svc := &stubAvailabilityService{createErr: fmt.Errorf("slot overlaps an existing slot for this artist: %w", application.ErrConflict)}
		router := NewRouter(RouterConfig{Availability: NewAvailabilityHandler(svc, &stubResolver{}, 100, nil)})

		rec := serve(t, router, http.MethodPost, "/availability", `{"artist_id":"artist-1","start":"2025-01-10T10:00:00Z","end":"2025-01-10T11:00:00Z"}`)

		require.Equal(t, http.StatusConflict, rec.Code)
		var body errorResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "CONFLICT", body.ErrorCode)
		assert.Equal(t, "slot overlaps an existing slot for this artist", body.Message)
	})

	t.Run("update passes only supplied fields", func(t *testing.T) {
		t.Parallel()
		svc := &stubAvailabilityService{}
		router := NewRouter(RouterConfig{Availability: NewAvailabilityHandler(svc, &stubResolver{}, 100, nil)})

		rec := serve(t, router, http.MethodPatch, "/availability/slot-1", `{"end":"2025-01-10T13:00:00Z"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, svc.lastPatch.ArtistID)
		assert.Nil(t, svc.lastPatch.Start)
		require.NotNil(t, svc.lastPatch.End)
		assert.Equal(t, 13, svc.lastPatch.End.Hour())
	})

	t.Run("missing pagination is a validation error", func(t *testing.T) {
		t.Parallel()
		svc := &stubAvailabilityService{}
		router := NewRouter(RouterConfig{Availability: NewAvailabilityHandler(svc, &stubResolver{}, 100, nil)})

		rec := serve(t, router, http.MethodGet, "/availability?page=abc", "")

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, application.PageRequest{}, svc.lastPage)
	})

	t.Run("free slots report post-filter totals", func(t *testing.T) {
		t.Parallel()
		router := NewRouter(RouterConfig{Availability: NewAvailabilityHandler(&stubAvailabilityService{}, &stubResolver{}, 100, nil)})

		rec := serve(t, router, http.MethodGet, "/availability/artist/artist-1?page=1&limit=1", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body pageDTO[slotDTO]
		decodeBody(t, rec, &body)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "artist-1", body.Data[0].ArtistID)
		require.NotNil(t, body.Data[0].Artist)
		assert.Equal(t, "Quartet", body.Data[0].Artist.Name)
		assert.Equal(t, 3, body.Total)
		assert.Equal(t, 3, body.TotalPages)
	})

	t.Run("slots without a loaded artist omit the relation", func(t *testing.T) {
		t.Parallel()
		router := NewRouter(RouterConfig{Availability: NewAvailabilityHandler(&stubAvailabilityService{}, &stubResolver{}, 100, nil)})

		rec := serve(t, router, http.MethodPost, "/availability", `{"artist_id":"artist-1","start":"2025-01-10T10:00:00Z","end":"2025-01-10T11:00:00Z"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.NotContains(t, rec.Body.String(), `"artist":`)
	})

	t.Run("free slots of an unknown artist map to 404", func(t *testing.T) {
		t.Parallel()
		svc := &stubAvailabilityService{freeErr: application.ErrNotFound}
		router := NewRouter(RouterConfig{Availability: NewAvailabilityHandler(svc, &stubResolver{}, 100, nil)})

		rec := serve(t, router, http.MethodGet, "/availability/artist/ghost?page=1&limit=10", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("booked times render an empty list as []", func(t *testing.T) {
		t.Parallel()
		router := NewRouter(RouterConfig{Availability: NewAvailabilityHandler(&stubAvailabilityService{}, &stubResolver{}, 100, nil)})

		rec := serve(t, router, http.MethodGet, "/availability/artist/artist-1/booked", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
	})

	t.Run("concluded bookings render instants", func(t *testing.T) {
		t.Parallel()
		resolver := &stubResolver{booked: []application.BookedTime{{
			MomentID: "moment-1",
			ArtistID: "artist-1",
			Date:     "2025-01-05",
			Start:    time.Date(2025, 1, 5, 22, 0, 0, 0, time.UTC),
			End:      time.Date(2025, 1, 6, 1, 0, 0, 0, time.UTC),
		}}}
		router := NewRouter(RouterConfig{Availability: NewAvailabilityHandler(&stubAvailabilityService{}, resolver, 100, nil)})

		rec := serve(t, router, http.MethodGet, "/availability/artist/artist-1/concluded", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body bookedResponse
		decodeBody(t, rec, &body)
		require.Len(t, body.Data, 1)
		assert.Equal(t, "2025-01-06T01:00:00Z", body.Data[0].End)
	})

	t.Run("unexpected errors map to 500 without details", func(t *testing.T) {
		t.Parallel()
		resolver := &stubResolver{err: errors.New("disk on fire")}
		router := NewRouter(RouterConfig{Availability: NewAvailabilityHandler(&stubAvailabilityService{}, resolver, 100, nil)})

		rec := serve(t, router, http.MethodGet, "/availability/artist/artist-1/booked", "")

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.NotContains(t, rec.Body.String(), "disk on fire")
	})
}

func TestMomentHandlers(t *testing.T) {
	t.Parallel()

	moment := application.Moment{
		ID:         "moment-2",
		ArtistID:   "artist-1",
		CategoryID: "cat-2",
		Artist:     &application.Artist{ID: "artist-1", Name: "Nova"},
		Category:   &application.Category{ID: "cat-2", Type: "moment", Name: "Wedding"},
		Date:       "2025-01-10",
		StartTime:  "10:30",
		EndTime:    "11:30",
		Location:   "Hall",
	}

	t.Run("create returns overlap warnings", func(t *testing.T) {
		t.Parallel()
		svc := &stubMomentService{result: application.MomentResult{
			Moment: moment,
			Warnings: []application.MomentOverlap{{
				MomentID: "moment-1",
				Start:    time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC),
				End:      time.Date(2025, 1, 10, 11, 0, 0, 0, time.UTC),
			}},
		}}
		router := NewRouter(RouterConfig{Moments: NewMomentHandler(svc, 100, nil)})

		rec := serve(t, router, http.MethodPost, "/moments", `{"artist_id":"artist-1","category_id":"cat-2","date":"2025-01-10","start_time":"10:30","end_time":"11:30","location":"Hall"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var body momentWriteResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "moment-2", body.ID)
		require.NotNil(t, body.Artist)
		assert.Equal(t, "Nova", body.Artist.Name)
		require.NotNil(t, body.Category)
		assert.Equal(t, "Wedding", body.Category.Name)
		require.Len(t, body.Warnings, 1)
		assert.Equal(t, "moment-1", body.Warnings[0].MomentID)
	})

	t.Run("validation errors carry the field map", func(t *testing.T) {
		t.Parallel()
		svc := &stubMomentService{err: &application.ValidationError{FieldErrors: map[string]string{"date": "date must be a valid YYYY-MM-DD calendar date"}}}
		router := NewRouter(RouterConfig{Moments: NewMomentHandler(svc, 100, nil)})

		rec := serve(t, router, http.MethodPost, "/moments", `{"date":"2025-13-40"}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var body errorResponse
		decodeBody(t, rec, &body)
		assert.Equal(t, "VALIDATION_FAILED", body.ErrorCode)
		assert.Contains(t, body.Errors, "date")
	})

	t.Run("delete echoes the removed moment", func(t *testing.T) {
		t.Parallel()
		router := NewRouter(RouterConfig{Moments: NewMomentHandler(&stubMomentService{result: application.MomentResult{Moment: moment}}, 100, nil)})

		rec := serve(t, router, http.MethodDelete, "/moments/moment-2", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body momentDTO
		decodeBody(t, rec, &body)
		assert.Equal(t, "moment-2", body.ID)
	})
}

func TestRouterHealthAndMethods(t *testing.T) {
	t.Parallel()

	t.Run("healthz reports ok", func(t *testing.T) {
		t.Parallel()
		router := NewRouter(RouterConfig{Health: func(context.Context) error { return nil }})

		rec := serve(t, router, http.MethodGet, "/healthz", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	})

	t.Run("healthz reports store failures", func(t *testing.T) {
		t.Parallel()
		router := NewRouter(RouterConfig{Health: func(context.Context) error { return errors.New("closed") }})

		rec := serve(t, router, http.MethodGet, "/healthz", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("unsupported methods are rejected", func(t *testing.T) {
		t.Parallel()
		router := NewRouter(RouterConfig{Categories: NewCategoryHandler(&stubCategoryService{}, 100, nil)})

		rec := serve(t, router, http.MethodPut, "/categories", `{}`)

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
