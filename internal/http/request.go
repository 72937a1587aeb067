package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/artist-booking/internal/application"
)

const maxRequestBody = 1 << 20

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	return decoder.Decode(dst)
}

// parsePageRequest reads page and limit from the query string. Missing or
// malformed values become zero and are rejected by the service. Limits above
// maxPageSize are capped.
func parsePageRequest(r *http.Request, maxPageSize int) application.PageRequest {
	query := r.URL.Query()
	req := application.PageRequest{
		Page:  atoiOrZero(query.Get("page")),
		Limit: atoiOrZero(query.Get("limit")),
	}
	if maxPageSize > 0 && req.Limit > maxPageSize {
		req.Limit = maxPageSize
	}
	return req
}

func atoiOrZero(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

// parseInstant parses an optional RFC3339 timestamp. Parse failures are
// recorded on vErr under field.
func parseInstant(value *string, field string, vErr *application.ValidationError) *time.Time {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		zero := time.Time{}
		return &zero
	}
	parsed, err := time.Parse(time.RFC3339, trimmed)
	if err != nil {
		if vErr.FieldErrors == nil {
			vErr.FieldErrors = make(map[string]string)
		}
		vErr.FieldErrors[field] = field + " must be an RFC3339 timestamp"
		return nil
	}
	utc := parsed.UTC()
	return &utc
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

type pageDTO[T any] struct {
	Data       []T `json:"data"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"total_pages"`
	LastPage   int `json:"last_page"`
}

func toPageDTO[S, T any](result application.PageResult[S], convert func(S) T) pageDTO[T] {
	data := make([]T, 0, len(result.Items))
	for _, item := range result.Items {
		data = append(data, convert(item))
	}
	return pageDTO[T]{
		Data:       data,
		Total:      result.Total,
		Page:       result.Page,
		Limit:      result.Limit,
		TotalPages: result.TotalPages,
		LastPage:   result.TotalPages,
	}
}
