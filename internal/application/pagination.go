package application

import "math"

// PageRequest selects a 1-indexed page of a listing.
type PageRequest struct {
	Page  int
	Limit int
}

// PageResult is the shape returned by paginated listings.
type PageResult[T any] struct {
	Items      []T
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// validatePage rejects non-positive values and limits above maxLimit. A
// non-positive maxLimit disables the upper bound. Pages whose offset would
// overflow int are rejected too.
func validatePage(req PageRequest, maxLimit int) *ValidationError {
	vErr := &ValidationError{}
	if req.Page < 1 {
		vErr.add("page", "page must be a positive integer")
	}
	if req.Limit < 1 {
		vErr.add("limit", "limit must be a positive integer")
	} else if maxLimit > 0 && req.Limit > maxLimit {
		vErr.add("limit", "limit must not exceed the maximum page size")
	}
	if req.Page >= 1 && req.Limit >= 1 && req.Page > math.MaxInt/req.Limit {
		vErr.add("page", "page is too large")
	}
	return vErr
}

func (r PageRequest) offset() int {
	return (r.Page - 1) * r.Limit
}

func newPageResult[T any](items []T, total int, req PageRequest) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages(total, req.Limit),
	}
}

func totalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// paginate returns the window of items selected by req.
func paginate[T any](items []T, req PageRequest) []T {
	offset := req.offset()
	if offset < 0 || offset >= len(items) {
		return []T{}
	}
	end := offset + req.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
