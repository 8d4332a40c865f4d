package httpx

import (
	"errors"
	"math"
	"net/http"
	"strconv"
)

const (
	// MaxPageLimit caps the number of rows a single page may request.
	MaxPageLimit = 100
	// MaxPageOffset is the largest offset the storage layer accepts (int4).
	MaxPageOffset = math.MaxInt32
)

// ErrBadPagination is returned when limit or offset is not an integer, or
// offset is above MaxPageOffset.
var ErrBadPagination = errors.New("limit and offset must be integers in range")

// PageParams is a normalized limit/offset window.
type PageParams struct {
	Limit  int
	Offset int
}

// ClampPage normalizes a window: limit <= 0 falls back to def, limit is capped
// at MaxPageLimit and offset is kept within [0, MaxPageOffset].
func ClampPage(limit, offset, def int) PageParams {
	if limit <= 0 {
		limit = def
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	if offset > MaxPageOffset {
		offset = MaxPageOffset
	}
	return PageParams{Limit: limit, Offset: offset}
}

// ParsePage reads ?limit= and ?offset= from the request and clamps them.
// Missing values use def and 0.
func ParsePage(r *http.Request, def int) (PageParams, error) {
	q := r.URL.Query()
	limit, offset := 0, 0
	var err error
	if s := q.Get("limit"); s != "" {
		if limit, err = strconv.Atoi(s); err != nil {
			return PageParams{}, ErrBadPagination
		}
	}
	if s := q.Get("offset"); s != "" {
		if offset, err = strconv.Atoi(s); err != nil || offset > MaxPageOffset {
			return PageParams{}, ErrBadPagination
		}
	}
	return ClampPage(limit, offset, def), nil
}
