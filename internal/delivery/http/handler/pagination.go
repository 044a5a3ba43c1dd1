package handler

import (
	"errors"
	"net/http"
	"strconv"
)

var errInvalidPagination = errors.New("page and limit must be positive integers")

// parsePagination reads ?page= and ?limit=. Missing values are returned as 0
// and defaulted by the use case.
func parsePagination(r *http.Request) (int, int, error) {
	page, err := optionalInt(r, "page")
	if err != nil {
		return 0, 0, err
	}
	limit, err := optionalInt(r, "limit")
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func optionalInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, errInvalidPagination
	}
	return value, nil
}
