package response

import (
	"net/http"
	"strconv"

	"orgadmin/internal/store"
)

// ParsePage reads page and limit from the query string. Missing or invalid
// values fall back to page 1 and limit 10; limit is capped at 100.
func ParsePage(r *http.Request) (page, limit int) {
	page, limit = 1, 10
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	return store.NormalizePage(page, limit)
}

// SendPaginatedSuccess sends one page of rows with the pagination in meta.
func SendPaginatedSuccess(w http.ResponseWriter, statusCode int, message string, data any, meta store.Pagination) {
	write(w, statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}
