package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"orgadmin/internal/store"

	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, 10},
		{"page=3&limit=25", 3, 25},
		{"page=0&limit=0", 1, 10},
		{"page=-2&limit=-5", 1, 10},
		{"page=abc&limit=xyz", 1, 10},
		{"limit=500", 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/companies?"+tt.query, nil)
			page, limit := ParsePage(r)
			require.Equal(t, tt.wantPage, page)
			require.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	SendPaginatedSuccess(rec, http.StatusOK, "Companies retrieved successfully", []string{"C01"}, store.NewPagination(2, 10, 25))

	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.JSONEq(t, `{
		"success": true,
		"message": "Companies retrieved successfully",
		"data": ["C01"],
		"meta": {"page": 2, "limit": 10, "total": 25, "pages": 3}
	}`, rec.Body.String())

	rec = httptest.NewRecorder()
	SendError(rec, http.StatusNotFound, "Company not found")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.False(t, body.Success)
	require.Equal(t, "Company not found", body.Error)
}
