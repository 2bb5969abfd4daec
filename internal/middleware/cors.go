package middleware

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/cors"
)

// CORS allows the given origins to call the API with credentials.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", APIKeyHeader},
		AllowCredentials: true,
		MaxAge:           86400,
	})
	return c.Handler
}

// Compress gzips responses when the client accepts it.
func Compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
