package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// WithCORS открывает API для веб-клиента с другого origin.
// Пустой список origins отключает CORS.
func WithCORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept", "Accept-Encoding", "Content-Type", "Content-Encoding",
			AdminPasswordHeader, "X-Actor-Name",
		},
		MaxAge: 300,
	})
}
