package httpCors

import (
	"net/http"

	"github.com/rs/cors"
)

func CorsSettings(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{"Authorization", "X-Total-Count", "X-Request-ID"},
	})
	return c
}

// Wrap puts the CORS handling in front of h.
func Wrap(h http.Handler, origins []string) http.Handler {
	return CorsSettings(origins).Handler(h)
}
