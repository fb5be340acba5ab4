package middleware

import (
	"net/http"

	"github.com/angelmondragon/shopadmin/pkg/transport"
	"github.com/go-chi/cors"
)

// CORS applies the configured allowed origins for the browser dashboard.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", transport.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", transport.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
