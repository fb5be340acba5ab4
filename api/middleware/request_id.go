package middleware

import (
	"net/http"

	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/transport"
	"github.com/google/uuid"
)

const maxRequestIDLen = 64

// RequestID echoes a usable client X-Request-ID or assigns a fresh one, and
// tags the request logger with it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(transport.RequestIDHeader)
			if !usableRequestID(id) {
				id = uuid.NewString()
				r.Header.Set(transport.RequestIDHeader, id)
			}
			w.Header().Set(transport.RequestIDHeader, id)

			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// usableRequestID rejects empty, oversized or non-printable ids so clients
// cannot inject arbitrary bytes into logs.
func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
