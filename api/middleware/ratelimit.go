package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/shopadmin/api/responses"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/go-chi/httprate"
)

// LoginRateLimit throttles credential endpoints per client IP. A non-positive
// limit or window disables it.
func LoginRateLimit(limit int, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if limit <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(loginRateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeRateLimit, "login rate limit").WithMessages("Too many attempts, try again later"))
		}),
	)
}

func loginRateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "login:" + key, nil
}
