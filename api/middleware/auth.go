package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/shopadmin/api/responses"
	pkgAuth "github.com/angelmondragon/shopadmin/pkg/auth"
	"github.com/angelmondragon/shopadmin/pkg/config"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/logger"
)

// SessionChecker reports whether the session a token was minted for is still open.
type SessionChecker interface {
	IsOpen(ctx context.Context, sessionID int64) (bool, error)
}

// Auth validates a bearer token and seeds the request context with the actor.
func Auth(cfg config.JWTConfig, sessions SessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials").WithMessages("Authentication required"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, time.Now(), token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token").WithMessages("Invalid or expired token"))
				return
			}

			if sessions != nil {
				ok, err := sessions.IsOpen(r.Context(), claims.SessionID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session closed").WithMessages("Session has ended, please log in again"))
					return
				}
			}

			ctx := pkgAuth.WithActor(r.Context(), pkgAuth.Actor{
				UserID:    claims.UserID,
				Role:      claims.Role,
				SessionID: claims.SessionID,
			})
			if logg != nil {
				ctx = logg.WithUserID(ctx, strconv.FormatInt(claims.UserID, 10))
				ctx = logg.WithField(ctx, "actor_role", claims.Role.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
