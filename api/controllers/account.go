package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/shopadmin/api/responses"
	"github.com/angelmondragon/shopadmin/api/validators"
	"github.com/angelmondragon/shopadmin/internal/resources"
	pkgAuth "github.com/angelmondragon/shopadmin/pkg/auth"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/logger"
)

// AccountService covers login, logout and the password reset flow.
type AccountService interface {
	Login(ctx context.Context, in resources.LoginInput) (*resources.LoginResult, error)
	Logout(ctx context.Context, sessionID int64) error
	ForgotPassword(ctx context.Context, in resources.ForgotPasswordInput) error
	ResetPassword(ctx context.Context, in resources.ResetPasswordInput) error
}

func AccountLogin(svc AccountService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in resources.LoginInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Login(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteData(w, *result, "Login successful")
	}
}

// AccountLogout closes the session the caller's token was minted for.
func AccountLogout(svc AccountService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := pkgAuth.ActorFromContext(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor").WithMessages("Authentication required"))
			return
		}
		if err := svc.Logout(r.Context(), actor.SessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation[any](w, http.StatusOK, nil, "Logged out")
	}
}

// AccountForgotPassword always answers the same way so callers cannot probe
// which emails are registered.
func AccountForgotPassword(svc AccountService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in resources.ForgotPasswordInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ForgotPassword(r.Context(), in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation[any](w, http.StatusOK, nil, "If the email is registered, a reset code has been sent")
	}
}

func AccountResetPassword(svc AccountService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in resources.ResetPasswordInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.ResetPassword(r.Context(), in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMutation[any](w, http.StatusOK, nil, "Password has been reset")
	}
}
