package store

import (
	"context"
	"time"

	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/types"
)

// AccountAPI is the login and password surface.
type AccountAPI interface {
	Login(ctx context.Context, input resources.LoginInput) (*types.SingleEnvelope[resources.LoginResult], error)
	Logout(ctx context.Context) (*types.MutationEnvelope[any], error)
	ForgotPassword(ctx context.Context, input resources.ForgotPasswordInput) (*types.MutationEnvelope[any], error)
	ResetPassword(ctx context.Context, input resources.ResetPasswordInput) (*types.MutationEnvelope[any], error)
}

type AccountState struct {
	User      *resources.User
	ExpiresAt time.Time
	Message   string
	Error     string
	Loading   bool
}

func cloneAccount(s AccountState) AccountState {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}

// AccountSlice runs the login flows and owns writes to the token holder.
type AccountSlice struct {
	api    AccountAPI
	tokens session.Holder
	logg   *logger.Logger
	cell   *cell[AccountState]
}

func NewAccountSlice(api AccountAPI, tokens session.Holder, logg *logger.Logger) *AccountSlice {
	if logg == nil {
		logg = logger.Nop()
	}
	return &AccountSlice{api: api, tokens: tokens, logg: logg, cell: newCell(AccountState{}, cloneAccount)}
}

func (a *AccountSlice) State() AccountState {
	return a.cell.snapshot()
}

func (a *AccountSlice) Subscribe(fn func(AccountState)) func() {
	return a.cell.subscribe(fn)
}

// Authenticated reports whether a token is currently held.
func (a *AccountSlice) Authenticated() bool {
	return a.tokens.Token() != ""
}

func (a *AccountSlice) pending() {
	a.cell.update(func(st *AccountState) {
		st.Loading = true
		st.Error = ""
	})
}

func (a *AccountSlice) rejected(ctx context.Context, op string, err error) error {
	msg := pkgerrors.UserMessage(err)
	a.cell.update(func(st *AccountState) {
		st.Loading = false
		st.Error = msg
	})
	a.logg.Warn(a.logg.WithFields(ctx, map[string]any{"resource": "Account", "operation": op, "error": err.Error()}), "store operation rejected")
	return err
}

// Login stores the issued token in the holder so later calls carry it.
func (a *AccountSlice) Login(ctx context.Context, email, password string) (*resources.LoginResult, error) {
	a.pending()
	out, err := a.api.Login(ctx, resources.LoginInput{Email: email, Password: password})
	if err != nil {
		return nil, a.rejected(ctx, "login", err)
	}
	if err := a.tokens.SetToken(ctx, out.Data.Token); err != nil {
		return nil, a.rejected(ctx, "login", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "could not persist session"))
	}
	result := out.Data
	a.cell.update(func(st *AccountState) {
		st.Loading = false
		u := result.User
		st.User = &u
		st.ExpiresAt = result.ExpiresAt
		st.Message = out.Message
	})
	return &result, nil
}

// Logout tells the API to close the session, then clears the token whatever
// the API answered. The API error, if any, is still recorded and returned.
func (a *AccountSlice) Logout(ctx context.Context) error {
	a.pending()
	_, apiErr := a.api.Logout(ctx)
	clearErr := a.tokens.ClearToken(ctx)

	a.cell.update(func(st *AccountState) {
		st.Loading = false
		st.User = nil
		st.ExpiresAt = time.Time{}
		st.Message = "Logged out"
	})
	if clearErr != nil {
		return a.rejected(ctx, "logout", pkgerrors.Wrap(pkgerrors.CodeInternal, clearErr, "could not clear session"))
	}
	if apiErr != nil {
		return a.rejected(ctx, "logout", apiErr)
	}
	return nil
}

func (a *AccountSlice) ForgotPassword(ctx context.Context, email string) error {
	a.pending()
	out, err := a.api.ForgotPassword(ctx, resources.ForgotPasswordInput{Email: email})
	if err != nil {
		return a.rejected(ctx, "forgotPassword", err)
	}
	a.cell.update(func(st *AccountState) {
		st.Loading = false
		st.Message = out.Message
	})
	return nil
}

func (a *AccountSlice) ResetPassword(ctx context.Context, input resources.ResetPasswordInput) error {
	a.pending()
	out, err := a.api.ResetPassword(ctx, input)
	if err != nil {
		return a.rejected(ctx, "resetPassword", err)
	}
	a.cell.update(func(st *AccountState) {
		st.Loading = false
		st.Message = out.Message
	})
	return nil
}
