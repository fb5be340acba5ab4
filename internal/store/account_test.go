package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountAPI struct {
	loginErr  error
	logoutErr error
	loggedOut bool
}

func (f *fakeAccountAPI) Login(_ context.Context, in resources.LoginInput) (*types.SingleEnvelope[resources.LoginResult], error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &types.SingleEnvelope[resources.LoginResult]{
		Data:    resources.LoginResult{Token: "jwt-" + in.Email, ExpiresAt: time.Unix(100, 0), User: resources.User{ID: 1, Email: in.Email, Role: resources.RoleAdmin}},
		Message: "Login successful",
	}, nil
}

func (f *fakeAccountAPI) Logout(context.Context) (*types.MutationEnvelope[any], error) {
	f.loggedOut = true
	if f.logoutErr != nil {
		return nil, f.logoutErr
	}
	return &types.MutationEnvelope[any]{Message: "bye"}, nil
}

func (f *fakeAccountAPI) ForgotPassword(context.Context, resources.ForgotPasswordInput) (*types.MutationEnvelope[any], error) {
	return &types.MutationEnvelope[any]{Message: "Reset code sent"}, nil
}

func (f *fakeAccountAPI) ResetPassword(context.Context, resources.ResetPasswordInput) (*types.MutationEnvelope[any], error) {
	return nil, pkgerrors.New(pkgerrors.CodeValidation, "bad code").WithMessages("Invalid or expired reset code")
}

func TestLoginStoresTokenAndLogoutClearsIt(t *testing.T) {
	ctx := context.Background()
	holder := session.NewMemoryStore("")
	api := &fakeAccountAPI{}
	a := NewAccountSlice(api, holder, nil)

	res, err := a.Login(ctx, "admin@shop.local", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-admin@shop.local", res.Token)
	assert.Equal(t, "jwt-admin@shop.local", holder.Token())
	assert.True(t, a.Authenticated())
	assert.Equal(t, "admin@shop.local", a.State().User.Email)

	api.logoutErr = errors.New("offline")
	err = a.Logout(ctx)
	require.Error(t, err)
	assert.True(t, api.loggedOut)
	assert.Empty(t, holder.Token(), "token is cleared even when the API call fails")
	assert.Nil(t, a.State().User)
	assert.Equal(t, pkgerrors.GenericMessage, a.State().Error)
}

func TestLoginFailureKeepsNoToken(t *testing.T) {
	holder := session.NewMemoryStore("")
	a := NewAccountSlice(&fakeAccountAPI{
		loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "401").WithMessages("Invalid credentials"),
	}, holder, nil)

	_, err := a.Login(context.Background(), "x@y.z", "nope")
	require.Error(t, err)
	assert.Empty(t, holder.Token())
	assert.Equal(t, "Invalid credentials", a.State().Error)
}

func TestPasswordFlowsRecordMessages(t *testing.T) {
	a := NewAccountSlice(&fakeAccountAPI{}, session.NewMemoryStore(""), nil)
	ctx := context.Background()

	require.NoError(t, a.ForgotPassword(ctx, "admin@shop.local"))
	assert.Equal(t, "Reset code sent", a.State().Message)

	err := a.ResetPassword(ctx, resources.ResetPasswordInput{Email: "admin@shop.local", Code: "000000", NewPassword: "newsecret"})
	require.Error(t, err)
	assert.Equal(t, "Invalid or expired reset code", a.State().Error)
}
