// Package auth implements the backend account flows: login, logout, session
// checks, password resets and admin seeding.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/internal/users"
	pkgAuth "github.com/angelmondragon/shopadmin/pkg/auth"
	"github.com/angelmondragon/shopadmin/pkg/config"
	"github.com/angelmondragon/shopadmin/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/security"
	"gorm.io/gorm"
)

const (
	invalidCredentialsMessage = "Invalid email or password"
	invalidResetCodeMessage   = "Invalid or expired reset code"
	resetCodeDigits           = 6
	defaultResetCodeTTL       = 15 * time.Minute
)

// Service is the account service behind /Account/*.
type Service struct {
	db      *gorm.DB
	hasher  *security.Hasher
	jwtCfg  config.JWTConfig
	codes   ResetCodeStore
	codeTTL time.Duration
	logg    *logger.Logger
	now     func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	DB           *gorm.DB
	Hasher       *security.Hasher
	JWTConfig    config.JWTConfig
	ResetCodes   ResetCodeStore
	ResetCodeTTL time.Duration
	Logger       *logger.Logger
	Now          func() time.Time
}

// NewService constructs the account service. ResetCodes defaults to the
// database-backed store.
func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	svc := &Service{
		db:      params.DB,
		hasher:  params.Hasher,
		jwtCfg:  params.JWTConfig,
		codes:   params.ResetCodes,
		codeTTL: params.ResetCodeTTL,
		logg:    params.Logger,
		now:     params.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logg == nil {
		svc.logg = logger.Nop()
	}
	if svc.codeTTL <= 0 {
		svc.codeTTL = defaultResetCodeTTL
	}
	if svc.codes == nil {
		svc.codes = NewDBResetCodes(params.DB, svc.now)
	}
	return svc, nil
}

// Login verifies the credentials, opens a session row and issues an access
// token bound to it.
func (s *Service) Login(ctx context.Context, in resources.LoginInput) (*resources.LoginResult, error) {
	user, err := s.authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	sess := models.UserSession{UserID: user.ID, LoginTime: now}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open session")
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:    user.ID,
		Role:      pkgAuth.Role(user.Role),
		SessionID: sess.ID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	ctx = s.logg.WithUserID(ctx, fmt.Sprintf("%d", user.ID))
	s.logg.Info(ctx, "user logged in")

	return &resources.LoginResult{
		Token:     token,
		ExpiresAt: now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		User:      users.FromModel(*user),
	}, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.findUser(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "unknown email").WithMessages(invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "password mismatch").WithMessages(invalidCredentialsMessage)
	}
	return user, nil
}

func (s *Service) findUser(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", users.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout closes the session. Closing an already closed session is a no-op.
func (s *Service) Logout(ctx context.Context, sessionID int64) error {
	if sessionID <= 0 {
		return nil
	}
	err := s.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("id = ? AND logout_time IS NULL", sessionID).
		Update("logout_time", s.now().UTC()).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "close session")
	}
	return nil
}

// IsOpen reports whether the session is still open; tokens of closed
// sessions are rejected by the auth middleware.
func (s *Service) IsOpen(ctx context.Context, sessionID int64) (bool, error) {
	if sessionID <= 0 {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.UserSession{}).
		Where("id = ? AND logout_time IS NULL", sessionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ForgotPassword issues a reset code for a known email. Unknown emails get the
// same response so the endpoint cannot be used to probe accounts.
func (s *Service) ForgotPassword(ctx context.Context, in resources.ForgotPasswordInput) error {
	email := users.NormalizeEmail(in.Email)
	if _, err := s.findUser(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Debug(ctx, "password reset requested for unknown email")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	code, err := security.GenerateResetCode(resetCodeDigits)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset code")
	}
	if err := s.codes.Put(ctx, email, HashResetCode(code), s.codeTTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store reset code")
	}

	// No mail transport; the code is delivered through the service log.
	ctx = s.logg.WithFields(ctx, map[string]any{"email": email, "reset_code": code})
	s.logg.Info(ctx, "password reset code issued")
	return nil
}

// ResetPassword consumes a reset code and replaces the password. Open
// sessions of the user are closed.
func (s *Service) ResetPassword(ctx context.Context, in resources.ResetPasswordInput) error {
	email := users.NormalizeEmail(in.Email)
	ok, err := s.codes.Consume(ctx, email, HashResetCode(in.Code))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume reset code")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "reset code rejected").WithMessages(invalidResetCodeMessage)
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("email = ?", email).First(&user).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return tx.Model(&models.UserSession{}).
			Where("user_id = ? AND logout_time IS NULL", user.ID).
			Update("logout_time", s.now().UTC()).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeValidation, "user vanished").WithMessages(invalidResetCodeMessage)
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset password")
	}
	return nil
}

// EnsureAdmin creates an admin account when no user with that email exists.
// It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = users.NormalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}
	if _, err := s.findUser(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup admin")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	admin := models.User{
		FirstName:    "Shop",
		LastName:     "Admin",
		Email:        email,
		Role:         int(pkgAuth.RoleAdmin),
		PasswordHash: hash,
	}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create admin")
	}
	s.logg.Info(s.logg.WithField(ctx, "email", email), "seeded admin user")
	return true, nil
}
