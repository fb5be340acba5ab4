package users

import (
	"context"
	"strings"

	"github.com/angelmondragon/shopadmin/internal/crud"
	"github.com/angelmondragon/shopadmin/internal/repo"
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"gorm.io/gorm"
)

type Service = crud.Service[models.User, resources.User, resources.UserInput]

// PasswordHasher hashes new passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// NewService wires admin user management. Passwords are required on create
// and replaced on update only when provided.
func NewService(db *gorm.DB, hasher PasswordHasher) (*Service, error) {
	if hasher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "password hasher required")
	}
	return crud.New(db, "User", repo.ListSpec{
		SearchColumns: []string{"first_name", "last_name", "email", "phone_number"},
		SortColumns: map[string]string{
			"id":          "id",
			"firstName":   "first_name",
			"lastName":    "last_name",
			"email":       "email",
			"phoneNumber": "phone_number",
			"role":        "role",
		},
		DefaultSort: "id",
	}, crud.Hooks[models.User, resources.User, resources.UserInput]{
		ID:       func(m models.User) int64 { return m.ID },
		ToEntity: FromModel,
		Apply: func(_ context.Context, _ *gorm.DB, in resources.UserInput, m *models.User) error {
			if m.ID == 0 && in.Password == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "password required").WithMessages("password is required")
			}
			if in.Password != "" {
				hash, err := hasher.Hash(in.Password)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
				}
				m.PasswordHash = hash
			}
			m.FirstName = strings.TrimSpace(in.FirstName)
			m.LastName = strings.TrimSpace(in.LastName)
			m.Email = NormalizeEmail(in.Email)
			m.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
			m.Role = in.Role
			return nil
		},
		BeforeDelete: func(ctx context.Context, tx *gorm.DB, ids []int64) error {
			var count int64
			if err := tx.WithContext(ctx).Model(&models.Order{}).Where("user_id IN ?", ids).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "user has orders").WithMessages("User has recorded orders")
			}
			return tx.WithContext(ctx).Where("user_id IN ?", ids).Delete(&models.UserSession{}).Error
		},
	})
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FromModel maps a user row to the API shape; the password hash never leaves the backend.
func FromModel(m models.User) resources.User {
	return resources.User{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		Role:        m.Role,
	}
}
