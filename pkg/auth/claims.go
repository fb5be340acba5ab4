package auth

import "github.com/golang-jwt/jwt/v5"

// Role mirrors the numeric user role stored by the backend.
type Role int

const (
	RoleCashier Role = 0
	RoleAdmin   Role = 1
)

func (r Role) IsValid() bool {
	return r == RoleCashier || r == RoleAdmin
}

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleCashier:
		return "cashier"
	default:
		return "unknown"
	}
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID    int64
	Role      Role
	SessionID int64
}

// AccessTokenClaims represents the typed JWT issued by the reference backend.
type AccessTokenClaims struct {
	UserID    int64 `json:"user_id"`
	Role      Role  `json:"role"`
	SessionID int64 `json:"sid,omitempty"`
	jwt.RegisteredClaims
}
