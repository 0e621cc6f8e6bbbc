package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin marks tokens that may see admin-scope sales.
const RoleAdmin = "admin"

// TokenClaims mirrors the claims issued by the commerce backend.
type TokenClaims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Identity is what the gateway learns from a forwarded bearer token.
// The zero value is the anonymous shopper.
type Identity struct {
	Token     string
	Subject   string
	Role      string
	ExpiresAt *time.Time
}

func (i Identity) Authenticated() bool {
	return i.Token != ""
}

func (i Identity) IsAdmin() bool {
	return strings.EqualFold(i.Role, RoleAdmin)
}

// Expired reports whether the token carries an exp that is not after now.
func (i Identity) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && !now.Before(*i.ExpiresAt)
}
