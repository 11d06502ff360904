package auth

import (
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	StaffID   string
	Role      enums.StaffRole
	SessionID string
}

// AccessTokenClaims represents the typed JWT issued to staff clients. The
// registered ID carries the Redis session id.
type AccessTokenClaims struct {
	StaffID string          `json:"staff_id"`
	Role    enums.StaffRole `json:"role"`
	jwt.RegisteredClaims
}

// SessionID returns the session the token was minted for.
func (c *AccessTokenClaims) SessionID() string {
	return c.ID
}
