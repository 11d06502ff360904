package auth

import (
	"time"

	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
)

// LoginRequest carries the staff identity and the shared role password.
type LoginRequest struct {
	StaffID  string `json:"staff_id" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	StaffID     string          `json:"staff_id"`
	Role        enums.StaffRole `json:"role"`
}
