package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	pkgAuth "github.com/angelmondragon/coffeepos-backend/pkg/auth"
	"github.com/angelmondragon/coffeepos-backend/pkg/config"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, sessionID string) error
}

type passwordMatcher interface {
	Match(password string) (enums.StaffRole, bool, error)
}

type sessionManager interface {
	Open(ctx context.Context, staffID string, role enums.StaffRole) (string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Passwords      passwordMatcher
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Logger         *logger.Logger
}

type service struct {
	passwords passwordMatcher
	session   sessionManager
	jwtCfg    config.JWTConfig
	logg      *logger.Logger
	now       func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Passwords == nil {
		return nil, fmt.Errorf("role passwords are required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if params.JWTConfig.AccessTokenTTL() <= 0 {
		return nil, fmt.Errorf("access token ttl must be positive")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		passwords: params.Passwords,
		session:   params.SessionManager,
		jwtCfg:    params.JWTConfig,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Login checks the password against the admin hash, then the barista hash.
// The matching role is baked into the token and into a Redis session that
// lives exactly as long as the token.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	staffID := strings.TrimSpace(req.StaffID)
	if staffID == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	role, ok, err := s.passwords.Match(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		s.logg.Warn(s.logg.WithStaffID(ctx, staffID), "login rejected")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	sessionID, err := s.session.Open(ctx, staffID, role)
	if err != nil {
		return nil, pkgerrors.Store(err, "open session")
	}

	now := s.now()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		StaffID:   staffID,
		Role:      role,
		SessionID: sessionID,
	})
	if err != nil {
		_ = s.session.Revoke(ctx, sessionID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	s.logg.Info(s.logg.WithRole(s.logg.WithStaffID(ctx, staffID), role.String()), "staff logged in")
	return &LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   now.Add(s.jwtCfg.AccessTokenTTL()).UTC(),
		StaffID:     staffID,
		Role:        role,
	}, nil
}

// Logout revokes the session; tokens carrying it stop authenticating.
func (s *service) Logout(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session missing")
	}
	if err := s.session.Revoke(ctx, sessionID); err != nil {
		return pkgerrors.Store(err, "revoke session")
	}
	return nil
}
