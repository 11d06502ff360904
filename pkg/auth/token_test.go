package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/coffeepos-backend/pkg/config"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "coffeepos", ExpirationMinutes: 30}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		StaffID:   "381923",
		Role:      enums.StaffRoleBarista,
		SessionID: "session-1",
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	require.Equal(t, "381923", claims.StaffID)
	require.Equal(t, enums.StaffRoleBarista, claims.Role)
	require.Equal(t, "session-1", claims.SessionID())
	require.Equal(t, cfg.Issuer, claims.Issuer)
	require.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestMintAccessTokenGeneratesSessionID(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{StaffID: "1", Role: enums.StaffRoleAdmin})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	require.NotEmpty(t, claims.SessionID())
}

func TestMintAccessTokenValidation(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	_, err := MintAccessToken(cfg, now, AccessTokenPayload{StaffID: " ", Role: enums.StaffRoleAdmin})
	require.Error(t, err)

	_, err = MintAccessToken(cfg, now, AccessTokenPayload{StaffID: "1", Role: "owner"})
	require.Error(t, err)

	bad := cfg
	bad.ExpirationMinutes = 0
	_, err = MintAccessToken(bad, now, AccessTokenPayload{StaffID: "1", Role: enums.StaffRoleAdmin})
	require.Error(t, err)

	bad = cfg
	bad.Secret = ""
	_, err = MintAccessToken(bad, now, AccessTokenPayload{StaffID: "1", Role: enums.StaffRoleAdmin})
	require.Error(t, err)
}

func TestParseAccessTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	cfg := testJWTConfig()

	expired, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{StaffID: "1", Role: enums.StaffRoleAdmin})
	require.NoError(t, err)
	_, err = ParseAccessToken(cfg, expired)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	valid, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{StaffID: "1", Role: enums.StaffRoleAdmin})
	require.NoError(t, err)

	otherSecret := cfg
	otherSecret.Secret = "other"
	_, err = ParseAccessToken(otherSecret, valid)
	require.Error(t, err)

	otherIssuer := cfg
	otherIssuer.Issuer = "someone-else"
	_, err = ParseAccessToken(otherIssuer, valid)
	require.Error(t, err)
}
