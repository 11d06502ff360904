package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/angelmondragon/coffeepos-backend/pkg/auth"
	"github.com/angelmondragon/coffeepos-backend/pkg/auth/session"
	"github.com/angelmondragon/coffeepos-backend/pkg/config"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	redisclient "github.com/angelmondragon/coffeepos-backend/pkg/redis"
	"github.com/angelmondragon/coffeepos-backend/pkg/security"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "coffeepos", ExpirationMinutes: 30}

func buildTestService(t *testing.T) (Service, *session.Manager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })

	manager, err := session.NewManager(redisclient.Wrap(raw), testJWT)
	require.NoError(t, err)

	passwords, err := security.HashRolePasswords(
		config.StaffConfig{AdminPassword: "boss", BaristaPassword: "brew"},
		config.PasswordConfig{ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
	)
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{Passwords: passwords, SessionManager: manager, JWTConfig: testJWT})
	require.NoError(t, err)
	return svc, manager, mr
}

func TestLoginAssignsRoleFromPassword(t *testing.T) {
	svc, manager, _ := buildTestService(t)
	ctx := context.Background()

	for password, role := range map[string]enums.StaffRole{"boss": enums.StaffRoleAdmin, "brew": enums.StaffRoleBarista} {
		resp, err := svc.Login(ctx, LoginRequest{StaffID: " tg:77 ", Password: password})
		require.NoError(t, err)
		require.Equal(t, role, resp.Role)
		require.Equal(t, "tg:77", resp.StaffID)

		claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
		require.NoError(t, err)
		require.Equal(t, role, claims.Role)
		require.Equal(t, "tg:77", claims.StaffID)

		rec, err := manager.Lookup(ctx, claims.SessionID())
		require.NoError(t, err)
		require.Equal(t, role, rec.Role)
		require.WithinDuration(t, time.Now().Add(30*time.Minute), resp.ExpiresAt, time.Minute)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, mr := buildTestService(t)

	_, err := svc.Login(context.Background(), LoginRequest{StaffID: "tg:1", Password: "latte"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	_, err = svc.Login(context.Background(), LoginRequest{StaffID: "", Password: "boss"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
	require.Empty(t, mr.Keys())
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, manager, _ := buildTestService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, LoginRequest{StaffID: "tg:1", Password: "brew"})
	require.NoError(t, err)
	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims.SessionID()))
	ok, err := manager.HasSession(ctx, claims.SessionID())
	require.NoError(t, err)
	require.False(t, ok)

	require.True(t, pkgerrors.IsCode(svc.Logout(ctx, " "), pkgerrors.CodeUnauthorized))
}
