package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
	redisclient "github.com/angelmondragon/coffeepos-backend/pkg/redis"
)

func newRateStore(t *testing.T) (*redisclient.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	return redisclient.Wrap(raw), mr
}

func loginRequest(ip, staffID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"staff_id":"`+staffID+`","password":"secret"}`))
	req.RemoteAddr = ip + ":5678"
	return req
}

func TestAuthRateLimit_AllowsUnderLimitAndKeepsBody(t *testing.T) {
	store, _ := newRateStore(t)
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Contains(t, string(body), `"staff_id":"tg:1"`)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("1.2.3.4", "tg:1"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimit_StaffLimitTriggers(t *testing.T) {
	store, _ := newRateStore(t)
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("1.2.3."+string(rune('1'+i)), "tg:blocked"))
		if i < 2 {
			require.Equal(t, http.StatusOK, rec.Code)
			continue
		}
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "60", rec.Header().Get("Retry-After"))
		var payload struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
		require.Equal(t, string(pkgerrors.CodeRateLimit), payload.Error.Code)
	}

	// another staff id is unaffected
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("1.2.3.4", "tg:other"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimit_IPLimitResetsAfterWindow(t *testing.T) {
	store, mr := newRateStore(t)
	policy := NewAuthRateLimitPolicy("login", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("5.6.7.8", "tg:1"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, mr.Exists("cp:rate_limit:login:ip:5.6.7.8"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("5.6.7.8", "tg:2"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	mr.FastForward(2 * time.Minute)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("5.6.7.8", "tg:2"))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimit_DisabledPolicyPassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	handler := AuthRateLimit(NewAuthRateLimitPolicy("login", 0, 1, 1), nil, nil)(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("1.1.1.1", "tg:1"))
	require.Equal(t, http.StatusNoContent, rec.Code)
}
