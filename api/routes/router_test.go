package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/coffeepos-backend/internal/assembly"
	"github.com/angelmondragon/coffeepos-backend/internal/auth"
	"github.com/angelmondragon/coffeepos-backend/internal/bugreports"
	"github.com/angelmondragon/coffeepos-backend/internal/catalog"
	"github.com/angelmondragon/coffeepos-backend/internal/orders"
	"github.com/angelmondragon/coffeepos-backend/internal/reports"
	"github.com/angelmondragon/coffeepos-backend/pkg/auth/session"
	"github.com/angelmondragon/coffeepos-backend/pkg/config"
	"github.com/angelmondragon/coffeepos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
	"github.com/angelmondragon/coffeepos-backend/pkg/metrics"
	"github.com/angelmondragon/coffeepos-backend/pkg/outbox"
	redisclient "github.com/angelmondragon/coffeepos-backend/pkg/redis"
	"github.com/angelmondragon/coffeepos-backend/pkg/security"
)

type testServer struct {
	handler http.Handler
	mr      *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: "dev"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "coffeepos", ExpirationMinutes: 60},
		AuthRateLimit: config.AuthRateLimitConfig{
			LoginWindow:     time.Minute,
			LoginIPLimit:    50,
			LoginStaffLimit: 3,
		},
	}
	logg := logger.Nop()

	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	redisClient := redisclient.Wrap(raw)

	dbClient := dbtest.Open(t)

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	require.NoError(t, err)
	passwords, err := security.HashRolePasswords(
		config.StaffConfig{AdminPassword: "boss", BaristaPassword: "brew"},
		config.PasswordConfig{ArgonMemoryKB: 1024, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32},
	)
	require.NoError(t, err)
	authSvc, err := auth.NewService(auth.ServiceParams{Passwords: passwords, SessionManager: sessions, JWTConfig: cfg.JWT, Logger: logg})
	require.NoError(t, err)

	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient, logg)
	require.NoError(t, err)
	emitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	orderSvc, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient, emitter, nil, time.UTC, logg)
	require.NoError(t, err)
	store, err := assembly.NewRedisStore(redisClient, time.Hour)
	require.NoError(t, err)
	assemblySvc, err := assembly.NewService(store, orderSvc, catalogSvc, logg)
	require.NoError(t, err)
	reportSvc, err := reports.NewService(reports.NewRepository(dbClient.DB()), time.UTC, logg)
	require.NoError(t, err)
	bugSvc, err := bugreports.NewService(bugreports.NewRepository(dbClient.DB()), logg)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	handler := NewRouter(Dependencies{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessions,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Gatherer:    reg,
		Auth:        authSvc,
		Catalog:     catalogSvc,
		Assembly:    assemblySvc,
		Orders:      orderSvc,
		Reports:     reportSvc,
		BugReports:  bugSvc,
	})
	return &testServer{handler: handler, mr: mr}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, staffID, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"staff_id": staffID, "password": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Data auth.LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.AccessToken
}

func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope.Data
}

func assertAmount(t *testing.T, want string, got any) {
	t.Helper()
	raw, ok := got.(string)
	require.True(t, ok, "amount %v is not a string", got)
	assert.True(t, decimal.RequireFromString(want).Equal(decimal.RequireFromString(raw)), "want %s got %s", want, raw)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health/live", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = srv.do(t, http.MethodGet, "/health/ready", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, "/metrics", "", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `coffeepos_http_requests_total{method="GET",route="/health/live",status="200"} 1`)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/v1/orders", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderFlowThroughAPI(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login(t, "tg:1", "boss")
	barista := srv.login(t, "tg:2", "brew")

	// baristas cannot edit the menu
	rec := srv.do(t, http.MethodPost, "/api/v1/catalog/categories", barista, map[string]any{"name": "Кофе"}, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	idem := map[string]string{"Idempotency-Key": "cat-1"}
	rec = srv.do(t, http.MethodPost, "/api/v1/catalog/categories", admin, map[string]any{"name": "Кофе"}, idem)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	categoryID := data(t, rec)["id"].(string)

	replay := srv.do(t, http.MethodPost, "/api/v1/catalog/categories", admin, map[string]any{"name": "Кофе"}, idem)
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, categoryID, data(t, replay)["id"])

	rec = srv.do(t, http.MethodPost, "/api/v1/catalog/categories/"+categoryID+"/items", admin, map[string]any{"name": "Латте"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	itemID := data(t, rec)["id"].(string)

	rec = srv.do(t, http.MethodPost, "/api/v1/catalog/items/"+itemID+"/prices", admin, map[string]any{"option_name": "M", "price": "220", "is_default": true}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	priceID := data(t, rec)["id"].(string)

	rec = srv.do(t, http.MethodGet, "/api/v1/catalog/items/"+itemID+"/prices", barista, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/v1/assembly/lines", barista, map[string]any{"price_id": priceID, "quantity": 2}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assertAmount(t, "440", data(t, rec)["total"])

	commitKey := map[string]string{"Idempotency-Key": "commit-1"}
	rec = srv.do(t, http.MethodPost, "/api/v1/assembly/commit", barista, nil, commitKey)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	committed := data(t, rec)
	assert.EqualValues(t, 1, committed["daily_sequence_number"])
	orderID := committed["order_id"].(string)

	replay = srv.do(t, http.MethodPost, "/api/v1/assembly/commit", barista, nil, commitKey)
	require.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, orderID, data(t, replay)["order_id"])

	// the session was cleared by the first commit
	rec = srv.do(t, http.MethodGet, "/api/v1/assembly", barista, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/orders", barista, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []orders.OrderDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)

	rec = srv.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/complete", barista, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = srv.do(t, http.MethodPost, "/api/v1/orders/"+orderID+"/complete", barista, nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/sales?period=today", barista, nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/sales?period=today", admin, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := data(t, rec)
	assert.EqualValues(t, 1, summary["orders_count"])
	assertAmount(t, "440", summary["total_amount"])

	rec = srv.do(t, http.MethodGet, "/api/v1/reports/items?period=today", admin, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Латте")

	rec = srv.do(t, http.MethodPost, "/api/v1/bug-reports", barista, map[string]any{"text": "receipt printer offline"}, nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestLogoutRevokesToken(t *testing.T) {
	srv := newTestServer(t)
	token := srv.login(t, "tg:5", "brew")

	rec := srv.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/v1/orders", token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginIsRateLimitedPerStaff(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < 3; i++ {
		rec := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"staff_id": "tg:9", "password": "guess"}, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec := srv.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"staff_id": "tg:9", "password": "brew"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "RATE_LIMIT") || rec.Header().Get("Retry-After") != "")
}
