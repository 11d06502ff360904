package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/coffeepos-backend/pkg/errors"
)

type lineBody struct {
	PriceID  string `json:"price_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"gte=1,lte=99"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"price_id":"`+uuid.NewString()+`","quantity":2}`))
	var body lineBody
	require.NoError(t, DecodeJSONBody(req, &body))
	assert.Equal(t, 2, body.Quantity)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"price_id":"x","quantity":1,"extra":true}`))
	var body lineBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyReportsFieldErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"price_id":"nope","quantity":0}`))
	var body lineBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a valid uuid", details["price_id"])
	assert.Equal(t, "must be greater than or equal to 1", details["quantity"])
}

func TestDecodeOptionalJSONBodyAcceptsEmptyBody(t *testing.T) {
	type startBody struct {
		OrderID *string `json:"order_id" validate:"omitempty,uuid"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	var body startBody
	require.NoError(t, DecodeOptionalJSONBody(req, &body))
	assert.Nil(t, body.OrderID)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = BearerToken("abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = BearerToken("  bearer\tabc.def ")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "   ", "Bearer ", "Bearer", "bearer", " BEARER  ", "Bearer a b", "Basic abc"} {
		_, err = BearerToken(header)
		assert.ErrorIsf(t, err, ErrInvalidToken, "header %q", header)
	}
}

func TestPathParams(t *testing.T) {
	id := uuid.New()
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", id.String())
	rc.URLParams.Add("index", "2")
	rc.URLParams.Add("bad", "-1")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))

	got, err := UUIDParam(req, "orderId")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	idx, err := IntParam(req, "index")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	_, err = IntParam(req, "bad")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = UUIDParam(req, "missing")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Лат", SanitizeString("  Латте ", 3))
	assert.Equal(t, "abc", SanitizeString("abc", 0))
	assert.Nil(t, SanitizeOptional(ptr("   "), 10))
	assert.Equal(t, "oat", *SanitizeOptional(ptr(" oat "), 10))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=7", nil)
	v, err := ParseQueryInt(req, "limit", 5, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	req = httptest.NewRequest(http.MethodGet, "/?limit=70", nil)
	_, err = ParseQueryInt(req, "limit", 5, 1, 10)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func ptr(s string) *string { return &s }
