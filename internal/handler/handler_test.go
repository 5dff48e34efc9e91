package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/config"
	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/repository"
	"github.com/MinhQuan-Tran/ShiftPay-Backend/internal/storetest"
)

const testSecret = "test-secret"

func newTestHandler(t *testing.T) (*Handler, *storetest.FakeDynamoDB) {
	t.Helper()

	cfg := &config.Config{}
	cfg.DynamoDB.ShiftsTable = "Shifts"
	cfg.DynamoDB.WorkInfosTable = "WorkInfos"
	cfg.DynamoDB.ShiftTemplatesTable = "ShiftTemplates"
	cfg.DynamoDB.QueryTimeout = 5
	cfg.JWT.Secret = testSecret

	fake := storetest.NewFakeDynamoDB()
	repo := repository.NewRepository(cfg, fake)

	h, err := NewHandler(cfg, repo)
	require.NoError(t, err)
	h.RegisterRoutes()

	return h, fake
}

func signToken(t *testing.T, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, h *Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestAuthRequired(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := do(t, h, http.MethodGet, "/api/shifts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/shifts", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// a valid signature with no subject claim is still unauthorized
	rec = do(t, h, http.MethodGet, "/api/shifts", signToken(t, ""), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsUnexpectedSigningMethod(t *testing.T) {
	h, _ := newTestHandler(t)

	// correct secret, wrong algorithm
	token := jwt.NewWithClaims(jwt.SigningMethodHS384, AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/api/shifts", signed, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStorageOutageIsServiceUnavailable(t *testing.T) {
	h, fake := newTestHandler(t)
	fake.FailWith = &smithy.GenericAPIError{Code: "ThrottlingException", Message: "slow down"}

	rec := do(t, h, http.MethodGet, "/api/shifts", signToken(t, "user-1"), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
