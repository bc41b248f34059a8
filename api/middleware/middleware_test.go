package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monkeysroasters/roastery-backend/pkg/config"
)

func TestUserContextSeedsUserID(t *testing.T) {
	var seen int64
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserIDFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-User-Id", "123456789")

	resp := httptest.NewRecorder()
	UserContext(nil)(next).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, int64(123456789), seen)
}

func TestUserContextRejectsMissingHeader(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	UserContext(nil)(next).ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUserContextRejectsGarbageHeader(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("X-User-Id", "abc")
	resp := httptest.NewRecorder()
	UserContext(nil)(next).ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func adminTestConfig() config.AdminConfig {
	return config.AdminConfig{
		JWTSecret:         "test-secret",
		JWTIssuer:         "roastery",
		ExpirationMinutes: 60,
	}
}

func TestAdminAuthAcceptsIssuedToken(t *testing.T) {
	cfg := adminTestConfig()
	token, err := IssueAdminToken(cfg, "barista", time.Now())
	require.NoError(t, err)

	var subject string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = AdminSubjectFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/promos", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	AdminAuth(cfg, nil)(next).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "barista", subject)
}

func TestAdminAuthRejectsMissingToken(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/promos", nil)
	resp := httptest.NewRecorder()
	AdminAuth(adminTestConfig(), nil)(next).ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAdminAuthRejectsWrongSecret(t *testing.T) {
	other := adminTestConfig()
	other.JWTSecret = "other-secret"
	token, err := IssueAdminToken(other, "barista", time.Now())
	require.NoError(t, err)

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/promos", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	AdminAuth(adminTestConfig(), nil)(next).ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestAdminAuthRejectsExpiredToken(t *testing.T) {
	cfg := adminTestConfig()
	token, err := IssueAdminToken(cfg, "barista", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/promos", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp := httptest.NewRecorder()
	AdminAuth(cfg, nil)(next).ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRequestIDGeneratedWhenAbsent(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	RequestID(nil)(next).ServeHTTP(resp, req)

	assert.NotEmpty(t, resp.Header().Get("X-Request-Id"))
}

func TestRequestIDEchoedWhenPresent(t *testing.T) {
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-abc")
	resp := httptest.NewRecorder()
	RequestID(nil)(next).ServeHTTP(resp, req)

	assert.Equal(t, "req-abc", resp.Header().Get("X-Request-Id"))
}
