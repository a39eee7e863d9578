package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService("test-secret", time.Hour)
	require.NoError(t, err)
	return s
}

func TestIssueAndParse(t *testing.T) {
	s := newTestService(t)

	tok, err := s.Issue("user-1")
	require.NoError(t, err)

	user, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user)
}

func TestParseRejects(t *testing.T) {
	s := newTestService(t)
	other, err := NewService("other-secret", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue("user-1")
	require.NoError(t, err)

	expired := newTestService(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, err := expired.Issue("user-1")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1", Issuer: Issuer})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      stale,
		"alg none":     unsigned,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Parse(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService("", 0)
	assert.ErrorIs(t, err, ErrNoSecret)

	s, err := NewService("x", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTTL, s.ttl)
}

func TestContextHelpers(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	u, ok := UserFromContext(WithUser(context.Background(), "u1"))
	assert.True(t, ok)
	assert.Equal(t, "u1", u)

	_, ok = UserFromContext(WithUser(context.Background(), ""))
	assert.False(t, ok, "empty user is anonymous")
}

func TestMiddleware(t *testing.T) {
	s := newTestService(t)
	tok, err := s.Issue("u1")
	require.NoError(t, err)

	var seen string
	h := s.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantUser string
	}{
		{"anonymous", "", http.StatusNoContent, ""},
		{"valid bearer", "Bearer " + tok, http.StatusNoContent, "u1"},
		{"invalid bearer", "Bearer nope", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic dTE6cHc=", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantUser, seen)
		})
	}
}

func TestRequireUser(t *testing.T) {
	h := RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(rec, req.WithContext(WithUser(req.Context(), "u1")))
	assert.Equal(t, http.StatusOK, rec.Code)
}
