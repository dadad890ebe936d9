package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initTestAuth(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "unit-test-secret")
	require.NoError(t, Init())
}

func TestTokenRoundTrip(t *testing.T) {
	initTestAuth(t)

	token, err := GenerateToken("5b1e", "ana@example.com", "Ana", "admin")
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "5b1e", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "Ana", claims.Nome)
	assert.Equal(t, "admin", claims.Rol)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	initTestAuth(t)

	_, err := ParseToken("not.a.token")
	require.Error(t, err)
}

func TestJWTMiddleware(t *testing.T) {
	initTestAuth(t)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := GetClaimsFromContext(r.Context()); err != nil && !publicPaths[r.URL.Path] {
			t.Errorf("expected claims in context for %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	})
	handler := JWTMiddleware(next)

	// Missing token
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/conversions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Public path needs no token
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Valid bearer token
	token, err := GenerateToken("5b1e", "ana@example.com", "Ana", "admin")
	require.NoError(t, err)
	req := httptest.NewRequest("GET", "/api/conversions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
