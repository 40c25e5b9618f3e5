package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nbbluestudios/crickbid/internal/models"
)

func testServer() *Server {
	return &Server{jwtSecret: "test-secret"}
}

func TestTokenRoundTrip(t *testing.T) {
	s := testServer()
	m := &models.Manager{
		ID:    42,
		Email: "alice@example.com",
		Role:  models.ManagerRoleManager,
	}

	token, err := s.issueToken(m)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := s.parseToken(token)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.ManagerID)
	require.Equal(t, "alice@example.com", claims.Email)
	require.Equal(t, "manager", claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	s := testServer()
	m := &models.Manager{ID: 1, Email: "a@b.c"}

	token, err := s.issueToken(m)
	require.NoError(t, err)

	other := &Server{jwtSecret: "different-secret"}
	_, err = other.parseToken(token)
	require.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := testServer().parseToken("not.a.token")
	require.Error(t, err)
}

func TestCheckPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	require.True(t, checkPassword(string(hash), "hunter2"))
	require.False(t, checkPassword(string(hash), "hunter3"))
	require.False(t, checkPassword("not-a-hash", "hunter2"))
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/auction", nil)
	r.Header.Set("Authorization", "Bearer abc123")
	require.Equal(t, "abc123", bearerToken(r))

	r = httptest.NewRequest(http.MethodGet, "/ws/auction?token=q456", nil)
	require.Equal(t, "q456", bearerToken(r))

	r = httptest.NewRequest(http.MethodGet, "/api/auction", nil)
	require.Empty(t, bearerToken(r))
}

func TestRequireAdmin(t *testing.T) {
	s := testServer()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := s.requireAdmin(next)

	admin := &models.Manager{ID: 1, Role: models.ManagerRoleAdmin}
	r := httptest.NewRequest(http.MethodPost, "/api/admin/auctions", nil)
	r = r.WithContext(context.WithValue(r.Context(), managerContextKey, admin))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	manager := &models.Manager{ID: 2, Role: models.ManagerRoleManager}
	r = httptest.NewRequest(http.MethodPost, "/api/admin/auctions", nil)
	r = r.WithContext(context.WithValue(r.Context(), managerContextKey, manager))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)

	// No authenticated manager at all.
	r = httptest.NewRequest(http.MethodPost, "/api/admin/auctions", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	s := testServer()
	handler := s.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/auction", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
