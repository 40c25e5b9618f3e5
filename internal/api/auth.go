package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/nbbluestudios/crickbid/internal/models"
)

// Claims is the JWT payload issued at login.
type Claims struct {
	jwt.RegisteredClaims
	ManagerID int64  `json:"manager_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type contextKey string

const managerContextKey contextKey = "manager"

// TokenTTL is how long a session token is valid.
const TokenTTL = 12 * time.Hour

// issueToken signs a session token for the manager.
func (s *Server) issueToken(m *models.Manager) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", m.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		ManagerID: m.ID,
		Email:     m.Email,
		Role:      string(m.Role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// parseToken validates a session token and returns its claims.
func (s *Server) parseToken(tokenString string) (*Claims, error) {
	claims := new(Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// checkPassword compares a login attempt against the stored hash.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// requireAuth validates the bearer token and loads the manager into the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			respondError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}
		claims, err := s.parseToken(tokenString)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		manager, err := s.managers.GetByID(r.Context(), claims.ManagerID)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unknown account")
			return
		}
		ctx := context.WithValue(r.Context(), managerContextKey, manager)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin restricts a route to the auctioneer.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := managerFrom(r.Context())
		if m == nil || !m.IsAdmin() {
			respondError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// managerFrom returns the authenticated manager, or nil.
func managerFrom(ctx context.Context) *models.Manager {
	m, _ := ctx.Value(managerContextKey).(*models.Manager)
	return m
}

// bearerToken extracts the token from the Authorization header, or the
// token query parameter for websocket upgrades where headers are not
// available to browsers.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
			return rest
		}
	}
	return r.URL.Query().Get("token")
}
