// internal/httpserver/token.go
//
// Per-game access tokens.
// Creating a game returns an HS256 JWT whose "gid" claim names the game and
// whose "kind" claim is "line" or "cards". Every /line/{id} and /cards/{id}
// route requires that token, either as "Authorization: Bearer <token>" or as
// a "token" query parameter (EventSource and WebSocket clients cannot set
// headers).

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

var errBadToken = errors.New("invalid token")

// gameClaims is the JWT payload of a game token.
type gameClaims struct {
	GID  string `json:"gid"`
	Kind string `json:"kind"`
	jwt.RegisteredClaims
}

// tokenIssuer signs and verifies game tokens.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newTokenIssuer(secret string, ttl time.Duration) *tokenIssuer {
	if secret == "" {
		secret = "dev_secret_change_me"
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &tokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign issues a token for game gid.
func (t *tokenIssuer) Sign(gid, kind string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, gameClaims{
		GID:  gid,
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	ss, err := tok.SignedString(t.secret)
	return ss, exp, err
}

// Verify parses and validates a token.
func (t *tokenIssuer) Verify(raw string) (*gameClaims, error) {
	claims := &gameClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !tok.Valid {
		return nil, errBadToken
	}
	if claims.GID == "" {
		return nil, errBadToken
	}
	return claims, nil
}

// bearerOrQuery extracts a token from the Authorization header or ?token=.
func bearerOrQuery(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return r.URL.Query().Get("token")
}

type ctxClaimsKey struct{}

// requireGame enforces a valid token of the given kind for the {id} in the
// route.
func (s *Server) requireGame(kind string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerOrQuery(r)
			if raw == "" {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims, err := s.tokens.Verify(raw)
			if err != nil {
				http.Error(w, `{"error":"Invalid token"}`, http.StatusUnauthorized)
				return
			}
			if claims.Kind != kind || claims.GID != chi.URLParam(r, "id") {
				http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), ctxClaimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
