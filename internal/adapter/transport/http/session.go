package http_server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie carries the token issued by the login flow.
const SessionCookie = "portal_session"

var (
	errNoSession      = errors.New("session missing")
	errSessionExpired = errors.New("session expired")
)

// Claims is the session payload. Domain is the user's company domain as
// reported by the identity provider.
type Claims struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"`
	jwt.RegisteredClaims
}

// UserDomain falls back to the e-mail domain when the claim is absent.
func (c *Claims) UserDomain() string {
	if d := strings.TrimSpace(c.Domain); d != "" {
		return strings.ToLower(d)
	}
	if _, d, ok := strings.Cut(c.Email, "@"); ok {
		return strings.ToLower(strings.TrimSpace(d))
	}
	return ""
}

// Sessions signs and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a session token with the shared secret. The service itself only
// verifies sessions; Issue is the signing half used by the external login
// flow and by tests.
func (s *Sessions) Issue(email, name, domain string) (string, error) {
	now := s.now()
	claims := &Claims{
		Email:  email,
		Name:   name,
		Domain: domain,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

func (s *Sessions) Parse(token string) (*Claims, error) {
	if token == "" {
		return nil, errNoSession
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, errSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errNoSession, err)
	}
	return claims, nil
}

// Middleware rejects requests without a valid session with 401.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.Parse(tokenFrom(r))
		switch {
		case errors.Is(err, errSessionExpired):
			writeError(w, http.StatusUnauthorized, "Session expired", "Please log in again")
			return
		case err != nil:
			writeError(w, http.StatusUnauthorized, "Authentication required", "")
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), claims)))
	})
}

func tokenFrom(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

type sessionKey struct{}

func withSession(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, sessionKey{}, c)
}

func sessionFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(sessionKey{}).(*Claims)
	return c
}
