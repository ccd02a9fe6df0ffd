package middleware

import (
	"context"
	"net/http"
	"strings"

	"cherlygood/config"
	"cherlygood/utils"
)

// Key type for context
type contextKey string

// UserContextKey holds the verified session claims on the request context.
const UserContextKey = contextKey("user")

// SessionCookieName is the admin session cookie.
const SessionCookieName = "session"

// Auth verifies admin session tokens and attaches the claims to the request
// context. When a session-verification endpoint is configured the token is
// checked remotely (5s timeout, any failure is an auth failure); otherwise it
// is parsed locally as an HS256 JWT.
type Auth struct {
	cfg      *config.Config
	verifier *utils.SessionVerifier
}

// NewAuth creates the auth middleware set.
func NewAuth(cfg *config.Config) *Auth {
	a := &Auth{cfg: cfg}
	if cfg.SessionVerifyURL != "" {
		a.verifier = utils.NewSessionVerifier(cfg.SessionVerifyURL)
	}
	return a
}

// Authenticate verifies the session token and attaches claims to the context
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			http.Error(w, "Authorization missing", http.StatusUnauthorized)
			return
		}

		claims, err := a.verify(r.Context(), token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin ensures that the session has admin privileges
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(UserContextKey).(*utils.Claims)
		if !ok || claims.Role != "admin" {
			http.Error(w, "Forbidden: Admins only", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *Auth) verify(ctx context.Context, token string) (*utils.Claims, error) {
	if a.verifier != nil {
		return a.verifier.Verify(ctx, token)
	}
	return utils.ParseJWT(a.cfg.JWTSecret, token)
}

// sessionToken reads the token from the session cookie or, failing that, a
// bearer Authorization header.
func sessionToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}
