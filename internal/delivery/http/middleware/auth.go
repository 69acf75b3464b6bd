package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	h "showscheduler/internal/delivery/http/helpers"
	"showscheduler/internal/domain"
)

type contextKey string

const userIDKey contextKey = "userID"

// AuthCookieName is the HttpOnly cookie carrying the operator token for HTML pages.
const AuthCookieName = "auth_token"

// LoginPath is where RequireLogin sends anonymous visitors.
const LoginPath = "/account/login"

// SetUserID returns a context with the user ID set. Used by auth middleware.
func SetUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user ID from the context, if present.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// tokenFromRequest returns the Bearer token, falling back to the auth cookie.
func tokenFromRequest(r *http.Request) (token string, malformed bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			return "", true
		}
		return strings.TrimSpace(auth[len(prefix):]), false
	}
	if c, err := r.Cookie(AuthCookieName); err == nil {
		return c.Value, false
	}
	return "", false
}

// RequireAuth returns a wrapper that validates the Bearer token (or auth cookie) and sets the user ID in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, malformed := tokenFromRequest(r)
			if malformed {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			userID, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "path", r.URL.Path, "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetUserID(r.Context(), userID)))
		}
	}
}

// Authenticate sets the user ID in the context when the request carries a
// valid token. Anonymous requests pass through unchanged.
func Authenticate(verifier domain.TokenVerifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, _ := tokenFromRequest(r); token != "" {
			if userID, err := verifier.Verify(token); err == nil {
				r = r.WithContext(SetUserID(r.Context(), userID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireLogin redirects anonymous visitors to the login page, keeping the
// requested path as returnUrl. It expects Authenticate to have run.
func RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			target := LoginPath + "?returnUrl=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}
