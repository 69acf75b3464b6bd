package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

// CSRF cookie and form field names.
const (
	CSRFCookieName = "csrf_token"
	CSRFFieldName  = "csrf_token"
)

const csrfTokenKey contextKey = "csrfToken"

// CSRFToken returns the anti-forgery token to embed in forms.
func CSRFToken(ctx context.Context) string {
	t, _ := ctx.Value(csrfTokenKey).(string)
	return t
}

// CSRF implements the double-submit cookie pattern: every client gets a random
// token cookie, and unsafe requests must echo it in the csrf_token form field.
func CSRF(secure bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(CSRFCookieName); err == nil && len(c.Value) == 64 {
			token = c.Value
		}

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			sent := r.PostFormValue(CSRFFieldName)
			if token == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				http.Error(w, "invalid anti-forgery token", http.StatusForbidden)
				return
			}
		}

		if token == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			token = hex.EncodeToString(b)
			http.SetCookie(w, &http.Cookie{
				Name:     CSRFCookieName,
				Value:    token,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfTokenKey, token)))
	})
}
