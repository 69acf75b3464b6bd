package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"showscheduler/internal/delivery/http/helpers"
	"showscheduler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	userID string
	err    error
	seen   string
}

func (f *fakeTokenVerifier) Verify(token string) (string, error) {
	f.seen = token
	if f.err != nil {
		return "", f.err
	}
	return f.userID, nil
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name          string
		authHeader    string
		cookie        string
		verifier      *fakeTokenVerifier
		wantStatus    int
		wantBodyCode  string
		nextCalled    bool
		wantContextID string
		wantToken     string
	}{
		{
			name:          "valid bearer token sets context and calls next",
			authHeader:    "Bearer valid-token",
			verifier:      &fakeTokenVerifier{userID: "1"},
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "1",
			wantToken:     "valid-token",
		},
		{
			name:          "auth cookie is accepted",
			cookie:        "cookie-token",
			verifier:      &fakeTokenVerifier{userID: "1"},
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "1",
			wantToken:     "cookie-token",
		},
		{
			name:          "header wins over cookie",
			authHeader:    "Bearer header-token",
			cookie:        "cookie-token",
			verifier:      &fakeTokenVerifier{userID: "1"},
			wantStatus:    http.StatusOK,
			nextCalled:    true,
			wantContextID: "1",
			wantToken:     "header-token",
		},
		{
			name:         "missing credentials",
			verifier:     &fakeTokenVerifier{userID: "1"},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "invalid authorization format no Bearer prefix",
			authHeader:   "Basic abc",
			verifier:     &fakeTokenVerifier{userID: "1"},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "empty token after Bearer",
			authHeader:   "Bearer ",
			verifier:     &fakeTokenVerifier{userID: "1"},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
		{
			name:         "verifier returns error",
			authHeader:   "Bearer bad-token",
			verifier:     &fakeTokenVerifier{err: errors.Join(domain.ErrUnauthorized, errors.New("expired"))},
			wantStatus:   http.StatusUnauthorized,
			wantBodyCode: helpers.ErrCodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			var capturedUserID string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				capturedUserID, _ = UserIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})
			handler := RequireAuth(tt.verifier, testLogger)(next)

			req := httptest.NewRequest(http.MethodPost, "http://test/api/shows", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: tt.cookie})
			}
			rr := httptest.NewRecorder()

			handler(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.nextCalled, nextCalled, "next handler called")
			if tt.nextCalled {
				assert.Equal(t, tt.wantContextID, capturedUserID, "user ID in context")
				assert.Equal(t, tt.wantToken, tt.verifier.seen)
			}
			if tt.wantBodyCode != "" {
				var envelope helpers.APIResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
				require.NotNil(t, envelope.Error)
				assert.Equal(t, tt.wantBodyCode, envelope.Error.Code)
			}
		})
	}
}

func TestAuthenticateAndRequireLogin(t *testing.T) {
	protected := Authenticate(&fakeTokenVerifier{userID: "7"}, RequireLogin(func(w http.ResponseWriter, r *http.Request) {
		id, _ := UserIDFromContext(r.Context())
		_, _ = w.Write([]byte("hello " + id))
	}))

	t.Run("anonymous is redirected with returnUrl", func(t *testing.T) {
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/shows/edit/3?x=1", nil))
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/account/login?returnUrl=%2Fshows%2Fedit%2F3%3Fx%3D1", rr.Header().Get("Location"))
	})

	t.Run("cookie login passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/shows/edit/3", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "tok"})
		rr := httptest.NewRecorder()
		protected.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "hello 7", rr.Body.String())
	})

	t.Run("invalid token is treated as anonymous", func(t *testing.T) {
		h := Authenticate(&fakeTokenVerifier{err: domain.ErrUnauthorized}, RequireLogin(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("next must not run")
		}))
		req := httptest.NewRequest(http.MethodGet, "/bands/add", nil)
		req.AddCookie(&http.Cookie{Name: AuthCookieName, Value: "expired"})
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
	})
}
