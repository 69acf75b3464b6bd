package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"showscheduler/internal/delivery/http/controllers"
	"showscheduler/internal/delivery/http/helpers"
	"showscheduler/internal/delivery/http/middleware"
	"showscheduler/internal/delivery/http/views"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// rejectAll accepts only the token "good".
type rejectAll struct{}

func (rejectAll) Verify(token string) (string, error) {
	if token == "good" {
		return "1", nil
	}
	return "", errors.New("bad token")
}

// newTestRouter wires controllers without services; only routes that stop in
// middleware are exercised here.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	v, err := views.New(testLogger)
	require.NoError(t, err)
	return NewRouter(RouterConfig{
		Shows:          controllers.NewShowController(testLogger, nil, v),
		Bands:          controllers.NewBandController(testLogger, nil, v),
		Weather:        controllers.NewWeatherController(testLogger, nil, v),
		Account:        controllers.NewAccountController(testLogger, nil, v, time.Hour, false),
		Views:          v,
		Verifier:       rejectAll{},
		Logger:         testLogger,
		AllowedOrigins: []string{"http://localhost:3000"},
	})
}

func TestRouter_RootRedirectsToShows(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/shows", rr.Header().Get("Location"))
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_OperatorPagesRequireLogin(t *testing.T) {
	paths := []string{"/shows/add", "/shows/edit/1", "/shows/remove/1", "/bands/add", "/bands/edit/1", "/bands/remove/1"}
	router := newTestRouter(t)
	for _, p := range paths {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusSeeOther, rr.Code, p)
		assert.True(t, strings.HasPrefix(rr.Header().Get("Location"), middleware.LoginPath+"?returnUrl="), p)
	}
}

func TestRouter_FormPostsNeedAntiForgeryToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/shows/remove/1", strings.NewReader("x=1"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Authorization", "Bearer good")
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, r)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_APIWritesRequireToken(t *testing.T) {
	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/shows"},
		{http.MethodPost, "/api/shows/residency"},
		{http.MethodPut, "/api/shows/1"},
		{http.MethodDelete, "/api/shows/1"},
		{http.MethodPost, "/api/bands"},
		{http.MethodPut, "/api/bands/1"},
		{http.MethodDelete, "/api/bands/1"},
		{http.MethodPost, "/api/auth/register"},
	}
	router := newTestRouter(t)
	for _, rt := range routes {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(rt.method, rt.path, strings.NewReader("{}")))
		require.Equal(t, http.StatusUnauthorized, rr.Code, rt.method+" "+rt.path)

		var resp helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, helpers.ErrCodeUnauthorized, resp.Error.Code)
	}
}

func TestRouter_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	var resp helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, helpers.ErrCodeNotFound, resp.Error.Code)
}

func TestRouter_CORSPreflightOnAPI(t *testing.T) {
	r := httptest.NewRequest(http.MethodOptions, "/api/shows", nil)
	r.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rr, r)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
}
