package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRF(t *testing.T) {
	var gotToken string
	handler := CSRF(false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = CSRFToken(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// A first GET issues the cookie and exposes the token to templates.
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/shows/add", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, CSRFCookieName, cookie.Name)
	assert.Equal(t, cookie.Value, gotToken)
	assert.Len(t, gotToken, 64)

	post := func(field string, withCookie bool) int {
		form := url.Values{CSRFFieldName: {field}, "show_name": {"x"}}
		req := httptest.NewRequest(http.MethodPost, "/shows/add", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if withCookie {
			req.AddCookie(cookie)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, post(cookie.Value, true))
	assert.Equal(t, http.StatusForbidden, post("forged", true))
	assert.Equal(t, http.StatusForbidden, post(cookie.Value, false))
	assert.Equal(t, http.StatusForbidden, post("", true))
}
