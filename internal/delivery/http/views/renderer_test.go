package views

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"showscheduler/internal/delivery/http/helpers"
	"showscheduler/internal/delivery/http/middleware"
	"showscheduler/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func TestNew_ParsesEveryPage(t *testing.T) {
	r, err := New(testLogger)
	require.NoError(t, err)
	for _, name := range append(pageNames, WeatherWidget) {
		assert.Contains(t, r.pages, name)
	}
}

func TestRender_LayoutAndFlash(t *testing.T) {
	v, err := New(testLogger)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	helpers.SetFlash(rr, "The show was removed successfully.")
	flash := rr.Result().Cookies()[0]

	req := httptest.NewRequest(http.MethodGet, "/shows", nil)
	req.AddCookie(flash)
	req = req.WithContext(middleware.SetUserID(req.Context(), "1"))
	rr = httptest.NewRecorder()
	page := domain.NewPage([]*domain.Show{}, domain.PaginationParams{Page: 1, PageSize: 6}, 0)
	v.Render(rr, req, http.StatusOK, ShowsIndex, "Shows", ShowIndexPage{Page: page})

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	body := rr.Body.String()
	assert.Contains(t, body, "<title>Shows - Show Scheduler</title>")
	assert.Contains(t, body, "The show was removed successfully.")
	assert.Contains(t, body, "No shows found.")
	assert.Contains(t, body, `action="/account/logout"`, "operators get the logout button")
}

func TestRender_UnknownPage(t *testing.T) {
	v, err := New(testLogger)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	v.Render(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing", "Missing", nil)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRender_FormatsTimes(t *testing.T) {
	v, err := New(testLogger)
	require.NoError(t, err)

	date := time.Date(2001, 10, 24, 0, 0, 0, 0, time.UTC)
	band := &domain.Band{
		ID:        11,
		BandName:  "Tool",
		StartTime: date.Add(22 * time.Hour),
		EndTime:   date.Add(25*time.Hour + 30*time.Minute),
		Show:      &domain.Show{ID: 3, Date: date, ShowName: "Lateralus Tour", Venue: "Reunion Arena"},
	}
	rr := httptest.NewRecorder()
	v.Render(rr, httptest.NewRequest(http.MethodGet, "/bands/details/11", nil), http.StatusOK, BandDetails, band.BandName, band)

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "10/24/2001")
	assert.Contains(t, body, "10:00 PM")
	assert.Contains(t, body, "01:30 AM")
	assert.Contains(t, body, `href="/account/login"`)
}

func TestPartial_Weather(t *testing.T) {
	v, err := New(testLogger)
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	v.Partial(rr, httptest.NewRequest(http.MethodGet, "/weather/current", nil), http.StatusOK, WeatherWidget, WeatherPage{})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Weather unavailable")
	assert.NotContains(t, rr.Body.String(), "<html")
}
