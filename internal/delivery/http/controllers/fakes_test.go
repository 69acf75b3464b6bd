package controllers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"showscheduler/internal/delivery/http/middleware"
	"showscheduler/internal/delivery/http/views"
	"showscheduler/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestViews(t *testing.T) *views.Renderer {
	t.Helper()
	v, err := views.New(testLogger)
	require.NoError(t, err)
	return v
}

// asOperator marks the request as coming from a logged-in operator.
func asOperator(r *http.Request) *http.Request {
	return r.WithContext(middleware.SetUserID(r.Context(), "1"))
}

func formBody(values url.Values) io.Reader {
	return strings.NewReader(values.Encode())
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fakeShowService implements domain.ShowService for handler tests.
type fakeShowService struct {
	page         domain.Page[*domain.Show]
	show         *domain.Show
	residency    []*domain.Show
	calendar     []byte
	err          error
	lastSearch   string
	lastParams   domain.PaginationParams
	lastCreate   *domain.Show
	lastUpdate   *domain.Show
	lastDeleteID int64
	lastWeeks    int
}

func (f *fakeShowService) List(_ context.Context, search string, params domain.PaginationParams) (domain.Page[*domain.Show], error) {
	f.lastSearch, f.lastParams = search, params
	return f.page, f.err
}

func (f *fakeShowService) Get(_ context.Context, id int64) (*domain.Show, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.show, nil
}

func (f *fakeShowService) Create(_ context.Context, show *domain.Show) error {
	f.lastCreate = show
	if f.err != nil {
		return f.err
	}
	show.ID = 7
	return nil
}

func (f *fakeShowService) CreateResidency(_ context.Context, show *domain.Show, weeks int) ([]*domain.Show, error) {
	f.lastCreate, f.lastWeeks = show, weeks
	if f.err != nil {
		return nil, f.err
	}
	show.ID = 7
	return f.residency, nil
}

func (f *fakeShowService) Update(_ context.Context, show *domain.Show) error {
	f.lastUpdate = show
	return f.err
}

func (f *fakeShowService) Delete(_ context.Context, id int64) error {
	f.lastDeleteID = id
	return f.err
}

func (f *fakeShowService) Calendar(_ context.Context, id int64) ([]byte, error) {
	return f.calendar, f.err
}

// fakeBandService implements domain.BandService for handler tests.
type fakeBandService struct {
	page         domain.Page[*domain.Band]
	band         *domain.Band
	options      []domain.ShowOption
	err          error
	optionsErr   error
	lastSearch   string
	lastParams   domain.PaginationParams
	lastCreate   *domain.Band
	lastUpdate   *domain.Band
	lastDeleteID int64
}

func (f *fakeBandService) List(_ context.Context, search string, params domain.PaginationParams) (domain.Page[*domain.Band], error) {
	f.lastSearch, f.lastParams = search, params
	return f.page, f.err
}

func (f *fakeBandService) Get(_ context.Context, id int64) (*domain.Band, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.band, nil
}

func (f *fakeBandService) Create(_ context.Context, band *domain.Band) error {
	f.lastCreate = band
	if f.err != nil {
		return f.err
	}
	band.ID = 11
	return nil
}

func (f *fakeBandService) Update(_ context.Context, band *domain.Band) error {
	f.lastUpdate = band
	return f.err
}

func (f *fakeBandService) Delete(_ context.Context, id int64) error {
	f.lastDeleteID = id
	return f.err
}

func (f *fakeBandService) ShowOptions(context.Context) ([]domain.ShowOption, error) {
	return f.options, f.optionsErr
}

// fakeWeatherService implements domain.WeatherService.
type fakeWeatherService struct {
	weather *domain.Weather
	err     error
}

func (f *fakeWeatherService) Current(context.Context) (*domain.Weather, error) {
	return f.weather, f.err
}

func (f *fakeWeatherService) Refresh(context.Context) error { return f.err }

// fakeAuthService implements domain.AuthService.
type fakeAuthService struct {
	token        string
	user         *domain.User
	loginErr     error
	registerErr  error
	lastEmail    string
	lastPassword string
}

func (f *fakeAuthService) Register(_ context.Context, email, password string) (*domain.User, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &domain.User{ID: 2, Email: email}, nil
}

func (f *fakeAuthService) Login(_ context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail, f.lastPassword = email, password
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) EnsureOperator(context.Context, string, string) error { return nil }
