package http

import (
	"log/slog"
	"net/http"

	"showscheduler/internal/delivery/http/controllers"
	"showscheduler/internal/delivery/http/helpers"
	"showscheduler/internal/delivery/http/middleware"
	"showscheduler/internal/delivery/http/views"
	"showscheduler/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig holds the controllers and middleware settings used by NewRouter.
type RouterConfig struct {
	Shows   *controllers.ShowController
	Bands   *controllers.BandController
	Weather *controllers.WeatherController
	Account *controllers.AccountController
	Views   *views.Renderer

	Verifier       domain.TokenVerifier
	Logger         *slog.Logger
	AllowedOrigins []string
	SecureCookies  bool
}

// NewRouter initializes the HTTP router with all application routes.
// Pages get anti-forgery checks, /api/ gets CORS, every request is tagged and logged.
func NewRouter(cfg RouterConfig) http.Handler {
	root := http.NewServeMux()
	root.Handle("/api/", middleware.CORS(cfg.AllowedOrigins, apiRoutes(cfg)))
	root.Handle("/swagger/", httpSwagger.WrapHandler)
	root.Handle("/", middleware.CSRF(cfg.SecureCookies, pageRoutes(cfg)))

	return middleware.RequestID(middleware.LoggingMiddleware(cfg.Logger, middleware.Authenticate(cfg.Verifier, root)))
}

func pageRoutes(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	login := middleware.RequireLogin

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/shows", http.StatusFound)
	})

	// Shows
	mux.HandleFunc("GET /shows", cfg.Shows.Index)
	mux.HandleFunc("GET /shows/info/{id}", cfg.Shows.Info)
	mux.HandleFunc("GET /shows/calendar/{id}", cfg.Shows.Calendar)
	mux.HandleFunc("GET /shows/add", login(cfg.Shows.AddForm))
	mux.HandleFunc("POST /shows/add", login(cfg.Shows.Add))
	mux.HandleFunc("GET /shows/edit/{id}", login(cfg.Shows.EditForm))
	mux.HandleFunc("POST /shows/edit/{id}", login(cfg.Shows.Edit))
	mux.HandleFunc("GET /shows/remove/{id}", login(cfg.Shows.RemoveForm))
	mux.HandleFunc("POST /shows/remove/{id}", login(cfg.Shows.Remove))

	// Bands
	mux.HandleFunc("GET /bands", cfg.Bands.Index)
	mux.HandleFunc("GET /bands/details/{id}", cfg.Bands.Details)
	mux.HandleFunc("GET /bands/add", login(cfg.Bands.AddForm))
	mux.HandleFunc("POST /bands/add", login(cfg.Bands.Add))
	mux.HandleFunc("GET /bands/edit/{id}", login(cfg.Bands.EditForm))
	mux.HandleFunc("POST /bands/edit/{id}", login(cfg.Bands.Edit))
	mux.HandleFunc("GET /bands/remove/{id}", login(cfg.Bands.RemoveForm))
	mux.HandleFunc("POST /bands/remove/{id}", login(cfg.Bands.Remove))

	mux.HandleFunc("GET /weather/current", cfg.Weather.Widget)

	// Account
	mux.HandleFunc("GET /account/login", cfg.Account.LoginForm)
	mux.HandleFunc("POST /account/login", cfg.Account.Login)
	mux.HandleFunc("POST /account/logout", cfg.Account.Logout)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		cfg.Views.Render(w, r, http.StatusNotFound, views.Error, "Not found", views.ErrorPage{
			Status:  http.StatusNotFound,
			Message: "The page or record you asked for does not exist.",
		})
	})
	return mux
}

func apiRoutes(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)

	mux.HandleFunc("GET /api/shows", cfg.Shows.List)
	mux.HandleFunc("GET /api/shows/{id}", cfg.Shows.Get)
	mux.HandleFunc("POST /api/shows", auth(cfg.Shows.Create))
	mux.HandleFunc("POST /api/shows/residency", auth(cfg.Shows.CreateResidency))
	mux.HandleFunc("PUT /api/shows/{id}", auth(cfg.Shows.Update))
	mux.HandleFunc("DELETE /api/shows/{id}", auth(cfg.Shows.Delete))

	mux.HandleFunc("GET /api/bands", cfg.Bands.List)
	mux.HandleFunc("GET /api/bands/{id}", cfg.Bands.Get)
	mux.HandleFunc("POST /api/bands", auth(cfg.Bands.Create))
	mux.HandleFunc("PUT /api/bands/{id}", auth(cfg.Bands.Update))
	mux.HandleFunc("DELETE /api/bands/{id}", auth(cfg.Bands.Delete))

	mux.HandleFunc("GET /api/weather", cfg.Weather.Current)

	mux.HandleFunc("POST /api/auth/login", cfg.Account.APILogin)
	mux.HandleFunc("POST /api/auth/register", auth(cfg.Account.APIRegister))

	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "route not found")
	})
	return mux
}
