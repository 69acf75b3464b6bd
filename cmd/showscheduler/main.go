// @title Show Scheduler API
// @version 1.0
// @description Shows, bands and the weather widget for the venue schedule. Writes require an operator token.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"showscheduler/config"
	_ "showscheduler/docs"
	"showscheduler/internal/adapters/auth"
	"showscheduler/internal/adapters/calendar"
	"showscheduler/internal/adapters/email"
	"showscheduler/internal/adapters/openweathermap"
	deliveryhttp "showscheduler/internal/delivery/http"
	"showscheduler/internal/delivery/http/controllers"
	"showscheduler/internal/delivery/http/views"
	"showscheduler/internal/repository/postgres"
	"showscheduler/internal/services"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	log := config.NewLogger()
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("starting", slog.String("env", cfg.Environment), slog.String("port", cfg.Port))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to database", databaseLogArgs(cfg.DBUrl)...)
	db, err := postgres.Open(ctx, cfg.DBUrl, postgres.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		args := append([]any{slog.Any("err", err)}, databaseLogArgs(cfg.DBUrl)...)
		log.Error("database connection failed", args...)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}()

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("migration failed", slog.Any("err", err))
		os.Exit(1)
	}
	if cfg.SeedData {
		inserted, err := postgres.Seed(ctx, db)
		if err != nil {
			log.Error("seed failed", slog.Any("err", err))
			os.Exit(1)
		}
		log.Info("seed checked", slog.Bool("inserted", inserted))
	}

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokens := auth.NewJWT(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, log)
	if err != nil {
		log.Error("mailer setup failed", slog.Any("err", err))
		os.Exit(1)
	}
	weatherProvider := openweathermap.NewClient(&http.Client{Timeout: cfg.RequestTimeout}, openweathermap.Config{
		BaseURL: cfg.WeatherBaseURL,
		APIKey:  cfg.WeatherAPIKey,
		City:    cfg.WeatherCity,
	})
	if cfg.WeatherAPIKey == "" {
		log.Warn("OPENWEATHERMAP_API_KEY not set, weather widget disabled")
	}

	// Repositories and services
	showRepo := postgres.NewShowRepository(db)
	bandRepo := postgres.NewBandRepository(db)
	userRepo := postgres.NewUserRepository(db)
	tx := postgres.NewTransactor(db)

	notifier := services.NewNotificationService(mailer, email.NewTemplateRenderer(), cfg.NotifyEmails, log)
	showSvc := services.NewShowService(tx, showRepo, bandRepo, calendar.NewICSExporter(hostname()), notifier, cfg.RequestTimeout)
	bandSvc := services.NewBandService(tx, bandRepo, showRepo, cfg.RequestTimeout)
	authSvc := services.NewAuthService(userRepo, hasher, tokens, cfg.JWTExpiry, cfg.RequestTimeout)
	weatherSvc := services.NewWeatherService(weatherProvider, cfg.WeatherTTL, log)

	if err := authSvc.EnsureOperator(ctx, cfg.OperatorEmail, cfg.OperatorPassword); err != nil {
		log.Error("operator bootstrap failed", slog.Any("err", err))
		os.Exit(1)
	}

	if cfg.WeatherRefreshCron != "" {
		refresher, err := services.NewWeatherRefresher(weatherSvc, cfg.WeatherRefreshCron, cfg.RequestTimeout, log)
		if err != nil {
			log.Error("weather refresher setup failed", slog.Any("err", err))
			os.Exit(1)
		}
		refresher.Start()
		defer func() { <-refresher.Stop().Done() }()
	}

	// Delivery
	pages, err := views.New(log)
	if err != nil {
		log.Error("template parse failed", slog.Any("err", err))
		os.Exit(1)
	}
	secure := cfg.IsProduction()
	router := deliveryhttp.NewRouter(deliveryhttp.RouterConfig{
		Shows:          controllers.NewShowController(log, showSvc, pages),
		Bands:          controllers.NewBandController(log, bandSvc, pages),
		Weather:        controllers.NewWeatherController(log, weatherSvc, pages),
		Account:        controllers.NewAccountController(log, authSvc, pages, cfg.JWTExpiry, secure),
		Views:          pages,
		Verifier:       tokens,
		Logger:         log,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		SecureCookies:  secure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info("http server started", slog.String("addr", srv.Addr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, srv, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func shutdown(log *slog.Logger, srv *http.Server, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown timed out; forcing close", slog.Any("err", err))
		_ = srv.Close()
		return
	}
	log.Info("http server stopped")
}

// hostname is the domain part of calendar event UIDs.
func hostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "showscheduler.local"
	}
	return h
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
