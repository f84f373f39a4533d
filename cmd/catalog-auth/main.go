package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	auth "github.com/goliatone/go-catalog-auth"
	"github.com/goliatone/go-catalog-auth/repository"
)

type ServerConfig struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":3000"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9090"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Debug       bool   `env:"DEBUG" envDefault:"false"`
	DB          repository.DBConfig
}

type App struct {
	config  ServerConfig
	auth    auth.Config
	logger  *slog.Logger
	repo    *repository.Manager
	metrics *auth.Metrics
	reg     *prometheus.Registry
	srv     router.Server[*fiber.App]
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
	defer stop()

	app := &App{}
	if err := env.Parse(&app.config); err != nil {
		return fmt.Errorf("parse server config: %w", err)
	}

	authCfg, err := auth.LoadConfig()
	if err != nil {
		return err
	}
	app.auth = authCfg

	app.logger = newLogger(app.config.LogLevel)
	if app.config.Debug {
		app.logger.Debug("server config", "config", print.MaybePrettyJSON(app.config))
	}

	if err := WithPersistence(ctx, app); err != nil {
		return err
	}
	defer app.repo.DB().Close()

	WithMetrics(app)

	if err := WithHTTPServer(app); err != nil {
		return err
	}

	errs := make(chan error, 2)
	metricsSrv := &http.Server{
		Addr:              app.config.MetricsAddr,
		Handler:           promhttp.HandlerFor(app.reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- fmt.Errorf("metrics server: %w", err)
		}
	}()

	go func() {
		app.logger.Info("http server listening", "addr", app.config.HTTPAddr)
		if err := app.srv.Serve(app.config.HTTPAddr); err != nil {
			errs <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		app.logger.Info("shutting down")
	case err := <-errs:
		app.logger.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("http shutdown", "error", err)
	}
	return metricsSrv.Shutdown(shutdownCtx)
}

func WithPersistence(ctx context.Context, app *App) error {
	db, err := repository.Open(ctx, app.config.DB)
	if err != nil {
		return err
	}

	app.repo = repository.NewRepositoryManager(db)
	app.repo.MustValidate()

	if err := app.repo.Migrate(ctx); err != nil {
		return err
	}

	app.logger.Info("database ready", "driver", app.config.DB.Driver)
	return nil
}

func WithMetrics(app *App) {
	app.reg = prometheus.NewRegistry()
	app.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	app.metrics = auth.NewMetrics(app.reg)
}

func WithHTTPServer(app *App) error {
	lgr := auth.NewSlogLogger(app.logger)

	hasher := auth.NewBcryptHasher(app.auth.BcryptCost, app.auth.HashWorkers,
		auth.WithHasherMetrics(app.metrics),
		auth.WithHasherLogger(lgr),
	)
	tokens := auth.NewTokenService([]byte(app.auth.SigningKey), app.auth.TokenTTL,
		auth.WithTokenLogger(lgr),
	)

	store := app.repo.Users()

	auther := auth.NewAuthenticator(store, hasher, tokens).
		WithLogger(lgr).
		WithMetrics(app.metrics)
	auther.WarmUp(context.Background())

	register := auth.NewRegisterUserHandler(store, hasher, tokens).
		WithLogger(lgr).
		WithMetrics(app.metrics)

	responder := auth.NewErrorResponder(lgr).WithDebug(app.config.Debug)
	guard := auth.NewRouteGuard(auther, app.auth, responder)

	controller := auth.NewAuthController(auther, register, store, guard, responder,
		auth.WithControllerLogger(lgr),
	)

	app.srv = router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:               "catalog-auth",
			DisableStartupMessage: true,
			StrictRouting:         false,
		}))
	})

	app.srv.Router().Get("/health", func(ctx router.Context) error {
		return ctx.JSON(http.StatusOK, map[string]any{"status": "ok"})
	})

	auth.RegisterAuthRoutes(app.srv.Router(), controller)

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
