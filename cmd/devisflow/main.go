package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devisflow/devisflow/internal/app"
	"github.com/devisflow/devisflow/internal/audit"
	audithttp "github.com/devisflow/devisflow/internal/audit/http"
	"github.com/devisflow/devisflow/internal/auth"
	"github.com/devisflow/devisflow/internal/clients"
	"github.com/devisflow/devisflow/internal/dashboard"
	"github.com/devisflow/devisflow/internal/fiscal"
	fiscalhttp "github.com/devisflow/devisflow/internal/fiscal/http"
	"github.com/devisflow/devisflow/internal/observability"
	"github.com/devisflow/devisflow/internal/pdf"
	"github.com/devisflow/devisflow/internal/platform/cache"
	"github.com/devisflow/devisflow/internal/platform/db"
	"github.com/devisflow/devisflow/internal/quotes"
	"github.com/devisflow/devisflow/internal/settings"
	"github.com/devisflow/devisflow/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	// Redis only backs caches; without it every read goes to postgres.
	var redisClient *redis.Client
	if client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}); err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
	} else {
		redisClient = client
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}

	metrics := observability.NewMetrics()
	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL, metrics)

	authService := auth.NewService(auth.NewRepository(dbpool), auth.NewSessionCache(redisClient, cfg.SessionCacheTTL), logger)
	authMiddleware := auth.NewMiddleware(authService, logger)

	clientService := clients.NewService(clients.NewRepository(dbpool), dashboardCache, logger)
	settingsService := settings.NewService(settings.NewRepository(dbpool), dashboardCache, logger)
	fiscalService := fiscal.NewService(fiscal.NewRepository(dbpool))

	gotenberg := report.NewClient(cfg.GotenbergURL, cfg.PDFRenderTimeout)
	pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
	if err := gotenberg.Ping(pingCtx); err != nil {
		logger.Warn("gotenberg ping", slog.Any("error", err))
	}
	cancelPing()

	renderer, err := pdf.NewRenderer(gotenberg, pdf.NewLogoFetcher(cfg.LogoFetchTimeout), logger)
	if err != nil {
		logger.Error("build pdf renderer", slog.Any("error", err))
		os.Exit(1)
	}

	quoteService := quotes.NewService(quotes.NewRepository(dbpool), quotes.Dependencies{
		Clients:      clientService,
		Settings:     settingsService,
		Owners:       authService,
		Renderer:     renderer,
		Cache:        dashboardCache,
		Events:       metrics,
		Logger:       logger,
		ShareBaseURL: cfg.ShareBaseURL,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		Metrics:             metrics,
		Auth:                authMiddleware,
		QuotesHandler:       quotes.NewHandler(logger, quoteService),
		PublicQuotesHandler: quotes.NewPublicHandler(logger, quoteService),
		ClientsHandler:      clients.NewHandler(logger, clientService),
		SettingsHandler:     settings.NewHandler(logger, settingsService),
		DashboardHandler:    dashboard.NewHandler(logger, dashboard.NewService(dashboard.NewRepository(dbpool), fiscalService, dashboardCache)),
		FiscalHandler:       fiscalhttp.NewHandler(logger, fiscalService),
		AuditHandler:        audithttp.NewHandler(logger, audit.NewService(audit.NewRepository(dbpool))),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
