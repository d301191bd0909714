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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/indiepro/indiepro/internal/app"
	"github.com/indiepro/indiepro/internal/auth"
	"github.com/indiepro/indiepro/internal/calculators"
	"github.com/indiepro/indiepro/internal/checklist"
	"github.com/indiepro/indiepro/internal/checkout"
	"github.com/indiepro/indiepro/internal/content"
	"github.com/indiepro/indiepro/internal/csvtemplates"
	"github.com/indiepro/indiepro/internal/entitlement"
	"github.com/indiepro/indiepro/internal/observability"
	"github.com/indiepro/indiepro/internal/platform/cache"
	"github.com/indiepro/indiepro/internal/platform/db"
	"github.com/indiepro/indiepro/internal/profile"
	"github.com/indiepro/indiepro/internal/shared"
	"github.com/indiepro/indiepro/internal/usage"
	"github.com/indiepro/indiepro/internal/users"
	"github.com/indiepro/indiepro/jobs"
)

const (
	loginCooldown    = 30 * time.Second
	loginMaxAttempts = 5
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.DBAutoMigrate {
		if err := db.Migrate(ctx, dbpool); err != nil {
			logger.Error("migrate", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(shared.SessionCookieName, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret, cfg.IsProduction())

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	authCfg := auth.ServiceConfig{
		Limiter: auth.NewThrottle(redisClient, loginCooldown, loginMaxAttempts, auth.DefaultCodeTTL),
		Metrics: metrics,
		Logger:  logger,
	}
	if cfg.LoginCodeDelivery == app.DeliveryEmail {
		jobClient, err := jobs.NewClient(redisOpts)
		if err != nil {
			logger.Error("init job client", slog.Any("error", err))
			os.Exit(1)
		}
		defer jobClient.Close()
		authCfg.Sender = jobClient
	}

	userRepo := users.NewRepository(dbpool)
	authRepo := auth.NewRepository(dbpool, userRepo)
	authService := auth.NewService(authRepo, sessionManager, authCfg)
	authHandler := auth.NewHandler(logger, authService, sessionManager, cfg.ReturnsDevCode())

	entitlementRepo := entitlement.NewRepository(dbpool)
	entitlementService := entitlement.NewService(entitlementRepo, checkout.NewStripeGateway(cfg.StripeSecretKey), entitlement.ServiceConfig{
		BaseURL:     cfg.AppBaseURL,
		AmountCents: cfg.UnlockPriceCents,
		Metrics:     metrics,
		Logger:      logger,
	})
	entitlementHandler := entitlement.NewHandler(logger, entitlementService, entitlementRepo)
	gates := entitlement.Middleware{Service: entitlementService, Logger: logger}

	profileRepo := profile.NewRepository(dbpool)
	profileHandler := profile.NewHandler(logger, profileRepo, userRepo, entitlementService)

	tracker := usage.NewTracker(dbpool, logger)
	toolsHandler := calculators.NewHandler(logger, tracker, profileRepo)
	templatesHandler := csvtemplates.NewHandler(logger, tracker)
	checklistHandler := checklist.NewHandler(logger, checklist.NewService(checklist.NewRepository(dbpool)))
	contentHandler := content.NewHandler(logger, entitlementService)

	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		CSRFManager:        csrfManager,
		Metrics:            metrics,
		Gates:              gates,
		AuthHandler:        authHandler,
		EntitlementHandler: entitlementHandler,
		ProfileHandler:     profileHandler,
		ToolsHandler:       toolsHandler,
		TemplatesHandler:   templatesHandler,
		ChecklistHandler:   checklistHandler,
		ContentHandler:     contentHandler,
		JobHandler:         jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
