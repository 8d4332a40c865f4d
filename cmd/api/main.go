package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/ghuser/showcase/docs/swagger"
	"github.com/ghuser/showcase/pkg/app"
	"github.com/ghuser/showcase/pkg/auth"
	"github.com/ghuser/showcase/pkg/cache"
	"github.com/ghuser/showcase/pkg/config"
	"github.com/ghuser/showcase/pkg/database"
	"github.com/ghuser/showcase/pkg/events"
	"github.com/ghuser/showcase/pkg/httpx"
	"github.com/ghuser/showcase/pkg/identity"
	"github.com/ghuser/showcase/pkg/logger"
	"github.com/ghuser/showcase/pkg/storage"
	"github.com/ghuser/showcase/pkg/telemetry"
	productApi "github.com/ghuser/showcase/services/product/application/api"
)

// @title					Showcase API
// @version				1.0
// @description			Product submission, moderation and discovery.
// @contact.name			API Support
// @contact.email			support@showcase.example.com
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelProvider, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelProvider.Shutdown(ctx) //nolint:errcheck

	// Crash reporting is optional; log and continue on failure.
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	if err := eventBus.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	objectStore, err := storage.New(cfg)
	if err != nil {
		log.Error("failed to create object store client", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		log.Error("failed to prepare image bucket", "bucket", cfg.MinioBucket, "error", err)
		os.Exit(1) //nolint:gocritic
	}
	log.Info("object store ready", "bucket", cfg.MinioBucket, "public_url", storage.PublicBaseURL(cfg))

	sessionStore := auth.NewSessionStore(
		redisClient.Client(),
		[]byte(cfg.SessionAuthKey),
		[]byte(cfg.SessionEncryptionKey),
		cfg.Environment == config.EnvProduction,
	)
	log.Info("session store initialized", "backend", "redis")

	appConfig := &app.Application{
		Config:       cfg,
		Db:           pool,
		Logger:       log,
		EventBus:     eventBus,
		Redis:        redisClient,
		SessionStore: sessionStore,
		Storage:      objectStore,
		Directory:    identity.NewPostgresDirectory(pool),
		Views:        cache.NewViewCache(redisClient, cfg.ViewCacheTTL),
		Products:     cache.NewProductCache(redisClient),
		Metrics:      otelProvider.Products,
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.IsDevelopment(),
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	r.Get("/health", httpx.HealthHandler(httpx.HealthChecks{
		Database: pool,
		Redis:    redisClient,
		EventBus: eventBus,
		Storage:  objectStore,
	}))
	r.Get("/metrics", otelProvider.Metrics.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Authenticate(sessionStore, appConfig.Directory, log))
		registerSessionRoutes(r, appConfig)
		registerRoutes(r, appConfig)
	})

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerSessionRoutes mounts sign-out, plus the session minting route when
// running in development. Production sessions come from the identity provider.
func registerSessionRoutes(r chi.Router, a *app.Application) {
	if a.Config.IsDevelopment() {
		r.Post("/session", auth.DevSessionHandler(a.SessionStore, a.Logger))
		a.Logger.Warn("development session route enabled", "route", "POST /api/session")
	}
	r.Delete("/session", auth.SignOutHandler(a.SessionStore, a.Logger))
}

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) {
	productApi.ProductRoutes(r, a)
}
