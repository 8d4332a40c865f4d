package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/showcase/pkg/cache"
	"github.com/ghuser/showcase/pkg/config"
	"github.com/ghuser/showcase/pkg/database"
	"github.com/ghuser/showcase/pkg/events"
	"github.com/ghuser/showcase/pkg/identity"
	"github.com/ghuser/showcase/pkg/logger"
	"github.com/ghuser/showcase/pkg/storage"
	"github.com/ghuser/showcase/pkg/telemetry"
)

// Application holds shared infrastructure dependencies for all services.
// Built once in cmd/api and cmd/worker and passed to route and subscriber registration.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "product submitted", "slug", slug)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config       *config.Config
	Db           *database.Database
	Logger       logger.Logger
	EventBus     *events.EventBus
	Redis        *cache.RedisClient
	SessionStore sessions.Store       // Redis-backed session store; nil in worker process
	Storage      *storage.ObjectStore // nil in worker process
	Directory    identity.Directory
	Views        *cache.ViewCache
	Products     *cache.ProductCache
	Metrics      *telemetry.ProductMetrics
}
