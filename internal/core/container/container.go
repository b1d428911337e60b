package container

import (
	"context"
	"database/sql"
	"fmt"

	"itinventory/internal/auth"
	"itinventory/internal/backup"
	"itinventory/internal/config"
	"itinventory/internal/database"
	"itinventory/internal/docstore"
	"itinventory/internal/feed"
	"itinventory/internal/i18n"
	"itinventory/internal/inventory/equipment"
	inventorylog "itinventory/internal/inventory/inventory_log"
	"itinventory/internal/inventory/lifecycle"
	"itinventory/internal/metrics"
	"itinventory/internal/middleware"
	"itinventory/internal/rate_limiter"
	"itinventory/internal/repository"
	"itinventory/internal/session"
	"itinventory/pkg/auditlog"
	"itinventory/pkg/security"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const Version = "1.0.0"

type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Docs        docstore.Store
	Tokens      *security.TokenManager
	Revocations auth.RevocationStore
	Sessions    *session.Manager
	Feed        *feed.Hub
	Health      *middleware.Health
	RateLimiter *rate_limiter.RateLimiter

	Auth      *auth.Service
	Backup    *backup.Service
	Lifecycle *lifecycle.Service

	AuthHandler      *auth.Handler
	EquipmentHandler *equipment.Handler
	LifecycleHandler *lifecycle.Handler
	BackupHandler    *backup.Handler

	closers []func(context.Context) error
}

// NewAppContainer connects the configured backends and builds every
// service. Close releases what it opened.
func NewAppContainer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}
	checks := map[string]middleware.Checker{}

	users, err := c.connectStore(ctx, checks)
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	if err := c.connectRevocations(ctx, checks); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	c.Metrics = metrics.New(c.Registry)

	c.Tokens, err = security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL)
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}

	catalog := i18n.Default()
	c.Feed = feed.NewHub(logger)
	c.Sessions = session.NewManager(c.Docs, logger)
	c.Health = middleware.NewHealth(Version, checks)
	c.RateLimiter = rate_limiter.NewRateLimiter(cfg.RateLimit.Attempts, cfg.RateLimit.Window)
	c.closers = append(c.closers, func(context.Context) error {
		c.RateLimiter.Stop()
		return nil
	})

	providers := map[string]auth.Provider{}
	if cfg.Google.Enabled() {
		providers[auth.ProviderGoogle] = auth.NewGoogleProvider(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	}
	c.Auth = auth.NewService(auth.Options{
		Users:       users,
		Tokens:      c.Tokens,
		Revocations: c.Revocations,
		Mailer:      auth.NewLogMailer(logger, cfg.App.PublicURL),
		Providers:   providers,
		ResetTTL:    cfg.JWT.PasswordResetTTL,
		Logger:      logger,
	})
	c.Auth.Subscribe(c.Sessions.HandleEvent)
	c.Auth.Subscribe(c.Feed.HandleEvent)

	audit := auditlog.NewAuditLog(c.Feed, c.Metrics, logger)
	c.Lifecycle = lifecycle.NewService(inventorylog.NewInventoryLog(audit), catalog, c.Metrics, logger)
	c.Backup = backup.NewService(logger)

	c.AuthHandler = auth.NewHandler(c.Auth, c.RateLimiter, c.Metrics)
	c.EquipmentHandler = equipment.NewHandler(session.Scope, catalog)
	c.LifecycleHandler = lifecycle.NewHandler(c.Lifecycle, catalog)
	c.BackupHandler = backup.NewHandler(c.Backup, catalog)

	return c, nil
}

func (c *Container) connectStore(ctx context.Context, checks map[string]middleware.Checker) (auth.UserRepository, error) {
	cfg := c.Config.Store

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, func(context.Context) error { return db.Close() })
		checks["postgres"] = db.PingContext
	}

	var users auth.UserRepository
	if db != nil {
		users = auth.NewUserRepository(repository.NewRepository(db))
	} else {
		c.Logger.Warn("No DATABASE_URL, accounts are kept in memory")
		users = auth.NewMemoryUserRepository()
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		c.Docs = docstore.NewPostgresStore(repository.NewRepository(db))
	case config.DriverMongo:
		client, err := database.NewMongoConnection(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, client.Disconnect)
		checks["mongo"] = mongoPing(client)
		c.Docs = docstore.NewMongoStore(client, cfg.MongoDatabase)
	case config.DriverMemory:
		c.Logger.Warn("Using the in-memory document store, data is lost on restart")
		c.Docs = docstore.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	return users, nil
}

func (c *Container) connectRevocations(ctx context.Context, checks map[string]middleware.Checker) error {
	if c.Config.Redis.URL == "" {
		c.Revocations = auth.NewMemoryRevocations()
		return nil
	}
	client, err := database.NewRedisClient(ctx, c.Config.Redis.URL)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, func(context.Context) error { return client.Close() })
	checks["redis"] = redisPing(client)
	c.Revocations = auth.NewRedisRevocations(client)
	return nil
}

func mongoPing(client *mongo.Client) middleware.Checker {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}

func redisPing(client *redis.Client) middleware.Checker {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// Close releases backends in reverse order of opening.
func (c *Container) Close(ctx context.Context) error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}
