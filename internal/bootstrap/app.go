package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/artist-booking/internal/access"
	"github.com/example/artist-booking/internal/application"
	"github.com/example/artist-booking/internal/config"
	"github.com/example/artist-booking/internal/events"
	httptransport "github.com/example/artist-booking/internal/http"
	"github.com/example/artist-booking/internal/metrics"
)

// App is a fully wired booking service.
type App struct {
	Handler  http.Handler
	Services *Services
	Metrics  *metrics.Manager

	store     *Store
	publisher *events.RedisPublisher
	logger    *slog.Logger
}

// Option customises New.
type Option func(*options)

type options struct {
	now         func() time.Time
	idGenerator func() string
}

// WithClock overrides the time source used by the services.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides the identifier source used by the services.
func WithIDGenerator(next func() string) Option {
	return func(o *options) { o.idGenerator = next }
}

// New opens storage, connects the optional Redis publisher and builds the
// HTTP handler described by cfg.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	credentials, err := Credentials(cfg)
	if err != nil {
		return nil, err
	}

	store, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &App{
		Metrics: metrics.NewManager(metrics.WithRuntimeMetrics(true)),
		store:   store,
		logger:  logger,
	}

	var publisher application.EventPublisher
	if cfg.RedisAddr != "" {
		app.publisher, err = events.NewRedisPublisher(redisOptions(cfg), cfg.RedisChannel, app.Metrics)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		if pingErr := app.publisher.Ping(ctx); pingErr != nil {
			logger.WarnContext(ctx, "redis unreachable, events will be dropped until it recovers", "addr", cfg.RedisAddr, "error", pingErr)
		}
		publisher = app.publisher
	}

	app.Services = NewServices(store, Dependencies{
		IDGenerator:    o.idGenerator,
		Now:            o.now,
		Logger:         logger,
		Recorder:       app.Metrics,
		Publisher:      publisher,
		PublishTimeout: cfg.PublishTimeout,
		MaxPageSize:    cfg.MaxPageSize,
	})

	app.Handler = NewHandler(HandlerConfig{
		Services:      app.Services,
		Authenticator: access.NewTokenAuthenticator(credentials),
		Metrics:       app.Metrics,
		Health:        store.Health,
		MaxPageSize:   cfg.MaxPageSize,
		Logger:        logger,
	})
	return app, nil
}

// redisOptions keeps every Redis round trip inside the publish timeout so an
// unresponsive broker cannot stall writes.
func redisOptions(cfg config.Config) *redis.Options {
	return &redis.Options{
		Addr:                  cfg.RedisAddr,
		DialTimeout:           cfg.PublishTimeout,
		ReadTimeout:           cfg.PublishTimeout,
		WriteTimeout:          cfg.PublishTimeout,
		ContextTimeoutEnabled: true,
		MaxRetries:            1,
	}
}

// Close releases the publisher and the store.
func (a *App) Close() error {
	var errs []error
	if a.publisher != nil {
		errs = append(errs, a.publisher.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}

// HandlerConfig describes the HTTP surface built by NewHandler.
type HandlerConfig struct {
	Services      *Services
	Authenticator httptransport.Authenticator
	Metrics       *metrics.Manager
	Health        func(ctx context.Context) error
	MaxPageSize   int
	Logger        *slog.Logger
}

// NewHandler builds the router with request logging, metrics and role checks.
func NewHandler(cfg HandlerConfig) http.Handler {
	logger := cfg.Logger
	services := cfg.Services

	routerCfg := httptransport.RouterConfig{
		Categories:   httptransport.NewCategoryHandler(services.Categories, cfg.MaxPageSize, logger),
		Artists:      httptransport.NewArtistHandler(services.Artists, cfg.MaxPageSize, logger),
		Availability: httptransport.NewAvailabilityHandler(services.Availability, services.Resolver, cfg.MaxPageSize, logger),
		Moments:      httptransport.NewMomentHandler(services.Moments, cfg.MaxPageSize, logger),
		Health:       cfg.Health,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	}
	if cfg.Authenticator != nil {
		routerCfg.Middleware = append(routerCfg.Middleware, httptransport.RequireRole(cfg.Authenticator, logger))
	}
	if cfg.Metrics != nil {
		routerCfg.Metrics = cfg.Metrics.Handler()
		routerCfg.Observer = cfg.Metrics
	}
	return httptransport.NewRouter(routerCfg)
}

// Credentials converts the configured tokens into authenticator credentials.
func Credentials(cfg config.Config) ([]access.Credential, error) {
	tokens := cfg.AllTokens()
	credentials := make([]access.Credential, 0, len(tokens))
	for _, token := range tokens {
		role, err := access.ParseRole(token.Role)
		if err != nil {
			return nil, fmt.Errorf("token %q: %w", token.Name, err)
		}
		credentials = append(credentials, access.Credential{Name: token.Name, Role: role, Hash: token.Hash})
	}
	return credentials, nil
}
