// Package container provides dependency injection using Uber FX
package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/savvykitchen/savvy/internal/application/cart"
	interactionapp "github.com/savvykitchen/savvy/internal/application/interaction"
	pantryapp "github.com/savvykitchen/savvy/internal/application/pantry"
	"github.com/savvykitchen/savvy/internal/application/query"
	"github.com/savvykitchen/savvy/internal/application/recommendation"
	recipeapp "github.com/savvykitchen/savvy/internal/application/recipe"
	userapp "github.com/savvykitchen/savvy/internal/application/user"
	"github.com/savvykitchen/savvy/internal/domain/interaction"
	"github.com/savvykitchen/savvy/internal/infrastructure/ai"
	"github.com/savvykitchen/savvy/internal/infrastructure/ai/gemini"
	"github.com/savvykitchen/savvy/internal/infrastructure/ai/ollama"
	"github.com/savvykitchen/savvy/internal/infrastructure/config"
	"github.com/savvykitchen/savvy/internal/infrastructure/http/apiserver"
	"github.com/savvykitchen/savvy/internal/infrastructure/http/handlers"
	"github.com/savvykitchen/savvy/internal/infrastructure/messaging"
	"github.com/savvykitchen/savvy/internal/infrastructure/monitoring"
	gormRepo "github.com/savvykitchen/savvy/internal/infrastructure/persistence/gorm"
	"github.com/savvykitchen/savvy/internal/infrastructure/persistence/memory"
	"github.com/savvykitchen/savvy/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/savvykitchen/savvy/internal/infrastructure/persistence/redis"
	"github.com/savvykitchen/savvy/internal/infrastructure/persistence/sqlite"
	"github.com/savvykitchen/savvy/internal/infrastructure/spoonacular"
	"github.com/savvykitchen/savvy/internal/ports/outbound"
	"github.com/savvykitchen/savvy/pkg/healthcheck"
	"github.com/savvykitchen/savvy/pkg/logger"
)

// ConfigPath is the configuration file to load. Empty searches the default locations.
type ConfigPath string

const (
	eventBusBuffer  = 256
	slowQueryLimit  = 200 * time.Millisecond
	redisKeyPrefix  = "savvy:"
	generationCache = 24 * time.Hour
)

// Module provides all dependency injection modules
var Module = fx.Options(
	// Infrastructure modules
	ConfigModule,
	LoggerModule,
	MonitoringModule,
	DatabaseModule,
	CacheModule,
	EventModule,
	AIModule,

	// Service modules
	ServiceModule,

	// HTTP modules
	HTTPModule,

	// Lifecycle hooks
	LifecycleModule,
)

// ConfigModule provides configuration
var ConfigModule = fx.Provide(
	func(path ConfigPath) (*config.Config, error) {
		return config.Load(string(path))
	},
)

// LoggerModule provides logging
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
			Service:     cfg.App.Name,
			Version:     cfg.App.Version,
			Environment: cfg.App.Environment,
		})
	},
)

// MonitoringModule provides metrics and tracing
var MonitoringModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) outbound.Metrics { return m },
	// nil when metrics are disabled; instruments then stay on the no-op provider
	func(lc fx.Lifecycle, cfg *config.Config, m *monitoring.MetricsCollector, log *zap.Logger) (*monitoring.MeterProvider, error) {
		if !cfg.Monitoring.EnableMetrics {
			return nil, nil
		}
		mp, err := monitoring.NewMeterProvider(m, cfg.App.Name, cfg.App.Version, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: mp.Shutdown})
		return mp, nil
	},
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tp, err := monitoring.NewTracingProvider(context.Background(), monitoring.TracingConfig{
			ServiceName:    cfg.App.Name,
			ServiceVersion: cfg.App.Version,
			Environment:    cfg.App.Environment,
			OTLPEndpoint:   cfg.Monitoring.OTLPEndpoint,
			Insecure:       cfg.Monitoring.OTLPInsecure,
			SamplingRate:   cfg.Monitoring.SamplingRate,
			Enabled:        cfg.Monitoring.EnableTracing,
		}, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{OnStop: tp.Shutdown})
		return tp, nil
	},
)

// Storage is the persistence selected by database.driver. DB is nil for
// the memory driver.
type Storage struct {
	DB           *gorm.DB
	Pantry       outbound.PantryStore
	Users        outbound.UserRepository
	Interactions outbound.InteractionRepository
}

// DatabaseModule provides the pantry store and interaction log
var DatabaseModule = fx.Provide(
	NewStorage,
	func(s *Storage) outbound.PantryStore { return s.Pantry },
	func(s *Storage) outbound.UserRepository { return s.Users },
	func(s *Storage) outbound.InteractionRepository { return s.Interactions },
)

// NewStorage opens the configured store and registers its shutdown
func NewStorage(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Storage, error) {
	ctx := context.Background()

	var db *gorm.DB
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Info("Using in-memory store")
		store := memory.NewPantryStore()
		return &Storage{
			Pantry:       store,
			Users:        store,
			Interactions: memory.NewInteractionRepository(),
		}, nil

	case config.DriverPostgres:
		cm, err := postgres.NewConnectionManager(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return cm.Close() }})
		db = cm.GetDB()

	default:
		gl := gormRepo.NewLogger(log, cfg.Database.LogLevel, slowQueryLimit)
		var err error
		db, err = sqlite.SetupDatabase(cfg.Database.Path, gl)
		if err != nil {
			return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}})
		log.Info("Connected to SQLite database", zap.String("path", cfg.Database.Path))
	}

	if cfg.Database.Seed {
		if err := sqlite.SeedDatabase(ctx, db); err != nil {
			log.Warn("Failed to seed database", zap.Error(err))
		}
	}

	return &Storage{
		DB:           db,
		Pantry:       gormRepo.NewPantryStore(db),
		Users:        gormRepo.NewUserRepository(db),
		Interactions: gormRepo.NewInteractionRepository(db),
	}, nil
}

// Cache is the shared key/value cache. Redis is nil unless redis.enabled.
type Cache struct {
	Repo  outbound.CacheRepository
	Redis *goredis.Client
}

// CacheModule provides caching
var CacheModule = fx.Provide(
	NewCache,
	func(c *Cache) outbound.CacheRepository { return c.Repo },
)

// NewCache connects to Redis when enabled and falls back to process memory
func NewCache(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*Cache, error) {
	if !cfg.Redis.Enabled {
		repo := memory.NewCacheRepository()
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return repo.Close() }})
		log.Info("Using in-memory cache")
		return &Cache{Repo: repo}, nil
	}

	client, err := redisRepo.NewClient(context.Background(), redisRepo.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.Database,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
	log.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr()))

	return &Cache{
		Repo:  redisRepo.NewCacheRepository(client, redisKeyPrefix, log),
		Redis: client,
	}, nil
}

// EventModule provides the in-process event bus
var EventModule = fx.Provide(
	func(lc fx.Lifecycle, log *zap.Logger) *messaging.Bus {
		bus := messaging.NewBus(eventBusBuffer, log)
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return bus.Close() }})
		return bus
	},
	func(b *messaging.Bus) outbound.MessageBus { return b },
)

// Generator is the text generation chain. Guarded is the breaker-wrapped
// provider, Cached wraps it with the completion cache. Both are nil when
// ai.provider is none.
type Generator struct {
	Cached  outbound.TextGenerator
	Guarded outbound.TextGenerator
	Probe   ai.HealthProber
}

// AIModule provides the text generator
var AIModule = fx.Provide(NewGenerator)

// NewGenerator builds provider → circuit breaker → completion cache
func NewGenerator(lc fx.Lifecycle, cfg *config.Config, cache outbound.CacheRepository, log *zap.Logger) (*Generator, error) {
	var (
		provider outbound.TextGenerator
		probe    ai.HealthProber
	)

	switch cfg.AI.Provider {
	case config.ProviderNone:
		log.Info("Text generation disabled, recommendations skip the AI-assisted search")
		return &Generator{}, nil

	case config.ProviderGemini:
		client, err := gemini.NewClient(context.Background(), cfg.AI.APIKey, cfg.AI.Model, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		lc.Append(fx.Hook{OnStop: func(context.Context) error { return client.Close() }})
		provider = client

	default:
		client := ollama.NewClient(ollama.Config{
			Host:    cfg.AI.Host,
			Model:   cfg.AI.Model,
			Timeout: cfg.AI.Timeout,
		}, log)
		provider = client
		probe = client
	}

	guarded := provider
	if cfg.AI.Breaker.Enabled {
		guarded = ai.NewGuardedGenerator(provider, ai.BreakerConfig{
			ConsecutiveFailures: cfg.AI.Breaker.ConsecutiveFailures,
			OpenTimeout:         cfg.AI.Breaker.OpenTimeout,
			Interval:            cfg.AI.Breaker.Interval,
		}, log)
	}

	return &Generator{
		Cached:  ai.NewCachedGenerator(guarded, cache, generationCache, log),
		Guarded: guarded,
		Probe:   probe,
	}, nil
}

// ServiceModule provides application services
var ServiceModule = fx.Provide(
	// Recipe API client behind the detail cache
	func(cfg *config.Config, metrics outbound.Metrics, cache outbound.CacheRepository, log *zap.Logger) *recipeapp.Service {
		client := spoonacular.NewClient(spoonacular.Config{
			BaseURL:     cfg.Spoonacular.BaseURL,
			APIKey:      cfg.Spoonacular.APIKey,
			Timeout:     cfg.Spoonacular.Timeout,
			ResultCount: cfg.Spoonacular.ResultCount,
		}, metrics, log)
		return recipeapp.NewService(client, cache, cfg.Cache.RecipeTTL, log)
	},

	func(gen *Generator, cfg *config.Config, metrics outbound.Metrics, log *zap.Logger) *query.Interpreter {
		return query.NewInterpreter(gen.Cached, query.Config{
			MaxTokens:   cfg.AI.MaxTokens,
			Temperature: cfg.AI.Temperature,
			Timeout:     cfg.AI.Timeout,
		}, metrics, log)
	},

	func(store outbound.PantryStore, users outbound.UserRepository, cfg *config.Config, log *zap.Logger) *pantryapp.Service {
		return pantryapp.NewService(store, users, cfg.App.Region, log)
	},

	userapp.NewService,

	func(store outbound.PantryStore, recipes *recipeapp.Service, cfg *config.Config, log *zap.Logger) *cart.Service {
		return cart.NewService(store, recipes, cfg.Catalog(), log)
	},

	func(
		store outbound.PantryStore,
		parser *query.Interpreter,
		recipes *recipeapp.Service,
		cfg *config.Config,
		metrics outbound.Metrics,
		log *zap.Logger,
	) *recommendation.Service {
		return recommendation.NewService(store, parser, recipes, cfg.Spoonacular.ResultCount, metrics, log)
	},

	interactionapp.NewService,

	func(
		p *pantryapp.Service,
		u *userapp.Service,
		rec *recommendation.Service,
		c *cart.Service,
		recipes *recipeapp.Service,
		in *interactionapp.Service,
	) handlers.Services {
		return handlers.Services{
			Pantry:          p,
			Users:           u,
			Recommendations: rec,
			Cart:            c,
			Recipes:         recipes,
			Interactions:    in,
		}
	},
)

// HTTPModule provides HTTP server and handlers
var HTTPModule = fx.Provide(
	handlers.NewAPIHandlers,
	NewHealthCheck,
	func(
		cfg *config.Config,
		log *zap.Logger,
		api *handlers.APIHandlers,
		health *healthcheck.HealthCheck,
		metrics *monitoring.MetricsCollector,
	) *apiserver.Server {
		if !cfg.Monitoring.EnableMetrics {
			metrics = nil
		}
		return apiserver.NewServer(cfg, log, api, health, metrics)
	},
)

// NewHealthCheck registers a checker for every external dependency in use
func NewHealthCheck(cfg *config.Config, storage *Storage, cache *Cache, gen *Generator, log *zap.Logger) *healthcheck.HealthCheck {
	hc := healthcheck.New(cfg.App.Version, log)

	if storage.DB != nil {
		hc.Register("database", healthcheck.NewDatabaseChecker(storage.DB))
	}
	if cache.Redis != nil {
		hc.Register("redis", healthcheck.NewRedisChecker(cache.Redis))
	}
	hc.Register("text_generator", ai.NewHealthChecker(gen.Guarded, gen.Probe, log))

	return hc
}

// LifecycleModule provides lifecycle hooks
var LifecycleModule = fx.Invoke(
	// install the global tracer and meter providers before anything starts
	func(*monitoring.TracingProvider, *monitoring.MeterProvider) {},
	RegisterInteractionMetrics,
	RegisterLifecycleHooks,
)

// RegisterInteractionMetrics counts recorded interactions from the event bus
func RegisterInteractionMetrics(lc fx.Lifecycle, bus *messaging.Bus, metrics *monitoring.MetricsCollector, log *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return bus.Subscribe(ctx, interaction.EventRecorded, InteractionMetricsHandler(metrics, log))
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

// InteractionMetricsHandler decodes interaction events and counts them by type
func InteractionMetricsHandler(metrics *monitoring.MetricsCollector, log *zap.Logger) outbound.MessageHandler {
	return func(ctx context.Context, msg outbound.Message) error {
		var in interaction.Interaction
		if err := json.Unmarshal(msg.Payload, &in); err != nil {
			// A payload that never decodes would be redelivered forever.
			log.Warn("Dropping malformed interaction event", zap.String("message_id", msg.ID), zap.Error(err))
			return nil
		}
		metrics.ObserveInteraction(string(in.Type))
		return nil
	}
}

// RegisterLifecycleHooks registers application lifecycle hooks
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	log *zap.Logger,
	server *apiserver.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Savvy",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
				zap.String("database", cfg.Database.Driver),
				zap.String("ai_provider", cfg.AI.Provider),
			)

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
					_ = shutdowner.Shutdown()
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down Savvy")

			err := server.Shutdown(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			_ = log.Sync()
			return err
		},
	})
}
