// @title History Revision API
// @version 1.0
// @description Guided revision sessions for DSE Chinese History: objective quiz, error identification, essay practice and summary export.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "history-quiz/cmd/api/docs"

	"history-quiz/internal/adapter"
	"history-quiz/internal/adapter/completion"
	"history-quiz/internal/adapter/event"
	"history-quiz/internal/adapter/store"
	"history-quiz/internal/cache"
	"history-quiz/internal/config"
	"history-quiz/internal/content"
	"history-quiz/internal/database"
	"history-quiz/internal/domain"
	"history-quiz/internal/evaluator"
	"history-quiz/internal/handler"
	"history-quiz/internal/logger"
	"history-quiz/internal/metrics"
	"history-quiz/internal/middleware"
	"history-quiz/internal/prompt"
	"history-quiz/internal/service"
	"history-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func loadCatalog(cfg *config.Config) (*content.Catalog, error) {
	if cfg.Content.File != "" {
		return content.LoadFile(cfg.Content.File)
	}
	return content.Default()
}

// openStore connects the configured progress store. The returned func
// releases its connection.
func openStore(ctx context.Context, cfg *config.Config) (domain.ProgressStore, func(), error) {
	appLogger := logger.Get()

	switch cfg.Store.Driver {
	case "mongo":
		client, col, err := store.ConnectMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		appLogger.Info("MongoDB progress store initialized",
			zap.String("database", cfg.Mongo.Database),
			zap.String("collection", cfg.Mongo.Collection))
		return store.NewMongoStore(col), func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}, nil

	case "sql":
		db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
		if err != nil {
			return nil, nil, err
		}
		appLogger.Info("SQL progress store initialized")
		return store.NewSQLStore(db), func() { _ = db.Close() }, nil

	default:
		appLogger.Warn("No progress store configured, checkpoints will not be saved",
			zap.String("driver", cfg.Store.Driver))
		return store.NoopStore{}, func() {}, nil
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	m := metrics.New()

	catalog, err := loadCatalog(cfg)
	if err != nil {
		appLogger.Fatal("Failed to load study content", zap.Error(err))
	}
	appLogger.Info("Study content loaded", zap.Int("topics", len(catalog.Names())))
	builder := prompt.NewBuilder(catalog)

	caller, err := completion.NewCaller(rootCtx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create completion client", zap.Error(err))
	}
	if caller == nil {
		appLogger.Warn("No completion credential configured, generation requests will fail with CONFIGURATION_MISSING",
			zap.String("provider", cfg.LLM.Provider))
	}
	completionClient := completion.NewClient(caller, completion.OptionsFromConfig(cfg), m)

	// Redis is optional: hints and outlines are generated on every request without it.
	var cacheAdapter domain.Cache
	redisClient, err := cache.NewRedisClient(rootCtx, cfg.Redis)
	if err != nil {
		appLogger.Warn("Redis cache disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("RedisCacheAdapter initialized", zap.String("address", cfg.Redis.Address))
	}

	progressStore, closeStore, err := openStore(rootCtx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to open progress store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	publisher, err := event.NewPublisher(cfg.Events.AMQPURI, cfg.Events.Exchange)
	if err != nil {
		appLogger.Fatal("Failed to connect event publisher", zap.Error(err))
	}
	defer publisher.Close()

	eval := evaluator.New(
		evaluator.WithRejectEmptyNormalized(cfg.Scoring.RejectEmptyNormalized),
		evaluator.WithDegenerateObserver(func(matched bool) {
			m.DegenerateMatches.WithLabelValues(strconv.FormatBool(matched)).Inc()
		}),
	)

	persister := service.NewPersister(progressStore, publisher, m, cfg.Store.WriteTimeout)
	hints := service.NewHintService(completionClient, builder, cacheAdapter,
		cfg.ParseTTLStringOrDefault(cfg.Cache.Hint, 24*time.Hour))

	sessionService := service.NewSessionService(service.SessionDeps{
		Catalog:    catalog,
		Builder:    builder,
		Completion: completionClient,
		Evaluator:  eval,
		Exporter:   service.NewSummaryExporter(eval),
		Persister:  persister,
		Hints:      hints,
		Cache:      cacheAdapter,
		OutlineTTL: cfg.ParseTTLStringOrDefault(cfg.Cache.Outline, 6*time.Hour),
		Metrics:    m,
	})
	service.StartEviction(rootCtx, sessionService, cfg.Session.EvictionInterval, cfg.Session.IdleTimeout)
	appLogger.Info("SessionService initialized",
		zap.Duration("idle_timeout", cfg.Session.IdleTimeout),
		zap.Duration("eviction_interval", cfg.Session.EvictionInterval))

	authService, err := service.NewAuthService(cfg.Auth)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}

	validator := validation.NewValidator(catalog)
	routes := handler.Routes{
		Auth:        handler.NewAuthHandler(authService),
		Topics:      handler.NewTopicHandler(catalog),
		Sessions:    handler.NewSessionHandler(sessionService, validator),
		AuthService: authService,
		Validation:  middleware.NewValidationMiddleware(validator),
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(m))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))
	app.Get("/health", func(c *fiber.Ctx) error {
		status := fiber.Map{"status": "ok", "cache": "disabled", "store": cfg.Store.Driver}
		if cacheAdapter != nil {
			if err := cacheAdapter.Ping(c.UserContext()); err != nil {
				status["cache"] = "unavailable"
			} else {
				status["cache"] = "ok"
			}
		}
		return c.JSON(status)
	})

	routes.Register(app.Group("/api"))

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := persister.Wait(ctx); err != nil {
		appLogger.Warn("Pending progress writes did not finish", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
