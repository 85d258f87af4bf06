package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/Egham-7/numseq/internal/api"
	"github.com/Egham-7/numseq/internal/config"
	"github.com/Egham-7/numseq/internal/models"
	"github.com/Egham-7/numseq/internal/services/cache"
	"github.com/Egham-7/numseq/internal/services/database"
	"github.com/Egham-7/numseq/internal/services/middleware"
	"github.com/Egham-7/numseq/internal/services/operation"
	"github.com/Egham-7/numseq/internal/services/request"
	"github.com/Egham-7/numseq/internal/services/response"
	"github.com/Egham-7/numseq/internal/services/source"
	"github.com/Egham-7/numseq/internal/services/usage"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRateLimit      = 1000
	defaultRequestTimeout = 30 * time.Second
	maxRequestTimeout     = 2 * time.Minute
	shutdownTimeout       = 30 * time.Second
)

// Server is a numseq HTTP server instance.
type Server struct {
	config  *config.Config
	builder *Builder
	app     *fiber.App

	redis     *redis.Client
	db        *database.DB
	memoizer  *cache.Memoizer
	worker    *usage.Worker
	scheduler *usage.RetentionScheduler
	usageSvc  *usage.Service
}

// NewServer creates a new Server with the given configuration.
// The cfg parameter is required and must not be nil.
func NewServer(cfg *config.Config) *Server {
	if cfg == nil {
		panic("config cannot be nil - use config.LoadFromFile() or the config builder to create config")
	}
	return &Server{config: cfg}
}

// NewServerWithBuilder creates a Server honouring the builder's middleware overrides.
func NewServerWithBuilder(b *Builder) *Server {
	return &Server{
		config:  b.Build(),
		builder: b,
	}
}

// App returns the fiber app once Setup has run
func (s *Server) App() *fiber.App {
	return s.app
}

// Setup validates the configuration, connects infrastructure and registers routes without listening.
func (s *Server) Setup() error {
	s.config.ApplyDefaults()
	if err := s.config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogLevel(s.config)
	s.app = createFiberApp(s.config)

	if err := s.initializeInfrastructure(); err != nil {
		s.Close()
		return err
	}
	if err := s.initializeServices(); err != nil {
		s.Close()
		return err
	}

	s.setupMiddleware()
	s.setupRoutes()
	return nil
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run() error {
	if err := s.Setup(); err != nil {
		return err
	}
	defer s.Close()

	listenAddr := ":" + s.config.Server.Port

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if s.scheduler != nil {
		go s.scheduler.Start(ctx)
	}

	fmt.Printf("numseq starting on %s\n", listenAddr)
	fmt.Printf("   Environment: %s\n", s.config.Server.Environment)
	fmt.Printf("   Go version: %s\n", runtime.Version())
	fmt.Printf("   GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		if err := s.app.Listen(listenAddr); err != nil {
			serverErrChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		fiberlog.Infof("Received signal: %v. Starting graceful shutdown...", sig)
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	}

	fiberlog.Info("Server shutting down gracefully...")
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	fiberlog.Info("Server shutdown completed successfully")
	return nil
}

// Close stops background work and releases connections. Queued operation records are flushed first.
func (s *Server) Close() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.memoizer != nil {
		if err := s.memoizer.Close(); err != nil {
			fiberlog.Errorf("Failed to close result cache: %v", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			fiberlog.Errorf("Failed to close Redis client: %v", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			fiberlog.Errorf("Failed to close database connection: %v", err)
		}
	}
}

func createFiberApp(cfg *config.Config) *fiber.App {
	isProd := cfg.IsProduction()

	return fiber.New(fiber.Config{
		AppName:           "numseq v1.0",
		EnablePrintRoutes: !isProd,
		BodyLimit:         cfg.Server.BodyLimitMB * 1024 * 1024,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		ReadBufferSize:    8192,
		WriteBufferSize:   8192,
		CaseSensitive:     true,
		StrictRouting:     false,
		Network:           "tcp",
		ServerHeader:      "numseq",
		ErrorHandler:      errorHandler,
	})
}

// errorHandler renders errors that escaped the handlers in the error envelope
func errorHandler(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &appErr):
	case errors.As(err, &fiberErr):
		appErr = &models.AppError{
			Type:       models.ErrorTypeValidation,
			Message:    fiberErr.Message,
			StatusCode: fiberErr.Code,
		}
		if fiberErr.Code >= fiber.StatusInternalServerError {
			appErr.Type = models.ErrorTypeInternal
		}
	case errors.Is(err, context.DeadlineExceeded):
		appErr = models.NewTimeoutError(c.Path(), err)
	case errors.Is(err, context.Canceled):
		appErr = models.NewCanceledError(c.Path(), err)
	default:
		appErr = models.NewInternalError("internal server error", err)
	}

	reqID, _ := c.Locals("request_id").(string)
	return response.NewBaseService().Error(c, reqID, appErr)
}

func (s *Server) setupMiddleware() {
	app := s.app
	isProd := s.config.IsProduction()

	app.Use(recover.New(recover.Config{
		EnableStackTrace: !isProd,
	}))

	rateLimit := &models.RateLimitConfig{Max: defaultRateLimit, Expiration: time.Minute}
	if s.builder != nil && s.builder.GetRateLimitConfig() != nil {
		rateLimit = s.builder.GetRateLimitConfig()
	}
	keyFunc := rateLimit.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *fiber.Ctx) string { return c.IP() }
	}
	limitDescription := fmt.Sprintf("%d requests per %v", rateLimit.Max, rateLimit.Expiration)
	app.Use(limiter.New(limiter.Config{
		Max:               rateLimit.Max,
		Expiration:        rateLimit.Expiration,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      keyFunc,
		LimitReached: func(c *fiber.Ctx) error {
			return models.NewRateLimitError(limitDescription)
		},
	}))

	if s.builder != nil && s.builder.GetTimeoutConfig() != nil {
		timeoutDuration := s.builder.GetTimeoutConfig().Timeout
		app.Use(func(c *fiber.Ctx) error {
			handler := func(c *fiber.Ctx) error {
				return c.Next()
			}
			return timeout.NewWithContext(handler, timeoutDuration)(c)
		})
	} else {
		app.Use(func(c *fiber.Ctx) error {
			requestTimeout := defaultRequestTimeout
			if customTimeout := c.Get("X-Request-Timeout"); customTimeout != "" {
				if d, err := time.ParseDuration(customTimeout); err == nil && d > 0 {
					requestTimeout = min(d, maxRequestTimeout)
				}
			}

			ctx, cancel := context.WithTimeout(c.UserContext(), requestTimeout)
			defer cancel()
			c.SetUserContext(ctx)

			return c.Next()
		})
	}

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	if isProd {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency} ${bytesSent}b\n",
			Output: os.Stdout,
		}))
	} else {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
			Output: os.Stdout,
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.Server.AllowedOrigins,
		AllowHeaders:     strings.Join([]string{"Origin", "Content-Type", "Accept", "User-Agent", request.RequestIDHeader, "X-Request-Timeout"}, ", "),
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: s.config.Server.AllowedOrigins != "*",
		MaxAge:           86400,
		ExposeHeaders:    "Content-Length, Content-Type, " + request.RequestIDHeader,
	}))

	if s.builder != nil {
		for _, mw := range s.builder.GetMiddlewares() {
			app.Use(mw)
		}
	}

	if s.worker != nil {
		app.Use(middleware.NewOperationTracker(s.worker).TrackOperations())
	}

	if !isProd {
		app.Use(pprof.New())
	}
}

func setupLogLevel(cfg *config.Config) {
	logLevel := cfg.GetNormalizedLogLevel()

	switch logLevel {
	case "trace":
		fiberlog.SetLevel(fiberlog.LevelTrace)
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "info":
		fiberlog.SetLevel(fiberlog.LevelInfo)
	case "warn", "warning":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	case "fatal":
		fiberlog.SetLevel(fiberlog.LevelFatal)
	case "panic":
		fiberlog.SetLevel(fiberlog.LevelPanic)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
		fiberlog.Warnf("Unknown log level '%s', defaulting to 'info'", logLevel)
	}

	fiberlog.Infof("Log level set to: %s", logLevel)
}

func createRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.ResultCacheEnabled() || cfg.ResultCache.Backend != models.CacheBackendRedis {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.ResultCache.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opt.PoolSize = 50
	opt.MinIdleConns = 10
	opt.PoolTimeout = 4 * time.Second
	opt.ConnMaxIdleTime = 5 * time.Minute
	opt.ConnMaxLifetime = 30 * time.Minute
	opt.DialTimeout = 10 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second
	opt.MaxRetries = 3
	opt.MinRetryBackoff = 8 * time.Millisecond
	opt.MaxRetryBackoff = 512 * time.Millisecond

	fiberlog.Debugf("Redis client configuration: PoolSize=%d, MinIdle=%d, MaxRetries=%d",
		opt.PoolSize, opt.MinIdleConns, opt.MaxRetries)

	return testRedisConnectionWithRetry(redis.NewClient(opt))
}

func testRedisConnectionWithRetry(client *redis.Client) (*redis.Client, error) {
	const maxAttempts = 3
	const baseDelay = 1 * time.Second

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()

		if err == nil {
			fiberlog.Infof("Redis connection established successfully (attempt %d/%d)", attempt, maxAttempts)
			return client, nil
		}

		fiberlog.Warnf("Redis connection failed (attempt %d/%d): %v", attempt, maxAttempts, err)

		if attempt < maxAttempts {
			delay := time.Duration(attempt) * baseDelay
			fiberlog.Infof("Retrying Redis connection in %v...", delay)
			time.Sleep(delay)
		}
	}

	if err := client.Close(); err != nil {
		fiberlog.Errorf("Failed to close Redis client after connection failures: %v", err)
	}

	return nil, fmt.Errorf("failed to connect to Redis after %d attempts", maxAttempts)
}

func (s *Server) initializeInfrastructure() error {
	redisClient, err := createRedisClient(s.config)
	if err != nil {
		return fmt.Errorf("failed to create Redis client: %w", err)
	}
	s.redis = redisClient

	if s.config.Database != nil {
		db, err := database.New(*s.config.Database)
		if err != nil {
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
		fiberlog.Info("Database migrations completed successfully")
	} else {
		fiberlog.Info("Database not configured - operation log disabled")
	}

	return nil
}

func (s *Server) initializeServices() error {
	if s.config.ResultCacheEnabled() {
		backend, err := cache.NewBackend(*s.config.ResultCache, s.redis)
		if err != nil {
			return fmt.Errorf("failed to create result cache: %w", err)
		}
		s.memoizer = cache.NewMemoizer(backend)
		fiberlog.Infof("Result cache enabled with %s backend", backend.Name())
	} else {
		fiberlog.Info("Result cache disabled")
	}

	if s.db != nil {
		s.usageSvc = usage.NewService(s.db.DB)
	}

	if s.config.UsageEnabled() && s.usageSvc != nil {
		usageCfg := s.config.Usage
		s.worker = usage.NewWorker(s.usageSvc, usageCfg.Workers, usageCfg.BufferSize)

		if usageCfg.RetentionDays > 0 {
			s.scheduler = usage.NewRetentionScheduler(
				s.usageSvc,
				time.Duration(usageCfg.RetentionDays)*24*time.Hour,
				time.Duration(usageCfg.CleanupIntervalMinutes)*time.Minute,
			)
		}
	}

	return nil
}

func (s *Server) setupRoutes() {
	operationSvc := operation.NewService(source.NewService(s.config.Source), s.memoizer)
	operationHandler := api.NewOperationHandler(request.NewBaseService(), response.NewBaseService(), operationSvc)
	healthHandler := api.NewHealthHandler(s.redis, s.db)

	s.app.Get("/health", healthHandler.HealthCheck)
	s.app.Get("/", welcomeHandler())

	operationHandler.RegisterRoutes(s.app.Group("/api"))

	if s.usageSvc != nil {
		api.NewUsageHandler(s.usageSvc).RegisterRoutes(s.app, "/admin/usage")
	}
}

func welcomeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":    "Welcome to numseq!",
			"version":    "1.0.0",
			"go_version": runtime.Version(),
			"status":     "running",
			"endpoints": fiber.Map{
				"perform_operation":   "/api/perform-operation",
				"multipart_operation": "/api/multipart-file/perform-operation",
				"raw_operation":       "/api/raw/perform-operation",
				"health":              "/health",
			},
		})
	}
}
