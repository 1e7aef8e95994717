package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"docregister/docs"
	"docregister/internal/config"
	"docregister/internal/database"
	"docregister/internal/database/migration"
	handlers "docregister/internal/http/handler"
	"docregister/internal/http/middleware"
	"docregister/internal/logger"
	tracing "docregister/internal/otel"
	"docregister/internal/repository"
	"docregister/internal/repository/memory"
	"docregister/internal/repository/postgres"
	"docregister/internal/service"
	"docregister/internal/storage"
)

const (
	bodyLimit       = 256 << 20
	shutdownTimeout = 15 * time.Second
)

// @title Document Register API
// @version 1.0
// @description Multi-organisation document register: revisions, transmittals and audit timelines.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	flags, err := config.ApplyFlags(cfg, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, flags, log); err != nil {
		log.Error("fatal", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.AppConfig, flags config.Flags, log *zap.Logger) error {
	shutdownTracing, err := tracing.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	store, db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	if flags.MigrateOnly {
		log.Info("migrations applied, exiting")
		return nil
	}

	blobs, err := openBlobs(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}

	policyCfg, err := config.LoadPolicy(cfg.Register.PolicyFile)
	if err != nil {
		return err
	}

	if cfg.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("register http metrics: %w", err)
	}

	opts := []service.Option{
		service.WithPolicy(service.PolicyFromConfig(policyCfg)),
		service.WithLogger(log),
		service.WithMetrics(service.NewMetrics(reg)),
		service.WithStorageTimeout(cfg.Register.StorageTimeout),
		service.WithRetry(cfg.Register.RetryAttempts, cfg.Register.RetryBaseDelay),
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	app.Use(middleware.Recover(log))
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Deps{
		Store:        store,
		Ledger:       service.NewLedgerService(store, opts...),
		Events:       service.NewEventService(store, opts...),
		Register:     service.NewRegisterService(store, opts...),
		Transmittals: service.NewTransmittalService(store, opts...),
		Files:        service.NewFileService(store, blobs, cfg.Register.PresignExpiry, opts...),
		Log:          log,
	}, middleware.NewIdentity(middleware.IdentityConfig{
		Secret: []byte(cfg.Auth.JWTSecret),
		Issuer: cfg.Auth.Issuer,
	}))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("addr", addr),
			zap.String("store", cfg.StoreBackend),
			zap.String("blob", cfg.BlobBackend),
		)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

// openStore returns the ledger store. db is non-nil for the postgres
// backend and must be closed by the caller.
func openStore(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (repository.Store, *sql.DB, error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			db.Close()
			return nil, nil, err
		}
		return postgres.NewStore(db), db, nil
	case "memory":
		log.Warn("using the in-memory store; data is lost on exit")
		return memory.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func openBlobs(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	switch cfg.BlobBackend {
	case "minio":
		return storage.NewMinIO(ctx, cfg.MinIO)
	case "s3":
		return storage.NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}
