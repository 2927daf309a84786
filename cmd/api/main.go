package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"talentdocs/internal/access"
	"talentdocs/internal/config"
	"talentdocs/internal/database"
	"talentdocs/internal/database/migration"
	"talentdocs/internal/event"
	handlers "talentdocs/internal/http/handler"
	"talentdocs/internal/http/middleware"
	identitypg "talentdocs/internal/identity/postgres"
	"talentdocs/internal/otel"
	"talentdocs/internal/repository/postgres"
	"talentdocs/internal/service"
	"talentdocs/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	shutdownTracing, err := otel.Init(context.Background(), time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := migration.EnsureMigrated(migrateCtx, db, time.UTC, cfg.Database.Host); err != nil {
		cancel()
		log.Fatalf("failed to migrate database: %v", err)
	}
	cancel()

	// Initialize reusable S3-compatible object storage client (MinIO-supported).
	// The adapter is explicitly constructed and injected; no process-wide singleton.
	buckets := storage.NewBuckets(cfg.Buckets)
	objStore, err := storage.NewMinIO(cfg.MinIO, buckets)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Event publication is optional: without a Redis address, lifecycle
	// events are dropped instead of blocking uploads.
	var publisher event.Publisher = event.NopPublisher{}
	if cfg.Redis.Addr != "" {
		publisher, err = event.NewRedis(cfg.Redis)
		if err != nil {
			log.Fatalf("failed to initialize event publisher: %v", err)
		}
	}

	// Initialize resolver, repositories and services
	resolver := identitypg.NewResolverPostgres(db)
	checker := access.NewChecker(postgres.NewOwnershipPostgres(db))
	docRepo := postgres.NewDocumentPostgres(db, resolver, checker)
	docSvc := service.NewDocumentService(objStore, buckets, docRepo, publisher, logger,
		time.Duration(cfg.SignedURLTTLSec)*time.Second)

	app := fiber.New(fiber.Config{
		BodyLimit:    service.MaxFileSize + 1<<20, // uploads up to the cap plus form overhead
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMw, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}
	app.Use(promMw.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected service
	handlers.RegisterRoutes(app, db, docSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
