package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Cab789/capstone/docs"
	"github.com/Cab789/capstone/internal/config"
	"github.com/Cab789/capstone/internal/database"
	"github.com/Cab789/capstone/internal/database/migration"
	handlers "github.com/Cab789/capstone/internal/http/handler"
	"github.com/Cab789/capstone/internal/http/middleware"
	"github.com/Cab789/capstone/internal/otel"
	"github.com/Cab789/capstone/internal/repository/postgres"
	"github.com/Cab789/capstone/internal/service"
	"github.com/Cab789/capstone/internal/storage"
)

// @title Caselaw API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	// Tracing is env-driven; a missing collector degrades to a noop provider
	shutdownTracing, err := otel.Init(ctx, time.UTC)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(ctx)

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Repositories
	userRepo := postgres.NewUserPostgres(db)
	tokenRepo := postgres.NewTokenPostgres(db)
	blocklistRepo := postgres.NewBlocklistPostgres(db)
	mailingRepo := postgres.NewMailingListPostgres(db)
	historyRepo := postgres.NewHistoryPostgres(db)
	limitsRepo := postgres.NewSiteLimitsPostgres(db)
	caseRepo := postgres.NewCaseLawPostgres(db)
	timelineRepo := postgres.NewTimelinePostgres(db)
	contractRepo := postgres.NewContractPostgres(db)
	exportRepo := postgres.NewExportPostgres(db)

	// Services
	mailer := service.NewLogMailer()
	authSvc := service.NewAuthService(userRepo, tokenRepo, blocklistRepo, mailingRepo, limitsRepo, mailer,
		cfg.Access.DailyCaseAllowance, cfg.Limits.DailySignupLimit)
	accessSvc := service.NewAccessService(userRepo, cfg.Access.HarvardIPRanges, cfg.Access.BotUserAgents,
		cfg.Access.AllowanceExpireHours)
	caseSvc := service.NewCaseLawService(caseRepo, historyRepo, limitsRepo, objStore)
	editorSvc := service.NewEditorService(caseRepo)
	timelineSvc := service.NewTimelineService(timelineRepo)
	contractSvc := service.NewContractService(contractRepo, userRepo)
	exportSvc := service.NewExportService(exportRepo, objStore)
	codec := service.NewAllowanceCodec(cfg.Access.SessionSecret,
		cfg.Access.DailyCaseAllowance, cfg.Access.AllowanceExpireHours)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}
	app.Use(promMiddleware.Handler())
	metrics, err := middleware.NewDomainMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to initialize metrics: %v", err)
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Resolve the API key, if any, then decode the anonymous allowance cookie
	app.Use(middleware.TokenAuth(authSvc))
	app.Use(middleware.AnonAllowance(codec))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:                db,
		Auth:              authSvc,
		Access:            accessSvc,
		Cases:             caseSvc,
		Editor:            editorSvc,
		Timelines:         timelineSvc,
		Contracts:         contractSvc,
		Exports:           exportSvc,
		Codec:             codec,
		Metrics:           metrics,
		AuthRatePerMinute: cfg.Limits.SignupRatePerMin,
		AuthRateBurst:     cfg.Limits.SignupBurst,
	})

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

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
