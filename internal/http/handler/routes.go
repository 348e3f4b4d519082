package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Cab789/capstone/internal/http/middleware"
	"github.com/Cab789/capstone/internal/service"
)

// Deps bundles everything the HTTP layer needs. Handlers themselves stay
// thin; business rules live in the service layer.
type Deps struct {
	DB        *sql.DB
	Auth      service.AuthService
	Access    service.AccessService
	Cases     service.CaseLawService
	Editor    service.EditorService
	Timelines service.TimelineService
	Contracts service.ContractService
	Exports   service.ExportService
	Codec     *service.AllowanceCodec
	Metrics   *middleware.DomainMetrics

	// Requests per minute and burst for the abuse-prone auth endpoints.
	AuthRatePerMinute int
	AuthRateBurst     int
}

// RegisterRoutes attaches all HTTP routes to the provided Fiber app. The
// bare citation paths are registered last so they only catch what no other
// route matched.
func RegisterRoutes(app *fiber.App, d Deps) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	// Health endpoint: checks DB connectivity only
	app.Get("/health", HealthCheck(d.DB))

	// Backward-compatible simple liveness probe
	app.Get("/healthz", LivenessProbe())

	app.Get("/robots.txt", RobotsTxt(d.Cases))

	authLimit := middleware.RateLimit(d.AuthRatePerMinute, d.AuthRateBurst)

	auth := app.Group("/v1/auth")
	auth.Post("/register", authLimit, Register(d.Auth))
	auth.Post("/verify", VerifyEmail(d.Auth))
	auth.Post("/resend-verification", authLimit, ResendVerification(d.Auth))
	auth.Post("/login", authLimit, Login(d.Auth))
	auth.Post("/reset-api-key", middleware.RequireUser(), ResetAPIKey(d.Auth))

	app.Post("/v1/mailing-list", SubscribeMailingList(d.Auth))
	app.Post("/v1/not-a-bot", NotABot(d.Codec))
	app.Post("/v1/limits/reset", middleware.RequireStaff(), ResetDailyLimits(d.Auth))
	app.Get("/v1/user/history", middleware.RequireUser(), ViewHistory(d.Cases))

	app.Get("/v1/cases", SearchCitations(d.Cases, "cite"))
	app.Get("/v1/cases/:id", GetCase(d.Cases, d.Access, d.Codec, d.Metrics))
	app.Get("/v1/cases/:id/citations", CaseCitations(d.Cases))
	app.Get("/v1/citations", SearchCitations(d.Cases, "q"))
	app.Get("/v1/random", RandomCase(d.Cases))
	app.Get("/v1/volumes/:barcode/pages/:page", middleware.RequireStaff(), PageImage(d.Cases))

	app.Post("/v1/cases/:id/corrections", middleware.RequireStaff(), ApplyCorrections(d.Editor))
	app.Post("/v1/cases/:id/redactions", middleware.RequireStaff(), SetRedaction(d.Editor))
	app.Delete("/v1/cases/:id/redactions", middleware.RequireStaff(), ClearRedaction(d.Editor))

	timelines := app.Group("/v1/timelines")
	timelines.Post("/", middleware.RequireUser(), CreateTimeline(d.Timelines))
	timelines.Get("/", middleware.RequireUser(), ListTimelines(d.Timelines))
	timelines.Get("/:id", GetTimeline(d.Timelines))
	timelines.Put("/:id", middleware.RequireUser(), UpdateTimeline(d.Timelines))
	timelines.Delete("/:id", middleware.RequireUser(), DeleteTimeline(d.Timelines))

	contracts := app.Group("/v1/contracts")
	contracts.Post("/research", middleware.RequireUser(), SubmitResearchContract(d.Contracts))
	contracts.Get("/research", middleware.RequireUser(), ListResearchContracts(d.Contracts))
	contracts.Post("/research/:id/decision", middleware.RequireStaff(), DecideResearchContract(d.Contracts))
	contracts.Post("/harvard", middleware.RequireUser(), SubmitHarvardContract(d.Contracts))

	exports := app.Group("/v1/exports")
	exports.Get("/", ListExports(d.Exports))
	exports.Get("/:id/download", DownloadExport(d.Exports, d.Access))
	exports.Post("/run", middleware.RequireStaff(), RunExports(d.Exports))

	// Citation URLs live at the site root, like the reporters they mirror:
	// /ill-app/23/19 or /ill-app/23/19/435800. Registered last.
	resolve := ResolveCitation(d.Cases, d.Access, d.Codec, d.Metrics)
	app.Get("/series/:series", SeriesPage(d.Cases))
	app.Get("/series/:series/:volume", VolumePage(d.Cases))
	app.Get("/:series/:volume/:page", resolve)
	app.Get("/:series/:volume/:page/:caseID", resolve)
}

// LivenessProbe always answers 200; it only proves the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// HealthCheck reports whether the database is reachable.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}
