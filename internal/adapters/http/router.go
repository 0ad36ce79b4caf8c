package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/dronepath/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 600 requests per minute per IP (frame polling is chatty)
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1
	v1 := app.Group("/v1")

	sessions := v1.Group("/sessions")
	sessions.Post("/", CreateSessionHandler(deps))
	sessions.Get("/", ListSessionsHandler(deps))
	sessions.Get("/:id", GetSessionHandler(deps))
	sessions.Delete("/:id", DeleteSessionHandler(deps))

	sessions.Get("/:id/path", GetPathHandler(deps))
	sessions.Put("/:id/path", SetPathHandler(deps))
	sessions.Post("/:id/path/upload", timeout.NewWithContext(UploadPathHandler(deps), requestTimeout))
	sessions.Post("/:id/points", AppendPointHandler(deps))
	sessions.Delete("/:id/points/:index", RemovePointHandler(deps))

	sessions.Post("/:id/toggle", ToggleHandler(deps))
	sessions.Post("/:id/reset", ResetHandler(deps))
	sessions.Post("/:id/seek", SeekHandler(deps))

	sessions.Get("/:id/frame", FrameHandler(deps))
	sessions.Get("/:id/viewport", ViewportHandler(deps))
	sessions.Get("/:id/path.geojson", GeoJSONHandler(deps))

	// Path library: 15s per-request timeout (database backed)
	sessions.Post("/:id/save", timeout.NewWithContext(SavePathHandler(deps), requestTimeout))
	sessions.Post("/:id/load/:pathID", timeout.NewWithContext(LoadPathHandler(deps), requestTimeout))
	v1.Get("/paths", timeout.NewWithContext(ListPathsHandler(deps), requestTimeout))
	v1.Get("/paths/:id", timeout.NewWithContext(GetSavedPathHandler(deps), requestTimeout))
	v1.Delete("/paths/:id", timeout.NewWithContext(DeleteSavedPathHandler(deps), requestTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket frame stream
	if deps.Hub != nil {
		app.Use("/ws", WebSocketGuard(deps))
		app.Get("/ws", websocket.New(WebSocketHandler(deps)))
	}
}
