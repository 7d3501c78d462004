package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-analyzer/internal/handlers"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// Dependencies are the long-lived objects the HTTP surface is built on.
type Dependencies struct {
	Storage     services.StorageService
	Pipeline    services.AnalysisPipeline
	Resolver    services.ModelResolver
	AuditRepo   repositories.AuditRepository
	Provider    string
	MaxFileSize int64
	AccessLog   bool
}

func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Resume Analyzer API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		// Oversized uploads must reach the handler so they get a 400
		// instead of fasthttp's 413.
		BodyLimit:    int(2 * deps.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	if deps.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	analyzeHandler := handlers.NewAnalyzeHandler(deps.Storage, deps.Pipeline, deps.MaxFileSize)
	improveHandler := handlers.NewImproveHandler(deps.Pipeline)
	modelHandler := handlers.NewModelHandler(deps.Resolver, deps.Provider)
	auditHandler := handlers.NewAuditHandler(deps.AuditRepo)

	// Paths used by the existing web client.
	app.Post("/api/analyze", analyzeHandler.HandleAnalyze)
	app.Post("/api/generate-improved", improveHandler.HandleImprove)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/analyze", analyzeHandler.HandleAnalyze)
	api.Post("/generate-improved", improveHandler.HandleImprove)
	api.Get("/model", modelHandler.HandleGetModel)
	api.Post("/model/invalidate", modelHandler.HandleInvalidate)
	api.Get("/audits", auditHandler.HandleListAudits)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/analyze",
				"POST /api/v1/generate-improved",
				"GET /api/v1/model",
				"POST /api/v1/model/invalidate",
				"GET /api/v1/audits",
				"GET /api/v1/health",
			},
		})
	})

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	message := "Internal server error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": message,
		"code":  code,
	})
}
