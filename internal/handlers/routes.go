package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the API under /api/v1.
func RegisterRoutes(app *fiber.App, sessions *SessionHandler, uploads *UploadHandler, analyses *AnalysisHandler) {
	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/sessions", sessions.HandleCreate)
	api.Get("/sessions/:id", sessions.HandleGet)
	api.Delete("/sessions/:id", sessions.HandleDelete)
	api.Put("/sessions/:id/cv", sessions.HandleSetCV)
	api.Put("/sessions/:id/job-description", sessions.HandleSetJobDescription)
	api.Post("/sessions/:id/upload", uploads.HandleUpload)
	api.Get("/sessions/:id/documents", uploads.HandleListDocuments)
	api.Get("/documents/:id", uploads.HandleDownloadDocument)
	api.Post("/sessions/:id/analyze", sessions.HandleAnalyze)
	api.Post("/sessions/:id/cancel", sessions.HandleCancel)

	if analyses != nil {
		api.Get("/analyses", analyses.HandleList)
		api.Get("/analyses/:id", analyses.HandleGet)
		api.Get("/analyses/:id/similar", analyses.HandleSimilar)
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Match Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/sessions",
				"GET /api/v1/sessions/:id",
				"DELETE /api/v1/sessions/:id",
				"PUT /api/v1/sessions/:id/cv",
				"PUT /api/v1/sessions/:id/job-description",
				"POST /api/v1/sessions/:id/upload",
				"GET /api/v1/sessions/:id/documents",
				"GET /api/v1/documents/:id",
				"POST /api/v1/sessions/:id/analyze",
				"POST /api/v1/sessions/:id/cancel",
				"GET /api/v1/analyses",
				"GET /api/v1/analyses/:id",
				"GET /api/v1/analyses/:id/similar",
			},
		})
	})
}

// ErrorHandler renders errors that escape the handlers as {error, code}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
