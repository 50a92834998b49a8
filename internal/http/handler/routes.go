package handler

import (
	"github.com/gofiber/fiber/v2"

	"tenderdocs/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// guards (bearer auth in production) wrap the document routes only; probes stay open.
func RegisterRoutes(app *fiber.App, db Pinger, docSvc service.DocumentService, guards ...fiber.Handler) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	route := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, guards...), h)
	}

	app.Post("/upload-document", route(UploadDocument(docSvc))...)
	app.Get("/documents", route(ListDocuments(docSvc))...)
	app.Get("/documents/:id", route(GetDocument(docSvc))...)
	app.Patch("/documents/:id", route(UpdateDocument(docSvc))...)
	app.Delete("/documents/:id", route(DeleteDocument(docSvc))...)
	app.Get("/documents/:id/url", route(DocumentURL(docSvc))...)
	app.Get("/documents/:id/content", route(DocumentContent(docSvc))...)
}
