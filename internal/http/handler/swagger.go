package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"tenderdocs/docs"
)

// RegisterSwagger serves the Swagger UI under /swagger/*. The doc host is fixed here, before
// the app serves traffic; an empty host makes the UI call the origin it was loaded from.
func RegisterSwagger(app *fiber.App, host string, schemes ...string) {
	docs.SwaggerInfo.Host = host
	docs.SwaggerInfo.Schemes = append([]string{}, schemes...)

	app.Get("/swagger/*", swagger.HandlerDefault)
}
