package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/metrics", adaptor.HTTPHandler(handler.metrics))
	app.Get("/favicon.ico", sendNoContent)

	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Post("/logout", handler.AuthRequired, handler.Logout)
	auth.Post("/change-password", handler.AuthRequired, handler.ChangePassword)
	auth.Get("/me", handler.AuthRequired, handler.CurrentUser)

	api.Get("/frequencies", handler.Frequencies)

	products := api.Group("/products", handler.AuthRequired)
	products.Get("", handler.ListProducts)
	products.Post("", handler.AddProduct)
	products.Post("/:id/activate", handler.ActivateProduct)
	products.Post("/:id/deactivate", handler.DeactivateProduct)
	products.Delete("/:id", handler.DeleteProduct)

	subscriptions := api.Group("/subscriptions", handler.AuthRequired)
	subscriptions.Get("", handler.ListSubscriptions)
	subscriptions.Post("", handler.CreateSubscription)
	subscriptions.Get("/due", handler.DueSubscriptions)
	subscriptions.Put("/:id", handler.UpdateSubscription)
	subscriptions.Post("/:id/activate", handler.ActivateSubscription)
	subscriptions.Post("/:id/deactivate", handler.DeactivateSubscription)
	subscriptions.Delete("/:id", handler.DeleteSubscription)

	reminders := api.Group("/reminders", handler.AuthRequired)
	reminders.Post("/run", handler.RunReminders)
}

func sendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
