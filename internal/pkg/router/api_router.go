package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/DanielHoffmann/AuthGate/app/controllers"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/env"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// Fixed-window limiter per client address; the sensitive endpoints carry
	// their own per-email counters on top.
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	auth := v1.Group("/auth")
	auth.Post("/register", controllers.HandleAuthRegister)
	auth.Post("/login", controllers.HandleAuthLogin)
	auth.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)
	auth.Post("/forgot-password", controllers.HandleForgotPassword)
	auth.Post("/reset-password", controllers.HandleResetPassword)
	auth.Get("/providers", controllers.HandleAuthProviders)

	account := v1.Group("/account")
	account.Get("/me", middleware.RequireAuth, controllers.HandleGetAccount)
	account.Patch("/me", middleware.RequireAuth, controllers.HandleUpdateAccount)
	account.Delete("/me", middleware.RequireAuth, controllers.HandleDeleteAccount)

	// The admin surface only exists when credentials are configured.
	adminUser := env.GetEnv("ADMIN_USER", "")
	adminPassword := env.GetEnv("ADMIN_PASSWORD", "")
	if adminUser != "" && adminPassword != "" {
		admin := v1.Group("/admin", basicauth.New(basicauth.Config{
			Users: map[string]string{adminUser: adminPassword},
		}))
		admin.Get("/accounts", controllers.HandleAdminListAccounts)
	}
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
