package router

import (
	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/DanielHoffmann/AuthGate/app/controllers"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/middleware"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/oauth"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers (only those with configured credentials)
	oauth.Setup()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Initialize auth controllers with their services
	controllers.InitializeAuthControllers()

	// Social OAuth. The routes exist only when at least one provider carries
	// real credentials; an unconfigured provider never registers a route that
	// would fail at call time.
	if oauth.Enabled() {
		app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
		app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)
	}
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
