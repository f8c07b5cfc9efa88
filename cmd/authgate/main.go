package main

import (
	"fmt"
	"log"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/DanielHoffmann/AuthGate/app/repository"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/cache"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/database"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/env"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/authgate to project root
		"../../../", // Fallback
	}

	// Find the correct base path
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}

	if basePath == "" {
		panic("Could not find project root directory")
	}

	// init fiber app
	app := fiber.New(fiber.Config{
		AppName: "AuthGate",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics; no credentials, no route
	if users, ok := metricsCredentials(); ok {
		app.Get("/metrics", basicauth.New(basicauth.Config{
			Users: users,
		}), monitor.New())
	} else {
		log.Println("metrics endpoint disabled: METRICS_USER and METRICS_PASSWORD are not set")
	}

	// SWAGGER / OPENAPI
	specPath := basePath + "public/docs/v1/openapi.yml"
	validateOpenAPISpec(specPath)
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: specPath,
		Path:     "v1",
	}))

	router.InstallRouter(app)

	return app
}

// metricsCredentials returns the basic-auth users for the metrics endpoint,
// or false when either value is missing so the route stays closed.
func metricsCredentials() (map[string]string, bool) {
	user := env.GetEnv("METRICS_USER", "")
	password := env.GetEnv("METRICS_PASSWORD", "")
	if user == "" || password == "" {
		return nil, false
	}
	return map[string]string{user: password}, true
}

// validateOpenAPISpec fails loudly when the served API document is broken.
func validateOpenAPISpec(path string) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(path)
	if err == nil {
		err = doc.Validate(loader.Context)
	}
	if err != nil {
		log.Printf("Warning: OpenAPI document %s is invalid: %v", path, err)
	}
}
