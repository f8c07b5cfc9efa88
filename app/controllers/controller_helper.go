package controllers

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/DanielHoffmann/AuthGate/app/models"
	"github.com/DanielHoffmann/AuthGate/app/repository"
	"github.com/DanielHoffmann/AuthGate/app/services"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/mail"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/session"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/usercontext"
)

var validate = validator.New()

var (
	accounts          repository.AccountRepository
	credentialService *services.CredentialService
	identityResolver  *services.IdentityResolver
)

// InitializeAuthControllers wires the repository and services the handlers
// use. Must be called after the repository factory is initialized.
func InitializeAuthControllers() {
	accounts = repository.GetGlobalRepositories().Account
	credentialService = services.NewCredentialService(accounts, mail.NewSMTPMailer())
	identityResolver = services.NewIdentityResolver(accounts)
}

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return err
	}
	return validate.Struct(out)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "bad_request",
		"message": message,
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal_server_error",
		"message": "something went wrong",
	})
}

// establishSession records the account in the cookie session.
func establishSession(c *fiber.Ctx, account *models.Account) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}
	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, account.ID)
	sess.Set(usercontext.KeyUsername, account.Name)
	return sess.Save()
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
