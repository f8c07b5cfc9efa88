package controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DanielHoffmann/AuthGate/app/models"
	"github.com/DanielHoffmann/AuthGate/app/repository"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/cache"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/session"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/usercontext"
)

type updateAccountRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
}

// HandleGetAccount returns profile information for the authenticated principal
// (cookie session or Bearer token).
func HandleGetAccount(c *fiber.Ctx) error {
	accountID := usercontext.GetAccountID(c)
	if accountID == 0 {
		return unauthorized(c)
	}

	account, err := accounts.GetByID(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":   "not_found",
				"message": "Account not found",
			})
		}
		return internalError(c)
	}

	return c.JSON(accountProfile(account))
}

// HandleUpdateAccount changes the display name of the authenticated principal.
func HandleUpdateAccount(c *fiber.Ctx) error {
	accountID := usercontext.GetAccountID(c)
	if accountID == 0 {
		return unauthorized(c)
	}

	var req updateAccountRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, "invalid profile payload")
	}

	account, err := accounts.GetByID(accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unauthorized(c)
		}
		return internalError(c)
	}

	if req.Username != account.Name {
		account.Name = req.Username
		if err := accounts.Update(account); err != nil {
			return internalError(c)
		}
		// Cookie clients carry the username in the session; refresh it.
		if session.GetSessionStore() != nil {
			_ = establishSession(c, account)
		}
	}

	return c.JSON(accountProfile(account))
}

// HandleDeleteAccount removes the authenticated principal's account and ends
// the session.
func HandleDeleteAccount(c *fiber.Ctx) error {
	accountID := usercontext.GetAccountID(c)
	if accountID == 0 {
		return unauthorized(c)
	}

	if err := accounts.Delete(accountID); err != nil {
		return internalError(c)
	}
	_ = cache.Delete(accountTotalCacheKey)

	if store := session.GetSessionStore(); store != nil {
		if sess, err := store.Get(c); err == nil {
			_ = sess.Destroy()
		}
	}

	log.Printf("account deleted: %s", usercontext.GetUsername(c))
	return c.JSON(fiber.Map{
		"message": "account deleted",
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": "Missing or invalid authentication",
	})
}

func accountProfile(account *models.Account) fiber.Map {
	return fiber.Map{
		"id":                  account.UUID,
		"username":            account.Name,
		"email":               account.Email,
		"origin":              account.Origin,
		"verified":            account.Verified,
		"has_password":        account.HasPassword(),
		"linked_provider":     account.ExternalID != nil,
		"avatar_url":          account.AvatarURL,
		"created_at":          account.CreatedAt.UTC().Format(time.RFC3339),
		"last_login_at":       formatTimePtr(account.LastLoginAt),
		"password_changed_at": formatTimePtr(account.PasswordChangedAt),
	}
}
