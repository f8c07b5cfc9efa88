package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/markbates/goth"
	gothfiber "github.com/shareed2k/goth_fiber"

	"github.com/DanielHoffmann/AuthGate/app/services"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/token"
)

// HandleOAuthCallback completes the provider flow, resolves the asserted
// identity to exactly one local account and logs it in.
func HandleOAuthCallback(c *fiber.Ctx) error {
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "oauth_failed",
			"message": fmt.Sprintf("OAuth failed: %v", err),
		})
	}

	account, err := identityResolver.Resolve(assertionFromGothUser(u))
	if err != nil {
		if errors.Is(err, services.ErrIncompleteAssertion) {
			return badRequest(c, "the provider did not supply an id and email")
		}
		return internalError(c)
	}

	if err := establishSession(c, account); err != nil {
		return internalError(c)
	}

	accessToken, err := token.Issue(account.UUID)
	if err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"id":           account.UUID,
		"username":     account.Name,
		"origin":       account.Origin,
		"access_token": accessToken,
		"token_type":   "Bearer",
	})
}

// assertionFromGothUser maps the provider's unified user onto the resolver input.
func assertionFromGothUser(u goth.User) services.ExternalAssertion {
	return services.ExternalAssertion{
		Provider:  u.Provider,
		SubjectID: u.UserID,
		Email:     u.Email,
		Name:      firstNonEmpty(u.Name, u.NickName, u.Email),
		AvatarURL: u.AvatarURL,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
