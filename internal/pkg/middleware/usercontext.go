package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/DanielHoffmann/AuthGate/app/repository"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/session"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/token"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/usercontext"
)

func anonymous(c *fiber.Ctx) {
	c.Locals("USER_CONTEXT", usercontext.UserContext{IsLoggedIn: false})
}

// UserContextMiddleware resolves the request principal from a Bearer access
// token or the cookie session and stores it in Locals for every handler.
func UserContextMiddleware(c *fiber.Ctx) error {
	// Goth uses its own fiber session store on the OAuth routes; skip the
	// app session there to prevent cross-store collisions.
	if strings.HasPrefix(c.Path(), "/auth/") {
		return c.Next()
	}

	// Bearer access token takes precedence for API clients.
	if authz := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(authz, "Bearer ") {
		accountUUID, err := token.Verify(strings.TrimPrefix(authz, "Bearer "))
		if err == nil {
			account, err := repository.GetGlobalFactory().GetAccountRepository().GetByUUID(accountUUID)
			if err == nil {
				c.Locals("USER_CONTEXT", usercontext.UserContext{
					AccountID:  account.ID,
					Username:   account.Name,
					IsLoggedIn: true,
				})
				return c.Next()
			}
		}
		anonymous(c)
		return c.Next()
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		anonymous(c)
		return c.Next()
	}

	// The session is only trusted when a login marked it authenticated.
	if authed, ok := sess.Get(usercontext.AuthKey).(bool); !ok || !authed {
		anonymous(c)
		return c.Next()
	}

	accountID := sess.Get(usercontext.KeyUserID)
	if accountID == nil {
		anonymous(c)
		return c.Next()
	}

	username := session.GetSessionValue(c, usercontext.KeyUsername)
	c.Locals("USER_CONTEXT", usercontext.UserContext{
		AccountID:  accountID.(uint),
		Username:   username,
		IsLoggedIn: true,
	})

	return c.Next()
}
