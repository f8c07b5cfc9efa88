package controllers

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DanielHoffmann/AuthGate/app/services"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/cache"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/env"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/hcaptcha"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/metrics/counter"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/oauth"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/session"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/token"
)

const loginWindow = 15 * time.Minute

// genericLoginMessage is the single outward answer for every login failure
// kind, so responses do not reveal whether the account exists.
const genericLoginMessage = "invalid credentials"

type registerRequest struct {
	Username     string `json:"username" validate:"required,min=3,max=150"`
	Email        string `json:"email" validate:"required,email,min=5,max=200"`
	Password     string `json:"password" validate:"required,min=6"`
	CaptchaToken string `json:"h_captcha_response"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func maxLoginAttempts() int64 {
	if v, err := strconv.ParseInt(env.GetEnv("LOGIN_MAX_ATTEMPTS", ""), 10, 64); err == nil && v > 0 {
		return v
	}
	return 10
}

// HandleAuthRegister creates a local account.
func HandleAuthRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, "invalid registration payload")
	}

	if hcaptcha.Enabled() {
		valid, err := hcaptcha.Verify(req.CaptchaToken)
		if err != nil || !valid {
			if err != nil && env.IsDev() {
				return badRequest(c, fmt.Sprintf("captcha validation failed: %v", err))
			}
			return badRequest(c, "captcha validation failed")
		}
	}

	account, err := credentialService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":   "duplicate",
				"message": "an account with this email already exists",
			})
		}
		if errors.Is(err, services.ErrStorageUnavailable) {
			return internalError(c)
		}
		return badRequest(c, "invalid registration payload")
	}

	_ = cache.Delete(accountTotalCacheKey)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         account.UUID,
		"username":   account.Name,
		"email":      account.Email,
		"origin":     account.Origin,
		"created_at": account.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// HandleAuthProviders lists the OAuth providers a client can start a flow
// with. Providers without configured credentials are not included.
func HandleAuthProviders(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"providers": oauth.Providers(),
	})
}

// HandleAuthLogin verifies a local credential and opens a session. The
// response body also carries a JWT access token for cookie-less API clients.
func HandleAuthLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, "invalid login payload")
	}

	if attempts, err := counter.HitLogin(req.Email, loginWindow); err == nil && attempts > maxLoginAttempts() {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":   "too_many_attempts",
			"message": "too many login attempts, try again later",
		})
	}

	account, err := credentialService.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrStorageUnavailable) {
			return internalError(c)
		}
		// NotFound, NoCredential and Mismatch all answer identically.
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "invalid_credentials",
			"message": genericLoginMessage,
		})
	}

	if err := establishSession(c, account); err != nil {
		return internalError(c)
	}
	_ = counter.ClearLogin(req.Email, loginWindow)

	accessToken, err := token.Issue(account.UUID)
	if err != nil {
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"id":           account.UUID,
		"username":     account.Name,
		"access_token": accessToken,
		"token_type":   "Bearer",
	})
}

// HandleAuthLogout destroys the current session.
func HandleAuthLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return internalError(c)
	}
	if err := sess.Destroy(); err != nil {
		return internalError(c)
	}
	return c.JSON(fiber.Map{
		"message": "logged out",
	})
}
