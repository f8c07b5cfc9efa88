package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/DanielHoffmann/AuthGate/app/services"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/env"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/metrics/counter"
)

const resetWindow = 15 * time.Minute

// The acknowledgement is identical whether or not the email belongs to an
// account, and every verification failure kind answers with the same message.
const (
	resetAcknowledgement = "if the address exists, a reset code has been sent"
	genericResetMessage  = "invalid or expired code"
)

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required,len=6,numeric"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

func maxResetRequests() int64 {
	if v, err := strconv.ParseInt(env.GetEnv("RESET_MAX_REQUESTS", ""), 10, 64); err == nil && v > 0 {
		return v
	}
	return 5
}

// HandleForgotPassword issues a reset code and mails it to the account.
func HandleForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, "invalid email")
	}

	if attempts, err := counter.HitReset(req.Email, resetWindow); err == nil && attempts > maxResetRequests() {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"error":   "too_many_attempts",
			"message": "too many reset requests, try again later",
		})
	}

	if err := credentialService.RequestPasswordReset(req.Email); err != nil {
		if errors.Is(err, services.ErrDeliveryFailed) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error":   "email_send_failed",
				"message": "the reset code could not be delivered",
			})
		}
		return internalError(c)
	}

	return c.JSON(fiber.Map{
		"message": resetAcknowledgement,
	})
}

// HandleResetPassword completes the reset flow with the mailed code.
func HandleResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return badRequest(c, "invalid reset payload")
	}

	if err := credentialService.CompletePasswordReset(req.Email, req.Code, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrStorageUnavailable) {
			return internalError(c)
		}
		// NotFound, NoChallenge, Expired and Mismatch answer identically.
		return badRequest(c, genericResetMessage)
	}

	return c.JSON(fiber.Map{
		"message": "password updated",
	})
}
