package services

import (
	"errors"
	"time"

	"github.com/DanielHoffmann/AuthGate/app/models"
	"github.com/DanielHoffmann/AuthGate/app/repository"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/mail"
	"github.com/DanielHoffmann/AuthGate/internal/pkg/security"
)

// CredentialService owns credential mutations and the password-reset code
// state machine: at most one outstanding challenge per account, valid for
// models.ResetCodeTTL from issuance.
type CredentialService struct {
	accounts repository.AccountRepository
	mailer   mail.Mailer
	now      func() time.Time
}

func NewCredentialService(accounts repository.AccountRepository, mailer mail.Mailer) *CredentialService {
	return &CredentialService{
		accounts: accounts,
		mailer:   mailer,
		now:      time.Now,
	}
}

// Register creates a local account with a hashed credential. A concurrent
// registration with the same email surfaces as ErrDuplicate.
func (s *CredentialService) Register(name string, email string, password string) (*models.Account, error) {
	account, err := models.NewLocalAccount(name, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(account); err != nil {
		return nil, err
	}
	return account, nil
}

// Authenticate verifies a local credential. The error kinds (ErrNotFound,
// ErrNoCredential, ErrMismatch) are for internal branching only; login
// handlers must answer all three with the same generic message.
func (s *CredentialService) Authenticate(email string, password string) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if !account.HasPassword() {
		return nil, ErrNoCredential
	}
	if !account.CheckPassword(password) {
		return nil, ErrMismatch
	}
	_ = s.accounts.UpdateLastLogin(account.ID, s.now())
	return account, nil
}

// RequestPasswordReset issues a fresh reset code, unconditionally superseding
// any prior challenge, and dispatches it by mail. An unknown email returns
// nil so the outward response does not reveal account existence. A mail
// delivery failure is reported as ErrDeliveryFailed.
func (s *CredentialService) RequestPasswordReset(email string) error {
	account, err := s.accounts.GetByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	code, err := security.GenerateResetCode()
	if err != nil {
		return err
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(models.ResetCodeTTL)
	if err := s.accounts.SetResetChallenge(account.ID, code, issuedAt, expiresAt); err != nil {
		return err
	}

	subject, body := mail.ResetCodeMessage(code, models.ResetCodeTTL)
	if err := s.mailer.Send(account.Email, subject, body); err != nil {
		return ErrDeliveryFailed
	}
	return nil
}

// VerifyResetCode checks a submitted code without consuming it.
func (s *CredentialService) VerifyResetCode(email string, code string) error {
	_, err := s.verifyChallenge(email, code)
	return err
}

func (s *CredentialService) verifyChallenge(email string, code string) (*models.Account, error) {
	account, err := s.accounts.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if !account.HasResetChallenge() {
		return nil, ErrNoChallenge
	}
	if account.ResetChallengeExpired(s.now()) {
		return nil, ErrExpired
	}
	if !account.MatchResetCode(code) {
		return nil, ErrMismatch
	}
	return account, nil
}

// CompletePasswordReset re-verifies the code and, on success, swaps in the
// new credential and clears the challenge in one atomic storage update.
func (s *CredentialService) CompletePasswordReset(email string, code string, newPassword string) error {
	account, err := s.verifyChallenge(email, code)
	if err != nil {
		return err
	}
	hash, err := models.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.accounts.CompletePasswordReset(account.ID, hash, s.now())
}
