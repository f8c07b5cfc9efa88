package services

import (
	"errors"

	"github.com/DanielHoffmann/AuthGate/app/repository"
)

// Error taxonomy for the credential and identity services. The distinctions
// exist for internal branching; HTTP handlers collapse existence-revealing
// kinds into a single generic outward message.
var (
	ErrNotFound           = repository.ErrNotFound
	ErrDuplicate          = repository.ErrDuplicate
	ErrStorageUnavailable = repository.ErrUnavailable

	ErrNoCredential        = errors.New("account has no local credential")
	ErrNoChallenge         = errors.New("no active reset challenge")
	ErrExpired             = errors.New("reset code expired")
	ErrMismatch            = errors.New("credential mismatch")
	ErrIncompleteAssertion = errors.New("external assertion lacks subject id or email")
	ErrDeliveryFailed      = errors.New("notification delivery failed")
)
