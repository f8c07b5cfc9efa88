package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/DanielHoffmann/AuthGate/app/models"
)

// Storage-boundary errors. Everything the gorm layer returns is translated
// into one of these before it leaves the package.
var (
	// ErrNotFound is returned when no account matches the lookup key.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicate is returned when a unique constraint (email, external id) is violated.
	ErrDuplicate = errors.New("duplicate account key")
	// ErrUnavailable wraps unexpected storage failures.
	ErrUnavailable = errors.New("storage unavailable")
)

// AccountRepository defines the interface for account-related database operations.
// Multi-field state transitions (reset challenge, reset completion, identity
// linking) are single UPDATE statements keyed by account id so that concurrent
// requests serialize at the database row.
type AccountRepository interface {
	Create(account *models.Account) error
	GetByID(id uint) (*models.Account, error)
	GetByUUID(uuid string) (*models.Account, error)
	GetByEmail(email string) (*models.Account, error)
	GetByExternalID(externalID string) (*models.Account, error)
	Update(account *models.Account) error
	Delete(id uint) error
	List(offset, limit int) ([]models.Account, error)
	Count() (int64, error)

	// SetResetChallenge overwrites any prior reset challenge atomically.
	SetResetChallenge(id uint, code string, issuedAt, expiresAt time.Time) error
	// ClearResetChallenge removes all reset challenge fields atomically.
	ClearResetChallenge(id uint) error
	// CompletePasswordReset swaps the credential and clears the challenge in one statement.
	CompletePasswordReset(id uint, passwordHash string, changedAt time.Time) error
	// LinkExternalIdentity upgrades a local account to federated; the avatar
	// is only filled in when locally absent.
	LinkExternalIdentity(id uint, externalID string, avatarURL string) error
	// RefreshExternalProfile updates name/avatar on re-authentication of a linked account.
	RefreshExternalProfile(id uint, name string, avatarURL string) error
	UpdateLastLogin(id uint, at time.Time) error
}

// Repositories holds all repository instances
type Repositories struct {
	Account AccountRepository
}

// NewRepositories creates all repositories backed by the given database handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Account: NewAccountRepository(db),
	}
}
