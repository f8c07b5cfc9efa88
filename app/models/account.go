package models

import (
	"crypto/subtle"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ORIGIN_LOCAL     = "local"
	ORIGIN_FEDERATED = "federated"
)

// ResetCodeTTL is the validity window of a password reset code.
const ResetCodeTTL = 10 * time.Minute

type Account struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	UUID         string  `gorm:"uniqueIndex;type:varchar(36)" json:"uuid"`
	Name         string  `gorm:"type:varchar(150)" json:"name" validate:"required,min=3,max=150"`
	Email        string  `gorm:"uniqueIndex;type:varchar(200) CHARACTER SET utf8 COLLATE utf8_bin" json:"email" validate:"required,email,min=5,max=200"`
	PasswordHash string  `gorm:"type:text" json:"-"`
	Origin       string  `gorm:"type:varchar(20);default:'local'" json:"origin" validate:"oneof=local federated"`
	Verified     bool    `gorm:"default:false" json:"verified"`
	ExternalID   *string `gorm:"uniqueIndex;type:varchar(191);default:null" json:"-"`
	AvatarURL    string  `gorm:"type:varchar(255);default:null" json:"avatar_url" validate:"max=255"`

	// Reset challenge fields are either all set or all empty.
	ResetCode      string     `gorm:"type:varchar(6);default:null" json:"-"`
	ResetIssuedAt  *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	ResetExpiresAt *time.Time `gorm:"type:timestamp;default:null" json:"-"`

	PasswordChangedAt *time.Time     `gorm:"type:timestamp;default:null" json:"-"`
	LastLoginAt       *time.Time     `gorm:"type:timestamp;default:null" json:"last_login_at"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (a *Account) Validate() error {
	v := validator.New()

	return v.Struct(a)
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.UUID == "" {
		a.UUID = uuid.NewString()
	}
	return nil
}

// NewLocalAccount builds an unsaved local account with a hashed credential.
func NewLocalAccount(name string, email string, password string) (*Account, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	a := &Account{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Origin:       ORIGIN_LOCAL,
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// HasPassword reports whether the account carries a local credential.
// Federated accounts without one legitimately return false.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// CheckPassword verifies if the provided password matches the account's stored credential
func (a *Account) CheckPassword(password string) bool {
	return CheckPasswordHash(password, a.PasswordHash)
}

// SetPassword hashes and sets a new credential for the account
func (a *Account) SetPassword(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	a.PasswordHash = hash
	now := time.Now()
	a.PasswordChangedAt = &now
	return nil
}

// HasResetChallenge returns true if a reset code is currently stored
func (a *Account) HasResetChallenge() bool {
	return a.ResetCode != "" && a.ResetIssuedAt != nil && a.ResetExpiresAt != nil
}

// ResetChallengeExpired reports whether the stored reset code is past its window.
func (a *Account) ResetChallengeExpired(now time.Time) bool {
	if a.ResetExpiresAt == nil {
		return true
	}
	return now.After(*a.ResetExpiresAt)
}

// MatchResetCode compares a submitted code against the stored one in constant time.
func (a *Account) MatchResetCode(code string) bool {
	if a.ResetCode == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a.ResetCode), []byte(code)) == 1
}

// ClearResetChallenge clears all reset challenge fields
func (a *Account) ClearResetChallenge() {
	a.ResetCode = ""
	a.ResetIssuedAt = nil
	a.ResetExpiresAt = nil
}

// IsFederated reports whether the account's authority comes from an external provider
func (a *Account) IsFederated() bool {
	return a.Origin == ORIGIN_FEDERATED
}
