package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/DanielHoffmann/AuthGate/app/models"
)

const mysqlDuplicateEntry = 1062

// accountRepository implements the AccountRepository interface
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository instance
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// translate maps gorm/driver errors onto the storage-boundary sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return ErrDuplicate
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Create creates a new account in the database
func (r *accountRepository) Create(account *models.Account) error {
	return translate(r.db.Create(account).Error)
}

// GetByID retrieves an account by its ID
func (r *accountRepository) GetByID(id uint) (*models.Account, error) {
	var account models.Account
	if err := r.db.First(&account, id).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// GetByUUID retrieves an account by its public UUID
func (r *accountRepository) GetByUUID(uuid string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("uuid = ?", uuid).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// GetByEmail retrieves an account by its email address
func (r *accountRepository) GetByEmail(email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("email = ?", email).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// GetByExternalID retrieves an account by its external provider reference
func (r *accountRepository) GetByExternalID(externalID string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("external_id = ?", externalID).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

// Update updates an existing account in the database
func (r *accountRepository) Update(account *models.Account) error {
	return translate(r.db.Save(account).Error)
}

// Delete soft deletes an account by its ID
func (r *accountRepository) Delete(id uint) error {
	return translate(r.db.Delete(&models.Account{}, id).Error)
}

// List retrieves a paginated list of accounts
func (r *accountRepository) List(offset, limit int) ([]models.Account, error) {
	var accounts []models.Account
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&accounts).Error
	return accounts, translate(err)
}

// Count returns the total number of accounts
func (r *accountRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Account{}).Count(&count).Error
	return count, translate(err)
}

// SetResetChallenge overwrites the reset challenge fields in a single UPDATE,
// superseding any prior challenge.
func (r *accountRepository) SetResetChallenge(id uint, code string, issuedAt, expiresAt time.Time) error {
	res := r.db.Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_code":       code,
		"reset_issued_at":  issuedAt,
		"reset_expires_at": expiresAt,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearResetChallenge removes all reset challenge fields in a single UPDATE.
func (r *accountRepository) ClearResetChallenge(id uint) error {
	res := r.db.Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"reset_code":       nil,
		"reset_issued_at":  nil,
		"reset_expires_at": nil,
	})
	return translate(res.Error)
}

// CompletePasswordReset replaces the credential and clears the challenge in
// one statement, so no observer can see one without the other.
func (r *accountRepository) CompletePasswordReset(id uint, passwordHash string, changedAt time.Time) error {
	res := r.db.Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"password_hash":       passwordHash,
		"password_changed_at": changedAt,
		"reset_code":          nil,
		"reset_issued_at":     nil,
		"reset_expires_at":    nil,
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkExternalIdentity attaches an external identity to an existing account.
// The avatar is only written when the account has none, the credential is untouched.
func (r *accountRepository) LinkExternalIdentity(id uint, externalID string, avatarURL string) error {
	res := r.db.Model(&models.Account{}).Where("id = ?", id).Updates(map[string]interface{}{
		"external_id": externalID,
		"origin":      models.ORIGIN_FEDERATED,
		"verified":    true,
		"avatar_url": gorm.Expr(
			"CASE WHEN avatar_url IS NULL OR avatar_url = '' THEN ? ELSE avatar_url END", avatarURL,
		),
	})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RefreshExternalProfile updates the mutable profile fields on re-authentication.
func (r *accountRepository) RefreshExternalProfile(id uint, name string, avatarURL string) error {
	values := map[string]interface{}{
		"verified": true,
	}
	if name != "" {
		values["name"] = name
	}
	if avatarURL != "" {
		values["avatar_url"] = avatarURL
	}
	res := r.db.Model(&models.Account{}).Where("id = ?", id).Updates(values)
	return translate(res.Error)
}

// UpdateLastLogin records a successful authentication
func (r *accountRepository) UpdateLastLogin(id uint, at time.Time) error {
	res := r.db.Model(&models.Account{}).Where("id = ?", id).UpdateColumn("last_login_at", at)
	return translate(res.Error)
}
