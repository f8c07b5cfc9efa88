package services

import (
	"errors"
	"time"

	"github.com/DanielHoffmann/AuthGate/app/models"
	"github.com/DanielHoffmann/AuthGate/app/repository"
)

// fakeAccountRepository is an in-memory AccountRepository with the same
// unique-key semantics as the MySQL-backed implementation.
type fakeAccountRepository struct {
	nextID   uint
	accounts map[uint]*models.Account
}

func newFakeAccountRepository() *fakeAccountRepository {
	return &fakeAccountRepository{
		nextID:   1,
		accounts: make(map[uint]*models.Account),
	}
}

func (r *fakeAccountRepository) clone(a *models.Account) *models.Account {
	cp := *a
	if a.ExternalID != nil {
		ref := *a.ExternalID
		cp.ExternalID = &ref
	}
	return &cp
}

func (r *fakeAccountRepository) Create(account *models.Account) error {
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicate
		}
		if existing.ExternalID != nil && account.ExternalID != nil && *existing.ExternalID == *account.ExternalID {
			return repository.ErrDuplicate
		}
	}
	account.ID = r.nextID
	if account.UUID == "" {
		account.UUID = time.Now().Format("20060102150405.000000000")
	}
	account.CreatedAt = time.Now()
	r.nextID++
	r.accounts[account.ID] = r.clone(account)
	return nil
}

func (r *fakeAccountRepository) GetByID(id uint) (*models.Account, error) {
	if a, ok := r.accounts[id]; ok {
		return r.clone(a), nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepository) GetByUUID(uuid string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.UUID == uuid {
			return r.clone(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepository) GetByEmail(email string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return r.clone(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepository) GetByExternalID(externalID string) (*models.Account, error) {
	for _, a := range r.accounts {
		if a.ExternalID != nil && *a.ExternalID == externalID {
			return r.clone(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeAccountRepository) Update(account *models.Account) error {
	if _, ok := r.accounts[account.ID]; !ok {
		return repository.ErrNotFound
	}
	r.accounts[account.ID] = r.clone(account)
	return nil
}

func (r *fakeAccountRepository) Delete(id uint) error {
	delete(r.accounts, id)
	return nil
}

func (r *fakeAccountRepository) List(offset, limit int) ([]models.Account, error) {
	var out []models.Account
	for _, a := range r.accounts {
		out = append(out, *r.clone(a))
	}
	return out, nil
}

func (r *fakeAccountRepository) Count() (int64, error) {
	return int64(len(r.accounts)), nil
}

func (r *fakeAccountRepository) SetResetChallenge(id uint, code string, issuedAt, expiresAt time.Time) error {
	a, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.ResetCode = code
	a.ResetIssuedAt = &issuedAt
	a.ResetExpiresAt = &expiresAt
	return nil
}

func (r *fakeAccountRepository) ClearResetChallenge(id uint) error {
	a, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.ClearResetChallenge()
	return nil
}

func (r *fakeAccountRepository) CompletePasswordReset(id uint, passwordHash string, changedAt time.Time) error {
	a, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.PasswordChangedAt = &changedAt
	a.ClearResetChallenge()
	return nil
}

func (r *fakeAccountRepository) LinkExternalIdentity(id uint, externalID string, avatarURL string) error {
	a, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.ExternalID = &externalID
	a.Origin = models.ORIGIN_FEDERATED
	a.Verified = true
	if a.AvatarURL == "" {
		a.AvatarURL = avatarURL
	}
	return nil
}

func (r *fakeAccountRepository) RefreshExternalProfile(id uint, name string, avatarURL string) error {
	a, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if name != "" {
		a.Name = name
	}
	if avatarURL != "" {
		a.AvatarURL = avatarURL
	}
	a.Verified = true
	return nil
}

func (r *fakeAccountRepository) UpdateLastLogin(id uint, at time.Time) error {
	a, ok := r.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.LastLoginAt = &at
	return nil
}

// fakeMailer records sent mail and can be told to fail.
type fakeMailer struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *fakeMailer) Send(to string, subject string, body string) error {
	if m.fail {
		return errors.New("smtp connection refused")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}
