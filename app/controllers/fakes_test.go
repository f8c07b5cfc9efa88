package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/DanielHoffmann/AuthGate/app/models"
	"github.com/DanielHoffmann/AuthGate/app/repository"
	"github.com/DanielHoffmann/AuthGate/app/services"
)

// memoryAccounts is a minimal in-memory AccountRepository for handler tests.
type memoryAccounts struct {
	nextID uint
	byID   map[uint]*models.Account
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{nextID: 1, byID: map[uint]*models.Account{}}
}

func (m *memoryAccounts) Create(account *models.Account) error {
	for _, existing := range m.byID {
		if existing.Email == account.Email {
			return repository.ErrDuplicate
		}
	}
	account.ID = m.nextID
	m.nextID++
	account.CreatedAt = time.Now()
	cp := *account
	m.byID[account.ID] = &cp
	return nil
}

func (m *memoryAccounts) GetByID(id uint) (*models.Account, error) {
	if a, ok := m.byID[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memoryAccounts) GetByUUID(uuid string) (*models.Account, error) {
	for _, a := range m.byID {
		if a.UUID == uuid {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryAccounts) GetByEmail(email string) (*models.Account, error) {
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryAccounts) GetByExternalID(externalID string) (*models.Account, error) {
	for _, a := range m.byID {
		if a.ExternalID != nil && *a.ExternalID == externalID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryAccounts) Update(account *models.Account) error {
	if _, ok := m.byID[account.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *account
	m.byID[account.ID] = &cp
	return nil
}

func (m *memoryAccounts) Delete(id uint) error {
	delete(m.byID, id)
	return nil
}

func (m *memoryAccounts) List(offset, limit int) ([]models.Account, error) {
	ids := make([]uint, 0, len(m.byID))
	for id := range m.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []models.Account
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, *m.byID[ids[i]])
	}
	return out, nil
}

func (m *memoryAccounts) Count() (int64, error) {
	return int64(len(m.byID)), nil
}

func (m *memoryAccounts) SetResetChallenge(id uint, code string, issuedAt, expiresAt time.Time) error {
	a, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.ResetCode = code
	a.ResetIssuedAt = &issuedAt
	a.ResetExpiresAt = &expiresAt
	return nil
}

func (m *memoryAccounts) ClearResetChallenge(id uint) error {
	a, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.ClearResetChallenge()
	return nil
}

func (m *memoryAccounts) CompletePasswordReset(id uint, passwordHash string, changedAt time.Time) error {
	a, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.PasswordHash = passwordHash
	a.PasswordChangedAt = &changedAt
	a.ClearResetChallenge()
	return nil
}

func (m *memoryAccounts) LinkExternalIdentity(id uint, externalID string, avatarURL string) error {
	a, ok := m.byID[id]
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

func (m *memoryAccounts) RefreshExternalProfile(id uint, name string, avatarURL string) error {
	a, ok := m.byID[id]
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

func (m *memoryAccounts) UpdateLastLogin(id uint, at time.Time) error {
	a, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.LastLoginAt = &at
	return nil
}

// recordingMailer counts deliveries and can be told to fail.
type recordingMailer struct {
	sent int
	fail bool
}

func (m *recordingMailer) Send(to string, subject string, body string) error {
	if m.fail {
		return errors.New("smtp connection refused")
	}
	m.sent++
	return nil
}

// newAuthTestApp wires the handlers against in-memory collaborators and
// registers the public auth routes.
func newAuthTestApp(t *testing.T) (*fiber.App, *memoryAccounts, *recordingMailer) {
	t.Helper()

	repo := newMemoryAccounts()
	mailer := &recordingMailer{}
	accounts = repo
	credentialService = services.NewCredentialService(repo, mailer)
	identityResolver = services.NewIdentityResolver(repo)

	app := fiber.New()
	app.Post("/api/v1/auth/register", HandleAuthRegister)
	app.Post("/api/v1/auth/login", HandleAuthLogin)
	app.Post("/api/v1/auth/forgot-password", HandleForgotPassword)
	app.Post("/api/v1/auth/reset-password", HandleResetPassword)
	app.Get("/api/v1/auth/providers", HandleAuthProviders)
	return app, repo, mailer
}

type testResponse struct {
	status int
	body   string
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) testResponse {
	return sendJSON(t, app, http.MethodPost, path, payload)
}

func sendJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}) testResponse {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return testResponse{status: resp.StatusCode, body: string(body)}
}
