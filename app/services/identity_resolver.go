package services

import (
	"errors"

	"github.com/DanielHoffmann/AuthGate/app/models"
	"github.com/DanielHoffmann/AuthGate/app/repository"
)

// ExternalAssertion is an identity claim from an OAuth provider after a
// completed flow.
type ExternalAssertion struct {
	Provider  string
	SubjectID string
	Email     string
	Name      string
	AvatarURL string
}

// Ref returns the opaque reference stored on the account, namespaced by
// provider so subject ids from different providers cannot collide.
func (a ExternalAssertion) Ref() string {
	if a.Provider == "" {
		return a.SubjectID
	}
	return a.Provider + ":" + a.SubjectID
}

// Complete reports whether the assertion carries the fields resolution needs.
func (a ExternalAssertion) Complete() bool {
	return a.SubjectID != "" && a.Email != ""
}

// IdentityResolver reconciles external identity assertions with local
// accounts, producing exactly one canonical account per external reference
// and per email.
type IdentityResolver struct {
	accounts repository.AccountRepository
}

func NewIdentityResolver(accounts repository.AccountRepository) *IdentityResolver {
	return &IdentityResolver{accounts: accounts}
}

// Resolve applies the match order: external reference first, then email,
// then account creation. The first match wins and later steps never run.
func (r *IdentityResolver) Resolve(assertion ExternalAssertion) (*models.Account, error) {
	return r.resolve(assertion, true)
}

func (r *IdentityResolver) resolve(assertion ExternalAssertion, retryOnRace bool) (*models.Account, error) {
	if !assertion.Complete() {
		return nil, ErrIncompleteAssertion
	}
	ref := assertion.Ref()

	// Re-authentication of an already linked account.
	account, err := r.accounts.GetByExternalID(ref)
	if err == nil {
		if err := r.accounts.RefreshExternalProfile(account.ID, assertion.Name, assertion.AvatarURL); err != nil {
			return nil, err
		}
		if assertion.Name != "" {
			account.Name = assertion.Name
		}
		if assertion.AvatarURL != "" {
			account.AvatarURL = assertion.AvatarURL
		}
		account.Verified = true
		return account, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// Existing account under the asserted email: link it, keep its credential
	// so it stays dual-capable.
	account, err = r.accounts.GetByEmail(assertion.Email)
	if err == nil {
		if err := r.accounts.LinkExternalIdentity(account.ID, ref, assertion.AvatarURL); err != nil {
			return nil, err
		}
		account.ExternalID = &ref
		account.Origin = models.ORIGIN_FEDERATED
		account.Verified = true
		if account.AvatarURL == "" {
			account.AvatarURL = assertion.AvatarURL
		}
		return account, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	name := assertion.Name
	if name == "" {
		name = assertion.Email
	}
	account = &models.Account{
		Name:       name,
		Email:      assertion.Email,
		Origin:     models.ORIGIN_FEDERATED,
		Verified:   true,
		ExternalID: &ref,
		AvatarURL:  assertion.AvatarURL,
	}
	if err := r.accounts.Create(account); err != nil {
		// A concurrent resolution for the same identity created the account
		// first; resolve again against the winner.
		if errors.Is(err, ErrDuplicate) && retryOnRace {
			return r.resolve(assertion, false)
		}
		return nil, err
	}
	return account, nil
}
