// Package services contains server-side business logic: credential
// verification, federated identity acceptance, the sign-in gateway, and the
// content relay.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/server/models"
	"github.com/dmitrijs2005/insightdesk/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// Internal reject reasons. All wrap common.ErrInvalidCredentials; none of
// them may reach a client.
var (
	ErrEmptyCredentials = fmt.Errorf("%w: empty email or password", common.ErrInvalidCredentials)
	ErrNoSuchAccount    = fmt.Errorf("%w: no such account", common.ErrInvalidCredentials)
	ErrNoPasswordSet    = fmt.Errorf("%w: no password set", common.ErrInvalidCredentials)
	ErrPasswordMismatch = fmt.Errorf("%w: password mismatch", common.ErrInvalidCredentials)
)

// Built-in demonstration account, honoured only when the verifier is
// constructed with demo mode on.
const (
	DemoEmail     = "test@example.com"
	DemoPassword  = "password123"
	DemoAccountID = "00000000-0000-0000-0000-000000000001"
	DemoName      = "Test User"
)

// CredentialVerifier decides whether an email and password identify an account.
type CredentialVerifier struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	demoEnabled bool
	dummyHash   []byte
}

// NewCredentialVerifier builds a verifier. demoEnabled turns on the built-in
// demonstration account and must be false in production.
func NewCredentialVerifier(db *sql.DB, m repomanager.RepositoryManager, demoEnabled bool) (*CredentialVerifier, error) {
	// Compared against when the account is missing so that path costs the
	// same bcrypt work as a real mismatch.
	dummy, err := bcrypt.GenerateFromPassword(common.GenerateRandByteArray(32), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &CredentialVerifier{
		db:          db,
		repomanager: m,
		demoEnabled: demoEnabled,
		dummyHash:   dummy,
	}, nil
}

// Verify returns the matching account or an error wrapping
// common.ErrInvalidCredentials. Store failures wrap common.ErrorInternal
// instead so callers can tell an outage from a reject.
func (s *CredentialVerifier) Verify(ctx context.Context, email, password string) (*models.Account, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	if s.demoEnabled && email == DemoEmail && password == DemoPassword {
		return demoAccount(), nil
	}

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrNoSuchAccount
		}
		return nil, fmt.Errorf("%w: lookup account: %v", common.ErrorInternal, err)
	}

	if !account.HasPassword() {
		return nil, ErrNoPasswordSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrPasswordMismatch
	}

	return account, nil
}

// HashPassword returns a bcrypt hash suitable for accounts.password_hash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NormalizeEmail trims and lower-cases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func demoAccount() *models.Account {
	return &models.Account{ID: DemoAccountID, Email: DemoEmail, Name: DemoName}
}
