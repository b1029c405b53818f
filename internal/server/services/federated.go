package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/dbx"
	"github.com/dmitrijs2005/insightdesk/internal/server/models"
	"github.com/dmitrijs2005/insightdesk/internal/server/repositories/repomanager"
)

// FederatedAcceptor maps a provider-vouched identity onto an account,
// creating it on first sign-in. It never sets a password hash.
type FederatedAcceptor struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewFederatedAcceptor(db *sql.DB, m repomanager.RepositoryManager) *FederatedAcceptor {
	return &FederatedAcceptor{db: db, repomanager: m}
}

// Accept upserts the account by email and records the provider link in one
// transaction.
func (s *FederatedAcceptor) Accept(ctx context.Context, assertion *models.FederatedAssertion) (*models.Account, error) {
	if assertion == nil {
		return nil, common.NewValidationError("missing federated assertion")
	}
	email := NormalizeEmail(assertion.Email)
	if email == "" {
		return nil, common.NewValidationError("federated identity has no email")
	}

	var account *models.Account
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		a, err := repo.UpsertByEmail(ctx, email, strings.TrimSpace(assertion.Name))
		if err != nil {
			return err
		}

		if assertion.Subject != "" {
			if err := repo.LinkIdentity(ctx, &models.FederatedIdentity{
				Provider:  assertion.Provider,
				Subject:   assertion.Subject,
				AccountID: a.ID,
			}); err != nil {
				return err
			}
		}

		account = a
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: accept federated identity: %v", common.ErrorInternal, err)
	}

	return account, nil
}
