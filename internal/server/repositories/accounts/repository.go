// Package accounts is the account store used by credential and federated
// sign-in.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/insightdesk/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	UpsertByEmail(ctx context.Context, email, name string) (*models.Account, error)
	LinkIdentity(ctx context.Context, identity *models.FederatedIdentity) error
}
