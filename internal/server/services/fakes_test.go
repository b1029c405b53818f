package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/dbx"
	"github.com/dmitrijs2005/insightdesk/internal/server/models"
	"github.com/dmitrijs2005/insightdesk/internal/server/repositories/accounts"
)

type fakeAccountsRepo struct {
	byEmail      map[string]*models.Account
	getErr       error
	upsertErr    error
	linkErr      error
	getCalls     int
	upsertCalls  int
	linked       []*models.FederatedIdentity
	upsertedName string
}

func newFakeAccountsRepo(accs ...*models.Account) *fakeAccountsRepo {
	r := &fakeAccountsRepo{byEmail: map[string]*models.Account{}}
	for _, a := range accs {
		r.byEmail[a.Email] = a
	}
	return r
}

func (r *fakeAccountsRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	r.byEmail[a.Email] = a
	return a, nil
}

func (r *fakeAccountsRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	r.getCalls++
	if r.getErr != nil {
		return nil, r.getErr
	}
	a, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (r *fakeAccountsRepo) UpsertByEmail(ctx context.Context, email, name string) (*models.Account, error) {
	r.upsertCalls++
	r.upsertedName = name
	if r.upsertErr != nil {
		return nil, r.upsertErr
	}
	a, ok := r.byEmail[email]
	if !ok {
		a = &models.Account{ID: "acc-" + email, Email: email, Name: name, CreatedAt: time.Now()}
		r.byEmail[email] = a
	} else if name != "" {
		a.Name = name
	}
	return a, nil
}

func (r *fakeAccountsRepo) LinkIdentity(ctx context.Context, id *models.FederatedIdentity) error {
	if r.linkErr != nil {
		return r.linkErr
	}
	r.linked = append(r.linked, id)
	return nil
}

type fakeRepoManager struct {
	repo *fakeAccountsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository { return m.repo }
