package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/dbx"
	"github.com/dmitrijs2005/insightdesk/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	a := &models.Account{}
	var hash sql.NullString
	if err := row.Scan(&a.ID, &a.Email, &a.Name, &hash, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	if hash.Valid {
		a.PasswordHash = &hash.String
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (email, name, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`

	var hash sql.NullString
	if account.PasswordHash != nil {
		hash = sql.NullString{String: *account.PasswordHash, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, account.Email, account.Name, hash).
		Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT id, email, name, password_hash, created_at, updated_at FROM accounts
		 WHERE email = $1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

// UpsertByEmail creates the account or refreshes its display name. An empty
// name never overwrites an existing one, and password_hash is never touched.
func (r *PostgresRepository) UpsertByEmail(ctx context.Context, email, name string) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (email, name)
		 VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE
		 SET name = COALESCE(NULLIF(EXCLUDED.name, ''), accounts.name),
		     updated_at = now()
		 RETURNING id, email, name, password_hash, created_at, updated_at`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, email, name))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

func (r *PostgresRepository) LinkIdentity(ctx context.Context, identity *models.FederatedIdentity) error {
	query :=
		`INSERT INTO federated_identities (provider, subject, account_id)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (provider, subject) DO UPDATE
		 SET account_id = EXCLUDED.account_id`

	if _, err := r.db.ExecContext(ctx, query, identity.Provider, identity.Subject, identity.AccountID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
