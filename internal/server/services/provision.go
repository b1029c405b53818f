package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/server/models"
	"github.com/dmitrijs2005/insightdesk/internal/server/repositories/repomanager"
	"github.com/go-playground/validator/v10"
)

var ErrAccountExists = common.NewValidationError("Account already exists.")

type newAccount struct {
	Email    string `validate:"required,email,max=320"`
	Name     string `validate:"max=200"`
	Password string `validate:"required,min=8,max=72"`
}

// Provisioner creates password accounts out of band. There is no sign-up
// endpoint; operators run this from the account tool.
type Provisioner struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	validate    *validator.Validate
}

func NewProvisioner(db *sql.DB, m repomanager.RepositoryManager) *Provisioner {
	return &Provisioner{db: db, repomanager: m, validate: validator.New()}
}

func (p *Provisioner) CreateAccount(ctx context.Context, email, name, password string) (*models.Account, error) {
	in := newAccount{Email: NormalizeEmail(email), Name: name, Password: password}
	if err := p.validate.Struct(in); err != nil {
		return nil, common.NewValidationError(fmt.Sprintf("invalid account: %v", err))
	}
	if in.Name == "" {
		in.Name = in.Email
	}

	repo := p.repomanager.Accounts(p.db)

	_, err := repo.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrAccountExists
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("%w: lookup: %v", common.ErrorInternal, err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: hash: %v", common.ErrorInternal, err)
	}

	return repo.Create(ctx, &models.Account{Email: in.Email, Name: in.Name, PasswordHash: &hash})
}
