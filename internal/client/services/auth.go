// Package services contains application services for the InsightDesk CLI:
// signing in and out, and sending content to the relay.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/insightdesk/internal/client/client"
	"github.com/dmitrijs2005/insightdesk/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// Login persists the session locally so later runs stay signed in; Logout
// forgets it. WhoAmI asks the server, CachedSession only reads local state.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (*client.Session, error)
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) (*client.Session, error)
	CachedSession(ctx context.Context) (*client.Session, error)
	Providers(ctx context.Context) ([]client.Provider, error)
	SignInURL(provider string) string
	Ping(ctx context.Context) error
}

type authService struct {
	client client.Client
	db     *sql.DB
}

func NewAuthService(c client.Client, db *sql.DB) AuthService {
	return &authService{client: c, db: db}
}

var sessionKeys = []string{
	metadata.KeyToken,
	metadata.KeyExpiresAt,
	metadata.KeyAccountID,
	metadata.KeyEmail,
	metadata.KeyName,
}

// Login signs in with email and password. The password slice is wiped
// before returning.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*client.Session, error) {
	defer common.WipeByteArray(password)

	s, err := a.client.SignIn(ctx, strings.TrimSpace(email), string(password))
	if err != nil {
		return nil, fmt.Errorf("login error: %w", err)
	}

	if err := a.saveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("session saving error: %w", err)
	}
	return s, nil
}

// saveSession writes the token and account identity in one transaction.
func (a *authService) saveSession(ctx context.Context, s *client.Session) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		values := map[string]string{
			metadata.KeyToken:     s.Token,
			metadata.KeyExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
			metadata.KeyAccountID: s.User.ID,
			metadata.KeyEmail:     s.User.Email,
			metadata.KeyName:      s.User.Name,
		}
		for k, v := range values {
			if err := repo.Set(ctx, k, []byte(v)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Logout tells the server (best effort) and always clears the local session.
func (a *authService) Logout(ctx context.Context) error {
	repo := metadata.NewSQLiteRepository(a.db)

	token, err := repo.Get(ctx, metadata.KeyToken)
	if err != nil {
		return err
	}
	if len(token) > 0 {
		_ = a.client.SignOut(ctx, string(token))
	}

	return repo.Delete(ctx, sessionKeys...)
}

func (a *authService) CachedSession(ctx context.Context) (*client.Session, error) {
	repo := metadata.NewSQLiteRepository(a.db)

	get := func(key string) (string, error) {
		v, err := repo.Get(ctx, key)
		return string(v), err
	}

	token, err := get(metadata.KeyToken)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, client.ErrNotSignedIn
	}

	s := &client.Session{Token: token}
	if s.User.ID, err = get(metadata.KeyAccountID); err != nil {
		return nil, err
	}
	if s.User.Email, err = get(metadata.KeyEmail); err != nil {
		return nil, err
	}
	if s.User.Name, err = get(metadata.KeyName); err != nil {
		return nil, err
	}
	if exp, err := get(metadata.KeyExpiresAt); err == nil && exp != "" {
		s.ExpiresAt, _ = time.Parse(time.RFC3339, exp)
	}

	if !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		return nil, client.ErrNotSignedIn
	}
	return s, nil
}

// WhoAmI validates the stored token with the server. A token the server
// rejects is dropped locally.
func (a *authService) WhoAmI(ctx context.Context) (*client.Session, error) {
	cached, err := a.CachedSession(ctx)
	if err != nil {
		return nil, err
	}

	s, err := a.client.Session(ctx, cached.Token)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			_ = metadata.NewSQLiteRepository(a.db).Delete(ctx, sessionKeys...)
			return nil, client.ErrNotSignedIn
		}
		return nil, err
	}
	return s, nil
}

func (a *authService) Providers(ctx context.Context) ([]client.Provider, error) {
	return a.client.Providers(ctx)
}

func (a *authService) SignInURL(provider string) string {
	return a.client.SignInURL(provider)
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
