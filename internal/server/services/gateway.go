package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/logging"
	"github.com/dmitrijs2005/insightdesk/internal/server/models"
	"github.com/dmitrijs2005/insightdesk/internal/server/oauth"
)

// CredentialsProviderID names the email/password option in provider lists.
const CredentialsProviderID = "credentials"

// ErrFederatedRejected is returned when a provider flow fails or is
// cancelled. It carries no detail on purpose.
var ErrFederatedRejected = fmt.Errorf("%w: federated sign-in failed", common.ErrorUnauthorized)

type credentialChecker interface {
	Verify(ctx context.Context, email, password string) (*models.Account, error)
}

type identityAcceptor interface {
	Accept(ctx context.Context, assertion *models.FederatedAssertion) (*models.Account, error)
}

type sessionMinter interface {
	Issue(account *models.Account) (string, time.Time, error)
}

// ProviderInfo describes a sign-in option for the client.
type ProviderInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// Result is what an Issued attempt hands back to the client.
type Result struct {
	Account   *models.Account
	Token     string
	ExpiresAt time.Time
	Attempt   *Attempt
}

// AuthGateway is the single entry point for sign-in. It routes an attempt to
// the credential or federated flow and mints a session for the winner.
type AuthGateway struct {
	verifier  credentialChecker
	acceptor  identityAcceptor
	issuer    sessionMinter
	providers *oauth.Registry
	logger    logging.Logger
	observer  func(provider string, a *Attempt)
}

func NewAuthGateway(v credentialChecker, a identityAcceptor, i sessionMinter, providers *oauth.Registry, logger logging.Logger) *AuthGateway {
	if providers == nil {
		providers = oauth.NewRegistry()
	}
	return &AuthGateway{verifier: v, acceptor: a, issuer: i, providers: providers, logger: logger}
}

// OnFinish registers fn to be called once per attempt that reaches Issued
// or Rejected. Not safe to call concurrently with sign-ins.
func (g *AuthGateway) OnFinish(fn func(provider string, a *Attempt)) {
	g.observer = fn
}

func (g *AuthGateway) finish(a *Attempt, to AttemptState, provider string) error {
	err := a.transition(to)
	if err == nil && g.observer != nil {
		g.observer(provider, a)
	}
	return err
}

// Providers lists the sign-in options, credentials first.
func (g *AuthGateway) Providers() []ProviderInfo {
	out := []ProviderInfo{{ID: CredentialsProviderID, Name: "Email", Type: "credentials"}}
	for _, p := range g.providers.List() {
		out = append(out, ProviderInfo{ID: p.ID(), Name: p.DisplayName(), Type: "oauth"})
	}
	return out
}

func (g *AuthGateway) start(ctx context.Context, flow AttemptState) (*Attempt, context.Context, error) {
	a := newAttempt()
	ctx = logging.ContextWith(ctx, "attempt", a.ID)
	if err := a.transition(StateAwaitingProviderChoice); err != nil {
		return nil, ctx, err
	}
	if err := a.transition(flow); err != nil {
		return nil, ctx, err
	}
	return a, ctx, nil
}

// SignInWithCredentials runs the credential flow. Every verification reject
// comes back as common.ErrInvalidCredentials with no reason attached; the
// reason is only logged.
func (g *AuthGateway) SignInWithCredentials(ctx context.Context, email, password string) (*Result, error) {
	a, ctx, err := g.start(ctx, StateCredentialFlow)
	if err != nil {
		return nil, err
	}

	account, err := g.verifier.Verify(ctx, email, password)
	if err != nil {
		_ = g.finish(a, StateRejected, CredentialsProviderID)
		if errors.Is(err, common.ErrInvalidCredentials) {
			g.logger.Info(ctx, "credential sign-in rejected", "reason", err.Error())
			return nil, common.ErrInvalidCredentials
		}
		g.logger.Error(ctx, "credential sign-in failed", "error", err)
		return nil, err
	}

	return g.issue(ctx, a, account, CredentialsProviderID)
}

// BeginFederated returns the provider URL the browser should be sent to.
func (g *AuthGateway) BeginFederated(providerID, state string) (string, error) {
	p, ok := g.providers.Get(providerID)
	if !ok {
		return "", fmt.Errorf("%w: provider %q", common.ErrorNotFound, providerID)
	}
	return p.AuthCodeURL(state), nil
}

// CompleteFederated finishes the provider flow with the returned code, maps
// the identity onto an account and mints a session.
func (g *AuthGateway) CompleteFederated(ctx context.Context, providerID, code string) (*Result, error) {
	p, ok := g.providers.Get(providerID)
	if !ok {
		return nil, fmt.Errorf("%w: provider %q", common.ErrorNotFound, providerID)
	}

	a, ctx, err := g.start(ctx, StateFederatedFlow)
	if err != nil {
		return nil, err
	}
	ctx = logging.ContextWith(ctx, "provider", providerID)

	assertion, err := p.Exchange(ctx, code)
	if err != nil {
		_ = g.finish(a, StateRejected, providerID)
		g.logger.Warn(ctx, "federated sign-in rejected", "error", err)
		return nil, ErrFederatedRejected
	}

	account, err := g.acceptor.Accept(ctx, assertion)
	if err != nil {
		_ = g.finish(a, StateRejected, providerID)
		if errors.Is(err, common.ErrorValidation) {
			g.logger.Warn(ctx, "federated identity not accepted", "error", err)
			return nil, ErrFederatedRejected
		}
		g.logger.Error(ctx, "federated sign-in failed", "error", err)
		return nil, err
	}

	return g.issue(ctx, a, account, providerID)
}

func (g *AuthGateway) issue(ctx context.Context, a *Attempt, account *models.Account, provider string) (*Result, error) {
	token, exp, err := g.issuer.Issue(account)
	if err != nil {
		_ = g.finish(a, StateRejected, provider)
		g.logger.Error(ctx, "issue session", "error", err)
		return nil, fmt.Errorf("%w: issue session: %v", common.ErrorInternal, err)
	}
	if err := g.finish(a, StateIssued, provider); err != nil {
		return nil, err
	}

	g.logger.Info(ctx, "session issued", "account", account.ID, "via", provider)
	return &Result{Account: account, Token: token, ExpiresAt: exp, Attempt: a}, nil
}
