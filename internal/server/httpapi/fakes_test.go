package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/insightdesk/internal/common"
	"github.com/dmitrijs2005/insightdesk/internal/dbx"
	"github.com/dmitrijs2005/insightdesk/internal/logging"
	"github.com/dmitrijs2005/insightdesk/internal/server/auth"
	"github.com/dmitrijs2005/insightdesk/internal/server/extract"
	"github.com/dmitrijs2005/insightdesk/internal/server/models"
	"github.com/dmitrijs2005/insightdesk/internal/server/oauth"
	"github.com/dmitrijs2005/insightdesk/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/insightdesk/internal/server/services"
)

type memRepo struct {
	accs map[string]*models.Account
}

func (m *memRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	m.accs[a.Email] = a
	return a, nil
}

func (m *memRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	a, ok := m.accs[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (m *memRepo) UpsertByEmail(ctx context.Context, email, name string) (*models.Account, error) {
	return nil, common.ErrorInternal
}

func (m *memRepo) LinkIdentity(ctx context.Context, id *models.FederatedIdentity) error { return nil }

type memManager struct{ repo *memRepo }

func (m *memManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memManager) Accounts(dbx.DBTX) accounts.Repository        { return m.repo }

type stubAcceptor struct{}

func (stubAcceptor) Accept(ctx context.Context, a *models.FederatedAssertion) (*models.Account, error) {
	return &models.Account{ID: "fed-" + a.Subject, Email: a.Email, Name: a.Name}, nil
}

type stubProvider struct{ err error }

func (p *stubProvider) ID() string          { return "github" }
func (p *stubProvider) DisplayName() string { return "GitHub" }
func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://github.test/login/oauth/authorize?state=" + state
}
func (p *stubProvider) Exchange(ctx context.Context, code string) (*models.FederatedAssertion, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &models.FederatedAssertion{Provider: "github", Subject: code, Email: "octo@example.com", Name: "Octo"}, nil
}

type stubDescriber struct{}

func (stubDescriber) Describe(ctx context.Context, image []byte, mimeType string) (string, error) {
	return "described " + mimeType, nil
}

type stubSummarizer struct {
	got string
	err error
}

func (s *stubSummarizer) Summarize(ctx context.Context, text string) (string, error) {
	s.got = text
	if s.err != nil {
		return "", s.err
	}
	return "summary of " + text, nil
}

type stubFetcher struct{ err error }

func (f stubFetcher) FetchText(ctx context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "page at " + url, nil
}

type fixture struct {
	srv        *Server
	handler    http.Handler
	issuer     *auth.SessionIssuer
	registry   *prometheus.Registry
	summarizer *stubSummarizer
	provider   *stubProvider
}

const alicePassword = "s3cret-pass"

func newFixture(t *testing.T, opts ...func(*Options)) *fixture {
	t.Helper()
	return buildFixture(t, false, opts...)
}

func buildFixture(t *testing.T, demo bool, opts ...func(*Options)) *fixture {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(alicePassword), bcrypt.MinCost)
	require.NoError(t, err)
	h := string(hash)
	repo := &memRepo{accs: map[string]*models.Account{
		"alice@example.com": {ID: "a1", Email: "alice@example.com", Name: "Alice", PasswordHash: &h},
		"fed@example.com":   {ID: "f1", Email: "fed@example.com", Name: "Fed"},
	}}

	verifier, err := services.NewCredentialVerifier(nil, &memManager{repo: repo}, demo)
	require.NoError(t, err)
	issuer, err := auth.NewSessionIssuer([]byte("test-secret"), time.Hour)
	require.NoError(t, err)

	provider := &stubProvider{}
	gw := services.NewAuthGateway(verifier, stubAcceptor{}, issuer, oauth.NewRegistry(provider), logging.Discard())

	summarizer := &stubSummarizer{}
	relay := services.NewRelayService(stubDescriber{}, summarizer, stubFetcher{},
		extract.Func(func(ctx context.Context, data []byte) (string, error) { return "pdf body", nil }),
		nil, logging.Discard())

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	gw.OnFinish(metrics.ObserveSignin)

	o := Options{
		Gateway:    gw,
		Sessions:   issuer,
		Relay:      relay,
		Logger:     logging.Discard(),
		Registry:   reg,
		Metrics:    metrics,
		StateStore: NewStateStore([]byte("0123456789abcdef0123456789abcdef"), false),
	}
	for _, fn := range opts {
		fn(&o)
	}

	srv := New(o)
	return &fixture{
		srv:        srv,
		handler:    srv.Routes(),
		issuer:     issuer,
		registry:   reg,
		summarizer: summarizer,
		provider:   provider,
	}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) token(t *testing.T) string {
	t.Helper()
	tok, _, err := f.issuer.Issue(&models.Account{ID: "a1", Email: "alice@example.com", Name: "Alice"})
	require.NoError(t, err)
	return tok
}
