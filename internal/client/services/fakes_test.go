package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/insightdesk/internal/client/client"
	"github.com/dmitrijs2005/insightdesk/internal/client/repositories/metadata"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setMeta(t *testing.T, db *sql.DB, k, v string) {
	t.Helper()
	require.NoError(t, metadata.NewSQLiteRepository(db).Set(context.Background(), k, []byte(v)))
}

func getMeta(t *testing.T, db *sql.DB, k string) string {
	t.Helper()
	v, err := metadata.NewSQLiteRepository(db).Get(context.Background(), k)
	require.NoError(t, err)
	return string(v)
}

// ---- fake client ----

// fakeClient implements client.Client and records the arguments it saw.
type fakeClient struct {
	PingErr      error
	ProvidersRet []client.Provider
	ProvidersErr error

	SignInRet *client.Session
	SignInErr error

	SessionRet *client.Session
	SessionErr error

	SignOutErr error

	DescribeRet string
	SummaryRet  string
	ContentErr  error

	LastEmail    string
	LastPassword string
	LastToken    string
	LastFilename string
	LastData     []byte
	LastText     string
	SignOutCalls int
	FileCalls    int
	TextCalls    int
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

func (f *fakeClient) Providers(ctx context.Context) ([]client.Provider, error) {
	return f.ProvidersRet, f.ProvidersErr
}

func (f *fakeClient) SignIn(ctx context.Context, email, password string) (*client.Session, error) {
	f.LastEmail, f.LastPassword = email, password
	return f.SignInRet, f.SignInErr
}

func (f *fakeClient) Session(ctx context.Context, token string) (*client.Session, error) {
	f.LastToken = token
	return f.SessionRet, f.SessionErr
}

func (f *fakeClient) SignOut(ctx context.Context, token string) error {
	f.LastToken = token
	f.SignOutCalls++
	return f.SignOutErr
}

func (f *fakeClient) SignInURL(provider string) string {
	return "http://server/api/auth/signin/" + provider
}

func (f *fakeClient) DescribeImage(ctx context.Context, token, filename string, data []byte) (string, error) {
	f.LastToken, f.LastFilename, f.LastData = token, filename, data
	return f.DescribeRet, f.ContentErr
}

func (f *fakeClient) Summarize(ctx context.Context, token, text string) (string, error) {
	f.LastToken, f.LastText = token, text
	f.TextCalls++
	return f.SummaryRet, f.ContentErr
}

func (f *fakeClient) SummarizeFile(ctx context.Context, token, filename string, data []byte) (string, error) {
	f.LastToken, f.LastFilename, f.LastData = token, filename, data
	f.FileCalls++
	return f.SummaryRet, f.ContentErr
}

func aliceSession() *client.Session {
	return &client.Session{
		Token:     "tok-1",
		ExpiresAt: time.Now().Add(time.Hour).UTC().Truncate(time.Second),
		User:      client.User{ID: "acc-1", Name: "Alice", Email: "alice@example.com"},
	}
}
