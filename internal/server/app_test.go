package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/insightdesk/internal/logging"
	"github.com/dmitrijs2005/insightdesk/internal/server/config"
	"github.com/dmitrijs2005/insightdesk/internal/server/repositories/repomanager"
)

func testConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.DatabaseDSN = "postgres://unused"
	c.SessionSecret = "test-secret"
	return c
}

func TestNewApp_InvalidConfig(t *testing.T) {
	_, err := NewApp(context.Background(), &config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session secret is required")
}

func TestNewApp_DBError(t *testing.T) {
	orig := openDB
	defer func() { openDB = orig }()
	openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
		return nil, errors.New("dial tcp: refused")
	}

	_, err := NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db init error")
}

type fakeManager struct {
	repomanager.RepositoryManager
	migrateErr error
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return m.migrateErr }

func TestNewApp_MigrationError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	origDB, origRM := openDB, newRepoManager
	defer func() { openDB, newRepoManager = origDB, origRM }()
	openDB = func(context.Context, string) (*sql.DB, error) { return db, nil }
	newRepoManager = func() repomanager.RepositoryManager { return &fakeManager{migrateErr: errors.New("dirty")} }

	_, err = NewApp(context.Background(), testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrations")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewApp_OK(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	origDB, origRM := openDB, newRepoManager
	defer func() { openDB, newRepoManager = origDB, origRM }()
	openDB = func(context.Context, string) (*sql.DB, error) { return db, nil }
	newRepoManager = func() repomanager.RepositoryManager { return &fakeManager{} }

	app, err := NewApp(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, ":8080", app.httpServer.Addr)
}

func TestBuildHandler_Routes(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c := testConfig()
	c.GitHubClientID, c.GitHubClientSecret = "id", "secret"

	h, err := buildHandler(context.Background(), c, db, repomanager.NewPostgresRepositoryManager(), logging.Discard())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/providers", nil))
	assert.Contains(t, rec.Body.String(), `"id":"github"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "go_goroutines")

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/summarize", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
