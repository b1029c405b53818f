// Package server wires the InsightDesk HTTP server: storage, sign-in
// services, model backends and the HTTP API, with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/insightdesk/internal/logging"
	"github.com/dmitrijs2005/insightdesk/internal/netx"
	"github.com/dmitrijs2005/insightdesk/internal/server/archive"
	"github.com/dmitrijs2005/insightdesk/internal/server/auth"
	"github.com/dmitrijs2005/insightdesk/internal/server/config"
	"github.com/dmitrijs2005/insightdesk/internal/server/extract"
	"github.com/dmitrijs2005/insightdesk/internal/server/httpapi"
	"github.com/dmitrijs2005/insightdesk/internal/server/inference"
	"github.com/dmitrijs2005/insightdesk/internal/server/oauth"
	"github.com/dmitrijs2005/insightdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/insightdesk/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *http.Server
}

// seams for tests
var (
	openDB         = repomanager.OpenDB
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	handler, err := buildHandler(ctx, c, db, rm, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		config: c,
		logger: logger,
		db:     db,
		httpServer: &http.Server{
			Addr:              c.HTTPAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

func buildHandler(ctx context.Context, c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (http.Handler, error) {
	if c.DemoAccountEnabled {
		logger.Warn(ctx, "demo account is enabled; do not run like this in production", "email", services.DemoEmail)
	}

	verifier, err := services.NewCredentialVerifier(db, rm, c.DemoAccountEnabled)
	if err != nil {
		return nil, err
	}
	acceptor := services.NewFederatedAcceptor(db, rm)

	issuer, err := auth.NewSessionIssuer([]byte(c.SessionSecret), c.SessionTTL)
	if err != nil {
		return nil, err
	}

	upstream := &http.Client{Timeout: c.UpstreamTimeout}
	providers := oauth.NewRegistry(oauth.FromConfig(c, oauth.WithHTTPClient(upstream))...)
	gateway := services.NewAuthGateway(verifier, acceptor, issuer, providers, logger.With("module", "gateway"))

	gemini := inference.NewGeminiClient(c.GeminiBaseURL, c.GeminiAPIKey, c.GeminiModel, c.UpstreamTimeout)
	var describer services.ImageDescriber = gemini
	if c.CaptionEndpoint != "" {
		describer = inference.NewCaptionClient(c.CaptionEndpoint, c.UpstreamTimeout)
	}

	var archiver archive.Archiver = archive.Nop{}
	if c.ArchiveEnabled() {
		s3a, err := archive.NewS3(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("archive: %w", err)
		}
		archiver = s3a
	}

	relay := services.NewRelayService(
		describer,
		gemini,
		netx.NewFetcher(upstream, c.URLFetchLimit),
		extract.NewPDF(),
		archiver,
		logger.With("module", "relay"),
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := httpapi.NewMetrics(registry)
	gateway.OnFinish(metrics.ObserveSignin)

	api := httpapi.New(httpapi.Options{
		Gateway:        gateway,
		Sessions:       issuer,
		Relay:          relay,
		Logger:         logger.With("module", "http"),
		Registry:       registry,
		Metrics:        metrics,
		StateStore:     httpapi.NewStateStore([]byte(c.SessionSecret), c.CookieSecure),
		CookieSecure:   c.CookieSecure,
		AllowedOrigins: c.AllowedOrigins,
		MaxUploadBytes: c.MaxUploadBytes,
		RequestTimeout: c.UpstreamTimeout + 10*time.Second,
	})

	return api.Routes(), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "Starting HTTP server", "address", app.config.HTTPAddr)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	app.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
	defer cancel()
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "shutdown", "error", err)
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "close db", "error", err)
	}

	return runErr
}
