// Package httpapi exposes the auth gateway and the content relay over HTTP.
package httpapi

import (
	"context"
	"crypto/sha256"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/hkdf"

	"github.com/dmitrijs2005/insightdesk/internal/logging"
	"github.com/dmitrijs2005/insightdesk/internal/server/models"
	"github.com/dmitrijs2005/insightdesk/internal/server/services"
)

// Gateway is the sign-in surface the handlers need.
type Gateway interface {
	Providers() []services.ProviderInfo
	SignInWithCredentials(ctx context.Context, email, password string) (*services.Result, error)
	BeginFederated(providerID, state string) (string, error)
	CompleteFederated(ctx context.Context, providerID, code string) (*services.Result, error)
}

// SessionVerifier checks session tokens.
type SessionVerifier interface {
	Verify(token string) (*models.Account, error)
	ExpiresAt(token string) (time.Time, error)
}

// Relayer forwards content to the model backends.
type Relayer interface {
	Relay(ctx context.Context, req services.RelayRequest) (string, error)
}

type Options struct {
	Gateway  Gateway
	Sessions SessionVerifier
	Relay    Relayer
	Logger   logging.Logger

	// Registry receives the HTTP collectors and is served on /metrics.
	Registry *prometheus.Registry
	Metrics  *Metrics

	// StateStore keeps the OAuth state between redirect and callback.
	StateStore sessions.Store

	CookieSecure   bool
	AllowedOrigins []string
	MaxUploadBytes int64
	RequestTimeout time.Duration
}

type Server struct {
	gateway    Gateway
	sessions   SessionVerifier
	relay      Relayer
	logger     logging.Logger
	registry   *prometheus.Registry
	metrics    *Metrics
	stateStore sessions.Store
	validate   *validator.Validate

	cookieSecure   bool
	allowedOrigins []string
	maxUpload      int64
	requestTimeout time.Duration
}

func New(opts Options) *Server {
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(opts.Registry)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Server{
		gateway:        opts.Gateway,
		sessions:       opts.Sessions,
		relay:          opts.Relay,
		logger:         opts.Logger,
		registry:       opts.Registry,
		metrics:        opts.Metrics,
		stateStore:     opts.StateStore,
		validate:       validator.New(),
		cookieSecure:   opts.CookieSecure,
		allowedOrigins: opts.AllowedOrigins,
		maxUpload:      opts.MaxUploadBytes,
		requestTimeout: opts.RequestTimeout,
	}
}

// NewStateStore returns the cookie store used for OAuth state. Its
// signing and encryption keys are derived from the session secret, so a
// state cookie and a session token never share a key.
func NewStateStore(sessionSecret []byte, secure bool) sessions.Store {
	store := sessions.NewCookieStore(stateKeys(sessionSecret))
	store.Options = &sessions.Options{
		Path:     "/api/auth",
		MaxAge:   stateMaxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func stateKeys(secret []byte) (hashKey, blockKey []byte) {
	return deriveKey(secret, "insightdesk oauth state hash"), deriveKey(secret, "insightdesk oauth state block")
}

func deriveKey(secret []byte, label string) []byte {
	key := make([]byte, 32)
	// hkdf only fails after 255 blocks of output
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(label)), key); err != nil {
		panic(err)
	}
	return key
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(Logging(s.logger))
	r.Use(s.metrics.Middleware)
	r.Use(chimiddleware.Recoverer)
	if len(s.allowedOrigins) > 0 {
		r.Use(CORS(s.allowedOrigins))
	}
	if s.requestTimeout > 0 {
		r.Use(chimiddleware.Timeout(s.requestTimeout))
	}

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/providers", s.providers)
		r.Post("/signin", s.signIn)
		r.Get("/signin/{provider}", s.beginFederated)
		r.Get("/callback/{provider}", s.callback)
		r.Post("/signout", s.signOut)
		r.With(s.RequireSession).Get("/session", s.session)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.RequireSession)
		r.Post("/api/image-analysis", s.imageAnalysis)
		r.Post("/api/summarize", s.summarize)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
