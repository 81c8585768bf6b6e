package internal

import (
	"context"
	"errors"
	"net/http"

	"laptop-request-catalog/internal/app"
	"laptop-request-catalog/internal/auth"
	"laptop-request-catalog/internal/config"
	"laptop-request-catalog/internal/datastore"
	"laptop-request-catalog/internal/handlers"
	"laptop-request-catalog/internal/view"
	"laptop-request-catalog/pkg/importer"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// adminRole is the key role admitted to the admin surface
const adminRole = "service_role"

// Options carries the server's dependencies.
type Options struct {
	Config *config.Config
	Client datastore.Client
	// ImportDB enables the admin catalog import together with
	// Config.AdminKeySecret. It is nil for the REST backend.
	ImportDB importer.DB
	Logger   zerolog.Logger
	Clock    clockwork.Clock
}

type Server struct {
	Router   *chi.Mux
	Client   datastore.Client
	Sessions *SessionRegistry
	Metrics  *Metrics

	cfg      *config.Config
	logger   zerolog.Logger
	clock    clockwork.Clock
	renderer *view.Renderer
	prices   view.PriceFormatter
	cookies  *sessions.CookieStore
	limiter  *ipRateLimiter
}

func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Client == nil {
		return nil, errors.New("data client is required")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	cfg := opts.Config

	renderer, err := view.NewRenderer()
	if err != nil {
		return nil, err
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		// Sessions do not survive a restart without a configured secret.
		secret = securecookie.GenerateRandomKey(32)
		if secret == nil {
			return nil, errors.New("failed to generate session secret")
		}
	}
	cookies := sessions.NewCookieStore(secret)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionIdleTimeout.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}

	metrics := NewMetrics()

	s := &Server{
		Router:   chi.NewRouter(),
		Client:   opts.Client,
		Metrics:  metrics,
		cfg:      cfg,
		logger:   opts.Logger,
		clock:    opts.Clock,
		renderer: renderer,
		prices:   view.DefaultPrices(),
		cookies:  cookies,
		limiter:  newIPRateLimiter(opts.Clock, cfg.SubmitRatePerSecond, cfg.SubmitBurst),
	}
	s.Sessions = NewSessionRegistry(opts.Clock, cfg.SessionIdleTimeout, s.newController)
	metrics.TrackSessions(s.Sessions.Len)

	s.Router.Use(middleware.RealIP)
	s.Router.Use(requestLogger(opts.Logger)...)
	s.Router.Use(middleware.Recoverer)
	if cfg.EnableMetrics {
		s.Router.Use(s.Metrics.Middleware())
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	// Stateless JSON surface
	s.Router.Get("/api/laptops", s.listLaptops)
	s.Router.With(s.limiter.Middleware).Post("/api/requests", s.createRequest)

	// Browser routes, one controller per session
	s.Router.Group(func(r chi.Router) {
		r.Use(s.withSession)
		s.mountSessionRoutes(r)
	})

	if err := s.mountAdmin(opts.ImportDB); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Server) newController() *app.Controller {
	return app.NewController(s.Client, app.Options{
		Clock:    s.clock,
		Observer: s.Metrics,
		Logger:   s.logger,
	})
}

// mountSessionRoutes mounts the routes that act on the session controller
func (s *Server) mountSessionRoutes(r chi.Router) {
	r.Get("/", s.showCatalog)
	r.Post("/laptops/{id}/select", s.selectLaptop)
	r.Post("/request/close", s.closeRequest)
	r.With(s.limiter.Middleware).Post("/request", s.submitRequest)
	r.Get("/api/session", s.sessionState)
}

// mountAdmin mounts the catalog import when both a database and an admin
// signing secret are configured
func (s *Server) mountAdmin(db importer.DB) error {
	if db == nil || !s.cfg.AdminEnabled() {
		return nil
	}
	signer := auth.NewKeySigner(s.cfg.AdminKeySecret, s.cfg.AdminKeyIssuer)
	if err := signer.ValidateConfig(); err != nil {
		return err
	}

	imports := handlers.NewImportsHandler(db, s.cfg.LaptopTable, s.cfg.ImportMappingPath)
	s.Router.With(auth.RequireRole(signer, adminRole)).Post("/admin/imports/catalog", imports.UploadExcel)
	s.logger.Info().Msg("Catalog import endpoint enabled")
	return nil
}

// Run sweeps idle sessions until ctx is done
func (s *Server) Run(ctx context.Context) {
	s.Sessions.Run(ctx)
}

// Close stops every session's pending timers
func (s *Server) Close() {
	s.Sessions.Close()
}
