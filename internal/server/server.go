// Package server hosts the order and contact forms over HTTP together with
// the banner, catalog and OpenAPI endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-orderform/internal/config"
	"github.com/goliatone/go-orderform/pkg/catalog"
	"github.com/goliatone/go-orderform/pkg/engine"
	"github.com/goliatone/go-orderform/pkg/openapi"
	"github.com/goliatone/go-orderform/pkg/render"
	"github.com/goliatone/go-orderform/pkg/renderers/vanilla"
	"github.com/goliatone/go-orderform/pkg/submit"
)

const (
	defaultPerMinute = 30
	defaultBurst     = 5
	defaultGrace     = 5 * time.Second
)

// Submitter relays a validated form to the form backend.
type Submitter interface {
	Submit(ctx context.Context, form engine.Form) (submit.Result, error)
}

type Option func(*Server)

// WithLogger sets the request and lifecycle logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCatalog replaces the catalog named by the configuration.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(s *Server) {
		if cat != nil {
			s.catalog = cat
		}
	}
}

// WithRenderer replaces the HTML renderer.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithThemes replaces the theme selector.
func WithThemes(themes *vanilla.Themes) Option {
	return func(s *Server) {
		if themes != nil {
			s.themes = themes
		}
	}
}

// WithOrderSubmitter replaces the submitter built from submit.endpoint.
func WithOrderSubmitter(sub Submitter) Option {
	return func(s *Server) {
		if sub != nil {
			s.orders = sub
		}
	}
}

// WithContactSubmitter replaces the submitter built from contact.endpoint.
func WithContactSubmitter(sub Submitter) Option {
	return func(s *Server) {
		if sub != nil {
			s.contacts = sub
		}
	}
}

// WithHTTPClient sets the client the default submitters post with.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Server) {
		s.client = client
	}
}

type Server struct {
	cfg      config.Config
	logger   *zap.Logger
	catalog  *catalog.Catalog
	renderer render.Renderer
	themes   *vanilla.Themes
	orders   Submitter
	contacts Submitter
	client   *http.Client
	limiter  *limiterStore
	proxies  []netip.Prefix
	openapi  []byte
	handler  http.Handler
}

// New wires a server from cfg. Collaborators not supplied through options
// are built from the configuration.
func New(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.catalog == nil {
		cat, err := loadCatalog(cfg.Catalog.Path)
		if err != nil {
			return nil, err
		}
		s.catalog = cat
	}
	if s.renderer == nil {
		renderer, err := vanilla.New(vanilla.WithNavPath(pathOrder))
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.renderer = renderer
	}
	if s.themes == nil {
		themes, err := vanilla.NewThemes()
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.themes = themes
	}

	common := []submit.Option{
		submit.WithHTTPClient(s.client),
		submit.WithTimeout(cfg.Submit.Timeout),
		submit.WithLocation(cfg.Location()),
	}
	if s.orders == nil {
		s.orders = submit.New(cfg.Submit.Endpoint, append(common,
			submit.WithLogger(s.logger.Named("submit.order")),
			submit.WithOverlay(true),
		)...)
	}
	if s.contacts == nil {
		s.contacts = submit.New(cfg.Contact.Endpoint, append(common,
			submit.WithLogger(s.logger.Named("submit.contact")),
			submit.WithOverlay(false),
			submit.WithFailureMessage(submit.MessageContactFailure),
		)...)
	}

	doc, err := openapi.Build(s.catalog)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	if s.openapi, err = openapi.Marshal(doc); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	perMinute, burst := cfg.RateLimit.PerMinute, cfg.RateLimit.Burst
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	s.limiter = newLimiterStore(perMinute, burst)
	if s.proxies, err = cfg.RateLimit.Proxies(); err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.handler = s.routes()
	return s, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Builtin(), nil
	}
	cat, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	return cat, nil
}

// Handler returns the routed handler with logging and rate limiting applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Catalog returns the catalog the server resolves services from.
func (s *Server) Catalog() *catalog.Catalog {
	return s.catalog
}

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests for at most shutdown.grace.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	grace := s.cfg.Shutdown.Grace
	if grace <= 0 {
		grace = defaultGrace
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("server shutting down", zap.Duration("grace", grace))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// Run listens on cfg.Addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}
