// Package server exposes the RFQ pipeline over HTTP: parsing, quote
// submission, industry configuration, health, and metrics.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gendra-backend/internal/common/config"
	"gendra-backend/internal/common/logger"
	"gendra-backend/internal/common/metrics"
	"gendra-backend/internal/notify"
	"gendra-backend/internal/pricing"
	"gendra-backend/internal/rfq/extract"
	"gendra-backend/internal/storage"
)

// Extractor runs the text-to-RFQ cascade.
type Extractor interface {
	Extract(ctx context.Context, input *extract.Input) (*extract.Result, error)
}

// QuoteResolver produces a quote for a request.
type QuoteResolver interface {
	Resolve(ctx context.Context, req pricing.QuoteRequest) pricing.QuoteResult
}

// DraftStore persists parsed drafts. Nil disables draft persistence.
type DraftStore interface {
	Save(ctx context.Context, draft storage.Draft) (storage.Draft, error)
	Get(ctx context.Context, draftID string) (storage.Draft, error)
	MarkReviewed(ctx context.Context, draftID string) error
}

// SubmissionStore persists confirmed quote submissions. Nil disables it.
type SubmissionStore interface {
	Save(ctx context.Context, sub storage.Submission) (storage.Submission, error)
}

// Notifier delivers quote confirmations. Nil disables notifications.
type Notifier interface {
	QuoteSubmitted(ctx context.Context, notification notify.QuoteNotification)
}

// Server is the HTTP front of the pipeline.
type Server struct {
	cfg         *config.Config
	logger      logger.Logger
	extractor   Extractor
	resolver    QuoteResolver
	drafts      DraftStore
	submissions SubmissionStore
	notifier    Notifier
	httpServer  *http.Server
	healthcheck func(ctx context.Context) error
}

// Deps bundles the collaborators the server routes requests to.
type Deps struct {
	Extractor   Extractor
	Resolver    QuoteResolver
	Drafts      DraftStore
	Submissions SubmissionStore
	Notifier    Notifier
	// Healthcheck reports readiness of backing stores. Nil means always healthy.
	Healthcheck func(ctx context.Context) error
}

func New(cfg *config.Config, log logger.Logger, deps Deps) *Server {
	s := &Server{
		cfg:         cfg,
		extractor:   deps.Extractor,
		resolver:    deps.Resolver,
		drafts:      deps.Drafts,
		submissions: deps.Submissions,
		notifier:    deps.Notifier,
		healthcheck: deps.Healthcheck,
		logger: log.WithFields(map[string]interface{}{
			"component": "http-server",
		}),
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      s.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}
	return s
}

// Router builds the chi route tree. Exposed for handler tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/parse", s.instrument("parse", s.handleParse))
		r.Post("/parse/upload", s.instrument("parse_upload", s.handleParseUpload))
		r.Post("/submit-quote", s.instrument("submit_quote", s.handleSubmitQuote))
		r.Get("/drafts/{draftID}", s.handleGetDraft)
		r.Post("/drafts/{draftID}/review", s.handleReviewDraft)
		r.Get("/industries", s.handleIndustries)
		r.Get("/quote-config/{industryID}", s.handleQuoteConfig)
	})

	return r
}

// instrument tracks in-flight requests per endpoint.
func (s *Server) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gauge := metrics.RequestsInFlight.WithLabelValues(endpoint)
		gauge.Inc()
		defer gauge.Dec()
		next(w, r)
	}
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.cfg.Server.Address,
	})
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
