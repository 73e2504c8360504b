package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"snap-partner-gateway/internal/config"
	"snap-partner-gateway/internal/domain/ports/adapter"
	"snap-partner-gateway/internal/infra/logging"
	"snap-partner-gateway/internal/usecase"
)

const maxWebhookBytes = 1 << 20

// Server hosts the inbound surface: the partner webhook endpoint, health
// and metrics, and the JWT-guarded ops endpoints.
type Server struct {
	cfg    *config.Config
	uc     usecase.WebhookUseCase
	tokens adapter.TokenSource
	auth   *AuthManager
	log    *zerolog.Logger
	server *http.Server
}

func NewServer(cfg *config.Config, uc usecase.WebhookUseCase, tokens adapter.TokenSource, auth *AuthManager, logger *zerolog.Logger) *Server {
	return &Server{
		cfg:    cfg,
		uc:     uc,
		tokens: tokens,
		auth:   auth,
		log:    logger,
	}
}

// Router builds the chi handler tree. Exposed separately from Start for
// tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.traceID)
	r.Use(s.requestLog)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post(s.cfg.Server.WebhookPath, s.handleWebhook)

	r.Route("/ops", func(r chi.Router) {
		r.Post("/login", s.handleOpsLogin)
		r.Group(func(r chi.Router) {
			r.Use(s.auth.Require)
			r.Get("/session", s.handleSessionState)
			r.Post("/session/refresh", s.handleSessionRefresh)
		})
	})
	return r
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Server.Port).Str("webhook_path", s.cfg.Server.WebhookPath).Msg("http server listening")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// ===== middleware =====

func (s *Server) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logging.With(r.Context(), s.log)
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http_request")
	})
}
