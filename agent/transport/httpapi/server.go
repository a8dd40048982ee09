package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	logx "github.com/tanpawarit/llm-honeypot-agents/pkg/logger"
)

const (
	serviceName    = "LLM Honeypot System"
	serviceVersion = "1.0.0"
)

type Config struct {
	Listen         string
	AllowedOrigins []string
}

// Server exposes the dispatcher and the threat analysis over HTTP.
type Server struct {
	config     Config
	dispatcher contractx.Dispatcher
	analyzer   contractx.Analyzer
	handlers   contractx.Lookup
	logger     zerolog.Logger
	server     *http.Server
	now        func() time.Time
}

func New(config Config, dispatcher contractx.Dispatcher, analyzer contractx.Analyzer, handlers contractx.Lookup) (*Server, error) {
	if dispatcher == nil || analyzer == nil || handlers == nil {
		return nil, errors.New("dispatcher, analyzer and handler registry are required")
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = []string{"*"}
	}
	return &Server{
		config:     config,
		dispatcher: dispatcher,
		analyzer:   analyzer,
		handlers:   handlers,
		logger:     logx.Component("httpapi"),
		now:        time.Now,
	}, nil
}

// Start serves until ctx ends, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.config.Listen,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info().Str("listen", s.config.Listen).Msg("http server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/", s.handleRoot)
	r.Get("/status", s.handleStatus)
	r.Post("/process", s.handleProcess)
	r.Post("/analyze", s.handleAnalyze)

	return r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}
