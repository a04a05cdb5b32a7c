// Package server provides the HTTP JSON API for the hiring bias game.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/hiring-bias-game/internal/advisor"
	"github.com/jonathan/hiring-bias-game/internal/game"
	"github.com/jonathan/hiring-bias-game/internal/server/middleware"
	"github.com/jonathan/hiring-bias-game/internal/server/ratelimit"
	"github.com/jonathan/hiring-bias-game/internal/store"
)

const (
	maxBodyBytes    = 1 << 20
	healthTimeout   = 2 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	repo        *store.Repository
	advisor     *advisor.Advisor
	game        *game.Service
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter
}

// Config holds server configuration and collaborators.
type Config struct {
	Port        int
	ServiceName string
	Repository  *store.Repository
	Advisor     *advisor.Advisor
	Game        *game.Service
	Logger      *zap.Logger
	// RateLimit nil means the limiter defaults.
	RateLimit *ratelimit.Config
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Repository == nil || cfg.Advisor == nil || cfg.Game == nil {
		return nil, fmt.Errorf("server requires a repository, an advisor and a game service")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "biasgame"
	}

	s := &Server{
		repo:        cfg.Repository,
		advisor:     cfg.Advisor,
		game:        cfg.Game,
		logger:      cfg.Logger,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Sessions and decisions
	mux.HandleFunc("POST /api/game/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/game/sessions/{sessionId}", s.handleGetSession)
	mux.HandleFunc("POST /api/game/sessions/{sessionId}/complete", s.handleCompleteSession)
	mux.HandleFunc("POST /api/candidates", s.handleCreateCandidate)
	mux.HandleFunc("POST /api/game/decision", s.handleCreateDecision)
	mux.HandleFunc("GET /api/game/decisions/{sessionId}", s.handleListDecisions)

	// Provider-backed generation
	mux.HandleFunc("POST /api/openai/candidate-response", s.handleCandidateResponse)
	mux.HandleFunc("POST /api/openai/bias-analysis", s.handleBiasAnalysis)
	mux.HandleFunc("POST /api/openai/bias-reflection", s.handleBiasReflection)
	mux.HandleFunc("POST /api/openai/bias-flashcard", s.handleBiasFlashcard)
	mux.HandleFunc("POST /api/openai/generate-candidate", s.handleGenerateCandidate)

	// Round flow
	mux.HandleFunc("POST /api/game/start", s.handleStartGame)
	mux.HandleFunc("GET /api/game/sessions/{sessionId}/round", s.handleCurrentRound)
	mux.HandleFunc("POST /api/game/sessions/{sessionId}/select", s.handleSelect)
	mux.HandleFunc("POST /api/game/sessions/{sessionId}/reflect", s.handleReflect)
	mux.HandleFunc("GET /api/game/sessions/{sessionId}/dashboard", s.handleDashboard)
	mux.HandleFunc("POST /api/game/sessions/{sessionId}/dashboard", s.handleShowDashboard)
	mux.HandleFunc("POST /api/game/sessions/{sessionId}/continue", s.handleContinue)
	mux.HandleFunc("POST /api/game/sessions/{sessionId}/reset", s.handleReset)
	mux.HandleFunc("POST /api/game/sessions/{sessionId}/what-if", s.handleWhatIf)

	var handler http.Handler = mux
	handler = s.withCORS(handler)
	handler = middleware.Recover(s.logger)(handler)
	handler = middleware.Trace(cfg.ServiceName)(handler)
	handler = s.withLogging(handler)
	handler = s.withRateLimit(handler)
	handler = middleware.RequestID(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // round generation fans out to the provider
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close releases background resources without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := middleware.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)

		requestID, _ := middleware.GetRequestID(r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote_addr", r.RemoteAddr),
			zap.String("request_id", requestID))
	})
}

// handleHealth reports liveness and store reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Warn("health check: store unreachable", zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok", "store": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and body. Internal errors are logged and carry their text in details.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)

	var validation *ErrValidation
	switch {
	case errors.As(err, &validation):
		s.jsonResponse(w, status, map[string]any{"error": validation.Message, "details": validation.Details})
	case status == http.StatusInternalServerError:
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		s.jsonResponse(w, status, map[string]string{"error": "internal server error", "details": err.Error()})
	default:
		s.errorResponse(w, status, err.Error())
	}
}

// decodeJSON reads a JSON body into dst. An empty body leaves dst untouched when allowEmpty is set.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return &ErrValidation{Message: "invalid request body: " + err.Error(), Details: map[string]string{}}
	}
	return nil
}

// extractClientID returns the client IP from RemoteAddr.
// X-Forwarded-For is ignored because no trusted proxy list is configured.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds())
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
