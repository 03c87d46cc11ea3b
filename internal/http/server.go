// Package http exposes the finance records API over JSON.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/auth"
	"bilancio/internal/services"
)

type Server struct {
	http.Server
	service      *services.RecordService
	keys         auth.KeyValidator
	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Record creation is the only write endpoint; everything else is cheap
// enough to leave unthrottled.
const createRequestsPerMinute = 60

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. Data endpoints sit behind the API key gate; the home and
// status endpoints stay open.
func NewServer(addr string, svc *services.RecordService, keys auth.KeyValidator) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		service:     svc,
		keys:        keys,
		rateLimiter: newRateLimiter(createRequestsPerMinute),
	}

	mux.HandleFunc("GET /{$}", s.withRequestLog(s.handleHome))
	mux.HandleFunc("GET /api/status", s.withRequestLog(s.handleStatus))
	mux.HandleFunc("POST /api/expenses", s.withRequestLog(s.withAPIKey(s.handleCreateRecord)))
	mux.HandleFunc("GET /api/expenses/list", s.withRequestLog(s.withAPIKey(s.handleListRecords)))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.withRequestLog(s.withAPIKey(s.handleDeleteRecord)))
	mux.HandleFunc("GET /api/summary/months", s.withRequestLog(s.withAPIKey(s.handleMonthlySummary)))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withRequestLog adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withRequestLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limiting applies to record creation only.
		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			respondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

// withAPIKey rejects requests without a valid API key.
func (s *Server) withAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := auth.FromRequest(r)
		if key == "" {
			respondWithError(w, http.StatusUnauthorized, "API Key required")
			return
		}
		if !s.keys.ValidKey(key) {
			slog.WarnContext(r.Context(), "Rejected API key", "url", r.URL.Path, "client_ip", extractClientIP(r))
			respondWithError(w, http.StatusUnauthorized, "Invalid API Key")
			return
		}
		next(w, r)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
