package web

import (
	"net/http"
	"strings"
	"time"

	"fieldops-assignment/internal/infra/logging"
	"fieldops-assignment/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server exposes the job submission and batch status surface.
type Server struct {
	submitUC usecase.SubmitUseCase
	statusUC usecase.StatusUseCase
	apiToken string
	log      *zerolog.Logger
}

func NewServer(submitUC usecase.SubmitUseCase, statusUC usecase.StatusUseCase, apiToken string, logger *zerolog.Logger) *Server {
	compLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		submitUC: submitUC,
		statusUC: statusUC,
		apiToken: apiToken,
		log:      &compLog,
	}
}

// Router builds the chi routing tree. API routes sit behind the bearer guard.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware, s.requestLog)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/assignments", s.handleSubmitSingle)
		r.Post("/assignments/bulk", s.handleSubmitBulk)
		r.Post("/assignments/reassign", s.handleSubmitReassign)
		r.Get("/batches/{batchID}", s.handleBatchStatus)
		r.Post("/batches/{batchID}/cancel", s.handleCancelBatch)
	})
	return r
}

// authMiddleware provides simple Bearer token authentication.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiToken == "" {
			s.log.Error().Msg("API token is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			http.Error(w, "Unauthorized: Malformed token", http.StatusUnauthorized)
			return
		}

		if tokenParts[1] != s.apiToken {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithTraceID(r.Context(), uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := logging.With(r.Context(), s.log)
		start := time.Now()
		ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
