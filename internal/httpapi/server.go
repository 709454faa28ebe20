package httpapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"inferd/internal/engine"
	"inferd/internal/gateway"
	"inferd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Generate(ctx context.Context, req types.GenerateRequest) (types.GenerateResponse, error)
	Status() types.StatusResponse
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Post("/generate", func(w http.ResponseWriter, r *http.Request) {
		handleGenerate(svc, w, r)
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(svc.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("not ready"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// handleGenerate decodes, runs the gateway pipeline, and maps the error
// taxonomy onto HTTP statuses. Client-caused failures are 4xx; engine and
// contract failures stay 5xx with the original message but no stack traces.
func handleGenerate(svc Service, w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Non-string prompt entries and oversize bodies both land here.
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	start := time.Now()
	lvl := requestLogLevel(r)
	if lvl >= LevelInfo {
		logGenerateStart(r, len(req.Prompts))
	}

	// Join server base context with request context so shutdown cancels work too.
	joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	resp, err := svc.Generate(joinedCtx, req)
	if err != nil {
		// Client disconnect or process shutdown: nothing useful to write.
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := statusForError(err)
		if status == http.StatusTooManyRequests {
			IncrementBackpressure("queue_full")
		}
		writeJSONError(w, status, err.Error())
		if lvl >= LevelInfo {
			logGenerateEnd(r, status, time.Since(start), err)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("generate: encode response: %v", err)
		return
	}
	if lvl >= LevelInfo {
		logGenerateEnd(r, http.StatusOK, time.Since(start), nil)
	}
}

// statusForError maps gateway/engine errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case gateway.IsValidation(err):
		return http.StatusBadRequest
	case gateway.IsQueueFull(err):
		return http.StatusTooManyRequests
	case gateway.IsNotAccepting(err), engine.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		if he, ok := err.(HTTPError); ok {
			return he.StatusCode()
		}
		// Engine execution and contract violations included.
		return http.StatusInternalServerError
	}
}
