package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"video-generation-service/internal/infra/logging"
	"video-generation-service/internal/infra/metrics"
	"video-generation-service/internal/usecase"
)

type Server struct {
	genUC usecase.GenerationUseCase
	log   *zerolog.Logger
}

func NewServer(genUC usecase.GenerationUseCase, logger *zerolog.Logger) *Server {
	return &Server{genUC: genUC, log: logger}
}

// Router builds the public HTTP surface.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware)

	r.Post("/api/v1/videos/generate", generateHandler(s.genUC, s.log))
	r.Get("/api/v1/videos/{id}/status", statusHandler(s.genUC))
	r.Get("/api/v1/videos/{id}/download", downloadHandler(s.genUC))
	r.Get("/api/v1/providers", providersHandler(s.genUC))

	r.Get("/health", healthHandler(s.genUC))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// traceMiddleware tags every request with a ULID trace id and emits the
// per-route request counter once the handler finished.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := ulid.Make().String()
		ctx := logging.WithTraceID(r.Context(), traceID)

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		route := chi.RouteContext(ctx).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		metrics.IncHTTPRequest(route, strconv.Itoa(rec.code))
		logging.With(ctx, s.log).Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("code", rec.code).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}
