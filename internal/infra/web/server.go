package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gamenews-web-memory/internal/infra/logging"
	"gamenews-web-memory/internal/usecase"
)

type Server struct {
	queueUC usecase.QueueUseCase
	enabled bool
	log     *zerolog.Logger
}

func NewServer(queueUC usecase.QueueUseCase, pipelineEnabled bool, logger *zerolog.Logger) *Server {
	srvLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		queueUC: queueUC,
		enabled: pipelineEnabled,
		log:     &srvLog,
	}
}

// Router builds the HTTP surface: the event trigger at the root, health and
// metrics probes, and the operator API for job status.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.traceMiddleware)

	r.Post("/", eventHandler(s.queueUC, s.enabled, s.log))
	r.Get("/health", healthHandler())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/api/v1/jobs/{postID}", jobStatusHandler(s.queueUC, s.log))

	return r
}

// traceMiddleware stamps every request with a trace id and logs it on the
// way out with latency.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-Id")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		ctx := logging.WithTraceID(r.Context(), traceID)
		w.Header().Set("X-Trace-Id", traceID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.log.Debug().
			Str("trace_id", traceID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("latency", time.Since(start)).
			Msg("http request")
	})
}
