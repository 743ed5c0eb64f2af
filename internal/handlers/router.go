package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/detective-engine/internal/logger"
	"github.com/jwebster45206/detective-engine/internal/metrics"
	"github.com/jwebster45206/detective-engine/pkg/storage"
)

type RouterConfig struct {
	Storage   storage.Storage
	Publisher Publisher
	// EventsClient enables the SSE endpoint when set.
	EventsClient *redis.Client
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// NewRouter wires every API route.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}

	health := NewHealthHandler(cfg.Storage, cfg.Logger)
	cases := NewCaseHandler(cfg.Storage, cfg.Logger)
	games := NewGameHandler(cfg.Storage, cfg.Publisher, cfg.Metrics, cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(cfg.Logger, cfg.Metrics))

	r.Method(http.MethodGet, "/health", health)
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/cases", cases.List)
		r.Get("/cases/{caseID}", cases.Get)

		r.Post("/games", games.Create)
		r.Route("/games/{gameID}", func(r chi.Router) {
			r.Get("/", games.Get)
			r.Delete("/", games.Delete)
			r.Post("/actions", games.Dispatch)
			r.Get("/actions", games.History)
			r.Get("/notifications", games.Notifications)
			r.Get("/scores", games.Scores)
			if cfg.EventsClient != nil {
				r.Method(http.MethodGet, "/events", NewEventsHandler(cfg.EventsClient, cfg.Logger))
			}
		})
	})

	return r
}

// requestLogger logs each request and records its latency by route pattern.
func requestLogger(log *slog.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)
			m.ObserveRequest(route, r.Method, status, elapsed)

			logger.WithRequestID(log, middleware.GetReqID(r.Context())).Debug("Request handled",
				"method", r.Method,
				"route", route,
				"status", status,
				"duration_ms", elapsed.Milliseconds())
		})
	}
}
