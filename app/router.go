package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/kart-bot/pkg/httpx"
	"github.com/Black-And-White-Club/kart-bot/pkg/observability/attr"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Module defines the interface for modules that serve HTTP routes.
type Module interface {
	Routes(r chi.Router, writeMiddlewares ...func(next http.Handler) http.Handler)
}

// RouterConfig collects what the HTTP router is built from.
type RouterConfig struct {
	Logger      *slog.Logger
	CORSOrigins []string
	// RateLimiter guards mutating routes. Nil disables limiting.
	RateLimiter *httpx.IPRateLimiter
	Health      func(ctx context.Context) error
	// Metrics is served on /metrics when set.
	Metrics http.Handler
	Modules []Module
}

// NewRouter mounts every module under /api.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(correlationID)
	r.Use(requestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(req.Context()); err != nil {
				cfg.Logger.WarnContext(req.Context(), "Health check failed", attr.Error(err))
				httpx.WriteError(w, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	var writeMiddlewares []func(http.Handler) http.Handler
	if cfg.RateLimiter != nil {
		writeMiddlewares = append(writeMiddlewares, httpx.RateLimitMiddleware(cfg.RateLimiter))
	}

	r.Route("/api", func(r chi.Router) {
		for _, m := range cfg.Modules {
			m.Routes(r, writeMiddlewares...)
		}
	})
	return r
}

// correlationID carries the request id into service logs and published events.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			r = r.WithContext(attr.WithCorrelationID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			logger.DebugContext(r.Context(), "HTTP request",
				attr.String("method", r.Method),
				attr.String("path", r.URL.Path),
				attr.Int("status", ww.Status()),
				attr.Int("bytes", ww.BytesWritten()),
				attr.Duration("duration", time.Since(start)),
				attr.ExtractCorrelationID(r.Context()),
			)
		})
	}
}
