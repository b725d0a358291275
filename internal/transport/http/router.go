package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"concord/internal/platform/metrics"
	"concord/internal/platform/middleware"
	registryhandler "concord/internal/registry/handler"
	"concord/internal/registry/service"
	"concord/internal/transport/http/shared"
)

// HealthChecker reports readiness of an optional dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps collects what the router needs. Business logic stays in the services;
// this layer only wires routes and platform middleware.
type Deps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Registry *service.Service
	Handler  *registryhandler.Handler
	// Optional: redis health for readiness reporting.
	Redis HealthChecker
}

// NewRouter wires all endpoints behind the platform middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", handleHealth(deps))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	deps.Handler.Register(r)
	return r
}

type healthResponse struct {
	Status string           `json:"status"`
	Roles  service.Snapshot `json:"roles"`
}

func handleHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		status := "ok"
		code := http.StatusOK
		if deps.Redis != nil {
			if err := deps.Redis.Health(ctx); err != nil {
				deps.Logger.WarnContext(ctx, "redis health check failed", "error", err)
				status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		shared.WriteJSON(w, code, healthResponse{
			Status: status,
			Roles:  deps.Registry.Snapshot(ctx),
		})
	}
}
