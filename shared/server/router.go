package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opaquechat/chat/shared/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type RouterOptions struct {
	// Namespace prefixes the HTTP metrics; empty disables /metrics.
	Namespace string
	Registry  *prometheus.Registry
	Checks    map[string]HealthCheck
}

// NewRouter returns a gin engine with the middleware chain every service
// shares, plus /health and, when a registry is given, /metrics.
func NewRouter(opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(),
		middleware.CORSMiddleware(),
	)

	if opts.Registry != nil && opts.Namespace != "" {
		metrics := middleware.NewMetrics(opts.Namespace, opts.Registry)
		r.Use(middleware.MetricsMiddleware(metrics))
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	r.GET("/health", healthHandler(opts.Checks))
	return r
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				health[name] = "unhealthy"
				health["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			health[name] = "healthy"
		}
		c.JSON(status, health)
	}
}
