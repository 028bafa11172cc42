// Package httptransport wires the module handlers into one chi router.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	analyticshandler "riskguard/internal/analytics/handler"
	assessmenthandler "riskguard/internal/assessment/handler"
	audithandler "riskguard/internal/audit/handler"
	customerhandler "riskguard/internal/customer/handler"
	policyhandler "riskguard/internal/policy/handler"
	premiumhandler "riskguard/internal/premium/handler"
	underwritinghandler "riskguard/internal/underwriting/handler"
	"riskguard/pkg/platform/httputil"
)

// HealthChecker reports readiness of a backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers groups the per-module handlers mounted under /api.
type Handlers struct {
	Customer     *customerhandler.Handler
	Assessment   *assessmenthandler.Handler
	Underwriting *underwritinghandler.Handler
	Policy       *policyhandler.Handler
	Premium      *premiumhandler.Handler
	Audit        *audithandler.Handler
	Analytics    *analyticshandler.Handler
}

// NewRouter assembles the full HTTP surface: /api business routes, /healthz
// and the prometheus /metrics endpoint.
func NewRouter(logger *slog.Logger, handlers Handlers, health ...HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(Recovery(logger))
	r.Use(RequestContext)
	r.Use(RequestLogger(logger))

	r.Route("/api", func(r chi.Router) {
		handlers.Customer.Register(r)
		handlers.Assessment.Register(r)
		handlers.Underwriting.Register(r)
		handlers.Policy.Register(r)
		handlers.Premium.Register(r)
		handlers.Audit.Register(r)
		handlers.Analytics.Register(r)
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		for _, check := range health {
			if check == nil {
				continue
			}
			if err := check.Health(req.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "degraded",
					"error":  err.Error(),
				})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}
