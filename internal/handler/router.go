package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/grupo7/gestao-clientes-go/internal/infra/kv"
	"github.com/grupo7/gestao-clientes-go/internal/infra/observability"
	"github.com/grupo7/gestao-clientes-go/internal/service"
)

var tracer = otel.Tracer("handler")

// Services bundles everything the router wires up.
type Services struct {
	Auth       *service.AuthService
	Onboarding *service.OnboardingService
	Clients    *service.ClientsService
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, store kv.Store, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 🔐 Autenticação
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authRegisterHandler(svcs.Auth, logger))
			r.Post("/login", authLoginHandler(svcs.Auth, logger))

			r.Group(func(r chi.Router) {
				r.Use(JWTAuthMiddleware(svcs.Auth, logger))
				r.Post("/logout", authLogoutHandler(svcs.Auth, logger))
			})
		})

		// =============================================
		// 👥 Área autenticada
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			r.Get("/session", sessionHandler(svcs.Auth, logger))
			r.Get("/overview", overviewHandler(svcs.Clients, logger))

			r.Get("/clients", listClientsHandler(svcs.Clients, logger))
			r.Post("/clients", addClientHandler(svcs.Clients, logger))
			r.Delete("/clients/{clientId}", removeClientHandler(svcs.Clients, logger))

			r.Route("/onboarding", func(r chi.Router) {
				r.Get("/", getOnboardingHandler(svcs.Onboarding, logger))
				r.Post("/next", onboardingNextHandler(svcs.Onboarding, logger))
				r.Post("/back", onboardingBackHandler(svcs.Onboarding, logger))
				r.Post("/submit", onboardingSubmitHandler(svcs.Onboarding, logger))
			})
		})

		// =============================================
		// 📊 Métricas
		// =============================================
		r.Get("/metrics/storage", storageMetricsHandler(metrics))
	})

	return r
}

// ============================================================
// Health
// ============================================================

type serviceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

type healthStatus struct {
	Status   string          `json:"status"`
	Services []serviceHealth `json:"services"`
}

// healthzHandler probes the key-value substrate with a read of a key that
// never exists; a substrate error degrades the report.
func healthzHandler(store kv.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []serviceHealth{
			{Name: "gestao-clientes-api", Status: "healthy", LastChecked: now},
		}

		start := time.Now()
		_, _, err := store.Get(r.Context(), "healthz-probe")
		latency := time.Since(start).Milliseconds()
		status := "healthy"
		if err != nil {
			logger.Warn("healthz: storage probe failed", zap.Error(err))
			status = "degraded"
		}
		services = append(services, serviceHealth{
			Name: "storage", Status: status, LatencyMs: latency, LastChecked: now,
		})

		overall := "healthy"
		for _, s := range services {
			if s.Status == "degraded" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, healthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
