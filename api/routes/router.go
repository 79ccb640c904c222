package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/simpos-backend/api/controllers"
	salescontrollers "github.com/angelmondragon/simpos-backend/api/controllers/sales"
	"github.com/angelmondragon/simpos-backend/api/middleware"
	"github.com/angelmondragon/simpos-backend/internal/audit"
	"github.com/angelmondragon/simpos-backend/internal/inventory"
	"github.com/angelmondragon/simpos-backend/internal/sales"
	"github.com/angelmondragon/simpos-backend/pkg/config"
	"github.com/angelmondragon/simpos-backend/pkg/logger"
	"github.com/angelmondragon/simpos-backend/pkg/redis"
)

// Dependencies groups everything the router hands to controllers. Redis
// backed collaborators may be nil, which disables idempotency replay and
// throttling.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency redis.IdempotencyStore
	RateLimiter redis.RateLimiter
	Gatherer    prometheus.Gatherer

	Sales sales.Service
	Stock inventory.Store
	Audit audit.Service
}

// NewRouter mounts health, metrics and the cashier API. Sale mutations run
// behind the rate limit and idempotency middleware.
func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	mutation := chi.Chain(
		middleware.RateLimit(middleware.MutationPolicy(cfg.RateLimit), deps.RateLimiter, logg),
		middleware.Idempotency(deps.Idempotency, logg),
	)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity(logg))
		r.Use(middleware.RequireUser(logg))

		r.With(mutation...).Post("/api/v1/sales", salescontrollers.Create(deps.Sales, logg))
		r.Get("/api/v1/sales/{saleId}", salescontrollers.Detail(deps.Sales, logg))
		r.With(mutation...).Post("/api/v1/sales/{saleId}/cancel", salescontrollers.Cancel(deps.Sales, logg))
		r.With(mutation...).Post("/api/v1/sales/{saleId}/refund", salescontrollers.Refund(deps.Sales, logg))

		r.Get("/api/v1/stock/{stockId}", controllers.StockDetail(deps.Stock, logg))
		r.Get("/api/v1/audit", controllers.AuditList(deps.Audit, logg))
	})

	return r
}
