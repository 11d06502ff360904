package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/coffeepos-backend/api/controllers"
	"github.com/angelmondragon/coffeepos-backend/api/middleware"
	"github.com/angelmondragon/coffeepos-backend/internal/assembly"
	"github.com/angelmondragon/coffeepos-backend/internal/auth"
	"github.com/angelmondragon/coffeepos-backend/internal/bugreports"
	"github.com/angelmondragon/coffeepos-backend/internal/catalog"
	"github.com/angelmondragon/coffeepos-backend/internal/orders"
	"github.com/angelmondragon/coffeepos-backend/internal/reports"
	"github.com/angelmondragon/coffeepos-backend/pkg/auth/session"
	"github.com/angelmondragon/coffeepos-backend/pkg/config"
	"github.com/angelmondragon/coffeepos-backend/pkg/enums"
	"github.com/angelmondragon/coffeepos-backend/pkg/logger"
	"github.com/angelmondragon/coffeepos-backend/pkg/metrics"
	"github.com/angelmondragon/coffeepos-backend/pkg/redis"
)

// Dependencies is everything the HTTP surface is built from. Gatherer serves
// /metrics; a nil Gatherer falls back to the default registry.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Auth       auth.Service
	Catalog    catalog.Service
	Assembly   assembly.Service
	Orders     orders.Service
	Reports    reports.Service
	BugReports bugreports.Service
}

// NewRouter wires every route. Endpoints sit in groups rather than mounted
// sub-routers so that middleware keyed on the route pattern sees the full
// pattern.
func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.Recoverer(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginStaffLimit,
	)

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
		Post("/api/v1/auth/login", controllers.AuthLogin(deps.Auth, logg))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Post("/api/v1/auth/logout", controllers.AuthLogout(deps.Auth, logg))

		r.Get("/api/v1/catalog/categories", controllers.CatalogListCategories(deps.Catalog, logg))
		r.Get("/api/v1/catalog/categories/{categoryId}", controllers.CatalogGetCategory(deps.Catalog, logg))
		r.Get("/api/v1/catalog/categories/{categoryId}/items", controllers.CatalogListItems(deps.Catalog, logg))
		r.Get("/api/v1/catalog/items/{itemId}", controllers.CatalogGetItem(deps.Catalog, logg))
		r.Get("/api/v1/catalog/items/{itemId}/prices", controllers.CatalogListPrices(deps.Catalog, logg))
		r.Get("/api/v1/catalog/prices/{priceId}", controllers.CatalogGetPrice(deps.Catalog, logg))

		r.Get("/api/v1/assembly", controllers.AssemblyView(deps.Assembly, logg))
		r.Delete("/api/v1/assembly", controllers.AssemblyCancel(deps.Assembly, logg))
		r.Post("/api/v1/assembly/start", controllers.AssemblyStart(deps.Assembly, logg))
		r.Post("/api/v1/assembly/lines", controllers.AssemblyAddLine(deps.Assembly, logg))
		r.Delete("/api/v1/assembly/lines/{index}", controllers.AssemblyRemoveLine(deps.Assembly, logg))
		r.Post("/api/v1/assembly/commit", controllers.AssemblyCommit(deps.Assembly, logg))

		r.Get("/api/v1/orders", controllers.OrdersList(deps.Orders, logg))
		r.Get("/api/v1/orders/{orderId}", controllers.OrdersDetail(deps.Orders, logg))
		r.Post("/api/v1/orders/{orderId}/complete", controllers.OrdersComplete(deps.Orders, logg))
		r.Delete("/api/v1/orders/{orderId}/items/{lineId}", controllers.OrdersRemoveLine(deps.Orders, logg))

		r.Post("/api/v1/bug-reports", controllers.BugReportSubmit(deps.BugReports, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.StaffRoleAdmin))

			r.Post("/api/v1/catalog/categories", controllers.CatalogCreateCategory(deps.Catalog, logg))
			r.Patch("/api/v1/catalog/categories/{categoryId}", controllers.CatalogUpdateCategory(deps.Catalog, logg))
			r.Delete("/api/v1/catalog/categories/{categoryId}", controllers.CatalogDeleteCategory(deps.Catalog, logg))
			r.Post("/api/v1/catalog/categories/{categoryId}/items", controllers.CatalogCreateItem(deps.Catalog, logg))
			r.Patch("/api/v1/catalog/items/{itemId}", controllers.CatalogUpdateItem(deps.Catalog, logg))
			r.Delete("/api/v1/catalog/items/{itemId}", controllers.CatalogDeleteItem(deps.Catalog, logg))
			r.Post("/api/v1/catalog/items/{itemId}/prices", controllers.CatalogCreatePrice(deps.Catalog, logg))
			r.Patch("/api/v1/catalog/prices/{priceId}", controllers.CatalogUpdatePrice(deps.Catalog, logg))
			r.Delete("/api/v1/catalog/prices/{priceId}", controllers.CatalogDeletePrice(deps.Catalog, logg))

			r.Post("/api/v1/orders/{orderId}/recompute", controllers.OrdersRecompute(deps.Orders, logg))
			r.Delete("/api/v1/orders/{orderId}", controllers.OrdersDelete(deps.Orders, logg))

			r.Get("/api/v1/reports/sales", controllers.ReportsSales(deps.Reports, logg))
			r.Get("/api/v1/reports/items", controllers.ReportsItems(deps.Reports, logg))
		})
	})

	return r
}
