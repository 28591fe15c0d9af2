package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dinesync/backend/api/controllers"
	"github.com/dinesync/backend/api/middleware"
	"github.com/dinesync/backend/internal/analytics"
	"github.com/dinesync/backend/internal/auth"
	"github.com/dinesync/backend/internal/inventory"
	"github.com/dinesync/backend/internal/menu"
	"github.com/dinesync/backend/internal/orders"
	"github.com/dinesync/backend/internal/realtime"
	"github.com/dinesync/backend/internal/roles"
	"github.com/dinesync/backend/internal/settings"
	"github.com/dinesync/backend/pkg/auth/session"
	"github.com/dinesync/backend/pkg/config"
	"github.com/dinesync/backend/pkg/enums"
	"github.com/dinesync/backend/pkg/logger"
	"github.com/dinesync/backend/pkg/redis"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Registry prometheus.Gatherer

	AuthService      auth.Service
	OrdersService    orders.Service
	MenuService      menu.Service
	InventoryService inventory.Service
	AnalyticsService analytics.Service
	SettingsService  settings.Service
	RolesService     roles.Service
	Relay            *realtime.Relay
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.DB, d.Redis, logg))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, d.Redis, logg)).Post("/register", controllers.AuthRegister(d.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(d.AuthService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.AuthService, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequirePermission(enums.PermissionOrders, d.RolesService, logg))
			if d.Relay != nil {
				r.Method(http.MethodGet, "/realtime", d.Relay)
			}
			r.Post("/", controllers.OrdersCheckout(d.OrdersService, logg))
			r.Get("/", controllers.OrdersList(d.OrdersService, logg))
			r.Get("/{id}", controllers.OrdersDetail(d.OrdersService, logg))
			r.Delete("/{id}", controllers.OrdersDelete(d.OrdersService, logg))
			r.Patch("/{id}/status", controllers.OrdersUpdateStatus(d.OrdersService, logg))
			r.Patch("/{id}/payment", controllers.OrdersUpdatePayment(d.OrdersService, logg))
			r.Post("/{id}/cancel", controllers.OrdersCancel(d.OrdersService, logg))
			r.Patch("/{id}/items/{itemID}/status", controllers.OrdersUpdateItemStatus(d.OrdersService, logg))
			r.Post("/{id}/items/{itemID}/complete-unit", controllers.OrdersCompleteItemUnit(d.OrdersService, logg))
		})

		r.Route("/menu", func(r chi.Router) {
			r.Use(middleware.RequirePermission(enums.PermissionMenu, d.RolesService, logg))
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", controllers.MenuCategoriesList(d.MenuService, logg))
				r.Post("/", controllers.MenuCategoriesCreate(d.MenuService, logg))
				r.Patch("/{id}", controllers.MenuCategoriesUpdate(d.MenuService, logg))
				r.Delete("/{id}", controllers.MenuCategoriesDelete(d.MenuService, logg))
			})
			r.Route("/items", func(r chi.Router) {
				r.Get("/", controllers.MenuItemsList(d.MenuService, logg))
				r.Post("/", controllers.MenuItemsCreate(d.MenuService, logg))
				r.Get("/{id}", controllers.MenuItemsDetail(d.MenuService, logg))
				r.Patch("/{id}", controllers.MenuItemsUpdate(d.MenuService, logg))
				r.Delete("/{id}", controllers.MenuItemsDelete(d.MenuService, logg))
			})
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Use(middleware.RequirePermission(enums.PermissionInventory, d.RolesService, logg))
			r.Get("/", controllers.InventoryList(d.InventoryService, logg))
			r.Post("/", controllers.InventoryCreate(d.InventoryService, logg))
			r.Get("/low-stock", controllers.InventoryLowStock(d.InventoryService, logg))
			r.Post("/deduct", controllers.InventoryDeduct(d.InventoryService, logg))
			r.Get("/{id}", controllers.InventoryDetail(d.InventoryService, logg))
			r.Patch("/{id}", controllers.InventoryUpdate(d.InventoryService, logg))
			r.Delete("/{id}", controllers.InventoryDelete(d.InventoryService, logg))
			r.Post("/{id}/restock", controllers.InventoryRestock(d.InventoryService, logg))
		})

		r.With(middleware.RequirePermission(enums.PermissionAnalytics, d.RolesService, logg)).
			Get("/analytics", controllers.AnalyticsReport(d.AnalyticsService, logg))

		r.Route("/restaurant-settings", func(r chi.Router) {
			r.Use(middleware.RequirePermission(enums.PermissionSettings, d.RolesService, logg))
			r.Get("/", controllers.SettingsGet(d.SettingsService, logg))
			r.Put("/", controllers.SettingsUpdate(d.SettingsService, logg))
		})

		r.Route("/roles", func(r chi.Router) {
			r.Use(middleware.RequirePermission(enums.PermissionUsers, d.RolesService, logg))
			r.Get("/", controllers.RolesList(d.RolesService, logg))
			r.Put("/", controllers.RolesUpdateMatrix(d.RolesService, logg))
			r.Post("/", controllers.RolesCreate(d.RolesService, logg))
			r.Delete("/{id}", controllers.RolesDelete(d.RolesService, logg))
		})
	})

	return r
}
