package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/monkeysroasters/roastery-backend/api/controllers"
	"github.com/monkeysroasters/roastery-backend/api/middleware"
	cartsvc "github.com/monkeysroasters/roastery-backend/internal/cart"
	"github.com/monkeysroasters/roastery-backend/internal/catalog"
	checkoutsvc "github.com/monkeysroasters/roastery-backend/internal/checkout"
	"github.com/monkeysroasters/roastery-backend/internal/discounts"
	"github.com/monkeysroasters/roastery-backend/internal/loyalty"
	orderssvc "github.com/monkeysroasters/roastery-backend/internal/orders"
	promossvc "github.com/monkeysroasters/roastery-backend/internal/promos"
	userssvc "github.com/monkeysroasters/roastery-backend/internal/users"
	"github.com/monkeysroasters/roastery-backend/pkg/config"
	"github.com/monkeysroasters/roastery-backend/pkg/db"
	"github.com/monkeysroasters/roastery-backend/pkg/logger"
	"github.com/monkeysroasters/roastery-backend/pkg/redis"
)

// Deps collects everything the router wires into handlers.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    db.Pinger
	Redis redis.Pinger

	Gatherer prometheus.Gatherer

	Users     userssvc.Service
	Loyalty   *loyalty.Service
	Catalog   catalog.Service
	Cart      cartsvc.Service
	Promos    promossvc.Service
	Discounts discounts.Service
	Orders    orderssvc.Service
	Checkout  checkoutsvc.Service
}

// NewRouter assembles the HTTP surface. Shopper routes authenticate via the
// bot gateway's user header; back-office routes require a staff token.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.UserContext(logg))

		r.Post("/users/register", controllers.RegisterUser(deps.Users, deps.Loyalty, logg))
		r.Get("/me", controllers.GetProfile(deps.Users, deps.Loyalty, logg))
		r.Get("/loyalty", controllers.GetLoyalty(deps.Users, deps.Loyalty, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Catalog, logg))
			r.Get("/categories", controllers.ListCategories(deps.Catalog, logg))
			r.Get("/{productID}", controllers.GetProduct(deps.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Cart, logg))
			r.Post("/items", controllers.AddCartItem(deps.Cart, logg))
			r.Patch("/items/{itemID}", controllers.ChangeCartItemQuantity(deps.Cart, logg))
			r.Delete("/items/{itemID}", controllers.RemoveCartItem(deps.Cart, logg))
			r.Delete("/", controllers.ClearCart(deps.Cart, logg))
			r.Post("/quote", controllers.QuoteCart(deps.Cart, logg))
		})

		r.Post("/promos/validate", controllers.ValidatePromo(deps.Promos, deps.Cart, logg))
		r.Post("/checkout", controllers.Checkout(deps.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{number}", controllers.GetOrder(deps.Orders, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.Admin, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateProduct(deps.Catalog, logg))
			r.Patch("/{productID}", controllers.AdminUpdateProduct(deps.Catalog, logg))
			r.Post("/{productID}/active", controllers.AdminSetProductActive(deps.Catalog, logg))
		})

		r.Route("/volume-rules", func(r chi.Router) {
			r.Get("/", controllers.AdminListVolumeRules(deps.Discounts, logg))
			r.Post("/", controllers.AdminCreateVolumeRule(deps.Discounts, logg))
			r.Patch("/{ruleID}", controllers.AdminUpdateVolumeRule(deps.Discounts, logg))
			r.Delete("/{ruleID}", controllers.AdminDeleteVolumeRule(deps.Discounts, logg))
		})

		r.Route("/promos", func(r chi.Router) {
			r.Get("/", controllers.AdminListPromos(deps.Promos, logg))
			r.Post("/", controllers.AdminCreatePromo(deps.Promos, logg))
			r.Patch("/{promoID}", controllers.AdminUpdatePromo(deps.Promos, logg))
			r.Delete("/{promoID}", controllers.AdminDeletePromo(deps.Promos, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderID}", controllers.AdminGetOrder(deps.Orders, logg))
			r.Post("/{orderID}/status", controllers.AdminUpdateOrderStatus(deps.Orders, logg))
		})
	})

	return r
}
