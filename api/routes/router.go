package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smkpro/smkpro-backend/api/controllers"
	"github.com/smkpro/smkpro-backend/api/middleware"
	authsvc "github.com/smkpro/smkpro-backend/internal/auth"
	cartsvc "github.com/smkpro/smkpro-backend/internal/cart"
	ordersvc "github.com/smkpro/smkpro-backend/internal/orders"
	productsvc "github.com/smkpro/smkpro-backend/internal/products"
	wishlistsvc "github.com/smkpro/smkpro-backend/internal/wishlist"
	"github.com/smkpro/smkpro-backend/pkg/config"
	"github.com/smkpro/smkpro-backend/pkg/db"
	"github.com/smkpro/smkpro-backend/pkg/logger"
	redisclient "github.com/smkpro/smkpro-backend/pkg/redis"
)

// Services bundles the wired domain services the router exposes.
type Services struct {
	Auth     authsvc.Service
	Products productsvc.Service
	Cart     cartsvc.Service
	Wishlist wishlistsvc.Service
	Orders   ordersvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger db.Pinger,
	redisPinger redisclient.Pinger,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Session(logg, cfg.App.IsProd()),
		middleware.Auth(cfg.JWT, logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbPinger, redisPinger, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.Register(svcs.Auth, logg))
			r.Post("/login", controllers.Login(svcs.Auth, logg))
			r.Post("/refresh", controllers.Refresh(svcs.Auth, logg))
			r.With(middleware.RequireUser(logg)).Post("/logout", controllers.Logout(svcs.Auth, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Get("/{slug}", controllers.GetProduct(svcs.Products, logg))
		})

		// Cart and wishlist work for anonymous sessions and users alike.
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(svcs.Cart, logg))
			r.Post("/add", controllers.AddCartItem(svcs.Cart, logg))
			r.Route("/items/{lineID}", func(r chi.Router) {
				r.Post("/increment", controllers.IncrementCartItem(svcs.Cart, logg))
				r.Post("/decrement", controllers.DecrementCartItem(svcs.Cart, logg))
				r.Post("/remove", controllers.RemoveCartItem(svcs.Cart, logg))
			})
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.GetWishlist(svcs.Wishlist, logg))
			r.Post("/toggle/{productID}", controllers.ToggleWishlistItem(svcs.Wishlist, logg))
			r.Post("/remove/{productID}", controllers.RemoveWishlistItem(svcs.Wishlist, logg))
		})

		// Checkout and order history require an account.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(logg))
			r.Post("/checkout/place", controllers.PlaceOrder(svcs.Orders, logg))
			r.Post("/payments/confirm", controllers.ConfirmPayment(svcs.Orders, logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListOrders(svcs.Orders, logg))
				r.Get("/{orderNumber}", controllers.GetOrder(svcs.Orders, logg))
			})
		})
	})

	return r
}
