package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"royal-kart/internal/handler"
	"royal-kart/internal/middleware"
	"royal-kart/internal/model"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Admin    *handler.AdminHandler
	Catalog  *handler.CatalogHandler
}

// Options configures the middleware around the routes.
type Options struct {
	APIKey         string
	AllowedOrigins []string
	SessionCookie  string
	SessionTTL     time.Duration

	// Limiter guards the checkout endpoints. Nil disables rate limiting.
	Limiter *middleware.RateLimiter

	// Ready reports whether backing stores answer. Nil reports healthy.
	Ready func(context.Context) error
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := httprouter.New()
	r.NotFound = jsonStatus(http.StatusNotFound, "NOT_FOUND", "Route not found")
	r.MethodNotAllowed = jsonStatus(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")

	// Health check endpoint (no authentication required)
	r.HandlerFunc(http.MethodGet, "/health", func(w http.ResponseWriter, req *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(req.Context()); err != nil {
				logger.Warn().Err(err).Msg("health check failed")
				jsonStatus(http.StatusServiceUnavailable, "UNAVAILABLE", "service unavailable").ServeHTTP(w, req)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	// Catalogue
	r.HandlerFunc(http.MethodGet, "/api/products", h.Product.GetAll)
	r.HandlerFunc(http.MethodGet, "/api/products/:id", h.Product.GetByID)
	r.HandlerFunc(http.MethodGet, "/api/categories", h.Catalog.ListCategories)

	// Cart
	r.HandlerFunc(http.MethodGet, "/api/cart", h.Cart.Get)
	r.HandlerFunc(http.MethodDelete, "/api/cart", h.Cart.Clear)
	r.HandlerFunc(http.MethodPost, "/api/cart/items", h.Cart.AddItem)
	r.HandlerFunc(http.MethodPut, "/api/cart/items/:key", h.Cart.UpdateItem)
	r.HandlerFunc(http.MethodDelete, "/api/cart/items/:key", h.Cart.RemoveItem)

	// Checkout
	limited := func(fn http.HandlerFunc) http.Handler {
		if opts.Limiter == nil {
			return fn
		}
		return opts.Limiter.Handler(fn)
	}
	r.HandlerFunc(http.MethodGet, "/api/checkout/quote", h.Checkout.Quote)
	r.Handler(http.MethodPost, "/api/checkout/coupon", limited(h.Checkout.ApplyCoupon))
	r.Handler(http.MethodPost, "/api/checkout", limited(h.Checkout.PlaceOrder))

	// Order tracking
	r.HandlerFunc(http.MethodGet, "/api/orders/:orderId", h.Order.Track)
	r.HandlerFunc(http.MethodPost, "/api/orders/:orderId/messages", h.Order.AddMessage)

	// Admin (API key required)
	admin := middleware.APIKeyAuth(opts.APIKey, logger)
	r.Handler(http.MethodGet, "/api/admin/orders", admin(http.HandlerFunc(h.Admin.ListOrders)))
	r.Handler(http.MethodGet, "/api/admin/orders/:orderId", admin(http.HandlerFunc(h.Admin.GetOrder)))
	r.Handler(http.MethodPut, "/api/admin/orders/:orderId/status", admin(http.HandlerFunc(h.Admin.UpdateOrderStatus)))
	r.Handler(http.MethodDelete, "/api/admin/orders/:orderId", admin(http.HandlerFunc(h.Admin.DeleteOrder)))
	r.Handler(http.MethodPost, "/api/admin/orders/:orderId/messages", admin(http.HandlerFunc(h.Admin.AddOrderMessage)))
	r.Handler(http.MethodGet, "/api/admin/coupons", admin(http.HandlerFunc(h.Admin.ListCoupons)))
	r.Handler(http.MethodPost, "/api/admin/coupons", admin(http.HandlerFunc(h.Admin.CreateCoupon)))
	r.Handler(http.MethodPut, "/api/admin/coupons/:id", admin(http.HandlerFunc(h.Admin.UpdateCoupon)))
	r.Handler(http.MethodDelete, "/api/admin/coupons/:id", admin(http.HandlerFunc(h.Admin.DeleteCoupon)))
	r.Handler(http.MethodGet, "/api/admin/categories", admin(http.HandlerFunc(h.Catalog.ListAllCategories)))
	r.Handler(http.MethodPost, "/api/admin/categories", admin(http.HandlerFunc(h.Catalog.CreateCategory)))
	r.Handler(http.MethodPut, "/api/admin/categories/:id", admin(http.HandlerFunc(h.Catalog.UpdateCategory)))
	r.Handler(http.MethodDelete, "/api/admin/categories/:id", admin(http.HandlerFunc(h.Catalog.DeleteCategory)))
	r.Handler(http.MethodPost, "/api/admin/products", admin(http.HandlerFunc(h.Catalog.CreateProduct)))
	r.Handler(http.MethodPut, "/api/admin/products/:id", admin(http.HandlerFunc(h.Catalog.UpdateProduct)))
	r.Handler(http.MethodDelete, "/api/admin/products/:id", admin(http.HandlerFunc(h.Catalog.DeleteProduct)))
	r.Handler(http.MethodPost, "/api/admin/products/:id/variants", admin(http.HandlerFunc(h.Catalog.CreateVariant)))
	r.Handler(http.MethodPut, "/api/admin/products/:id/variants/:variantId", admin(http.HandlerFunc(h.Catalog.UpdateVariant)))
	r.Handler(http.MethodDelete, "/api/admin/products/:id/variants/:variantId", admin(http.HandlerFunc(h.Catalog.DeleteVariant)))

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> Session
	var handler http.Handler = r
	handler = middleware.Session(opts.SessionCookie, opts.SessionTTL)(handler)
	handler = middleware.CORS(opts.AllowedOrigins)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}

func jsonStatus(status int, code, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(model.ErrorResponse{
			Error:     code,
			Message:   message,
			RequestID: middleware.RequestIDFromContext(r.Context()),
		})
	})
}
