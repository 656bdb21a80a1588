package api

import (
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"go.uber.org/zap"
)

func NewRouter(h *Handlers, jwtService *auth.JWTService, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	authed := middleware.AuthMiddleware(jwtService)
	admin := func(fn http.HandlerFunc) http.Handler {
		return authed(middleware.RequireRole(auth.RoleAdmin)(fn))
	}
	user := func(fn http.HandlerFunc) http.Handler {
		return authed(fn)
	}

	mux.HandleFunc("GET /healthz", h.Health)

	// Auth
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("POST /api/auth/refresh", h.Refresh)
	mux.HandleFunc("POST /api/auth/logout", h.Logout)
	mux.Handle("GET /api/auth/me", user(h.Me))

	// Products
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/featured", h.ListFeaturedProducts)
	mux.HandleFunc("GET /api/products/category/{category}", h.ListProductsByCategory)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.Handle("POST /api/products", admin(h.CreateProduct))
	mux.Handle("PATCH /api/products/{id}/featured", admin(h.ToggleFeaturedProduct))
	mux.Handle("DELETE /api/products/{id}", admin(h.DeleteProduct))

	// Cart
	mux.Handle("GET /api/cart", user(h.GetCart))
	mux.Handle("GET /api/cart/{userId}", user(h.GetCart))
	mux.Handle("POST /api/cart/addcart", user(h.AddToCart))
	mux.Handle("DELETE /api/cart/remove", user(h.RemoveFromCart))
	mux.Handle("PUT /api/cart/update/{id}", user(h.UpdateCartQuantity))

	// Coupons
	mux.Handle("GET /api/coupons", user(h.GetCoupon))
	mux.Handle("POST /api/coupons/validate", user(h.ValidateCoupon))
	mux.Handle("POST /api/coupons/create", admin(h.CreateCoupon))

	// Orders
	mux.Handle("POST /api/orders", user(h.CreateOrder))
	mux.Handle("GET /api/orders", admin(h.ListOrders))
	mux.Handle("GET /api/orders/my", user(h.ListMyOrders))
	mux.Handle("GET /api/orders/{id}", user(h.GetOrder))
	mux.Handle("PATCH /api/orders/{id}/approve", admin(h.ApproveOrder))
	mux.Handle("PATCH /api/orders/{id}/decline", admin(h.DeclineOrder))

	// Checkout
	mux.Handle("POST /api/create-checkout-session", user(h.CreateCheckoutSession))
	mux.Handle("POST /api/checkout-success", user(h.CheckoutSuccess))

	return middleware.Recover(logger)(
		middleware.RequestID(
			middleware.Logging(logger)(mux),
		),
	)
}
