package api

import (
	"net/http"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/checkout"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/coupon"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/user"
	"go.uber.org/zap"
)

// Services are the domain services the handlers call into.
type Services struct {
	Products *product.Service
	Carts    *cart.Service
	Coupons  *coupon.Service
	Orders   *order.Service
	Checkout *checkout.Service
	Users    *user.Service
	JWT      *auth.JWTService
	Sessions *auth.SessionStore
}

type Handlers struct {
	products      *product.Service
	carts         *cart.Service
	coupons       *coupon.Service
	orders        *order.Service
	checkout      *checkout.Service
	users         *user.Service
	jwtService    *auth.JWTService
	sessions      *auth.SessionStore
	logger        *zap.Logger
	secureCookies bool
}

func NewHandlers(s Services, secureCookies bool, logger *zap.Logger) *Handlers {
	return &Handlers{
		products:      s.Products,
		carts:         s.Carts,
		coupons:       s.Coupons,
		orders:        s.Orders,
		checkout:      s.Checkout,
		users:         s.Users,
		jwtService:    s.JWT,
		sessions:      s.Sessions,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

var errNotAuthenticated = apperr.Unauthorized("Unauthorized")

// currentUser returns the claims set by the auth middleware.
func currentUser(r *http.Request) (*auth.Claims, error) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		return nil, errNotAuthenticated
	}
	return claims, nil
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, h.logger, err)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, "ok", nil)
}
