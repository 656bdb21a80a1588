package memory

import (
	"context"
	"sync"
	"time"

	"github.com/example/storefront/internal/domain/coupon"
)

type CouponRepository struct {
	mu      sync.Mutex
	coupons map[string]coupon.Coupon
}

func NewCouponRepository() *CouponRepository {
	return &CouponRepository{coupons: make(map[string]coupon.Coupon)}
}

func (r *CouponRepository) Create(_ context.Context, c *coupon.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.coupons {
		if existing.Code == c.Code {
			return coupon.ErrCodeExists
		}
		if c.IsActive && existing.IsActive && existing.UserID == c.UserID {
			return coupon.ErrActiveCouponExists
		}
	}
	r.coupons[c.ID] = *c
	return nil
}

func (r *CouponRepository) GetByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	return r.find(func(c coupon.Coupon) bool { return c.Code == code })
}

func (r *CouponRepository) FindActive(_ context.Context, userID string) (*coupon.Coupon, error) {
	return r.find(func(c coupon.Coupon) bool { return c.IsActive && c.UserID == userID })
}

func (r *CouponRepository) FindActiveByCode(_ context.Context, userID, code string) (*coupon.Coupon, error) {
	return r.find(func(c coupon.Coupon) bool { return c.IsActive && c.UserID == userID && c.Code == code })
}

func (r *CouponRepository) Deactivate(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.coupons[id]
	if !ok {
		return false, coupon.ErrCouponNotFound
	}
	if !c.IsActive {
		return false, nil
	}
	c.IsActive = false
	c.UpdatedAt = at
	r.coupons[id] = c
	return true, nil
}

func (r *CouponRepository) find(match func(coupon.Coupon) bool) (*coupon.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.coupons {
		if match(c) {
			return &c, nil
		}
	}
	return nil, coupon.ErrCouponNotFound
}
