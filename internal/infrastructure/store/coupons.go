package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/storefront/internal/domain/coupon"
)

const couponColumns = `id, code, discount_percentage, expiration_date, is_active, user_id, created_at, updated_at`

type CouponRepository struct {
	db *sql.DB
}

func NewCouponRepository(db *sql.DB) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO coupons (`+couponColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Code, c.DiscountPercentage, c.ExpirationDate, c.IsActive, c.UserID, c.CreatedAt, c.UpdatedAt,
	)
	if constraint, ok := uniqueConstraint(err); ok {
		if constraint == "coupons_active_user_key" {
			return coupon.ErrActiveCouponExists
		}
		return coupon.ErrCodeExists
	}
	return err
}

func (r *CouponRepository) GetByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.queryOne(ctx, `WHERE code = $1`, code)
}

func (r *CouponRepository) FindActive(ctx context.Context, userID string) (*coupon.Coupon, error) {
	return r.queryOne(ctx, `WHERE user_id = $1 AND is_active`, userID)
}

func (r *CouponRepository) FindActiveByCode(ctx context.Context, userID, code string) (*coupon.Coupon, error) {
	return r.queryOne(ctx, `WHERE user_id = $1 AND code = $2 AND is_active`, userID, code)
}

// Deactivate only touches an active row, so concurrent validations report
// the change once.
func (r *CouponRepository) Deactivate(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE coupons SET is_active = FALSE, updated_at = $2 WHERE id = $1 AND is_active`, id, at)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *CouponRepository) queryOne(ctx context.Context, where string, args ...any) (*coupon.Coupon, error) {
	var c coupon.Coupon
	err := r.db.QueryRowContext(ctx, `SELECT `+couponColumns+` FROM coupons `+where, args...).Scan(
		&c.ID, &c.Code, &c.DiscountPercentage, &c.ExpirationDate, &c.IsActive, &c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, coupon.ErrCouponNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
