package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/events"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const AggregateType = "Coupon"

var (
	ErrCouponNotFound     = apperr.NotFound("coupon not found")
	ErrCouponExpired      = apperr.NotFound("coupon expired")
	ErrCodeExists         = apperr.Conflict("coupon code already exists")
	ErrActiveCouponExists = apperr.Conflict("user already has an active coupon")
	ErrCreateForbidden    = apperr.Forbidden("only admins can create coupons")
	ErrInvalidCoupon      = apperr.Validation("invalid coupon")
	ErrCodeRequired       = apperr.Validation("coupon code is required")
)

// Deactivation causes recorded on CouponDeactivated events.
const (
	CauseExpired  = "expired"
	CauseRedeemed = "redeemed"
)

type Coupon struct {
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	ExpirationDate     time.Time       `json:"expirationDate"`
	IsActive           bool            `json:"isActive"`
	UserID             string          `json:"userId"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// Expired reports whether the coupon's expiration date lies before now.
func (c *Coupon) Expired(now time.Time) bool {
	return c.ExpirationDate.Before(now)
}

// Validated is what a successful validation exposes to the client.
type Validated struct {
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
}

// Repository persists coupons. Create returns ErrCodeExists or
// ErrActiveCouponExists on a uniqueness violation. Deactivate flips an active
// coupon to inactive and reports whether this call changed it.
type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	FindActive(ctx context.Context, userID string) (*Coupon, error)
	FindActiveByCode(ctx context.Context, userID, code string) (*Coupon, error)
	Deactivate(ctx context.Context, id string, at time.Time) (bool, error)
}

type CreateInput struct {
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	ExpirationDate     time.Time       `json:"expirationDate"`
	OwnerUserID        string          `json:"userId"`
}

var hundred = decimal.NewFromInt(100)

func (in CreateInput) validate(now time.Time) error {
	err := ErrInvalidCoupon
	invalid := false
	if strings.TrimSpace(in.Code) == "" {
		err, invalid = err.WithField("code", "is required"), true
	}
	if !in.DiscountPercentage.IsPositive() || in.DiscountPercentage.GreaterThan(hundred) {
		err, invalid = err.WithField("discountPercentage", "must be greater than 0 and at most 100"), true
	}
	if in.ExpirationDate.IsZero() {
		err, invalid = err.WithField("expirationDate", "is required"), true
	} else if !in.ExpirationDate.After(now) {
		err, invalid = err.WithField("expirationDate", "must be in the future"), true
	}
	if in.OwnerUserID == "" {
		err, invalid = err.WithField("userId", "is required"), true
	}
	if invalid {
		return err
	}
	return nil
}

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create issues an active coupon owned by in.OwnerUserID. Only admins may
// issue coupons.
func (s *Service) Create(ctx context.Context, actor auth.Role, in CreateInput) (*Coupon, error) {
	if !actor.IsAdmin() {
		return nil, ErrCreateForbidden
	}
	now := s.now().UTC()
	if err := in.validate(now); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(in.Code)
	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		return nil, ErrCodeExists
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}
	if _, err := s.repo.FindActive(ctx, in.OwnerUserID); err == nil {
		return nil, ErrActiveCouponExists
	} else if !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}

	c := &Coupon{
		ID:                 uuid.New().String(),
		Code:               code,
		DiscountPercentage: in.DiscountPercentage,
		ExpirationDate:     in.ExpirationDate.UTC(),
		IsActive:           true,
		UserID:             in.OwnerUserID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("coupon created", zap.String("code", c.Code), zap.String("user_id", c.UserID))
	return c, nil
}

// GetActive returns the user's active coupon, or nil when there is none.
func (s *Service) GetActive(ctx context.Context, userID string) (*Coupon, error) {
	c, err := s.repo.FindActive(ctx, userID)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that code is an active, unexpired coupon of the user. An
// expired coupon is deactivated on the spot and reported as expired.
func (s *Service) Validate(ctx context.Context, userID, code string) (*Validated, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrCodeRequired
	}

	c, err := s.repo.FindActiveByCode(ctx, userID, code)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if c.Expired(now) {
		if err := s.deactivate(ctx, c, CauseExpired, now); err != nil {
			return nil, err
		}
		return nil, ErrCouponExpired
	}

	return &Validated{Code: c.Code, DiscountPercentage: c.DiscountPercentage}, nil
}

// Deactivate retires the user's coupon after it was used for a payment.
// Deactivating a coupon that is no longer active is a no-op.
func (s *Service) Deactivate(ctx context.Context, userID, code string) error {
	c, err := s.repo.FindActiveByCode(ctx, userID, code)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.deactivate(ctx, c, CauseRedeemed, s.now().UTC())
}

func (s *Service) deactivate(ctx context.Context, c *Coupon, cause string, at time.Time) error {
	changed, err := s.repo.Deactivate(ctx, c.ID, at)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	c.IsActive = false
	c.UpdatedAt = at

	env, err := events.NewEnvelope(events.CouponDeactivated, AggregateType, c.ID, events.CouponPayload{
		Code:   c.Code,
		UserID: c.UserID,
		Cause:  cause,
		At:     at,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, c.ID, env)
	}
	if err != nil {
		s.logger.Warn("failed to publish coupon event", zap.String("code", c.Code), zap.Error(err))
	}
	return nil
}
