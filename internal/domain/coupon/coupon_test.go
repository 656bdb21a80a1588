package coupon_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain/coupon"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/infrastructure/store/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCouponService() (*coupon.Service, *memory.CouponRepository, *events.Recorder) {
	repo := memory.NewCouponRepository()
	recorder := events.NewRecorder()
	return coupon.NewService(repo, recorder, zap.NewNop()), repo, recorder
}

func validInput() coupon.CreateInput {
	return coupon.CreateInput{
		Code:               "GIFT10",
		DiscountPercentage: decimal.NewFromInt(10),
		ExpirationDate:     time.Now().Add(30 * 24 * time.Hour),
		OwnerUserID:        "user-1",
	}
}

func seedCoupon(t *testing.T, repo *memory.CouponRepository, code, userID string, expires time.Time) *coupon.Coupon {
	t.Helper()
	c := &coupon.Coupon{
		ID:                 "id-" + code,
		Code:               code,
		DiscountPercentage: decimal.NewFromInt(15),
		ExpirationDate:     expires,
		IsActive:           true,
		UserID:             userID,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

// ============================================
// Create Tests
// ============================================

func TestService_Create_Success(t *testing.T) {
	service, _, _ := newTestCouponService()

	c, err := service.Create(context.Background(), auth.RoleAdmin, validInput())

	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "GIFT10", c.Code)
	assert.True(t, c.IsActive)
	assert.Equal(t, "user-1", c.UserID)
}

func TestService_Create_Roles(t *testing.T) {
	tests := []struct {
		name    string
		role    auth.Role
		allowed bool
	}{
		{"user", auth.RoleUser, false},
		{"business", auth.RoleBusiness, false},
		{"admin", auth.RoleAdmin, true},
		{"superadmin", auth.RoleSuperAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := newTestCouponService()

			_, err := service.Create(context.Background(), tt.role, validInput())

			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, coupon.ErrCreateForbidden)
				assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
			}
		})
	}
}

func TestService_Create_DuplicateCode(t *testing.T) {
	service, _, _ := newTestCouponService()
	ctx := context.Background()
	_, err := service.Create(ctx, auth.RoleAdmin, validInput())
	require.NoError(t, err)

	in := validInput()
	in.OwnerUserID = "user-2"
	_, err = service.Create(ctx, auth.RoleAdmin, in)

	assert.ErrorIs(t, err, coupon.ErrCodeExists)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestService_Create_SecondActiveCouponForUser(t *testing.T) {
	service, _, _ := newTestCouponService()
	ctx := context.Background()
	_, err := service.Create(ctx, auth.RoleAdmin, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Code = "OTHER"
	_, err = service.Create(ctx, auth.RoleAdmin, in)

	assert.ErrorIs(t, err, coupon.ErrActiveCouponExists)
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*coupon.CreateInput)
		field  string
	}{
		{"empty code", func(in *coupon.CreateInput) { in.Code = "  " }, "code"},
		{"zero discount", func(in *coupon.CreateInput) { in.DiscountPercentage = decimal.Zero }, "discountPercentage"},
		{"discount above 100", func(in *coupon.CreateInput) { in.DiscountPercentage = decimal.NewFromInt(101) }, "discountPercentage"},
		{"missing expiration", func(in *coupon.CreateInput) { in.ExpirationDate = time.Time{} }, "expirationDate"},
		{"past expiration", func(in *coupon.CreateInput) { in.ExpirationDate = time.Now().Add(-time.Hour) }, "expirationDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := newTestCouponService()
			in := validInput()
			tt.mutate(&in)

			_, err := service.Create(context.Background(), auth.RoleAdmin, in)

			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			fields := apperr.FieldsOf(err)
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}
}

// ============================================
// GetActive Tests
// ============================================

func TestService_GetActive(t *testing.T) {
	service, repo, _ := newTestCouponService()
	ctx := context.Background()

	c, err := service.GetActive(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, c, "no coupon is not an error")

	seedCoupon(t, repo, "SAVE15", "user-1", time.Now().Add(time.Hour))
	c, err = service.GetActive(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "SAVE15", c.Code)
}

// ============================================
// Validate Tests
// ============================================

func TestService_Validate_Success(t *testing.T) {
	service, repo, _ := newTestCouponService()
	seedCoupon(t, repo, "SAVE15", "user-1", time.Now().Add(time.Hour))

	v, err := service.Validate(context.Background(), "user-1", "SAVE15")

	require.NoError(t, err)
	assert.Equal(t, "SAVE15", v.Code)
	assert.True(t, decimal.NewFromInt(15).Equal(v.DiscountPercentage))
}

func TestService_Validate_NotFound(t *testing.T) {
	service, repo, _ := newTestCouponService()
	seedCoupon(t, repo, "SAVE15", "user-1", time.Now().Add(time.Hour))
	ctx := context.Background()

	_, err := service.Validate(ctx, "user-2", "SAVE15")
	assert.ErrorIs(t, err, coupon.ErrCouponNotFound, "coupon belongs to another user")

	_, err = service.Validate(ctx, "user-1", "save15")
	assert.ErrorIs(t, err, coupon.ErrCouponNotFound, "codes are case-sensitive")

	_, err = service.Validate(ctx, "user-1", "")
	assert.ErrorIs(t, err, coupon.ErrCodeRequired)
}

func TestService_Validate_LazyExpiry(t *testing.T) {
	service, repo, recorder := newTestCouponService()
	ctx := context.Background()
	seedCoupon(t, repo, "OLD", "user-1", time.Now().Add(-time.Minute))

	_, err := service.Validate(ctx, "user-1", "OLD")

	assert.ErrorIs(t, err, coupon.ErrCouponExpired)

	active, err := service.GetActive(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, active, "expired coupon is deactivated")

	stored, err := repo.GetByCode(ctx, "OLD")
	require.NoError(t, err)
	assert.False(t, stored.IsActive)
	assert.Equal(t, []string{events.CouponDeactivated}, recorder.Types())

	// deactivation is terminal
	_, err = service.Validate(ctx, "user-1", "OLD")
	assert.ErrorIs(t, err, coupon.ErrCouponNotFound)
}

// ============================================
// Deactivate Tests
// ============================================

func TestService_Deactivate(t *testing.T) {
	service, repo, recorder := newTestCouponService()
	ctx := context.Background()
	seedCoupon(t, repo, "SAVE15", "user-1", time.Now().Add(time.Hour))

	require.NoError(t, service.Deactivate(ctx, "user-1", "SAVE15"))
	require.NoError(t, service.Deactivate(ctx, "user-1", "SAVE15"), "second call is a no-op")

	active, err := service.GetActive(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Len(t, recorder.Envelopes, 1)
}

func TestService_Deactivate_PublishFailureIsNotFatal(t *testing.T) {
	service, repo, recorder := newTestCouponService()
	recorder.Err = assert.AnError
	seedCoupon(t, repo, "SAVE15", "user-1", time.Now().Add(time.Hour))

	assert.NoError(t, service.Deactivate(context.Background(), "user-1", "SAVE15"))
}
