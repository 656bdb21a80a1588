package cart

import (
	"context"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/cache"
	"github.com/example/storefront/internal/domain/product"
	"go.uber.org/zap"
)

// MaxLineQuantity caps a single line's quantity.
const MaxLineQuantity = 999

const snapshotTTL = 10 * time.Minute

var (
	ErrCartNotFound       = apperr.NotFound("cart not found")
	ErrCartEmpty          = apperr.NotFound("cart is empty")
	ErrItemNotInCart      = apperr.NotFound("product not found in cart")
	ErrNoMatchingProducts = apperr.NotFound("no matching products in cart")
	ErrProductIDRequired  = apperr.Validation("product ID is required")
	ErrProductIDsRequired = apperr.Validation("at least one product ID is required")
	ErrInvalidQuantity    = apperr.Validation("quantity must be between 0 and 999")
	ErrConcurrentUpdate   = apperr.Conflict("cart was modified concurrently, retry the request")
)

// Repository persists carts. Save inserts a cart whose Version is zero and
// otherwise only succeeds if the stored version still equals c.Version,
// returning ErrConcurrentUpdate when it does not. On success c.Version holds
// the new version.
type Repository interface {
	Get(ctx context.Context, userID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
}

// Catalog resolves products for pricing.
type Catalog interface {
	Get(ctx context.Context, id string) (*product.Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]*product.Product, error)
}

type Service struct {
	repo    Repository
	catalog Catalog
	cache   cache.Cache
	logger  *zap.Logger
}

func NewService(repo Repository, catalog Catalog, c cache.Cache, logger *zap.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, cache: c, logger: logger}
}

// SnapshotKey is the cache key of a user's priced cart snapshot.
func SnapshotKey(userID string) string {
	return "cart:" + userID
}

// Get returns the user's cart priced at current product prices.
func (s *Service) Get(ctx context.Context, userID string) (*View, error) {
	view, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.cache, SnapshotKey(userID), view, snapshotTTL); err != nil {
		s.logger.Warn("cart snapshot write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return view, nil
}

// AddItem adds one unit of productID, creating the cart if needed.
func (s *Service) AddItem(ctx context.Context, userID, productID string) (*View, error) {
	if productID == "" {
		return nil, ErrProductIDRequired
	}
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		return nil, err
	}

	c, err := s.repo.Get(ctx, userID)
	if apperr.IsKind(err, apperr.KindNotFound) {
		c = New(userID)
	} else if err != nil {
		return nil, err
	}

	c.Add(productID)
	return s.persist(ctx, c)
}

// RemoveItems drops every line for the given products. Removing nothing is an
// error, not a silent success.
func (s *Service) RemoveItems(ctx context.Context, userID string, productIDs []string) (*View, error) {
	if len(productIDs) == 0 {
		return nil, ErrProductIDsRequired
	}

	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrCartEmpty
	}
	if c.Remove(productIDs) == 0 {
		return nil, ErrNoMatchingProducts
	}
	return s.persist(ctx, c)
}

// UpdateQuantity sets the quantity of an existing line. Zero removes it.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID string, quantity int) (*View, error) {
	if productID == "" {
		return nil, ErrProductIDRequired
	}
	if quantity < 0 || quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity.WithField("quantity", "must be between 0 and 999")
	}

	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !c.SetQuantity(productID, quantity) {
		return nil, ErrItemNotInCart
	}
	return s.persist(ctx, c)
}

// Clear empties the user's cart. A missing cart is not an error.
func (s *Service) Clear(ctx context.Context, userID string) error {
	c, err := s.repo.Get(ctx, userID)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(c.Items) == 0 {
		return nil
	}
	c.Items = nil
	_, err = s.persist(ctx, c)
	return err
}

// persist saves c, drops the cached snapshot and re-reads the stored cart so
// the returned total reflects what was written.
func (s *Service) persist(ctx context.Context, c *Cart) (*View, error) {
	c.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	if err := s.cache.Delete(ctx, SnapshotKey(c.UserID)); err != nil {
		s.logger.Warn("cart snapshot invalidation failed", zap.String("user_id", c.UserID), zap.Error(err))
	}
	return s.load(ctx, c.UserID)
}

func (s *Service) load(ctx context.Context, userID string) (*View, error) {
	c, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	products, err := s.catalog.GetMany(ctx, c.productIDs())
	if err != nil {
		return nil, err
	}
	return Price(c, products), nil
}
