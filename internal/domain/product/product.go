package product

import (
	"context"
	"strings"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound = apperr.NotFound("product not found")
	ErrInvalidProduct  = apperr.Validation("invalid product")
)

const (
	featuredCacheKey = "featured_products"
	featuredCacheTTL = 10 * time.Minute
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	IsFeatured  bool            `json:"isFeatured"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Filter narrows List results. Zero value lists everything.
type Filter struct {
	Category     string
	FeaturedOnly bool
}

// Repository persists products.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Get(ctx context.Context, id string) (*Product, error)
	GetMany(ctx context.Context, ids []string) (map[string]*Product, error)
	List(ctx context.Context, filter Filter) ([]*Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

type CreateInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Category    string          `json:"category"`
	IsFeatured  bool            `json:"isFeatured"`
}

func (in CreateInput) validate() error {
	err := ErrInvalidProduct
	invalid := false
	if strings.TrimSpace(in.Name) == "" {
		err, invalid = err.WithField("name", "is required"), true
	}
	if strings.TrimSpace(in.Description) == "" {
		err, invalid = err.WithField("description", "is required"), true
	}
	if strings.TrimSpace(in.Category) == "" {
		err, invalid = err.WithField("category", "is required"), true
	}
	if in.Price.IsNegative() {
		err, invalid = err.WithField("price", "must not be negative"), true
	}
	if invalid {
		return err
	}
	return nil
}

type Service struct {
	repo   Repository
	cache  cache.Cache
	logger *zap.Logger
}

func NewService(repo Repository, c cache.Cache, logger *zap.Logger) *Service {
	return &Service{repo: repo, cache: c, logger: logger}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &Product{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Image:       in.Image,
		Category:    strings.TrimSpace(in.Category),
		IsFeatured:  in.IsFeatured,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperr.Internal("failed to create product", err)
	}
	if p.IsFeatured {
		s.invalidateFeatured(ctx)
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx, Filter{})
}

func (s *Service) ListByCategory(ctx context.Context, category string) ([]*Product, error) {
	return s.repo.List(ctx, Filter{Category: category})
}

// ListFeatured serves from cache when possible and refills it on a miss.
func (s *Service) ListFeatured(ctx context.Context) ([]*Product, error) {
	var cached []*Product
	if ok, err := cache.GetJSON(ctx, s.cache, featuredCacheKey, &cached); err != nil {
		s.logger.Warn("featured products cache read failed", zap.Error(err))
	} else if ok {
		return cached, nil
	}

	products, err := s.repo.List(ctx, Filter{FeaturedOnly: true})
	if err != nil {
		return nil, err
	}
	if err := cache.SetJSON(ctx, s.cache, featuredCacheKey, products, featuredCacheTTL); err != nil {
		s.logger.Warn("featured products cache write failed", zap.Error(err))
	}
	return products, nil
}

func (s *Service) ToggleFeatured(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.IsFeatured = !p.IsFeatured
	p.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateFeatured(ctx)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateFeatured(ctx)
	return nil
}

func (s *Service) invalidateFeatured(ctx context.Context) {
	if err := s.cache.Delete(ctx, featuredCacheKey); err != nil {
		s.logger.Warn("featured products cache invalidation failed", zap.Error(err))
	}
}
