// Package memory holds in-memory repositories with the same constraints as
// the Postgres ones. Used by tests and by the API when no database is set.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/example/storefront/internal/domain/product"
)

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]product.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[string]product.Product)}
}

func (r *ProductRepository) Create(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) Get(_ context.Context, id string) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return &p, nil
}

func (r *ProductRepository) GetMany(_ context.Context, ids []string) (map[string]*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	found := make(map[string]*product.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			found[id] = &p
		}
	}
	return found, nil
}

func (r *ProductRepository) List(_ context.Context, filter product.Filter) ([]*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*product.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.FeaturedOnly && !p.IsFeatured {
			continue
		}
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (r *ProductRepository) Update(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return product.ErrProductNotFound
	}
	r.products[p.ID] = *p
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return product.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}
