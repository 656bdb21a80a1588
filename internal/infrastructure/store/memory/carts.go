package memory

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/domain/cart"
)

// CartRepository applies the same version check as the Postgres store.
type CartRepository struct {
	mu    sync.Mutex
	carts map[string]cart.Cart
}

func NewCartRepository() *CartRepository {
	return &CartRepository{carts: make(map[string]cart.Cart)}
}

func (r *CartRepository) Get(_ context.Context, userID string) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (r *CartRepository) Save(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, exists := r.carts[c.UserID]
	switch {
	case c.Version == 0 && exists:
		return cart.ErrConcurrentUpdate
	case c.Version != 0 && (!exists || stored.Version != c.Version):
		return cart.ErrConcurrentUpdate
	}
	next := cloneCart(*c)
	next.Version = c.Version + 1
	r.carts[c.UserID] = *next
	c.Version = next.Version
	return nil
}

func cloneCart(c cart.Cart) *cart.Cart {
	c.Items = append([]cart.Item(nil), c.Items...)
	return &c
}
