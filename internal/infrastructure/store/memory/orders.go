package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/example/storefront/internal/domain/order"
)

// OrderRepository enforces the unique payment reference.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]order.Order)}
}

func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.PaymentReference != "" {
		for _, existing := range r.orders {
			if existing.PaymentReference == o.PaymentReference {
				return order.ErrDuplicateReference
			}
		}
	}
	r.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	c := cloneOrder(o)
	return &c, nil
}

func (r *OrderRepository) GetByReference(_ context.Context, reference string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if reference != "" && o.PaymentReference == reference {
			c := cloneOrder(o)
			return &c, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (r *OrderRepository) ListByUser(_ context.Context, userID string) ([]*order.Order, error) {
	return r.list(func(o order.Order) bool { return o.UserID == userID }), nil
}

func (r *OrderRepository) ListAll(_ context.Context) ([]*order.Order, error) {
	return r.list(func(order.Order) bool { return true }), nil
}

func (r *OrderRepository) Update(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[o.ID]; !ok {
		return order.ErrOrderNotFound
	}
	r.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *OrderRepository) list(match func(order.Order) bool) []*order.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*order.Order, 0)
	for _, o := range r.orders {
		if match(o) {
			c := cloneOrder(o)
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list
}

func cloneOrder(o order.Order) order.Order {
	o.Items = append([]order.LineItem(nil), o.Items...)
	if o.ShippingAddress != nil {
		addr := *o.ShippingAddress
		o.ShippingAddress = &addr
	}
	return o
}
