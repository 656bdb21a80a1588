package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/example/storefront/internal/domain/cart"
)

// CartRepository saves carts with a compare-and-swap on the version column.
type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	var (
		c     cart.Cart
		items []byte
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, items, version, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&c.UserID, &items, &c.Version, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cart.ErrCartNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &c.Items); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	items := c.Items
	if items == nil {
		items = []cart.Item{}
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return err
	}

	next := c.Version + 1
	if c.Version == 0 {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO carts (user_id, items, version, updated_at) VALUES ($1, $2, $3, $4)`,
			c.UserID, itemsJSON, next, c.UpdatedAt,
		)
		if _, ok := uniqueConstraint(err); ok {
			return cart.ErrConcurrentUpdate
		}
		if err != nil {
			return err
		}
		c.Version = next
		return nil
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE carts SET items = $2, version = $3, updated_at = $4 WHERE user_id = $1 AND version = $5`,
		c.UserID, itemsJSON, next, c.UpdatedAt, c.Version,
	)
	if err := expectOne(res, err, cart.ErrConcurrentUpdate); err != nil {
		return err
	}
	c.Version = next
	return nil
}
