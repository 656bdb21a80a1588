package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/example/storefront/internal/domain/order"
)

const orderColumns = `id, user_id, flow, items, shipping_address, total_amount, payment_status, order_status,
	rejection_reason, payment_reference, coupon_code, created_at, updated_at`

// OrderRepository relies on the partial unique index on payment_reference
// to reject a second order for the same payment.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	items, address, err := encodeOrder(o)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO orders (`+orderColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID, o.UserID, o.Flow, items, address, o.TotalAmount, o.PaymentStatus, o.OrderStatus,
		o.RejectionReason, nullable(o.PaymentReference), o.CouponCode, o.CreatedAt, o.UpdatedAt,
	)
	if _, ok := uniqueConstraint(err); ok {
		return order.ErrDuplicateReference
	}
	return err
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	return r.queryOne(ctx, `WHERE id = $1`, id)
}

func (r *OrderRepository) GetByReference(ctx context.Context, reference string) (*order.Order, error) {
	return r.queryOne(ctx, `WHERE payment_reference = $1`, reference)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	return r.query(ctx, `WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]*order.Order, error) {
	return r.query(ctx, `ORDER BY created_at DESC`)
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_status = $2, order_status = $3, rejection_reason = $4, updated_at = $5
		 WHERE id = $1`,
		o.ID, o.PaymentStatus, o.OrderStatus, o.RejectionReason, o.UpdatedAt,
	)
	return expectOne(res, err, order.ErrOrderNotFound)
}

func (r *OrderRepository) queryOne(ctx context.Context, where string, args ...any) (*order.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders `+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrOrderNotFound
	}
	return o, err
}

func (r *OrderRepository) query(ctx context.Context, tail string, args ...any) ([]*order.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders `+tail, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*order.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var (
		o         order.Order
		items     []byte
		address   []byte
		reference sql.NullString
	)
	err := row.Scan(&o.ID, &o.UserID, &o.Flow, &items, &address, &o.TotalAmount, &o.PaymentStatus, &o.OrderStatus,
		&o.RejectionReason, &reference, &o.CouponCode, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, err
	}
	if len(address) > 0 {
		o.ShippingAddress = &order.ShippingAddress{}
		if err := json.Unmarshal(address, o.ShippingAddress); err != nil {
			return nil, err
		}
	}
	o.PaymentReference = reference.String
	return &o, nil
}

// encodeOrder returns the JSONB arguments; address is nil for orders
// without a shipping address so the column stays NULL.
func encodeOrder(o *order.Order) (items []byte, address any, err error) {
	items, err = json.Marshal(o.Items)
	if err != nil {
		return nil, nil, err
	}
	if o.ShippingAddress != nil {
		raw, err := json.Marshal(o.ShippingAddress)
		if err != nil {
			return nil, nil, err
		}
		address = raw
	}
	return items, address, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
