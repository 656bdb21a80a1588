package cart

import (
	"time"

	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/money"
	"github.com/shopspring/decimal"
)

// Item is one product+quantity pair. A cart holds at most one item per
// product.
type Item struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Cart is the persisted state. It carries no total; totals are priced from
// current product prices on every read.
type Cart struct {
	UserID    string    `json:"userId"`
	Items     []Item    `json:"items"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func New(userID string) *Cart {
	return &Cart{UserID: userID}
}

func (c *Cart) indexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity returns the quantity held for productID.
func (c *Cart) Quantity(productID string) (int, bool) {
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i].Quantity, true
	}
	return 0, false
}

// Add increments the line for productID, appending a new line of quantity 1
// when none exists.
func (c *Cart) Add(productID string) {
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	c.Items = append(c.Items, Item{ProductID: productID, Quantity: 1})
}

// Remove drops every line whose product is in ids and reports how many lines
// were removed.
func (c *Cart) Remove(ids []string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := c.Items[:0]
	for _, item := range c.Items {
		if _, ok := drop[item.ProductID]; !ok {
			kept = append(kept, item)
		}
	}
	removed := len(c.Items) - len(kept)
	c.Items = kept
	return removed
}

// SetQuantity replaces the quantity of an existing line; zero deletes it.
// It reports false when the line is absent.
func (c *Cart) SetQuantity(productID string, quantity int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	if quantity == 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return true
	}
	c.Items[i].Quantity = quantity
	return true
}

// Line is a priced cart line.
type Line struct {
	Product   *product.Product `json:"product"`
	Quantity  int              `json:"quantity"`
	LineTotal decimal.Decimal  `json:"lineTotal"`
}

// View is a cart priced against current products.
type View struct {
	UserID      string          `json:"userId"`
	Items       []Line          `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Version     int             `json:"version"`
}

// Price resolves every line against products. Lines whose product no longer
// exists are left out of both the items and the total.
func Price(c *Cart, products map[string]*product.Product) *View {
	view := &View{
		UserID:      c.UserID,
		Items:       make([]Line, 0, len(c.Items)),
		TotalAmount: decimal.Zero,
		Version:     c.Version,
	}
	for _, item := range c.Items {
		p, ok := products[item.ProductID]
		if !ok {
			continue
		}
		lineTotal := money.LineTotal(p.Price, item.Quantity)
		view.Items = append(view.Items, Line{Product: p, Quantity: item.Quantity, LineTotal: lineTotal})
		view.TotalAmount = view.TotalAmount.Add(lineTotal)
	}
	return view
}

func (c *Cart) productIDs() []string {
	ids := make([]string, len(c.Items))
	for i, item := range c.Items {
		ids[i] = item.ProductID
	}
	return ids
}
