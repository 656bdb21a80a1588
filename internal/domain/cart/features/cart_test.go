package features

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/cache"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/infrastructure/store/memory"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type cartTestContext struct {
	products *memory.ProductRepository
	service  *cart.Service
	userID   string
	view     *cart.View
	err      error
}

func (c *cartTestContext) reset() {
	c.products = memory.NewProductRepository()
	c.service = cart.NewService(memory.NewCartRepository(), c.products, cache.NewMemoryCache(), zap.NewNop())
	c.userID = ""
	c.view = nil
	c.err = nil
}

func (c *cartTestContext) aProductPricedAt(id, price string) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	return c.products.Create(context.Background(), &product.Product{
		ID:        id,
		Name:      id,
		Price:     p,
		CreatedAt: time.Now(),
	})
}

func (c *cartTestContext) userHasNoCart(userID string) error {
	c.userID = userID
	return nil
}

func (c *cartTestContext) record(view *cart.View, err error) {
	c.err = err
	if err == nil {
		c.view = view
	}
}

func (c *cartTestContext) userAddsProduct(userID, productID string) error {
	c.record(c.service.AddItem(context.Background(), userID, productID))
	return nil
}

func (c *cartTestContext) userRemovesProducts(userID, ids string) error {
	c.record(c.service.RemoveItems(context.Background(), userID, strings.Split(ids, ",")))
	return nil
}

func (c *cartTestContext) userSetsQuantity(userID, productID string, quantity int) error {
	c.record(c.service.UpdateQuantity(context.Background(), userID, productID, quantity))
	return nil
}

func (c *cartTestContext) userReadsTheCart(userID string) error {
	c.record(c.service.Get(context.Background(), userID))
	return nil
}

// current re-reads the cart so assertions never rely on a stale view.
func (c *cartTestContext) current() (*cart.View, error) {
	if c.err != nil {
		return nil, fmt.Errorf("previous step failed: %w", c.err)
	}
	return c.service.Get(context.Background(), c.userID)
}

func (c *cartTestContext) theCartHasLines(n int) error {
	view, err := c.service.Get(context.Background(), c.userID)
	if err != nil {
		return err
	}
	if len(view.Items) != n {
		return fmt.Errorf("expected %d lines, got %d", n, len(view.Items))
	}
	return nil
}

func (c *cartTestContext) productHasQuantity(productID string, quantity int) error {
	view, err := c.service.Get(context.Background(), c.userID)
	if err != nil {
		return err
	}
	for _, l := range view.Items {
		if l.Product.ID == productID {
			if l.Quantity != quantity {
				return fmt.Errorf("expected quantity %d for %s, got %d", quantity, productID, l.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("product %s not in cart", productID)
}

func (c *cartTestContext) theCartDoesNotContain(productID string) error {
	view, err := c.current()
	if err != nil {
		return err
	}
	for _, l := range view.Items {
		if l.Product.ID == productID {
			return fmt.Errorf("product %s still in cart", productID)
		}
	}
	return nil
}

func (c *cartTestContext) theCartTotalIs(total string) error {
	want, err := decimal.NewFromString(total)
	if err != nil {
		return err
	}
	view, err := c.current()
	if err != nil {
		return err
	}
	if !view.TotalAmount.Equal(want) {
		return fmt.Errorf("expected total %s, got %s", want, view.TotalAmount)
	}
	if c.view != nil && !c.view.TotalAmount.Equal(want) {
		return fmt.Errorf("mutation returned total %s, expected %s", c.view.TotalAmount, want)
	}
	return nil
}

func (c *cartTestContext) theOperationFailsWith(kind string) error {
	if c.err == nil {
		return fmt.Errorf("expected %s error, got success", kind)
	}
	if got := apperr.KindOf(c.err); string(got) != kind {
		return fmt.Errorf("expected %s error, got %s (%v)", kind, got, c.err)
	}
	c.err = nil
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &cartTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^a product "([^"]*)" priced at "([^"]*)"$`, tc.aProductPricedAt)
	ctx.Step(`^user "([^"]*)" has no cart$`, tc.userHasNoCart)
	ctx.Step(`^user "([^"]*)" adds product "([^"]*)"$`, tc.userAddsProduct)
	ctx.Step(`^user "([^"]*)" removes products "([^"]*)"$`, tc.userRemovesProducts)
	ctx.Step(`^user "([^"]*)" sets the quantity of product "([^"]*)" to (-?\d+)$`, tc.userSetsQuantity)
	ctx.Step(`^user "([^"]*)" reads the cart$`, tc.userReadsTheCart)

	ctx.Step(`^the cart has (\d+) lines?$`, tc.theCartHasLines)
	ctx.Step(`^product "([^"]*)" has quantity (\d+)$`, tc.productHasQuantity)
	ctx.Step(`^the cart does not contain product "([^"]*)"$`, tc.theCartDoesNotContain)
	ctx.Step(`^the cart total is "([^"]*)"$`, tc.theCartTotalIs)
	ctx.Step(`^the operation fails with "([^"]*)"$`, tc.theOperationFailsWith)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"cart.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
