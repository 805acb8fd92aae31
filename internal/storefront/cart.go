package storefront

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/shopapi"
	"github.com/talkincode/hexshop/internal/store"
)

// CartController owns the cart snapshot. Every mutation is one server
// call followed, on success only, by one Refresh; nothing is applied
// optimistically.
type CartController struct {
	api  CartAPI
	busy *Busy
	cart *store.Store[domain.Cart]
}

func NewCartController(api CartAPI, busy *Busy) *CartController {
	return &CartController{
		api:  api,
		busy: busy,
		cart: store.New("cart", domain.Cart{}),
	}
}

func (c *CartController) Snapshot() domain.Cart {
	return c.cart.Snapshot()
}

func (c *CartController) Store() *store.Store[domain.Cart] {
	return c.cart
}

// Refresh replaces the cart with the server's copy.
func (c *CartController) Refresh(ctx context.Context, sess shopapi.Session) error {
	defer c.busy.Enter()()
	ticket := c.cart.Begin()
	cart, err := c.api.Cart(ctx, sess)
	if err != nil {
		zap.L().Error("refresh cart failed", zap.Error(err))
		return fmt.Errorf("refresh cart: %w", err)
	}
	c.cart.Publish(ticket, *cart)
	return nil
}

// mutate keeps busy raised across the call and the refresh after it.
func (c *CartController) mutate(ctx context.Context, sess shopapi.Session, op string, call func() error) error {
	defer c.busy.Enter()()
	if err := call(); err != nil {
		zap.L().Warn("cart "+op+" failed", zap.Error(err))
		return fmt.Errorf("cart %s: %w", op, err)
	}
	return c.Refresh(ctx, sess)
}

// Add puts qty units of a product into the cart.
func (c *CartController) Add(ctx context.Context, sess shopapi.Session, productID string, qty int) error {
	return c.mutate(ctx, sess, "add", func() error {
		return c.api.AddCartItem(ctx, sess, productID, qty)
	})
}

// SetQty changes the quantity of one cart line. Values below 1 are passed
// through; the server decides.
func (c *CartController) SetQty(ctx context.Context, sess shopapi.Session, itemID, productID string, qty int) error {
	return c.mutate(ctx, sess, "update", func() error {
		return c.api.UpdateCartItem(ctx, sess, itemID, productID, qty)
	})
}

func (c *CartController) Remove(ctx context.Context, sess shopapi.Session, itemID string) error {
	return c.mutate(ctx, sess, "remove", func() error {
		return c.api.RemoveCartItem(ctx, sess, itemID)
	})
}

func (c *CartController) Clear(ctx context.Context, sess shopapi.Session) error {
	return c.mutate(ctx, sess, "clear", func() error {
		return c.api.ClearCart(ctx, sess)
	})
}

// Checkout places the order and refreshes the now empty cart. A non-nil
// result means the order was placed even if the refresh failed; the
// caller then resets the recipient form.
func (c *CartController) Checkout(ctx context.Context, sess shopapi.Session, order domain.Order) (*domain.OrderResult, error) {
	var res *domain.OrderResult
	err := c.mutate(ctx, sess, "checkout", func() error {
		var err error
		res, err = c.api.PlaceOrder(ctx, sess, order)
		return err
	})
	if res != nil {
		zap.L().Info("order placed", zap.String("order_id", res.OrderID), zap.Float64("total", res.Total))
	}
	return res, err
}

// CartLine is one rendered cart row.
type CartLine struct {
	Item         domain.CartItem
	CanDecrement bool
	CanIncrement bool
}

// CartView is the rendered cart.
type CartView struct {
	Lines           []CartLine
	Count           int
	Total           float64
	FinalTotal      float64
	CheckoutEnabled bool
}

// RenderCart is a pure function of a cart snapshot. Decrement is offered
// only while qty is above 1.
func RenderCart(cart domain.Cart) CartView {
	v := CartView{
		Count:           cart.Count(),
		Total:           cart.Total,
		FinalTotal:      cart.FinalTotal,
		CheckoutEnabled: cart.Total > 0,
	}
	for _, it := range cart.Carts {
		v.Lines = append(v.Lines, CartLine{
			Item:         it,
			CanDecrement: it.Qty > 1,
			CanIncrement: true,
		})
	}
	return v
}
