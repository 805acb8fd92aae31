package shopapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/talkincode/hexshop/internal/domain"
)

type cartItemBody struct {
	Data struct {
		ProductID string `json:"product_id"`
		Qty       int    `json:"qty"`
	} `json:"data"`
}

type orderBody struct {
	Data domain.Order `json:"data"`
}

func newCartItemBody(productID string, qty int) cartItemBody {
	var b cartItemBody
	b.Data.ProductID = productID
	b.Data.Qty = qty
	return b
}

// Cart fetches the authoritative cart.
func (c *Client) Cart(ctx context.Context, sess Session) (*domain.Cart, error) {
	var res struct {
		Data domain.Cart `json:"data"`
	}
	err := c.do(ctx, sess, "cart", request{
		method: http.MethodGet,
		url:    c.shopURL("/cart"),
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res.Data, nil
}

func (c *Client) AddCartItem(ctx context.Context, sess Session, productID string, qty int) error {
	return c.do(ctx, sess, "add cart item", request{
		method: http.MethodPost,
		url:    c.shopURL("/cart"),
		json:   newCartItemBody(productID, qty),
	}, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, sess Session, itemID, productID string, qty int) error {
	return c.do(ctx, sess, "update cart item", request{
		method: http.MethodPut,
		url:    c.shopURL("/cart/%s", url.PathEscape(itemID)),
		json:   newCartItemBody(productID, qty),
	}, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, sess Session, itemID string) error {
	return c.do(ctx, sess, "remove cart item", request{
		method: http.MethodDelete,
		url:    c.shopURL("/cart/%s", url.PathEscape(itemID)),
	}, nil)
}

// ClearCart removes every line of the cart.
func (c *Client) ClearCart(ctx context.Context, sess Session) error {
	return c.do(ctx, sess, "clear cart", request{
		method: http.MethodDelete,
		url:    c.shopURL("/carts"),
	}, nil)
}

// PlaceOrder posts the order built from the current cart.
func (c *Client) PlaceOrder(ctx context.Context, sess Session, order domain.Order) (*domain.OrderResult, error) {
	var res domain.OrderResult
	err := c.do(ctx, sess, "place order", request{
		method: http.MethodPost,
		url:    c.shopURL("/order"),
		json:   orderBody{Data: order},
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
