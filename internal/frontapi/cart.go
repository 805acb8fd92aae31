package frontapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/shopapi"
	"github.com/talkincode/hexshop/internal/storefront"
	"github.com/talkincode/hexshop/internal/webserver"
)

const cartPath = "/cart"

func registerCartRoutes() {
	webserver.GET("/cart", showCart)
	webserver.POST("/cart/items/:id", setQty)
	webserver.POST("/cart/items/:id/delete", removeItem)
	webserver.POST("/cart/clear", clearCart)
	webserver.POST("/cart/checkout", checkout)
	webserver.GET("/cart/events", cartEvents)
}

func renderCart(c echo.Context, code int, ws *storefront.Workspace, form storefront.CheckoutForm, errs map[string]string) error {
	if errs == nil {
		errs = map[string]string{}
	}
	return webserver.Render(c, code, "cart.html", echo.Map{
		"Cart":   ws.Cart.Snapshot(),
		"Form":   form,
		"Errors": errs,
	})
}

func showCart(c echo.Context) error {
	ws := workspace(c)
	if err := ws.Cart.Refresh(c.Request().Context(), webserver.ShopSession(c)); err != nil {
		webserver.AddFlash(c, webserver.FlashError, "failed to load the cart")
	}
	return renderCart(c, http.StatusOK, ws, storefront.CheckoutForm{}, nil)
}

// addToCart takes qty from the detail page select, 1 when absent.
func addToCart(c echo.Context) error {
	ws := workspace(c)
	id := c.Param("id")
	back := c.Request().Referer()
	if back == "" {
		back = "/products/" + id
	}
	qty := 1
	if raw := c.FormValue("qty"); raw != "" {
		n, err := cast.ToIntE(raw)
		if err != nil {
			return alert(c, back, "invalid quantity", nil)
		}
		qty = n
	}
	if qty < 1 || qty > storefront.MaxQty {
		return alert(c, back, fmt.Sprintf("quantity must be between 1 and %d", storefront.MaxQty), nil)
	}

	sess := webserver.ShopSession(c)
	var err error
	if p, ok := ws.Detail.Current(); ok && p.ID == id {
		err = ws.Detail.AddToCart(c.Request().Context(), sess, qty)
	} else {
		err = ws.Cart.Add(c.Request().Context(), sess, id, qty)
	}
	if err != nil {
		return alert(c, back, "failed to add to cart", err)
	}
	return notice(c, back, "added to cart")
}

// setQty passes the requested quantity through; the page only offers
// decrement while qty is above 1.
func setQty(c echo.Context) error {
	ws := workspace(c)
	qty, err := cast.ToIntE(c.FormValue("qty"))
	if err != nil {
		return alert(c, cartPath, "invalid quantity", nil)
	}
	productID := c.FormValue("product_id")
	if err := ws.Cart.SetQty(c.Request().Context(), webserver.ShopSession(c), c.Param("id"), productID, qty); err != nil {
		return alert(c, cartPath, "failed to update the cart", err)
	}
	return c.Redirect(http.StatusSeeOther, cartPath)
}

func removeItem(c echo.Context) error {
	ws := workspace(c)
	if err := ws.Cart.Remove(c.Request().Context(), webserver.ShopSession(c), c.Param("id")); err != nil {
		return alert(c, cartPath, "failed to remove the item", err)
	}
	return c.Redirect(http.StatusSeeOther, cartPath)
}

func clearCart(c echo.Context) error {
	ws := workspace(c)
	if err := ws.Cart.Clear(c.Request().Context(), webserver.ShopSession(c)); err != nil {
		return alert(c, cartPath, "failed to clear the cart", err)
	}
	return c.Redirect(http.StatusSeeOther, cartPath)
}

// checkout validates the recipient form before any remote call, then
// re-reads the cart from the server and refuses an empty one. On success
// the page is rendered with an empty form; on failure the form keeps its
// values.
func checkout(c echo.Context) error {
	ws := workspace(c)
	var form storefront.CheckoutForm
	if err := c.Bind(&form); err != nil {
		return alert(c, cartPath, "invalid checkout request", err)
	}
	if err := c.Validate(&form); err != nil {
		var verr *storefront.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		return renderCart(c, http.StatusUnprocessableEntity, ws, form, verr.Fields)
	}
	ctx, sess := c.Request().Context(), webserver.ShopSession(c)
	// the local snapshot may be stale; only the server's cart decides
	if err := ws.Cart.Refresh(ctx, sess); err == nil && ws.Cart.Snapshot().Total <= 0 {
		return alert(c, cartPath, "the cart is empty", nil)
	}

	res, err := ws.Cart.Checkout(ctx, sess, form.Order())
	if res != nil {
		if err != nil {
			zap.L().Warn("cart refresh after checkout failed", zap.Error(err))
		}
		return notice(c, cartPath, "order "+res.OrderID+" placed")
	}
	zap.L().Warn("checkout failed", zap.String("request_id", webserver.RequestID(c)), zap.Error(err))
	msg := "checkout failed"
	if remote := shopapi.PublicMessage(err); remote != "" {
		msg += ": " + remote
	}
	webserver.AddFlash(c, webserver.FlashError, msg)
	return renderCart(c, http.StatusOK, ws, form, nil)
}

type cartEvent struct {
	Cart domain.Cart `json:"cart"`
	Busy bool        `json:"busy"`
}

// cartEvents streams cart and busy snapshots until the client leaves.
func cartEvents(c echo.Context) error {
	ws := workspace(c)
	return webserver.StreamEvents(c, "cart", func() interface{} {
		return cartEvent{Cart: ws.Cart.Snapshot(), Busy: ws.Busy.Active()}
	}, webserver.Watch(ws.Cart.Store()), webserver.Watch(ws.Busy.Store()))
}
