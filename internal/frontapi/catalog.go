package frontapi

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/webserver"
)

func registerCatalogRoutes() {
	webserver.GET("/products", listProducts)
	webserver.GET("/products/:id", productDetail)
	webserver.POST("/products/:id/cart", addToCart)
}

func listProducts(c echo.Context) error {
	ws := workspace(c)
	category := strings.TrimSpace(c.QueryParam("category"))
	if err := ws.Catalog.FetchPage(c.Request().Context(), webserver.ShopSession(c), parsePage(c), category); err != nil {
		webserver.AddFlash(c, webserver.FlashError, "failed to load products")
	}
	// typed as a URL so the pager links keep the separators
	var query template.URL
	if category != "" {
		query = template.URL("&category=" + url.QueryEscape(category))
	}
	return webserver.Render(c, http.StatusOK, "products.html", echo.Map{
		"Page":      ws.Catalog.Snapshot(),
		"Category":  category,
		"PageQuery": query,
	})
}

// productDetail loads the product and the cart badge concurrently.
func productDetail(c echo.Context) error {
	ws := workspace(c)
	sess := webserver.ShopSession(c)
	id := c.Param("id")

	var product domain.Product
	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		p, err := ws.Detail.Load(ctx, sess, id)
		product = p
		return err
	})
	g.Go(func() error {
		// the badge is optional
		_ = ws.Cart.Refresh(ctx, sess)
		return nil
	})
	if err := g.Wait(); err != nil {
		return alert(c, "/products", "product not found", err)
	}
	return webserver.Render(c, http.StatusOK, "product.html", echo.Map{
		"Product": product,
		"Cart":    ws.Cart.Snapshot(),
	})
}
