package frontapi_test

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/talkincode/hexshop/internal/app/apptest"
	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/frontapi"
)

func setup(t *testing.T, n int) *apptest.Console {
	t.Helper()
	c := apptest.New(t, frontapi.Init)
	products := make([]domain.Product, 0, n)
	for i := 1; i <= n; i++ {
		category := "tea"
		if i%2 == 0 {
			category = "cake"
		}
		products = append(products, domain.Product{
			ID:        fmt.Sprintf("p%d", i),
			Title:     fmt.Sprintf("Product %02d", i),
			Category:  category,
			Unit:      "box",
			Price:     100,
			IsEnabled: 1,
		})
	}
	c.Remote.Seed(products...)
	return c
}

func expectRedirect(t *testing.T, r apptest.Response, location string) {
	t.Helper()
	if r.Status != http.StatusSeeOther || r.Location != location {
		t.Fatalf("expected redirect to %s, got status %d location %q", location, r.Status, r.Location)
	}
}

func TestCatalogPagination(t *testing.T) {
	c := setup(t, 12)
	r := c.Get(t, "/products")
	if r.Status != http.StatusOK || !strings.Contains(r.Body, "Product 01") || strings.Contains(r.Body, "Product 11") {
		t.Fatalf("page 1: status %d", r.Status)
	}
	if !strings.Contains(r.Body, `href="/products?page=2"`) {
		t.Fatalf("page 2 link missing")
	}
	r = c.Get(t, "/products?page=2")
	if !strings.Contains(r.Body, "Product 11") || strings.Contains(r.Body, "Product 01") {
		t.Fatalf("page 2 content wrong")
	}
}

func TestCatalogCategory(t *testing.T) {
	c := setup(t, 4)
	r := c.Get(t, "/products?category=cake")
	if !strings.Contains(r.Body, "Product 02") || strings.Contains(r.Body, "Product 01") {
		t.Fatalf("category filter not applied")
	}
	calls := c.Remote.Calls()
	if last := calls[len(calls)-1]; !strings.Contains(last.Query, "category=cake") {
		t.Fatalf("category not sent, query %q", last.Query)
	}
}

func TestDetailAndAddToCart(t *testing.T) {
	c := setup(t, 2)
	r := c.Get(t, "/products/p1")
	if r.Status != http.StatusOK || !strings.Contains(r.Body, "Product 01") {
		t.Fatalf("detail: status %d", r.Status)
	}
	if !strings.Contains(r.Body, `<option value="10">`) {
		t.Fatalf("quantity select must offer 1..10")
	}
	cartPath := c.Remote.ShopPath("/cart")
	if n := c.Remote.Count(http.MethodGet, cartPath); n != 1 {
		t.Fatalf("detail page must load the cart badge, got %d", n)
	}

	expectRedirect(t, c.PostForm(t, "/products/p1/cart", url.Values{"qty": {"3"}}), "/products/p1")
	if n := c.Remote.Count(http.MethodPost, cartPath); n != 1 {
		t.Fatalf("expected one add, got %d", n)
	}
	if n := c.Remote.Count(http.MethodGet, cartPath); n != 2 {
		t.Fatalf("expected one refresh after add, got %d", n-1)
	}

	expectRedirect(t, c.PostForm(t, "/products/p1/cart", url.Values{"qty": {"11"}}), "/products/p1")
	if n := c.Remote.Count(http.MethodPost, cartPath); n != 1 {
		t.Fatalf("out of range quantity must not reach the remote api")
	}
}

func TestCartDecrementDisabledAtOne(t *testing.T) {
	c := setup(t, 2)
	_ = c.PostForm(t, "/products/p1/cart", url.Values{"qty": {"1"}})
	_ = c.PostForm(t, "/products/p2/cart", url.Values{"qty": {"2"}})
	r := c.Get(t, "/cart")
	if !strings.Contains(r.Body, `value="0" disabled>-`) {
		t.Fatalf("decrement must be disabled at qty 1:\n%s", r.Body)
	}
	if !strings.Contains(r.Body, `value="1">-`) {
		t.Fatalf("decrement must be enabled at qty 2")
	}
}

func TestCartMutations(t *testing.T) {
	c := setup(t, 2)
	_ = c.PostForm(t, "/products/p1/cart", url.Values{"qty": {"1"}})
	cartPath := c.Remote.ShopPath("/cart")
	itemPath := c.Remote.ShopPath("/cart/c1")

	refreshes := c.Remote.Count(http.MethodGet, cartPath)
	expectRedirect(t, c.PostForm(t, "/cart/items/c1", url.Values{"qty": {"4"}, "product_id": {"p1"}}), "/cart")
	if c.Remote.Count(http.MethodPut, itemPath) != 1 || c.Remote.Count(http.MethodGet, cartPath) != refreshes+1 {
		t.Fatalf("set qty must be one PUT and one refresh")
	}

	c.Remote.FailOnce(http.MethodPut, itemPath, http.StatusBadRequest, "out of stock")
	refreshes = c.Remote.Count(http.MethodGet, cartPath)
	expectRedirect(t, c.PostForm(t, "/cart/items/c1", url.Values{"qty": {"9"}, "product_id": {"p1"}}), "/cart")
	if c.Remote.Count(http.MethodGet, cartPath) != refreshes {
		t.Fatalf("a failed mutation must not refresh")
	}
	if page := c.Get(t, "/cart"); !strings.Contains(page.Body, "out of stock") {
		t.Fatalf("failure alert missing")
	}

	expectRedirect(t, c.PostForm(t, "/cart/items/c1/delete", nil), "/cart")
	if c.Remote.Count(http.MethodDelete, itemPath) != 1 {
		t.Fatalf("remove not sent")
	}
	_ = c.PostForm(t, "/products/p2/cart", nil)
	expectRedirect(t, c.PostForm(t, "/cart/clear", nil), "/cart")
	if c.Remote.Count(http.MethodDelete, c.Remote.ShopPath("/carts")) != 1 {
		t.Fatalf("clear not sent")
	}
}

func checkoutForm() url.Values {
	return url.Values{
		"email":   {"amy@example.com"},
		"name":    {"Amy"},
		"tel":     {"0912345678"},
		"address": {"Taipei"},
		"message": {"ring twice"},
	}
}

func TestCheckoutValidation(t *testing.T) {
	c := setup(t, 1)
	_ = c.PostForm(t, "/products/p1/cart", nil)
	form := checkoutForm()
	form.Set("tel", "12345")
	form.Set("email", "amy@")

	r := c.PostForm(t, "/cart/checkout", form)
	if r.Status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", r.Status)
	}
	if !strings.Contains(r.Body, "must be a valid phone number") || !strings.Contains(r.Body, "is not a valid email address") {
		t.Fatalf("field messages missing:\n%s", r.Body)
	}
	if !strings.Contains(r.Body, `value="Amy"`) {
		t.Fatalf("form values must be kept")
	}
	if n := c.Remote.Count(http.MethodPost, c.Remote.ShopPath("/order")); n != 0 {
		t.Fatalf("invalid form must not be submitted")
	}
}

func TestCheckoutSuccess(t *testing.T) {
	c := setup(t, 1)
	_ = c.PostForm(t, "/products/p1/cart", url.Values{"qty": {"2"}})
	_ = c.Get(t, "/cart")

	r := c.PostForm(t, "/cart/checkout", checkoutForm())
	expectRedirect(t, r, "/cart")
	if n := c.Remote.Count(http.MethodPost, c.Remote.ShopPath("/order")); n != 1 {
		t.Fatalf("expected one order, got %d", n)
	}
	page := c.Get(t, "/cart")
	if !strings.Contains(page.Body, "placed") || !strings.Contains(page.Body, "Your cart is empty.") {
		t.Fatalf("unexpected page after checkout:\n%s", page.Body)
	}
	if strings.Contains(page.Body, `value="Amy"`) {
		t.Fatalf("recipient form must be reset")
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	c := setup(t, 1)
	_ = c.Get(t, "/cart")
	expectRedirect(t, c.PostForm(t, "/cart/checkout", checkoutForm()), "/cart")
	if n := c.Remote.Count(http.MethodPost, c.Remote.ShopPath("/order")); n != 0 {
		t.Fatalf("empty cart must not be submitted")
	}
}

func TestCartEvents(t *testing.T) {
	c := setup(t, 1)
	_ = c.PostForm(t, "/products/p1/cart", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, c.Server.URL+"/cart/events", nil)
	res, err := c.Client.Do(req)
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer res.Body.Close()
	if ct := res.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}
	sc := bufio.NewScanner(res.Body)
	var event, data string
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "event: ") {
			event = strings.TrimPrefix(line, "event: ")
		}
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
			break
		}
	}
	if event != "cart" || !strings.Contains(data, `"product_id":"p1"`) {
		t.Fatalf("unexpected first event %q %s", event, data)
	}
}

func TestCheckoutAfterWorkspaceSweep(t *testing.T) {
	c := setup(t, 1)
	_ = c.PostForm(t, "/products/p1/cart", url.Values{"qty": {"2"}})
	if n := c.App.Workspaces().Sweep(-time.Minute); n != 1 {
		t.Fatalf("expected the workspace to be swept, got %d", n)
	}

	r := c.PostForm(t, "/cart/checkout", checkoutForm())
	expectRedirect(t, r, "/cart")
	if n := c.Remote.Count(http.MethodPost, c.Remote.ShopPath("/order")); n != 1 {
		t.Fatalf("the server cart is not empty, expected one order, got %d", n)
	}
	if page := c.Get(t, "/cart"); !strings.Contains(page.Body, "placed") {
		t.Fatalf("order notice missing:\n%s", page.Body)
	}
}
