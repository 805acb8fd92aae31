package shopapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/shopapi"
	"github.com/talkincode/hexshop/internal/shopapi/shopapitest"
)

func setup(t *testing.T) (*shopapitest.Server, *shopapi.Client) {
	t.Helper()
	srv := shopapitest.NewServer("hexshop")
	t.Cleanup(srv.Close)
	c := shopapi.NewClient(shopapi.Config{BaseURL: srv.URL, APIPath: "hexshop", Timeout: 5 * time.Second})
	return srv, c
}

var admin = shopapi.Session{Token: shopapitest.Token}

func TestSigninAndCheckSession(t *testing.T) {
	_, c := setup(t)
	ctx := context.Background()

	res, err := c.Signin(ctx, domain.Credentials{Username: shopapitest.Username, Password: shopapitest.Password})
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	if res.Token != shopapitest.Token {
		t.Fatalf("unexpected token %q", res.Token)
	}
	if err := c.CheckSession(ctx, shopapi.Session{Token: res.Token}); err != nil {
		t.Fatalf("check session: %v", err)
	}

	err = c.CheckSession(ctx, shopapi.Session{Token: "stale"})
	if !errors.Is(err, shopapi.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if shopapi.PublicMessage(err) != "please sign in" {
		t.Fatalf("unexpected public message %q", shopapi.PublicMessage(err))
	}
}

func TestSigninFailure(t *testing.T) {
	_, c := setup(t)
	_, err := c.Signin(context.Background(), domain.Credentials{Username: "x", Password: "y"})
	var apiErr *shopapi.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected 400 APIError, got %v", err)
	}
}

func TestSessionTokenIsSentPerRequest(t *testing.T) {
	srv, c := setup(t)
	ctx := context.Background()
	_, _ = c.AdminProducts(ctx, shopapi.Session{Token: "a"}, 1)
	_, _ = c.AdminProducts(ctx, admin, 1)
	_, _ = c.Cart(ctx, shopapi.Session{})

	calls := srv.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	if calls[0].Auth != "a" || calls[1].Auth != shopapitest.Token || calls[2].Auth != "" {
		t.Fatalf("authorization headers leaked between sessions: %+v", calls)
	}
}

func TestAdminProductCRUD(t *testing.T) {
	srv, c := setup(t)
	ctx := context.Background()

	p := domain.Product{Title: "Tea", Category: "drink", Unit: "box", OriginPrice: 120, Price: 100, IsEnabled: 1,
		ImagesURL: []string{"https://img.test/a.png"}}
	if err := c.CreateProduct(ctx, admin, p); err != nil {
		t.Fatalf("create: %v", err)
	}
	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	calls := srv.Calls()
	if err := json.Unmarshal(calls[len(calls)-1].Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data["origin_price"] != float64(120) || body.Data["is_enabled"] != float64(1) {
		t.Fatalf("unexpected create body: %v", body.Data)
	}
	if _, ok := body.Data["id"]; ok {
		t.Fatalf("create must not send an id")
	}

	page, err := c.AdminProducts(ctx, admin, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Products) != 1 || page.Pagination.CurrentPage != 1 || page.Pagination.TotalPages != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	got := page.Products[0]
	got.Title = "Green tea"
	if err := c.UpdateProduct(ctx, admin, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	if srv.Count(http.MethodPut, srv.ShopPath("/admin/product/"+got.ID)) != 1 {
		t.Fatalf("expected one PUT keyed by id")
	}
	if srv.Products()[0].Title != "Green tea" {
		t.Fatalf("update not applied")
	}
	if err := c.DeleteProduct(ctx, admin, got.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(srv.Products()) != 0 {
		t.Fatalf("delete not applied")
	}
}

func TestCreateProductValidationMessage(t *testing.T) {
	_, c := setup(t)
	err := c.CreateProduct(context.Background(), admin, domain.Product{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(shopapi.PublicMessage(err), "title is required") {
		t.Fatalf("unexpected message %q", shopapi.PublicMessage(err))
	}
}

func TestUploadImage(t *testing.T) {
	_, c := setup(t)
	url, err := c.UploadImage(context.Background(), admin, "cat.png", []byte("pngdata"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(url, "https://img.test/") || !strings.HasSuffix(url, "size=7") {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestCartAndOrder(t *testing.T) {
	srv, c := setup(t)
	ctx := context.Background()
	srv.Seed(domain.Product{ID: "p1", Title: "Tea", Price: 50})

	if err := c.AddCartItem(ctx, shopapi.Session{}, "p1", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := c.Cart(ctx, shopapi.Session{})
	if err != nil {
		t.Fatalf("cart: %v", err)
	}
	if len(cart.Carts) != 1 || cart.Total != 100 || cart.Carts[0].Qty != 2 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if err := c.UpdateCartItem(ctx, shopapi.Session{}, cart.Carts[0].ID, "p1", 3); err != nil {
		t.Fatalf("update: %v", err)
	}
	res, err := c.PlaceOrder(ctx, shopapi.Session{}, domain.Order{
		User:    domain.Recipient{Name: "Amy", Email: "amy@example.com", Tel: "0912345678", Address: "Taipei"},
		Message: "ring twice",
	})
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if res.OrderID == "" || res.Total != 150 {
		t.Fatalf("unexpected order result %+v", res)
	}
	cart, _ = c.Cart(ctx, shopapi.Session{})
	if !cart.Empty() {
		t.Fatalf("cart should be empty after order")
	}
}

func TestRemoteFailureIsAPIError(t *testing.T) {
	srv, c := setup(t)
	srv.FailOnce(http.MethodDelete, srv.ShopPath("/carts"), http.StatusInternalServerError, "boom")
	err := c.ClearCart(context.Background(), shopapi.Session{})
	var apiErr *shopapi.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError || apiErr.Message != "boom" {
		t.Fatalf("expected APIError 500 boom, got %v", err)
	}
	if errors.Is(err, shopapi.ErrUnauthorized) {
		t.Fatalf("500 must not match ErrUnauthorized")
	}
}
