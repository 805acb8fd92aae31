package storefront

import (
	"context"
	"errors"
	"testing"

	"github.com/talkincode/hexshop/internal/domain"
)

func TestCatalogFetchPage(t *testing.T) {
	api := seededAPI()
	c := NewCatalogController(api, NewBusy())
	if err := c.FetchPage(context.Background(), sess, 2, "cake"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	snap := c.Snapshot()
	if snap.Pagination.CurrentPage != 2 || snap.Pagination.Category != "cake" {
		t.Fatalf("unexpected page info %+v", snap.Pagination)
	}
}

func TestDetailAddToCart(t *testing.T) {
	api := newFakeAPI()
	api.product = domain.Product{ID: "p9", Title: "Cookie"}
	busy := NewBusy()
	cart := NewCartController(api, busy)
	d := NewDetailController(api, cart, busy)
	ctx := context.Background()

	if err := d.AddToCart(ctx, sess, 1); err == nil {
		t.Fatalf("expected error before a product is loaded")
	}
	p, err := d.Load(ctx, sess, "p9")
	if err != nil || p.Title != "Cookie" {
		t.Fatalf("load: %v %+v", err, p)
	}
	if err := d.AddToCart(ctx, sess, MaxQty+1); !errors.Is(err, ErrInvalidQty) {
		t.Fatalf("expected ErrInvalidQty, got %v", err)
	}
	if err := d.AddToCart(ctx, sess, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	if api.count("cart-add") != 1 || api.count("cart") != 1 {
		t.Fatalf("expected one add and one refresh, calls %v", api.calls)
	}
}

func TestQtyOptions(t *testing.T) {
	opts := QtyOptions()
	if len(opts) != MaxQty || opts[0] != 1 || opts[MaxQty-1] != MaxQty {
		t.Fatalf("unexpected options %v", opts)
	}
}
