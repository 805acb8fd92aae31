package storefront

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/shopapi"
	"github.com/talkincode/hexshop/internal/store"
)

// MaxQty is the largest quantity offered on the detail page.
const MaxQty = 10

// QtyOptions returns the selectable quantities 1..MaxQty.
func QtyOptions() []int {
	opts := make([]int, MaxQty)
	for i := range opts {
		opts[i] = i + 1
	}
	return opts
}

// CatalogController owns the shopper product listing.
type CatalogController struct {
	api  CatalogAPI
	busy *Busy
	page *store.Store[domain.ProductPage]
}

func NewCatalogController(api CatalogAPI, busy *Busy) *CatalogController {
	return &CatalogController{
		api:  api,
		busy: busy,
		page: store.New("catalog", domain.ProductPage{}),
	}
}

// FetchPage loads one page of enabled products, optionally filtered by
// category.
func (c *CatalogController) FetchPage(ctx context.Context, sess shopapi.Session, page int, category string) error {
	if page < 1 {
		page = 1
	}
	defer c.busy.Enter()()
	ticket := c.page.Begin()
	pp, err := c.api.Products(ctx, sess, page, category)
	if err != nil {
		zap.L().Error("fetch catalog failed",
			zap.Int("page", page),
			zap.String("category", category),
			zap.Error(err),
		)
		return fmt.Errorf("fetch catalog page %d: %w", page, err)
	}
	c.page.Publish(ticket, *pp)
	return nil
}

func (c *CatalogController) Snapshot() domain.ProductPage {
	return c.page.Snapshot()
}

// DetailController shows a single product and adds it to the cart.
type DetailController struct {
	api  CatalogAPI
	cart *CartController
	busy *Busy

	mu      sync.Mutex
	product *domain.Product
	seq     *store.Store[domain.Product]
}

func NewDetailController(api CatalogAPI, cart *CartController, busy *Busy) *DetailController {
	return &DetailController{
		api:  api,
		cart: cart,
		busy: busy,
		seq:  store.New("detail", domain.Product{}),
	}
}

// Load fetches the product with the given id.
func (d *DetailController) Load(ctx context.Context, sess shopapi.Session, id string) (domain.Product, error) {
	defer d.busy.Enter()()
	ticket := d.seq.Begin()
	p, err := d.api.Product(ctx, sess, id)
	if err != nil {
		zap.L().Error("fetch product failed", zap.String("id", id), zap.Error(err))
		return domain.Product{}, fmt.Errorf("fetch product %s: %w", id, err)
	}
	if d.seq.Publish(ticket, p.Clone()) {
		d.mu.Lock()
		cp := p.Clone()
		d.product = &cp
		d.mu.Unlock()
	}
	return p.Clone(), nil
}

// Current returns the last loaded product.
func (d *DetailController) Current() (domain.Product, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.product == nil {
		return domain.Product{}, false
	}
	return d.product.Clone(), true
}

// AddToCart adds qty units of the loaded product. qty must be within
// QtyOptions.
func (d *DetailController) AddToCart(ctx context.Context, sess shopapi.Session, qty int) error {
	if qty < 1 || qty > MaxQty {
		return ErrInvalidQty
	}
	p, ok := d.Current()
	if !ok {
		return fmt.Errorf("add to cart: no product loaded")
	}
	return d.cart.Add(ctx, sess, p.ID, qty)
}

