package storefront

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/shopapi"
	"github.com/talkincode/hexshop/internal/store"
)

// ProductListController owns the admin product page: the authoritative
// list, its page info, the product form and the delete confirmation.
type ProductListController struct {
	api  AdminProductAPI
	busy *Busy
	form *ProductForm

	mu      sync.Mutex
	mounted bool
	current int
	target  *domain.Product
	page    *store.Store[domain.ProductPage]
}

func NewProductListController(api AdminProductAPI, busy *Busy) *ProductListController {
	c := &ProductListController{
		api:     api,
		busy:    busy,
		current: 1,
		page:    store.New("admin-products", domain.ProductPage{}),
	}
	c.form = NewProductForm(api, c.Reload)
	return c
}

// Mount runs the session check once. A failed check returns
// ErrNotAuthenticated and nothing is fetched; otherwise page 1 is loaded.
func (c *ProductListController) Mount(ctx context.Context, sess shopapi.Session) error {
	if err := c.checkSession(ctx, sess); err != nil {
		zap.L().Warn("session check failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	c.mu.Lock()
	c.mounted = true
	c.mu.Unlock()
	return c.FetchPage(ctx, sess, 1)
}

func (c *ProductListController) checkSession(ctx context.Context, sess shopapi.Session) error {
	if !sess.Authenticated() {
		return errors.New("no session token")
	}
	defer c.busy.Enter()()
	return c.api.CheckSession(ctx, sess)
}

// Mounted reports whether the session check has already succeeded.
func (c *ProductListController) Mounted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounted
}

// Unmount forgets the check result so the next view checks again.
func (c *ProductListController) Unmount() {
	c.mu.Lock()
	c.mounted = false
	c.mu.Unlock()
}

// FetchPage replaces the product list and page info with page from the
// server. A response older than one already applied is dropped.
func (c *ProductListController) FetchPage(ctx context.Context, sess shopapi.Session, page int) error {
	if page < 1 {
		page = 1
	}
	defer c.busy.Enter()()
	ticket := c.page.Begin()
	pp, err := c.api.AdminProducts(ctx, sess, page)
	if err != nil {
		zap.L().Error("fetch admin products failed", zap.Int("page", page), zap.Error(err))
		return fmt.Errorf("fetch products page %d: %w", page, err)
	}
	if c.page.Publish(ticket, *pp) {
		c.mu.Lock()
		c.current = page
		if pp.Pagination.CurrentPage > 0 {
			c.current = pp.Pagination.CurrentPage
		}
		c.mu.Unlock()
	}
	return nil
}

// Reload fetches the current page again.
func (c *ProductListController) Reload(ctx context.Context, sess shopapi.Session) error {
	return c.FetchPage(ctx, sess, c.CurrentPage())
}

func (c *ProductListController) CurrentPage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *ProductListController) Snapshot() domain.ProductPage {
	return c.page.Snapshot()
}

func (c *ProductListController) Store() *store.Store[domain.ProductPage] {
	return c.page
}

func (c *ProductListController) Form() *ProductForm {
	return c.form
}

// Lookup finds a product on the current page.
func (c *ProductListController) Lookup(id string) (domain.Product, bool) {
	return c.page.Snapshot().Find(id)
}

// OpenCreate arms the form with the zeroed template.
func (c *ProductListController) OpenCreate() {
	c.form.Open(ModeCreate, domain.Product{})
}

// OpenEdit arms the form with a copy of p.
func (c *ProductListController) OpenEdit(p domain.Product) {
	c.form.Open(ModeEdit, p.Clone())
}

// OpenDelete arms the delete confirmation with p.
func (c *ProductListController) OpenDelete(p domain.Product) {
	cp := p.Clone()
	c.mu.Lock()
	c.target = &cp
	c.mu.Unlock()
}

// DeleteTarget returns the product awaiting delete confirmation.
func (c *ProductListController) DeleteTarget() (domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.target == nil {
		return domain.Product{}, false
	}
	return c.target.Clone(), true
}

// CancelDelete disarms the delete confirmation.
func (c *ProductListController) CancelDelete() {
	c.mu.Lock()
	c.target = nil
	c.mu.Unlock()
}

// ConfirmDelete deletes the armed product and reloads the current page.
// On failure the confirmation stays armed. A failed reload after a
// successful delete is reported as ErrReloadFailed.
func (c *ProductListController) ConfirmDelete(ctx context.Context, sess shopapi.Session) error {
	target, ok := c.DeleteTarget()
	if !ok {
		return ErrNoDeleteTarget
	}
	defer c.busy.Enter()()
	if err := c.api.DeleteProduct(ctx, sess, target.ID); err != nil {
		zap.L().Warn("delete product failed", zap.String("id", target.ID), zap.Error(err))
		return fmt.Errorf("delete product %s: %w", target.ID, err)
	}
	zap.L().Info("product deleted", zap.String("id", target.ID), zap.String("title", target.Title))

	c.mu.Lock()
	if c.target != nil && c.target.ID == target.ID {
		c.target = nil
	}
	c.mu.Unlock()
	if err := c.Reload(ctx, sess); err != nil {
		return fmt.Errorf("%w: %w", ErrReloadFailed, err)
	}
	return nil
}
