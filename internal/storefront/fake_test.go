package storefront

import (
	"context"
	"errors"
	"sync"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/shopapi"
)

var errRemote = errors.New("remote failure")

// fakeAPI records every call and fails the ones named in fail.
type fakeAPI struct {
	mu      sync.Mutex
	calls   []string
	fail    map[string]error
	created []domain.Product
	updated []domain.Product
	deleted []string
	cart    domain.Cart
	pages   map[int]domain.ProductPage
	product domain.Product
	order   *domain.Order
	uploads []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		fail:  make(map[string]error),
		pages: make(map[int]domain.ProductPage),
	}
}

func (f *fakeAPI) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.fail[name]
}

func (f *fakeAPI) failOn(name string) {
	f.mu.Lock()
	f.fail[name] = errRemote
	f.mu.Unlock()
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) CheckSession(ctx context.Context, sess shopapi.Session) error {
	return f.record("check")
}

func (f *fakeAPI) AdminProducts(ctx context.Context, sess shopapi.Session, page int) (*domain.ProductPage, error) {
	if err := f.record("admin-products"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	pp, ok := f.pages[page]
	if !ok {
		pp = domain.ProductPage{Pagination: domain.PageInfo{TotalPages: 1, CurrentPage: page}}
	}
	return &pp, nil
}

func (f *fakeAPI) CreateProduct(ctx context.Context, sess shopapi.Session, p domain.Product) error {
	if err := f.record("create"); err != nil {
		return err
	}
	f.mu.Lock()
	f.created = append(f.created, p)
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) UpdateProduct(ctx context.Context, sess shopapi.Session, p domain.Product) error {
	if err := f.record("update"); err != nil {
		return err
	}
	f.mu.Lock()
	f.updated = append(f.updated, p)
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) DeleteProduct(ctx context.Context, sess shopapi.Session, id string) error {
	if err := f.record("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) UploadImage(ctx context.Context, sess shopapi.Session, filename string, data []byte) (string, error) {
	if err := f.record("upload"); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.uploads = append(f.uploads, filename)
	f.mu.Unlock()
	return "https://img.test/" + filename, nil
}

func (f *fakeAPI) Cart(ctx context.Context, sess shopapi.Session) (*domain.Cart, error) {
	if err := f.record("cart"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.cart
	c.Carts = append([]domain.CartItem(nil), f.cart.Carts...)
	return &c, nil
}

func (f *fakeAPI) AddCartItem(ctx context.Context, sess shopapi.Session, productID string, qty int) error {
	return f.record("cart-add")
}

func (f *fakeAPI) UpdateCartItem(ctx context.Context, sess shopapi.Session, itemID, productID string, qty int) error {
	return f.record("cart-update")
}

func (f *fakeAPI) RemoveCartItem(ctx context.Context, sess shopapi.Session, itemID string) error {
	return f.record("cart-remove")
}

func (f *fakeAPI) ClearCart(ctx context.Context, sess shopapi.Session) error {
	return f.record("cart-clear")
}

func (f *fakeAPI) PlaceOrder(ctx context.Context, sess shopapi.Session, order domain.Order) (*domain.OrderResult, error) {
	if err := f.record("order"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.order = &order
	f.mu.Unlock()
	return &domain.OrderResult{OrderID: "o-1", Total: 100}, nil
}

func (f *fakeAPI) Products(ctx context.Context, sess shopapi.Session, page int, category string) (*domain.ProductPage, error) {
	if err := f.record("products"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	pp := f.pages[page]
	pp.Pagination.Category = category
	return &pp, nil
}

func (f *fakeAPI) Product(ctx context.Context, sess shopapi.Session, id string) (*domain.Product, error) {
	if err := f.record("product"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.product.Clone()
	return &p, nil
}

var _ API = (*fakeAPI)(nil)

var sess = shopapi.Session{Token: "t"}

// recordBusy collects every published busy transition.
func recordBusy(b *Busy) (transitions func() []bool) {
	var mu sync.Mutex
	var seen []bool
	b.Store().Subscribe(func(v bool) {
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	})
	return func() []bool {
		mu.Lock()
		defer mu.Unlock()
		return append([]bool(nil), seen...)
	}
}
