// Package storefront holds the per-session controllers of the shop and the
// admin console: pagination, the product edit form, the admin product list,
// the cart and the catalog/detail views. Controllers own their authoritative
// state, talk to the remote API through the interfaces below and publish
// snapshots through store.Store.
package storefront

import (
	"context"
	"errors"

	"github.com/talkincode/hexshop/internal/domain"
	"github.com/talkincode/hexshop/internal/shopapi"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrFormClosed       = errors.New("product form is not open")
	ErrInvalidField     = errors.New("invalid field")
	ErrNoDeleteTarget   = errors.New("no product selected for deletion")
	ErrInvalidQty       = errors.New("invalid quantity")
	ErrReloadFailed     = errors.New("saved, but reloading the list failed")
)

// AdminProductAPI is the part of the remote API the admin console uses.
type AdminProductAPI interface {
	CheckSession(ctx context.Context, sess shopapi.Session) error
	AdminProducts(ctx context.Context, sess shopapi.Session, page int) (*domain.ProductPage, error)
	CreateProduct(ctx context.Context, sess shopapi.Session, p domain.Product) error
	UpdateProduct(ctx context.Context, sess shopapi.Session, p domain.Product) error
	DeleteProduct(ctx context.Context, sess shopapi.Session, id string) error
	UploadImage(ctx context.Context, sess shopapi.Session, filename string, data []byte) (string, error)
}

// CartAPI is the part of the remote API the cart uses.
type CartAPI interface {
	Cart(ctx context.Context, sess shopapi.Session) (*domain.Cart, error)
	AddCartItem(ctx context.Context, sess shopapi.Session, productID string, qty int) error
	UpdateCartItem(ctx context.Context, sess shopapi.Session, itemID, productID string, qty int) error
	RemoveCartItem(ctx context.Context, sess shopapi.Session, itemID string) error
	ClearCart(ctx context.Context, sess shopapi.Session) error
	PlaceOrder(ctx context.Context, sess shopapi.Session, order domain.Order) (*domain.OrderResult, error)
}

// CatalogAPI is the public product read side.
type CatalogAPI interface {
	Products(ctx context.Context, sess shopapi.Session, page int, category string) (*domain.ProductPage, error)
	Product(ctx context.Context, sess shopapi.Session, id string) (*domain.Product, error)
}

// API is everything a Workspace needs.
type API interface {
	AdminProductAPI
	CartAPI
	CatalogAPI
}

var _ API = (*shopapi.Client)(nil)
