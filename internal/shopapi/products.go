package shopapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/guonaihong/gout"
	"github.com/pkg/errors"

	"github.com/talkincode/hexshop/internal/domain"
)

type productBody struct {
	Data domain.Product `json:"data"`
}

// AdminProducts fetches one page of the admin product list.
func (c *Client) AdminProducts(ctx context.Context, sess Session, page int) (*domain.ProductPage, error) {
	var res domain.ProductPage
	err := c.do(ctx, sess, "admin products", request{
		method: http.MethodGet,
		url:    c.shopURL("/admin/products"),
		query:  gout.H{"page": page},
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Products fetches one page of the public catalog, optionally by category.
func (c *Client) Products(ctx context.Context, sess Session, page int, category string) (*domain.ProductPage, error) {
	query := gout.H{"page": page}
	if category != "" {
		query["category"] = category
	}
	var res domain.ProductPage
	err := c.do(ctx, sess, "products", request{
		method: http.MethodGet,
		url:    c.shopURL("/products"),
		query:  query,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Product fetches a single public product.
func (c *Client) Product(ctx context.Context, sess Session, id string) (*domain.Product, error) {
	if id == "" {
		return nil, errors.New("shopapi product: empty id")
	}
	var res struct {
		Product domain.Product `json:"product"`
	}
	err := c.do(ctx, sess, "product", request{
		method: http.MethodGet,
		url:    c.shopURL("/product/%s", url.PathEscape(id)),
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res.Product, nil
}

func (c *Client) CreateProduct(ctx context.Context, sess Session, p domain.Product) error {
	p.ID = ""
	return c.do(ctx, sess, "create product", request{
		method: http.MethodPost,
		url:    c.shopURL("/admin/product"),
		json:   productBody{Data: p},
	}, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, sess Session, p domain.Product) error {
	if p.ID == "" {
		return errors.New("shopapi update product: empty id")
	}
	return c.do(ctx, sess, "update product", request{
		method: http.MethodPut,
		url:    c.shopURL("/admin/product/%s", url.PathEscape(p.ID)),
		json:   productBody{Data: p},
	}, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, sess Session, id string) error {
	if id == "" {
		return errors.New("shopapi delete product: empty id")
	}
	return c.do(ctx, sess, "delete product", request{
		method: http.MethodDelete,
		url:    c.shopURL("/admin/product/%s", url.PathEscape(id)),
	}, nil)
}

// UploadImage posts the file as the multipart field file-to-upload and
// returns the stored image URL.
func (c *Client) UploadImage(ctx context.Context, sess Session, filename string, data []byte) (string, error) {
	var res struct {
		ImageURL string `json:"imageUrl"`
	}
	err := c.do(ctx, sess, "upload", request{
		method: http.MethodPost,
		url:    c.shopURL("/admin/upload"),
		form: gout.H{
			"file-to-upload": gout.FormType{FileName: filename, File: gout.FormMem(data)},
		},
	}, &res)
	if err != nil {
		return "", err
	}
	if res.ImageURL == "" {
		return "", errors.New("shopapi upload: empty imageUrl in response")
	}
	return res.ImageURL, nil
}
