package domain

// ProductContent is the free-text detail block attached to a product.
type ProductContent struct {
	MaterialContents string `json:"material_contents"`
	Notes            string `json:"notes"`
	Origin           string `json:"origin"`
	ShelfLife        string `json:"shelf_life"`
}

// Product mirrors the remote shop API product record
type Product struct {
	ID          string         `json:"id,omitempty"`
	Title       string         `json:"title"`
	Category    string         `json:"category"`
	Unit        string         `json:"unit"`
	OriginPrice float64        `json:"origin_price"`
	Price       float64        `json:"price"`
	Description string         `json:"description"`
	IsEnabled   int            `json:"is_enabled"` // 0 or 1
	ImageURL    string         `json:"imageUrl"`
	ImagesURL   []string       `json:"imagesUrl"`
	Content     ProductContent `json:"content"`
	Num         int            `json:"num,omitempty"`
}

// Enabled reports the is_enabled flag as a bool.
func (p Product) Enabled() bool {
	return p.IsEnabled != 0
}

// Clone returns a deep copy so callers can mutate the image list freely.
func (p Product) Clone() Product {
	cp := p
	if p.ImagesURL != nil {
		cp.ImagesURL = append([]string(nil), p.ImagesURL...)
	}
	return cp
}

// PageInfo is the pagination block returned by the remote API. It is never
// computed locally.
type PageInfo struct {
	TotalPages  int    `json:"total_pages"`
	CurrentPage int    `json:"current_page"`
	HasPre      bool   `json:"has_pre"`
	HasNext     bool   `json:"has_next"`
	Category    string `json:"category"`
}

// ProductPage is one page of products together with its page info.
type ProductPage struct {
	Products   []Product `json:"products"`
	Pagination PageInfo  `json:"pagination"`
}

// Find returns the product with the given id from the page.
func (pp ProductPage) Find(id string) (Product, bool) {
	for _, p := range pp.Products {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return Product{}, false
}
