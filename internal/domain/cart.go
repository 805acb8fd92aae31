package domain

// CartItem is one line of the server-side cart.
type CartItem struct {
	ID         string  `json:"id"`
	ProductID  string  `json:"product_id"`
	Qty        int     `json:"qty"`
	Total      float64 `json:"total"`
	FinalTotal float64 `json:"final_total"`
	Product    Product `json:"product"`
}

// Cart is the authoritative cart snapshot. Totals come from the server.
type Cart struct {
	Carts      []CartItem `json:"carts"`
	Total      float64    `json:"total"`
	FinalTotal float64    `json:"final_total"`
}

// Count returns the number of units in the cart.
func (c Cart) Count() int {
	n := 0
	for _, it := range c.Carts {
		n += it.Qty
	}
	return n
}

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool {
	return len(c.Carts) == 0
}
