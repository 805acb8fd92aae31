package domain

// Recipient is the shipping contact submitted at checkout.
type Recipient struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Tel     string `json:"tel"`
	Address string `json:"address"`
}

// Order is the checkout payload.
type Order struct {
	User    Recipient `json:"user"`
	Message string    `json:"message"`
}

// OrderResult is returned by the remote API once an order is placed.
type OrderResult struct {
	OrderID  string  `json:"orderId"`
	Total    float64 `json:"total"`
	CreateAt int64   `json:"create_at"`
}
