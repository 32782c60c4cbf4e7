package domain

import "context"

type CartItem struct {
	ID        int64    `json:"id"`
	UserID    int64    `json:"user_id"`
	ProductID int64    `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// CartTotal sums price times quantity over items that carry their product.
func CartTotal(items []*CartItem) float64 {
	var total float64
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		total += it.Product.Price * float64(it.Quantity)
	}
	return total
}

type CartRepository interface {
	// Add inserts a cart line or increments the quantity of an existing line
	// for the same product. Returns the resulting line.
	Add(ctx context.Context, userID, productID int64, quantity int) (*CartItem, error)
	GetByID(ctx context.Context, id int64) (*CartItem, error)
	ListByUser(ctx context.Context, userID int64) ([]*CartItem, error)
	Delete(ctx context.Context, id int64) error
}
