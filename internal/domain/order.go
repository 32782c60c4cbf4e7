package domain

import (
	"context"
	"time"
)

type Order struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id"`
	DateOrdered time.Time    `json:"date_ordered"`
	Complete    bool         `json:"complete"`
	Items       []*OrderItem `json:"items"`
}

// Total sums the order lines at the price captured when the order was placed.
func (o *Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

type OrderItem struct {
	ID        int64    `json:"id"`
	OrderID   int64    `json:"order_id"`
	ProductID int64    `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Price     float64  `json:"price"`
	Product   *Product `json:"product,omitempty"`
}

type OrderRepository interface {
	// PlaceFromCart turns the user's cart into a completed order in one
	// transaction: lines are copied, stock decremented and the cart emptied.
	// Returns ErrEmptyCart when there is nothing to order.
	PlaceFromCart(ctx context.Context, userID int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	List(ctx context.Context) ([]*Order, error)
}
