package v1

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/storefront/internal/domain"
	"github.com/gosuda/storefront/internal/server/middleware"
)

// currentUserID returns the authenticated caller or a 401 error.
func currentUserID(ctx context.Context) (int64, error) {
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		return 0, huma.Error401Unauthorized("authentication required")
	}
	return userID, nil
}

// OrderView is an order as returned by the API, with its computed total.
type OrderView struct {
	domain.Order
	Total float64 `json:"total"`
}

func newOrderView(o *domain.Order) OrderView {
	return OrderView{Order: *o, Total: o.Total()}
}

func newOrderViews(orders []*domain.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o))
	}
	return views
}
