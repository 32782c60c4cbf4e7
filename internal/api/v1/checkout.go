package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/storefront/internal/domain"
	"github.com/gosuda/storefront/internal/metrics"
	"github.com/gosuda/storefront/internal/tracking"
)

const notifyTimeout = 5 * time.Second

type CheckoutOutput struct {
	Body OrderView
}

type ListOrdersOutput struct {
	Body []OrderView
}

// RegisterOrderRoutes registers checkout and the caller's order history.
func RegisterOrderRoutes(api huma.API, store DataStore, tracker Tracker, notifier Notifier) {
	huma.Register(api, huma.Operation{
		OperationID:   "checkout",
		Method:        http.MethodPost,
		Path:          "/checkout",
		Summary:       "Place an order from the cart",
		Description:   "Copies the cart into a completed order, decrements stock and empties the cart. Reported as a purchase event.",
		Tags:          []string{"Orders"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, _ *struct{}) (*CheckoutOutput, error) {
		userID, err := currentUserID(ctx)
		if err != nil {
			return nil, err
		}

		order, err := store.Orders().PlaceFromCart(ctx, userID)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrEmptyCart):
				return nil, huma.Error400BadRequest("cart is empty")
			case errors.Is(err, domain.ErrOutOfStock):
				return nil, huma.Error409Conflict("insufficient stock for an item in the cart")
			}
			return nil, huma.Error500InternalServerError("failed to place order", err)
		}
		metrics.OrdersPlacedTotal.Inc()

		tracker.TrackPurchase(ctx, strconv.FormatInt(order.ID, 10), order.Total(), tracking.DefaultCurrency, purchaseItems(order))
		notifyOrder(ctx, store, notifier, order)

		return &CheckoutOutput{Body: newOrderView(order)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-orders",
		Method:      http.MethodGet,
		Path:        "/orders",
		Summary:     "List the caller's orders",
		Description: "Newest first.",
		Tags:        []string{"Orders"},
	}, func(ctx context.Context, _ *struct{}) (*ListOrdersOutput, error) {
		userID, err := currentUserID(ctx)
		if err != nil {
			return nil, err
		}

		orders, err := store.Orders().ListByUser(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list orders", err)
		}

		return &ListOrdersOutput{Body: newOrderViews(orders)}, nil
	})
}

func purchaseItems(order *domain.Order) []tracking.Item {
	items := make([]tracking.Item, 0, len(order.Items))
	for _, it := range order.Items {
		name := ""
		if it.Product != nil {
			name = it.Product.Name
		}
		items = append(items, tracking.Item{
			ItemID:   it.ProductID,
			ItemName: name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return items
}

// notifyOrder reports the order to staff. The order is already committed, so
// failures are only logged.
func notifyOrder(ctx context.Context, store DataStore, notifier Notifier, order *domain.Order) {
	username := fmt.Sprintf("user %d", order.UserID)
	if user, err := store.Users().GetByID(ctx, order.UserID); err == nil {
		username = user.Username
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := notifier.OrderPlaced(ctx, order, username); err != nil {
		log.Warn().Err(err).Int64("order_id", order.ID).Msg("order notification failed")
	}
}
