package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/storefront/internal/domain"
	"github.com/gosuda/storefront/internal/tracking"
)

type CartOutput struct {
	Body struct {
		Items []*domain.CartItem `json:"items"`
		Total float64            `json:"total"`
	}
}

type AddCartItemInput struct {
	Body struct {
		ProductID int64 `json:"product_id" minimum:"1" doc:"Product ID"`
		Quantity  int   `json:"quantity,omitempty" minimum:"1" default:"1" doc:"Quantity to add"`
	}
}

type AddCartItemOutput struct {
	Body *domain.CartItem
}

type RemoveCartItemInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Cart item ID"`
}

// RegisterCartRoutes registers the authenticated caller's shopping cart.
func RegisterCartRoutes(api huma.API, store DataStore, tracker Tracker) {
	huma.Register(api, huma.Operation{
		OperationID: "get-cart",
		Method:      http.MethodGet,
		Path:        "/cart",
		Summary:     "Get the cart",
		Tags:        []string{"Cart"},
	}, func(ctx context.Context, _ *struct{}) (*CartOutput, error) {
		userID, err := currentUserID(ctx)
		if err != nil {
			return nil, err
		}

		items, err := store.Carts().ListByUser(ctx, userID)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to load cart", err)
		}
		if items == nil {
			items = []*domain.CartItem{}
		}

		out := &CartOutput{}
		out.Body.Items = items
		out.Body.Total = domain.CartTotal(items)
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-cart-item",
		Method:      http.MethodPost,
		Path:        "/cart/items",
		Summary:     "Add a product to the cart",
		Description: "Adding to an existing line increments its quantity. Reported as an add_to_cart event.",
		Tags:        []string{"Cart"},
	}, func(ctx context.Context, input *AddCartItemInput) (*AddCartItemOutput, error) {
		userID, err := currentUserID(ctx)
		if err != nil {
			return nil, err
		}

		product, err := store.Products().GetByID(ctx, input.Body.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("product not found")
			}
			return nil, huma.Error500InternalServerError("failed to get product", err)
		}

		quantity := max(input.Body.Quantity, 1)
		item, err := store.Carts().Add(ctx, userID, product.ID, quantity)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("product not found")
			}
			return nil, huma.Error500InternalServerError("failed to add to cart", err)
		}

		tracker.TrackAddToCart(ctx, product.ID, product.Name, product.Price, quantity, tracking.DefaultCurrency)

		return &AddCartItemOutput{Body: item}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "remove-cart-item",
		Method:      http.MethodDelete,
		Path:        "/cart/items/{id}",
		Summary:     "Remove a line from the cart",
		Tags:        []string{"Cart"},
	}, func(ctx context.Context, input *RemoveCartItemInput) (*struct{}, error) {
		userID, err := currentUserID(ctx)
		if err != nil {
			return nil, err
		}

		item, err := store.Carts().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("cart item not found")
			}
			return nil, huma.Error500InternalServerError("failed to get cart item", err)
		}
		if item.UserID != userID {
			return nil, huma.Error403Forbidden("cart item belongs to another user")
		}

		if err := store.Carts().Delete(ctx, item.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("cart item not found")
			}
			return nil, huma.Error500InternalServerError("failed to remove cart item", err)
		}

		return nil, nil
	})
}
