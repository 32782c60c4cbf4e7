package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/storefront/internal/domain"
)

type ListProductsOutput struct {
	Body []*domain.Product
}

type GetProductInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Product ID"`
}

type GetProductOutput struct {
	Body *domain.Product
}

// RegisterCatalogRoutes registers the public product catalog.
func RegisterCatalogRoutes(api huma.API, store DataStore, tracker Tracker) {
	huma.Register(api, huma.Operation{
		OperationID: "list-products",
		Method:      http.MethodGet,
		Path:        "/products",
		Summary:     "List products",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, _ *struct{}) (*ListProductsOutput, error) {
		products, err := store.Products().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list products", err)
		}
		if products == nil {
			products = []*domain.Product{}
		}

		return &ListProductsOutput{Body: products}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-product",
		Method:      http.MethodGet,
		Path:        "/products/{id}",
		Summary:     "Get a product",
		Description: "Viewing a product is reported as a view_item event.",
		Tags:        []string{"Catalog"},
	}, func(ctx context.Context, input *GetProductInput) (*GetProductOutput, error) {
		product, err := store.Products().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("product not found")
			}
			return nil, huma.Error500InternalServerError("failed to get product", err)
		}

		tracker.TrackViewItem(ctx, product.ID, product.Name, product.Price)

		return &GetProductOutput{Body: product}, nil
	})
}
