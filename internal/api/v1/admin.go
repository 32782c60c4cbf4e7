package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/storefront/internal/domain"
)

type ProductBody struct {
	Name        string  `json:"name" minLength:"1" maxLength:"100" doc:"Product name"`
	Description string  `json:"description,omitempty" maxLength:"5000" doc:"Product description"`
	Price       float64 `json:"price" minimum:"0" doc:"Unit price"`
	Stock       int     `json:"stock" minimum:"0" doc:"Units in stock"`
	Image       string  `json:"image,omitempty" maxLength:"255" doc:"Image file name"`
}

type CreateProductInput struct {
	Body ProductBody
}

type UpdateProductInput struct {
	ID   int64 `path:"id" minimum:"1" doc:"Product ID"`
	Body ProductBody
}

type ProductOutput struct {
	Body *domain.Product
}

type DeleteProductInput struct {
	ID int64 `path:"id" minimum:"1" doc:"Product ID"`
}

type ListUsersOutput struct {
	Body []*domain.User
}

type ToggleAdminInput struct {
	ID int64 `path:"id" minimum:"1" doc:"User ID"`
}

type UserOutput struct {
	Body *domain.User
}

// RegisterAdminRoutes registers catalog, user and order administration.
// Callers must mount them behind an admin role check.
func RegisterAdminRoutes(api huma.API, store DataStore) {
	huma.Register(api, huma.Operation{
		OperationID: "admin-list-products",
		Method:      http.MethodGet,
		Path:        "/admin/products",
		Summary:     "List products",
		Tags:        []string{"Admin"},
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
		OperationID:   "admin-create-product",
		Method:        http.MethodPost,
		Path:          "/admin/products",
		Summary:       "Create a product",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateProductInput) (*ProductOutput, error) {
		p := &domain.Product{}
		input.Body.apply(p)

		if err := store.Products().Create(ctx, p); err != nil {
			return nil, huma.Error500InternalServerError("failed to create product", err)
		}

		return &ProductOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-update-product",
		Method:      http.MethodPut,
		Path:        "/admin/products/{id}",
		Summary:     "Replace a product",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *UpdateProductInput) (*ProductOutput, error) {
		p, err := store.Products().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("product not found")
			}
			return nil, huma.Error500InternalServerError("failed to get product", err)
		}

		input.Body.apply(p)

		if err := store.Products().Update(ctx, p); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("product not found")
			}
			return nil, huma.Error500InternalServerError("failed to update product", err)
		}

		return &ProductOutput{Body: p}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-delete-product",
		Method:      http.MethodDelete,
		Path:        "/admin/products/{id}",
		Summary:     "Delete a product",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *DeleteProductInput) (*struct{}, error) {
		if err := store.Products().Delete(ctx, input.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("product not found")
			}
			return nil, huma.Error500InternalServerError("failed to delete product", err)
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-list-users",
		Method:      http.MethodGet,
		Path:        "/admin/users",
		Summary:     "List users",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
		users, err := store.Users().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list users", err)
		}
		if users == nil {
			users = []*domain.User{}
		}

		return &ListUsersOutput{Body: users}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-toggle-admin",
		Method:      http.MethodPost,
		Path:        "/admin/users/{id}/toggle-admin",
		Summary:     "Grant or revoke admin rights",
		Description: "Admins cannot change their own status.",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, input *ToggleAdminInput) (*UserOutput, error) {
		callerID, err := currentUserID(ctx)
		if err != nil {
			return nil, err
		}
		if callerID == input.ID {
			return nil, huma.Error400BadRequest("cannot change your own admin status")
		}

		user, err := store.Users().GetByID(ctx, input.ID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to get user", err)
		}

		user.IsAdmin = !user.IsAdmin
		if err := store.Users().SetAdmin(ctx, user.ID, user.IsAdmin); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, huma.Error404NotFound("user not found")
			}
			return nil, huma.Error500InternalServerError("failed to update user", err)
		}

		return &UserOutput{Body: user}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "admin-list-orders",
		Method:      http.MethodGet,
		Path:        "/admin/orders",
		Summary:     "List all orders",
		Description: "Newest first.",
		Tags:        []string{"Admin"},
	}, func(ctx context.Context, _ *struct{}) (*ListOrdersOutput, error) {
		orders, err := store.Orders().List(ctx)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list orders", err)
		}

		return &ListOrdersOutput{Body: newOrderViews(orders)}, nil
	})
}

func (b *ProductBody) apply(p *domain.Product) {
	p.Name = b.Name
	p.Description = b.Description
	p.Price = b.Price
	p.Stock = b.Stock
	p.Image = b.Image
}
