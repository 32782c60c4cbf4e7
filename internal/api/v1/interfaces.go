package v1

import (
	"context"

	"github.com/gosuda/storefront/internal/auth"
	"github.com/gosuda/storefront/internal/domain"
	"github.com/gosuda/storefront/internal/tracking"
)

// DataStore abstracts the repository accessor pattern for handler testing.
// *postgres.Store satisfies this interface.
type DataStore interface {
	Users() domain.UserRepository
	Products() domain.ProductRepository
	Carts() domain.CartRepository
	Orders() domain.OrderRepository
}

// AuthService abstracts authentication operations for handler testing.
// *auth.Service satisfies this interface.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*auth.TokenPair, *domain.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
}

// Tracker emits storefront analytics events. *tracking.Tracker satisfies
// this interface. Results are informational; handlers never fail on them.
type Tracker interface {
	TrackViewItem(ctx context.Context, itemID int64, itemName string, price float64) tracking.DeliveryResult
	TrackAddToCart(ctx context.Context, itemID int64, itemName string, price float64, quantity int, currency string) tracking.DeliveryResult
	TrackPurchase(ctx context.Context, transactionID string, value float64, currency string, items []tracking.Item) tracking.DeliveryResult
	TrackLogout(ctx context.Context) tracking.DeliveryResult
}

// Notifier announces placed orders. *notify.Notifier satisfies this interface.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *domain.Order, username string) error
}
