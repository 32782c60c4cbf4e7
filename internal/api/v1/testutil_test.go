package v1_test

import (
	"context"
	"sync"

	"github.com/gosuda/storefront/internal/auth"
	"github.com/gosuda/storefront/internal/domain"
	"github.com/gosuda/storefront/internal/server/middleware"
	"github.com/gosuda/storefront/internal/tracking"
)

// ---------------------------------------------------------------------------
// Context helpers: inject user/role into context for DoCtx
// ---------------------------------------------------------------------------

func userCtx(userID int64) context.Context {
	return middleware.WithUser(context.Background(), userID, domain.RoleCustomer)
}

func adminCtx(userID int64) context.Context {
	return middleware.WithUser(context.Background(), userID, domain.RoleAdmin)
}

// ---------------------------------------------------------------------------
// Mock DataStore
// ---------------------------------------------------------------------------

type mockDataStore struct {
	users    domain.UserRepository
	products domain.ProductRepository
	carts    domain.CartRepository
	orders   domain.OrderRepository
}

func (m *mockDataStore) Users() domain.UserRepository       { return m.users }
func (m *mockDataStore) Products() domain.ProductRepository { return m.products }
func (m *mockDataStore) Carts() domain.CartRepository       { return m.carts }
func (m *mockDataStore) Orders() domain.OrderRepository     { return m.orders }

// ---------------------------------------------------------------------------
// Mock UserRepository
// ---------------------------------------------------------------------------

type mockUserRepo struct {
	getByIDFunc  func(ctx context.Context, id int64) (*domain.User, error)
	listFunc     func(ctx context.Context) ([]*domain.User, error)
	setAdminFunc func(ctx context.Context, id int64, isAdmin bool) error
}

func (m *mockUserRepo) Create(context.Context, *domain.User) error { return nil }

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockUserRepo) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	return m.listFunc(ctx)
}

func (m *mockUserRepo) Count(context.Context) (int64, error) { return 0, nil }

func (m *mockUserRepo) SetAdmin(ctx context.Context, id int64, isAdmin bool) error {
	return m.setAdminFunc(ctx, id, isAdmin)
}

// ---------------------------------------------------------------------------
// Mock ProductRepository
// ---------------------------------------------------------------------------

type mockProductRepo struct {
	createFunc  func(ctx context.Context, p *domain.Product) error
	getByIDFunc func(ctx context.Context, id int64) (*domain.Product, error)
	listFunc    func(ctx context.Context) ([]*domain.Product, error)
	updateFunc  func(ctx context.Context, p *domain.Product) error
	deleteFunc  func(ctx context.Context, id int64) error
}

func (m *mockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return m.createFunc(ctx, p)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockProductRepo) List(ctx context.Context) ([]*domain.Product, error) {
	return m.listFunc(ctx)
}

func (m *mockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	return m.updateFunc(ctx, p)
}

func (m *mockProductRepo) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock CartRepository
// ---------------------------------------------------------------------------

type mockCartRepo struct {
	addFunc        func(ctx context.Context, userID, productID int64, quantity int) (*domain.CartItem, error)
	getByIDFunc    func(ctx context.Context, id int64) (*domain.CartItem, error)
	listByUserFunc func(ctx context.Context, userID int64) ([]*domain.CartItem, error)
	deleteFunc     func(ctx context.Context, id int64) error
}

func (m *mockCartRepo) Add(ctx context.Context, userID, productID int64, quantity int) (*domain.CartItem, error) {
	return m.addFunc(ctx, userID, productID, quantity)
}

func (m *mockCartRepo) GetByID(ctx context.Context, id int64) (*domain.CartItem, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockCartRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.CartItem, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockCartRepo) Delete(ctx context.Context, id int64) error {
	return m.deleteFunc(ctx, id)
}

// ---------------------------------------------------------------------------
// Mock OrderRepository
// ---------------------------------------------------------------------------

type mockOrderRepo struct {
	placeFromCartFunc func(ctx context.Context, userID int64) (*domain.Order, error)
	listByUserFunc    func(ctx context.Context, userID int64) ([]*domain.Order, error)
	listFunc          func(ctx context.Context) ([]*domain.Order, error)
}

func (m *mockOrderRepo) PlaceFromCart(ctx context.Context, userID int64) (*domain.Order, error) {
	return m.placeFromCartFunc(ctx, userID)
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	return m.listByUserFunc(ctx, userID)
}

func (m *mockOrderRepo) List(ctx context.Context) ([]*domain.Order, error) {
	return m.listFunc(ctx)
}

// ---------------------------------------------------------------------------
// Mock AuthService
// ---------------------------------------------------------------------------

type mockAuthService struct {
	registerFunc     func(ctx context.Context, username, email, password string) (*domain.User, error)
	loginFunc        func(ctx context.Context, username, password string) (*auth.TokenPair, *domain.User, error)
	refreshTokenFunc func(ctx context.Context, refreshToken string) (string, error)
}

func (m *mockAuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	return m.registerFunc(ctx, username, email, password)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*auth.TokenPair, *domain.User, error) {
	return m.loginFunc(ctx, username, password)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	return m.refreshTokenFunc(ctx, refreshToken)
}

// ---------------------------------------------------------------------------
// Recording Tracker
// ---------------------------------------------------------------------------

type trackedCall struct {
	event   string
	itemID  int64
	name    string
	price   float64
	qty     int
	txID    string
	value   float64
	items   []tracking.Item
	userCtx bool
}

type recordingTracker struct {
	mu    sync.Mutex
	calls []trackedCall
}

func (r *recordingTracker) record(ctx context.Context, c trackedCall) tracking.DeliveryResult {
	_, c.userCtx = middleware.UserIDFromContext(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return tracking.DeliveryResult{Outcome: tracking.Delivered, StatusCode: 204}
}

func (r *recordingTracker) Calls() []trackedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]trackedCall(nil), r.calls...)
}

func (r *recordingTracker) TrackViewItem(ctx context.Context, itemID int64, itemName string, price float64) tracking.DeliveryResult {
	return r.record(ctx, trackedCall{event: tracking.EventViewItem, itemID: itemID, name: itemName, price: price})
}

func (r *recordingTracker) TrackAddToCart(ctx context.Context, itemID int64, itemName string, price float64, quantity int, _ string) tracking.DeliveryResult {
	return r.record(ctx, trackedCall{event: tracking.EventAddToCart, itemID: itemID, name: itemName, price: price, qty: quantity})
}

func (r *recordingTracker) TrackPurchase(ctx context.Context, transactionID string, value float64, _ string, items []tracking.Item) tracking.DeliveryResult {
	return r.record(ctx, trackedCall{event: tracking.EventPurchase, txID: transactionID, value: value, items: items})
}

func (r *recordingTracker) TrackLogout(ctx context.Context) tracking.DeliveryResult {
	return r.record(ctx, trackedCall{event: tracking.EventUserLogout})
}

// ---------------------------------------------------------------------------
// Mock Notifier
// ---------------------------------------------------------------------------

type mockNotifier struct {
	mu        sync.Mutex
	orders    []int64
	usernames []string
	err       error
}

func (m *mockNotifier) OrderPlaced(_ context.Context, order *domain.Order, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, order.ID)
	m.usernames = append(m.usernames, username)
	return m.err
}
