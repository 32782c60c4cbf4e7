// Package tracking relays storefront analytics events to a tag-management
// collector and keeps a short in-memory history of them for debugging.
//
// A single Tracker is built at startup and shared by every request. Events
// are always recorded in the History before delivery is attempted, and
// delivery failures never reach the caller.
package tracking

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/storefront/internal/metrics"
)

// ErrProvisioning is returned by Provision when the configuration is not
// usable for the configured container.
var ErrProvisioning = errors.New("tracking: provisioning failed")

// SessionResolver returns the visitor session carried by ctx.
type SessionResolver func(ctx context.Context) (SessionValues, bool)

// UserResolver returns the authenticated user id carried by ctx.
type UserResolver func(ctx context.Context) (int64, bool)

// Option configures a Tracker.
type Option func(*Tracker)

// WithSessionResolver sets how the visitor session is found for a request.
func WithSessionResolver(fn SessionResolver) Option {
	return func(t *Tracker) { t.sessions = fn }
}

// WithUserResolver sets how the authenticated user is found for a request.
func WithUserResolver(fn UserResolver) Option {
	return func(t *Tracker) { t.users = fn }
}

// WithClient replaces the collector client.
func WithClient(c *Client) Option {
	return func(t *Tracker) { t.client = c }
}

// WithClock replaces time.Now for event and history timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// Tracker composes event building, history and delivery.
type Tracker struct {
	cfg      Config
	history  *History
	client   *Client
	now      func() time.Time
	sessions SessionResolver
	users    UserResolver

	mu          sync.Mutex
	provisioned bool
}

// New builds a Tracker and attempts provisioning once. A provisioning
// failure is logged and retried on later sends.
func New(cfg Config, opts ...Option) *Tracker {
	t := &Tracker{
		cfg:     cfg,
		history: NewHistory(HistoryCapacity),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.client == nil {
		t.client = NewClient(cfg, nil)
	}
	t.history.now = t.now
	t.history.onResize = func(n int) { metrics.TrackingHistorySize.Set(float64(n)) }

	if err := t.Provision(); err != nil {
		log.Warn().Err(err).Str("container_id", cfg.ContainerID).Msg("tracking not provisioned")
	}
	return t
}

// Config returns the collector configuration.
func (t *Tracker) Config() Config { return t.cfg }

// History returns the event history.
func (t *Tracker) History() *History { return t.history }

// Provisioned reports whether provisioning has succeeded.
func (t *Tracker) Provisioned() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.provisioned
}

// Provision validates the configuration against the container. Once it
// succeeds it is not run again.
func (t *Tracker) Provision() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.provisioned {
		return nil
	}

	if strings.TrimSpace(t.cfg.ContainerID) == "" {
		return fmt.Errorf("%w: container id is empty", ErrProvisioning)
	}
	if t.cfg.ProvisioningToken != "" {
		if id, ok := tokenContainerID(t.cfg.ProvisioningToken); ok && id != t.cfg.ContainerID {
			return fmt.Errorf("%w: token is for container %q, configured %q", ErrProvisioning, id, t.cfg.ContainerID)
		}
	}

	t.provisioned = true
	log.Info().Str("container_id", t.cfg.ContainerID).Msg("tracking provisioned")
	return nil
}

// tokenContainerID extracts the id= parameter of a base64 encoded query
// string token. Tokens in any other shape are opaque.
func tokenContainerID(token string) (string, bool) {
	var raw []byte
	var err error
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
		if raw, err = enc.DecodeString(token); err == nil {
			break
		}
	}
	if err != nil {
		return "", false
	}
	q, err := url.ParseQuery(string(raw))
	if err != nil || !q.Has("id") {
		return "", false
	}
	return q.Get("id"), true
}

// SendEvent builds, records and delivers an event. The event is recorded
// even when delivery fails.
func (t *Tracker) SendEvent(ctx context.Context, name string, payload map[string]any) DeliveryResult {
	if t.cfg.ProvisioningToken != "" && !t.Provisioned() {
		if err := t.Provision(); err != nil {
			log.Warn().Err(err).Msg("tracking provisioning retry failed")
		}
	}

	e := t.build(ctx, name, payload)
	t.history.Record(e)
	metrics.TrackingEventsTotal.WithLabelValues(name).Inc()

	// Delivery outlives a client that hangs up mid-request.
	return t.client.Deliver(context.WithoutCancel(ctx), e)
}

func (t *Tracker) build(ctx context.Context, name string, payload map[string]any) Event {
	req, _ := RequestFromContext(ctx)

	var values SessionValues = memoryValues{}
	if t.sessions != nil {
		if v, ok := t.sessions(ctx); ok {
			values = v
		}
	}

	var userID *int64
	if t.users != nil {
		if id, ok := t.users(ctx); ok {
			userID = &id
		}
	}

	return BuildEvent(name, payload, req, t.cfg, ClientID(values), userID, t.now())
}

// TrackPageview emits page_view titled with the matched route pattern.
func (t *Tracker) TrackPageview(ctx context.Context) DeliveryResult {
	title := ""
	if rctx := chi.RouteContext(ctx); rctx != nil {
		title = rctx.RoutePattern()
	}
	if title == "" {
		req, _ := RequestFromContext(ctx)
		title = req.Path
	}
	return t.SendEvent(ctx, EventPageView, map[string]any{"page_title": title})
}

// TrackPurchase emits purchase. An empty currency means USD.
func (t *Tracker) TrackPurchase(ctx context.Context, transactionID string, value float64, currency string, items []Item) DeliveryResult {
	if currency == "" {
		currency = DefaultCurrency
	}
	payload := map[string]any{
		"transaction_id": transactionID,
		"value":          value,
		"currency":       currency,
	}
	if len(items) > 0 {
		payload["items"] = items
	}
	return t.SendEvent(ctx, EventPurchase, payload)
}

// TrackAddToCart emits add_to_cart for a single line. A non-positive
// quantity means 1 and an empty currency means USD.
func (t *Tracker) TrackAddToCart(ctx context.Context, itemID int64, itemName string, price float64, quantity int, currency string) DeliveryResult {
	if quantity <= 0 {
		quantity = 1
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return t.SendEvent(ctx, EventAddToCart, map[string]any{
		"items": []Item{{
			ItemID:   itemID,
			ItemName: itemName,
			Price:    price,
			Quantity: quantity,
			Currency: currency,
		}},
	})
}

// TrackViewItem emits view_item for a product page.
func (t *Tracker) TrackViewItem(ctx context.Context, itemID int64, itemName string, price float64) DeliveryResult {
	return t.SendEvent(ctx, EventViewItem, map[string]any{
		"items": []Item{{ItemID: itemID, ItemName: itemName, Price: price}},
	})
}

// TrackLogout emits user_logout.
func (t *Tracker) TrackLogout(ctx context.Context) DeliveryResult {
	return t.SendEvent(ctx, EventUserLogout, map[string]any{})
}

// Recent returns the latest history records; see History.Query.
func (t *Tracker) Recent(eventType string, limit int) []HistoryRecord {
	return t.history.Query(eventType, limit)
}
