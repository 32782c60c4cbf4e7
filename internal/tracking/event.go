package tracking

import (
	"maps"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Event names emitted by the storefront.
const (
	EventPageView   = "page_view"
	EventViewItem   = "view_item"
	EventAddToCart  = "add_to_cart"
	EventPurchase   = "purchase"
	EventUserLogout = "user_logout"
)

// DefaultCurrency is used when a caller passes an empty currency.
const DefaultCurrency = "USD"

// Config is the collector configuration. It is not modified after the
// Tracker is built.
type Config struct {
	CollectorURL      string
	ContainerID       string
	APISecret         string
	ProvisioningToken string
	Timeout           time.Duration
}

// RequestInfo is the part of an inbound request an event is enriched with.
type RequestInfo struct {
	URL        string
	Path       string
	Referrer   string
	UserAgent  string
	RemoteAddr string
}

// RequestInfoFrom captures r. It expects RemoteAddr to have been rewritten
// by a real-ip middleware when running behind a proxy.
func RequestInfoFrom(r *http.Request) RequestInfo {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}

	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}

	return RequestInfo{
		URL:        scheme + "://" + r.Host + r.URL.RequestURI(),
		Path:       r.URL.Path,
		Referrer:   r.Referer(),
		UserAgent:  r.UserAgent(),
		RemoteAddr: remote,
	}
}

// Item is one line in an items payload.
type Item struct {
	ItemID   int64   `json:"item_id"`
	ItemName string  `json:"item_name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity,omitempty"`
	Currency string  `json:"currency,omitempty"`
}

// Event is an enriched analytics event. Build it with BuildEvent.
type Event struct {
	Name        string
	Timestamp   string
	ClientID    string
	PageURL     string
	PagePath    string
	Referrer    string
	UserAgent   string
	RemoteAddr  string
	ContainerID string
	UserID      *int64
	Payload     map[string]any
}

// BuildEvent merges payload with the contextual fields of req. Contextual
// fields take precedence over payload keys of the same name. The payload is
// copied, so later changes by the caller do not leak into the event.
func BuildEvent(name string, payload map[string]any, req RequestInfo, cfg Config, clientID string, userID *int64, now time.Time) Event {
	p := make(map[string]any, len(payload))
	maps.Copy(p, payload)

	var uid *int64
	if userID != nil {
		v := *userID
		uid = &v
	}

	return Event{
		Name:        name,
		Timestamp:   now.UTC().Format(TimestampLayout),
		ClientID:    clientID,
		PageURL:     req.URL,
		PagePath:    req.Path,
		Referrer:    req.Referrer,
		UserAgent:   req.UserAgent,
		RemoteAddr:  req.RemoteAddr,
		ContainerID: cfg.ContainerID,
		UserID:      uid,
		Payload:     p,
	}
}

// Fields returns the flat wire representation of e. user_id is omitted when
// there is no authenticated user.
func (e Event) Fields() map[string]any {
	out := make(map[string]any, len(e.Payload)+10)
	maps.Copy(out, e.Payload)

	out["event"] = e.Name
	out["timestamp"] = e.Timestamp
	out["client_id"] = e.ClientID
	out["page_location"] = e.PageURL
	out["page_path"] = e.PagePath
	out["page_referrer"] = e.Referrer
	out["user_agent"] = e.UserAgent
	out["ip_override"] = e.RemoteAddr
	out["container_id"] = e.ContainerID
	if e.UserID != nil {
		out["user_id"] = *e.UserID
	} else {
		delete(out, "user_id")
	}
	return out
}

// MarshalJSON encodes the flat wire representation.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Fields())
}
