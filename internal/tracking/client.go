package tracking

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/gosuda/storefront/internal/metrics"
)

const (
	// UserAgent identifies the relay to the collector.
	UserAgent = "storefront-tracking/1.0"

	// ProvisioningHeader carries the provisioning token when configured.
	ProvisioningHeader = "X-Provisioning-Config"

	// DefaultTimeout bounds a single delivery.
	DefaultTimeout = 5 * time.Second

	maxBodyBytes = 4 << 10

	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
)

// Outcome classifies a delivery attempt.
type Outcome int

const (
	// Delivered means the collector answered 200 or 204.
	Delivered Outcome = iota
	// Rejected means the collector answered with any other status.
	Rejected
	// Unreachable means no response was received.
	Unreachable
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case Rejected:
		return "rejected"
	case Unreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// DeliveryResult reports how a delivery went. StatusCode and Body are set
// for Delivered and Rejected, Err for Unreachable.
type DeliveryResult struct {
	Outcome    Outcome
	StatusCode int
	Body       string
	Err        error
}

// Client posts events to the collector. Deliver never returns an error;
// every outcome is reported through DeliveryResult and logged.
type Client struct {
	http     *http.Client
	endpoint string
	token    string
	breaker  *gobreaker.CircuitBreaker[DeliveryResult]
}

// NewClient builds a Client for cfg. A nil httpClient uses a client with
// cfg.Timeout (or DefaultTimeout).
func NewClient(cfg Config, httpClient *http.Client) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		http:     httpClient,
		endpoint: collectURL(cfg),
		token:    cfg.ProvisioningToken,
		breaker: gobreaker.NewCircuitBreaker[DeliveryResult](gobreaker.Settings{
			Name:        "collector",
			MaxRequests: 1,
			Timeout:     breakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				metrics.TrackingBreakerState.Set(float64(to))
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
					Msg("collector circuit breaker state changed")
			},
		}),
	}
}

func collectURL(cfg Config) string {
	u := cfg.CollectorURL + "/collect"
	if cfg.APISecret != "" {
		u += "?" + url.Values{"api_secret": {cfg.APISecret}}.Encode()
	}
	return u
}

// Deliver posts e as JSON to the collector.
func (c *Client) Deliver(ctx context.Context, e Event) DeliveryResult {
	start := time.Now()

	res, err := c.breaker.Execute(func() (DeliveryResult, error) {
		r := c.post(ctx, e)
		if r.Outcome == Unreachable {
			return r, r.Err
		}
		return r, nil
	})
	if err != nil && (errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)) {
		res = DeliveryResult{Outcome: Unreachable, Err: err}
	}

	metrics.TrackingDeliveryDuration.Observe(time.Since(start).Seconds())
	metrics.TrackingDeliveriesTotal.WithLabelValues(res.Outcome.String()).Inc()
	logResult(e, res)
	return res
}

func (c *Client) post(ctx context.Context, e Event) DeliveryResult {
	body, err := json.Marshal(e)
	if err != nil {
		return DeliveryResult{Outcome: Unreachable, Err: fmt.Errorf("tracking.Deliver: encode event: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return DeliveryResult{Outcome: Unreachable, Err: fmt.Errorf("tracking.Deliver: build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if c.token != "" {
		req.Header.Set(ProvisioningHeader, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return DeliveryResult{Outcome: Unreachable, Err: fmt.Errorf("tracking.Deliver: %w", err)}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		return DeliveryResult{Outcome: Delivered, StatusCode: resp.StatusCode}
	}
	return DeliveryResult{Outcome: Rejected, StatusCode: resp.StatusCode, Body: string(raw)}
}

func logResult(e Event, res DeliveryResult) {
	switch res.Outcome {
	case Delivered:
		log.Debug().Str("event", e.Name).Int("status", res.StatusCode).Str("outcome", res.Outcome.String()).
			Msg("event delivered")
	case Rejected:
		log.Warn().Str("event", e.Name).Int("status", res.StatusCode).Str("outcome", res.Outcome.String()).
			Str("body", res.Body).Msg("collector rejected event")
	default:
		log.Warn().Str("event", e.Name).Str("outcome", res.Outcome.String()).Err(res.Err).
			Msg("collector unreachable")
	}
}
