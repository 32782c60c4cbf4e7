// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TrackingEventsTotal counts events emitted by the tracker, by event name.
	TrackingEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_tracking_events_total",
			Help: "Total number of tracking events emitted",
		},
		[]string{"event"},
	)

	// TrackingDeliveriesTotal counts collector deliveries by outcome.
	TrackingDeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_tracking_deliveries_total",
			Help: "Total number of collector deliveries by outcome",
		},
		[]string{"outcome"},
	)

	TrackingDeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_tracking_delivery_duration_seconds",
			Help:    "Collector delivery latency in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	TrackingHistorySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_tracking_history_size",
			Help: "Number of records currently held in the event history",
		},
	)

	// TrackingBreakerState is 0 closed, 1 half-open, 2 open.
	TrackingBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_tracking_circuit_breaker_state",
			Help: "Collector circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	CollectRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_collect_requests_total",
			Help: "Total number of payloads received on the local /collect endpoint",
		},
	)

	OrdersPlacedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed at checkout",
		},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_rate_limit_hits_total",
			Help: "Total number of requests rejected by rate limiting",
		},
		[]string{"route"},
	)
)
