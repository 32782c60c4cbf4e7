package middleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/gosuda/storefront/internal/metrics"
)

const (
	limiterSweepEvery = 10 * time.Minute
	limiterIdleAfter  = 30 * time.Minute
)

// clientLimiters holds one token bucket per client IP.
type clientLimiters struct {
	rps   rate.Limit
	burst int

	mu      sync.Mutex
	buckets map[string]*clientBucket
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiters(rps float64, burst int) *clientLimiters {
	return &clientLimiters{
		rps:     rate.Limit(rps),
		burst:   burst,
		buckets: make(map[string]*clientBucket),
	}
}

func (c *clientLimiters) allow(ip string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.buckets[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(c.rps, c.burst)}
		c.buckets[ip] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// sweep forgets clients not seen since cutoff.
func (c *clientLimiters) sweep(cutoff time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ip, b := range c.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(c.buckets, ip)
		}
	}
}

// retryAfter is the whole number of seconds until one token refills.
func (c *clientLimiters) retryAfter() int {
	if c.rps <= 0 {
		return int(limiterIdleAfter.Seconds())
	}
	return max(1, int(math.Ceil(1/float64(c.rps))))
}

// RateLimitByIP limits each client IP to requestsPerSecond with the given
// burst. The IP is r.RemoteAddr as rewritten by chi's RealIP, port stripped.
// Rejections get 429 with Retry-After and are counted under name. Idle
// clients are forgotten until ctx is done.
func RateLimitByIP(ctx context.Context, name string, requestsPerSecond float64, burst int) func(http.Handler) http.Handler {
	limiters := newClientLimiters(requestsPerSecond, burst)

	go func() {
		ticker := time.NewTicker(limiterSweepEvery)
		defer ticker.Stop()
		for {
			select {
			case now := <-ticker.C:
				limiters.sweep(now.Add(-limiterIdleAfter))
			case <-ctx.Done():
				return
			}
		}
	}()

	retry := strconv.Itoa(limiters.retryAfter())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiters.allow(clientIP(r), time.Now()) {
				next.ServeHTTP(w, r)
				return
			}

			metrics.RateLimitHits.WithLabelValues(name).Inc()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", retry)
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}`))
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
