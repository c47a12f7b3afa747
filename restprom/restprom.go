// Package restprom records client call metrics with Prometheus.
package restprom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bjaus/rest"
)

// Metrics holds the client collectors. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// New registers the client metrics on reg. A nil reg returns metrics that
// record nothing.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rest_client_requests_total",
		Help: "Client calls that received a response, by endpoint and status code.",
	}, []string{"method", "pattern", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rest_client_request_duration_seconds",
		Help:    "Duration of client calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "pattern"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rest_client_transport_errors_total",
		Help: "Client calls that ended without a response.",
	}, []string{"method", "pattern"})
	reg.MustRegister(requests, duration, errs)
	return &Metrics{
		requests: requests,
		duration: duration,
		errors:   errs,
	}
}

// Middleware returns client middleware recording every call. Endpoints are
// labeled by their declared pattern, not the expanded URL.
func (m *Metrics) Middleware() rest.Middleware {
	return func(next rest.Transport) rest.Transport {
		return rest.TransportFunc(func(ctx context.Context, req *rest.Request) (*rest.RawResponse, error) {
			start := time.Now()
			resp, err := next.Do(ctx, req)
			m.observe(req, resp, err, time.Since(start))
			return resp, err
		})
	}
}

func (m *Metrics) observe(req *rest.Request, resp *rest.RawResponse, err error, d time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	pattern := normalizeLabel(req.Pattern)

	m.duration.WithLabelValues(req.Method, pattern).Observe(d.Seconds())

	code := 0
	switch {
	case resp != nil:
		code = resp.StatusCode
	case err != nil:
		code = rest.ErrorStatus(err)
	}
	if code == 0 {
		m.errors.WithLabelValues(req.Method, pattern).Inc()
		return
	}
	m.requests.WithLabelValues(req.Method, pattern, strconv.Itoa(code)).Inc()
}

func normalizeLabel(pattern string) string {
	if pattern == "" {
		return "unknown"
	}
	return pattern
}
