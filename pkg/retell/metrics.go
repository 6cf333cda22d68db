package retell

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsStartKey = "metrics_start_time"

// Metrics collects API metrics with Prometheus collectors.
type Metrics struct {
	// RequestsTotal counts responses per method, path and status code.
	RequestsTotal *prometheus.CounterVec
	// RequestLatency observes the latency of each call, retries included.
	RequestLatency *prometheus.HistogramVec
	// ProblemsTotal counts failures per problem kind.
	ProblemsTotal *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retell_client_requests_total",
				Help: "Total number of Retell API responses",
			},
			[]string{"method", "path", "code"},
		),
		RequestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "retell_client_request_duration_seconds",
				Help:    "Retell API call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		ProblemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retell_client_problems_total",
				Help: "Total number of failed operations by problem kind",
			},
			[]string{"kind"},
		),
	}
}

// ObserveProblem counts a failed operation.
func (m *Metrics) ObserveProblem(p Problem) {
	if m == nil || p == nil {
		return
	}

	m.ProblemsTotal.WithLabelValues(string(p.Kind())).Inc()
}

// MetricsRequestInterceptor records the request start time.
func MetricsRequestInterceptor(m *Metrics) RequestInterceptor {
	return func(ctx context.Context, req *Request) error {
		if req.Metadata == nil {
			req.Metadata = make(map[string]interface{})
		}

		req.Metadata[metricsStartKey] = time.Now()

		return nil
	}
}

// MetricsResponseInterceptor records response counts and latency.
func MetricsResponseInterceptor(m *Metrics) ResponseInterceptor {
	return func(ctx context.Context, req *Request, resp *Response) error {
		m.RequestsTotal.WithLabelValues(req.Method, req.Path, strconv.Itoa(resp.StatusCode)).Inc()

		if req.Metadata != nil {
			if start, ok := req.Metadata[metricsStartKey].(time.Time); ok {
				m.RequestLatency.WithLabelValues(req.Method, req.Path).Observe(time.Since(start).Seconds())
			}
		}

		return nil
	}
}
