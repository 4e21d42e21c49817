package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	latencyBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

	// RequestTotal counts processed HTTP requests by method, route and status.
	RequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "user_manage",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Count of processed HTTP requests",
	}, []string{"method", "route", "status"})

	// RequestLatency tracks handler latency by method, route and status.
	RequestLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "user_manage",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution of HTTP handlers",
		Buckets:   latencyBuckets,
	}, []string{"method", "route", "status"})

	// EventsPublished counts publish attempts by event type.
	EventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "user_manage",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Count of user event publish attempts",
	}, []string{"event_type"})

	// PublishFailures counts swallowed publish errors. The request path never
	// fails on a publish error, so this counter is the only operator-visible
	// signal of event loss.
	PublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "user_manage",
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Count of failed user event publishes",
	}, []string{"event_type"})
)

func init() {
	for _, c := range []prometheus.Collector{RequestTotal, RequestLatency, EventsPublished, PublishFailures} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}

// RecordRequest records one completed HTTP request.
func RecordRequest(method, route string, status int, elapsed time.Duration) {
	labels := prometheus.Labels{
		"method": method,
		"route":  route,
		"status": strconv.Itoa(status),
	}
	RequestTotal.With(labels).Inc()
	RequestLatency.With(labels).Observe(elapsed.Seconds())
}
