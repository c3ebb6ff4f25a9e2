package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gateway_http_requests_total",
	Help: "Total number of gateway requests labelled by path and status",
}, []string{"path", "status"})

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "gateway_request_duration_seconds",
	Help:    "Time spent serving gateway requests.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"path"})

var upstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "gateway_upstream_latency_seconds",
	Help:    "Latency of calls to the downstream services.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

var pollAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gateway_poll_attempts_total",
	Help: "Status poll requests issued per job kind.",
}, []string{"kind"})

func ObserveRequest(path, status string, elapsed time.Duration) {
	httpRequestsTotal.WithLabelValues(path, status).Inc()
	requestDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

func ObserveUpstream(service string, elapsed time.Duration) {
	upstreamLatency.WithLabelValues(service).Observe(elapsed.Seconds())
}

func CountPollAttempt(kind string) {
	pollAttempts.WithLabelValues(kind).Inc()
}
