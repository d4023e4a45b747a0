package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the marketplace collectors
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "auction_marketplace",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction_marketplace",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "auction_marketplace",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"method", "path"},
	)

	bids = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction_marketplace",
			Subsystem: "bidding",
			Name:      "bids_total",
			Help:      "Bid placements by outcome.",
		},
		[]string{"outcome"},
	)

	sweepAuctions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auction_marketplace",
			Subsystem: "closer",
			Name:      "auctions_total",
			Help:      "Auctions touched by the closer sweep, by result.",
		},
		[]string{"result"},
	)

	sweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "auction_marketplace",
			Subsystem: "closer",
			Name:      "sweep_duration_seconds",
			Help:      "Duration of closer sweeps.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		bids,
		sweepAuctions,
		sweepDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Bid outcomes
const (
	BidAccepted = "accepted"
	BidRejected = "rejected"
	BidFailed   = "failed"
)

// Sweep results
const (
	SweepActivated = "activated"
	SweepSettled   = "settled"
	SweepNoWinner  = "no_winner"
	SweepSkipped   = "skipped"
	SweepFailed    = "failed"
)

// Handler exposes the registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count, latency and in-flight gauge for every route
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordBid counts one bid placement attempt
func RecordBid(outcome string) {
	bids.WithLabelValues(outcome).Inc()
}

// RecordSweepResult counts n auctions that ended a sweep with result
func RecordSweepResult(result string, n int) {
	if n <= 0 {
		return
	}
	sweepAuctions.WithLabelValues(result).Add(float64(n))
}

// ObserveSweep records how long one sweep took
func ObserveSweep(d time.Duration) {
	sweepDuration.Observe(d.Seconds())
}
