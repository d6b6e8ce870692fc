package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservio",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by admission path.",
		},
		[]string{"path"},
	)

	bookingRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservio",
			Name:      "booking_rejected_total",
			Help:      "Count of rejected admission requests by error kind.",
		},
		[]string{"kind"},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "reservio",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled.",
		},
	)

	lockWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "reservio",
			Name:      "lock_wait_seconds",
			Help:      "Time spent waiting for a per-resource lock.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "reservio",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by handler.",
		},
		[]string{"handler"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingRejected, bookingCancelled, lockWait, httpRequests)
	})
}

func IncBookingCreated(path string) {
	bookingCreated.WithLabelValues(path).Inc()
}

func IncBookingRejected(kind string) {
	bookingRejected.WithLabelValues(kind).Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func ObserveLockWait(d time.Duration) {
	lockWait.Observe(d.Seconds())
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}
