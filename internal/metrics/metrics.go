package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "autobarber",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	slotQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "autobarber",
			Name:      "slot_queries_total",
			Help:      "Slot availability queries by cache outcome.",
		},
		[]string{"source"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "autobarber",
			Name:      "bookings_total",
			Help:      "Booking attempts by result.",
		},
		[]string{"result"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "autobarber",
			Name:      "booking_conflicts_total",
			Help:      "Bookings rejected because the slot was already taken.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, slotQueries, bookings, bookingConflicts)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncSlotQuery counts a slot lookup; source is "cache" or "engine".
func IncSlotQuery(source string) {
	slotQueries.WithLabelValues(source).Inc()
}

// IncBooking counts a booking attempt outcome ("created", "conflict",
// "rejected", "error").
func IncBooking(result string) {
	bookings.WithLabelValues(result).Inc()
	if result == "conflict" {
		bookingConflicts.Inc()
	}
}
