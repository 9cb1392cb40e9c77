package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tkpay",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tkpay",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	paymentTransactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tkpay",
			Subsystem: "payment",
			Name:      "transactions_total",
			Help:      "Completed payment transactions by outcome.",
		},
		[]string{"outcome", "code"},
	)
	paymentPhaseDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tkpay",
			Subsystem: "payment",
			Name:      "phase_duration_seconds",
			Help:      "Terminal round-trip duration per phase in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"phase"},
	)
	notifyDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tkpay",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Notification deliveries by result.",
		},
		[]string{"success"},
	)
	terminalExchanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tkpay",
			Subsystem: "simulator",
			Name:      "exchanges_total",
			Help:      "Simulated terminal exchanges by message type and response code.",
		},
		[]string{"message_type", "response_code"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			paymentTransactions,
			paymentPhaseDuration,
			notifyDeliveries,
			terminalExchanges,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordTransaction counts one finished transaction. code is the terminal
// response code, or the error code when the transaction failed.
func RecordTransaction(outcome, code string) {
	RegisterMetrics()
	paymentTransactions.WithLabelValues(outcome, code).Inc()
}

func RecordPhase(phase string, duration time.Duration) {
	RegisterMetrics()
	paymentPhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

func RecordNotification(success bool) {
	RegisterMetrics()
	notifyDeliveries.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func RecordTerminalExchange(messageType, responseCode string) {
	RegisterMetrics()
	terminalExchanges.WithLabelValues(messageType, responseCode).Inc()
}
