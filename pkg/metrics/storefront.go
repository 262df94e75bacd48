package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records the storefront's business counters.
type StorefrontMetrics struct {
	cartsMerged     prometheus.Counter
	mergedLines     *prometheus.CounterVec
	ordersPlaced    prometheus.Counter
	ordersFinalized *prometheus.CounterVec
	checkoutFailed  *prometheus.CounterVec
	mergeDuration   prometheus.Histogram
}

// NewStorefrontMetrics registers the storefront metrics on the provided
// registerer. A nil registerer yields a no-op instance for tests.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	cartsMerged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "carts_merged_total",
		Help: "Guest carts merged into user carts on login.",
	})
	mergedLines := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_merge_lines_total",
		Help: "Cart lines handled during merge, by outcome.",
	}, []string{"outcome"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Order drafts created from carts.",
	})
	ordersFinalized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_finalized_total",
		Help: "Orders finalized by payment, labeled by method.",
	}, []string{"method"})
	checkoutFailed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout finalizations rolled back, labeled by reason.",
	}, []string{"reason"})
	mergeDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_merge_duration_seconds",
		Help:    "Duration of guest-to-user cart merges in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(cartsMerged, mergedLines, ordersPlaced, ordersFinalized, checkoutFailed, mergeDuration)
	return &StorefrontMetrics{
		cartsMerged:     cartsMerged,
		mergedLines:     mergedLines,
		ordersPlaced:    ordersPlaced,
		ordersFinalized: ordersFinalized,
		checkoutFailed:  checkoutFailed,
		mergeDuration:   mergeDuration,
	}
}

// IncCartsMerged counts one completed merge.
func (m *StorefrontMetrics) IncCartsMerged() {
	if m == nil || m.cartsMerged == nil {
		return
	}
	m.cartsMerged.Inc()
}

// IncMergedLine counts one merged cart line by outcome ("summed", "reowned").
func (m *StorefrontMetrics) IncMergedLine(outcome string) {
	if m == nil || m.mergedLines == nil {
		return
	}
	m.mergedLines.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncOrdersPlaced counts one order draft.
func (m *StorefrontMetrics) IncOrdersPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// IncOrdersFinalized counts one finalized order for the payment method.
func (m *StorefrontMetrics) IncOrdersFinalized(method string) {
	if m == nil || m.ordersFinalized == nil {
		return
	}
	m.ordersFinalized.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncCheckoutFailed counts one rolled-back finalization by reason.
func (m *StorefrontMetrics) IncCheckoutFailed(reason string) {
	if m == nil || m.checkoutFailed == nil {
		return
	}
	m.checkoutFailed.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveMergeDuration records how long a merge took.
func (m *StorefrontMetrics) ObserveMergeDuration(d time.Duration) {
	if m == nil || m.mergeDuration == nil {
		return
	}
	m.mergeDuration.Observe(d.Seconds())
}

func normalizeLabel(label string) string {
	if label == "" {
		return "unknown"
	}
	return label
}
