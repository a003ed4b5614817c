package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order submission and payment outcomes.
type CheckoutMetrics struct {
	submissions *prometheus.CounterVec
	blocked     *prometheus.CounterVec
	payments    *prometheus.CounterVec
	receipts    *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions_total",
		Help: "Order submission attempts by outcome.",
	}, []string{"outcome"})
	blocked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_submissions_blocked_total",
		Help: "Submissions refused locally before any network call.",
	}, []string{"reason"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_total",
		Help: "Payment attempts by method and outcome.",
	}, []string{"method", "outcome"})
	receipts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "receipt_downloads_total",
		Help: "Receipt document retrievals by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(submissions, blocked, payments, receipts)
	return &CheckoutMetrics{
		submissions: submissions,
		blocked:     blocked,
		payments:    payments,
		receipts:    receipts,
	}
}

// IncSubmission increments the submission counter for the given outcome.
func (c *CheckoutMetrics) IncSubmission(outcome string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncBlocked increments the local-refusal counter for the given reason.
func (c *CheckoutMetrics) IncBlocked(reason string) {
	if c == nil || c.blocked == nil {
		return
	}
	c.blocked.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncPayment increments the payment counter for the method and outcome.
func (c *CheckoutMetrics) IncPayment(method, outcome string) {
	if c == nil || c.payments == nil {
		return
	}
	c.payments.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

// IncReceipt increments the receipt download counter for the outcome.
func (c *CheckoutMetrics) IncReceipt(outcome string) {
	if c == nil || c.receipts == nil {
		return
	}
	c.receipts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
