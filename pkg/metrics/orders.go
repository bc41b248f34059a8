package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics records order lifecycle and discount counters.
type OrderMetrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
	discounts   *prometheus.CounterVec
	promoHits   *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	created := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders placed.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Order status transitions by target status.",
	}, []string{"status"})
	discounts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_discount_hryvnias_total",
		Help: "Discount amounts applied to orders, by category.",
	}, []string{"category"})
	promoHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "promo_code_checks_total",
		Help: "Promo code validation outcomes.",
	}, []string{"outcome"})
	reg.MustRegister(created, transitions, discounts, promoHits)
	return &OrderMetrics{
		created:     created,
		transitions: transitions,
		discounts:   discounts,
		promoHits:   promoHits,
	}
}

// IncCreated increments the placed-orders counter.
func (o *OrderMetrics) IncCreated() {
	if o == nil || o.created == nil {
		return
	}
	o.created.Inc()
}

// IncTransition increments the transition counter for the target status.
func (o *OrderMetrics) IncTransition(status string) {
	if o == nil || o.transitions == nil {
		return
	}
	o.transitions.WithLabelValues(normalizeLabel(status)).Inc()
}

// AddDiscount accumulates a discount amount under the given category.
func (o *OrderMetrics) AddDiscount(category string, amount int) {
	if o == nil || o.discounts == nil || amount <= 0 {
		return
	}
	o.discounts.WithLabelValues(normalizeLabel(category)).Add(float64(amount))
}

// IncPromoCheck increments the promo validation counter for the outcome.
func (o *OrderMetrics) IncPromoCheck(outcome string) {
	if o == nil || o.promoHits == nil {
		return
	}
	o.promoHits.WithLabelValues(normalizeLabel(outcome)).Inc()
}
