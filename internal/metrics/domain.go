package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_actions_total",
			Help: "Cart actions dispatched, by action and whether the state changed.",
		},
		[]string{"action", "changed"},
	)

	cartExpiredLinesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_expired_lines_total",
			Help: "Cart lines dropped because their reservation ran out.",
		},
	)

	cartStoresActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cart_stores_active",
			Help: "Session cart stores currently held in memory.",
		},
	)

	cartSnapshotsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cart_snapshots_discarded_total",
			Help: "Persisted cart snapshots ignored at session start.",
		},
		[]string{"reason"},
	)

	cartPersistFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cart_persist_failures_total",
			Help: "Cart snapshot writes that failed.",
		},
	)

	discountValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "discount_validations_total",
			Help: "Discount code validations by outcome.",
		},
		[]string{"result"},
	)

	shippingLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipping_lookups_total",
			Help: "Shipping option lookups by source.",
		},
		[]string{"source"},
	)

	orderTotalMismatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_total_mismatches_total",
			Help: "Orders rejected because submitted figures disagreed with the server calculation.",
		},
		[]string{"field"},
	)

	ordersPlacedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders committed, by payment status.",
		},
		[]string{"payment_status"},
	)

	reservationConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reservation_conflicts_total",
			Help: "Attempts to add an original already held by another session.",
		},
	)
)

func ObserveCartAction(action string, changed bool) {
	cartActionsTotal.WithLabelValues(action, strconv.FormatBool(changed)).Inc()
}

func AddExpiredLines(n int) {
	if n > 0 {
		cartExpiredLinesTotal.Add(float64(n))
	}
}

func CartStoreOpened() { cartStoresActive.Inc() }

func CartStoreClosed() { cartStoresActive.Dec() }

func SnapshotDiscarded(reason string) {
	cartSnapshotsDiscarded.WithLabelValues(reason).Inc()
}

func PersistFailed() { cartPersistFailures.Inc() }

func DiscountValidated(result string) {
	discountValidationsTotal.WithLabelValues(result).Inc()
}

func ShippingLookup(source string) {
	shippingLookupsTotal.WithLabelValues(source).Inc()
}

func TotalMismatch(field string) {
	orderTotalMismatches.WithLabelValues(field).Inc()
}

func OrderPlaced(paymentStatus string) {
	ordersPlacedTotal.WithLabelValues(paymentStatus).Inc()
}

func ReservationConflict() { reservationConflicts.Inc() }
