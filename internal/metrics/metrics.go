package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewAssignmentsTotal returns a counter of started assignment cycles.
func NewAssignmentsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_cycles_total",
		Help: "Total number of courier assignment cycles started",
	})
}

// NewAssignmentsAcceptedTotal returns a counter of accepted assignments.
func NewAssignmentsAcceptedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_accepted_total",
		Help: "Total number of assignments accepted by couriers",
	})
}

// NewAssignmentsRejectedTotal returns a counter of rejected assignments.
func NewAssignmentsRejectedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_rejected_total",
		Help: "Total number of assignments rejected by couriers",
	})
}

// NewAssignmentsExpiredTotal returns a counter of expired acceptance deadlines.
func NewAssignmentsExpiredTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_expired_total",
		Help: "Total number of assignments that expired without a response",
	})
}

// NewAssignmentsExhaustedTotal returns a counter of orders that hit the
// assignment attempt cap.
func NewAssignmentsExhaustedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "assignment_exhausted_total",
		Help: "Total number of orders that reached the assignment attempt cap",
	})
}

// NewOrdersDeliveredTotal returns a counter of completed deliveries.
func NewOrdersDeliveredTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_delivered_total",
		Help: "Total number of orders delivered after code verification",
	})
}

// NewCodeFailuresTotal returns a counter of failed hand-off code checks.
func NewCodeFailuresTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "delivery_code_failures_total",
		Help: "Total number of wrong or expired hand-off code verifications",
	})
}

// NewNotifyFailuresTotal returns a counter of failed notification dispatches.
func NewNotifyFailuresTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notify_failures_total",
		Help: "Total number of notification dispatch failures",
	})
}
