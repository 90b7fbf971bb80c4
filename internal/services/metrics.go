package services

import "github.com/prometheus/client_golang/prometheus"

// storeOps counts history operations by outcome: ok, a validation kind, or a
// persistence kind.
var storeOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "assessment_store_operations_total",
		Help: "Total number of assessment store operations by outcome.",
	},
	[]string{"op", "outcome"},
)

func init() {
	prometheus.MustRegister(storeOps)
}

func countStoreOp(op string, err error) {
	outcome := "ok"
	if ve, ok := IsValidation(err); ok {
		outcome = string(ve.Kind)
	} else if pe, ok := IsPersistence(err); ok {
		outcome = string(pe.Kind)
	} else if err != nil {
		outcome = "error"
	}
	storeOps.WithLabelValues(op, outcome).Inc()
}
