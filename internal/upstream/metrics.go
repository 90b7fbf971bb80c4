package upstream

import "github.com/prometheus/client_golang/prometheus"

var (
	// upstreamReqs counts outbound calls by operation and outcome
	// (ok or one of the error kinds).
	upstreamReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of calls to the risk API.",
		},
		[]string{"op", "outcome"},
	)

	upstreamLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of risk API calls in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(upstreamReqs, upstreamLat)
}

const outcomeOK = "ok"

func observe(op string, seconds float64, err error) {
	outcome := outcomeOK
	if err != nil {
		if k := KindOf(err); k != "" {
			outcome = string(k)
		} else {
			outcome = "error"
		}
	}
	upstreamReqs.WithLabelValues(op, outcome).Inc()
	upstreamLat.WithLabelValues(op).Observe(seconds)
}
