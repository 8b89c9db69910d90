package ratings

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storerating"

var ratingsSubmitted = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "ratings",
		Name:      "submitted_total",
		Help:      "Total ratings submitted by outcome",
	},
	[]string{"outcome"},
)

func recordSubmission(created bool) {
	outcome := "updated"
	if created {
		outcome = "created"
	}
	ratingsSubmitted.WithLabelValues(outcome).Inc()
}
