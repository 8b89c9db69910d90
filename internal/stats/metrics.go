package stats

import (
	"github.com/bissquit/store-rating/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storerating"

var entitiesTotal = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "entities_total",
		Help:      "Number of stored entities by kind",
	},
	[]string{"entity"},
)

// RecordEntityTotals updates entity gauges.
func RecordEntityTotals(stats domain.DashboardStats) {
	entitiesTotal.WithLabelValues("users").Set(float64(stats.TotalUsers))
	entitiesTotal.WithLabelValues("stores").Set(float64(stats.TotalStores))
	entitiesTotal.WithLabelValues("ratings").Set(float64(stats.TotalRatings))
}
