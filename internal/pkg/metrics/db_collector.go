package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecordDBPoolMetrics publishes the current pgx pool counters.
func RecordDBPoolMetrics(pool *pgxpool.Pool) {
	if pool == nil {
		return
	}
	stat := pool.Stat()

	for state, value := range map[string]int32{
		"in_use":       stat.AcquiredConns(),
		"idle":         stat.IdleConns(),
		"constructing": stat.ConstructingConns(),
		"total":        stat.TotalConns(),
		"max":          stat.MaxConns(),
	} {
		DBPoolConnections.WithLabelValues(state).Set(float64(value))
	}
}
