package stats

import (
	"context"
	"errors"
	"testing"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/storage"
	"github.com/bissquit/store-rating/internal/storage/memory"
	"github.com/bissquit/store-rating/internal/storage/storagetest"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCounter struct {
	stats domain.DashboardStats
	err   error
}

func (m *mockCounter) Count(context.Context) (domain.DashboardStats, error) {
	return m.stats, m.err
}

func TestCompute_Empty(t *testing.T) {
	svc := NewService(memory.New())

	got, err := svc.Compute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DashboardStats{}, got)
}

func TestCompute_Seeded(t *testing.T) {
	ctx := context.Background()
	b := memory.New()
	_, err := storage.Seed(ctx, b, storagetest.PlainHasher{})
	require.NoError(t, err)

	got, err := NewService(b).Compute(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DashboardStats{TotalUsers: 4, TotalStores: 4, TotalRatings: 2}, got)
}

func TestCompute_Error(t *testing.T) {
	svc := NewService(&mockCounter{err: errors.New("boom")})

	_, err := svc.Compute(context.Background())
	assert.ErrorContains(t, err, "count entities")
}

func TestRefresh_UpdatesGauges(t *testing.T) {
	svc := NewService(&mockCounter{stats: domain.DashboardStats{TotalUsers: 7, TotalStores: 3, TotalRatings: 11}})

	require.NoError(t, svc.Refresh(context.Background()))

	assert.InDelta(t, 7, gaugeValue(t, entitiesTotal.WithLabelValues("users")), 0)
	assert.InDelta(t, 3, gaugeValue(t, entitiesTotal.WithLabelValues("stores")), 0)
	assert.InDelta(t, 11, gaugeValue(t, entitiesTotal.WithLabelValues("ratings")), 0)
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}
