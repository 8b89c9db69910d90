// Package stats computes the administrator dashboard counts.
package stats

import (
	"context"
	"fmt"

	"github.com/bissquit/store-rating/internal/domain"
	"github.com/bissquit/store-rating/internal/storage"
)

// Service computes dashboard statistics.
type Service struct {
	counter storage.Counter
}

// NewService creates a new stats service.
func NewService(counter storage.Counter) *Service {
	return &Service{counter: counter}
}

// Compute returns the number of users, stores and ratings.
func (s *Service) Compute(ctx context.Context) (domain.DashboardStats, error) {
	stats, err := s.counter.Count(ctx)
	if err != nil {
		return domain.DashboardStats{}, fmt.Errorf("count entities: %w", err)
	}
	return stats, nil
}

// Refresh computes the counts and publishes them as gauges.
func (s *Service) Refresh(ctx context.Context) error {
	stats, err := s.Compute(ctx)
	if err != nil {
		return err
	}
	RecordEntityTotals(stats)
	return nil
}
