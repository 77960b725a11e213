package service

import (
	"context"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

// Dashboard computes the summary statistics from the current snapshot. When
// a cache is configured the computed value is reused until the next mutation.
func (s *InventoryService) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cache != nil {
		cached, err := s.cache.GetDashboard(ctx)
		if err != nil {
			s.logger.Warn("dashboard cache read failed", "error", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	snapshot, err := s.repo.Snapshot(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}
	dashboard, err := domain.BuildDashboard(snapshot, s.lowStockThreshold)
	if err != nil {
		return domain.Dashboard{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetDashboard(ctx, dashboard); err != nil {
			s.logger.Warn("dashboard cache write failed", "error", err)
		}
	}
	return dashboard, nil
}
