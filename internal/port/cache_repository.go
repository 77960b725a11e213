package port

import (
	"context"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

type CacheRepository interface {
	// SetIdempotency sets a key for idempotency check, returns false if already exists
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency drops the key so a failed request can be retried
	ReleaseIdempotency(ctx context.Context, key string) error

	// GetDashboard returns the cached dashboard, or nil on a miss
	GetDashboard(ctx context.Context) (*domain.Dashboard, error)

	SetDashboard(ctx context.Context, dashboard domain.Dashboard) error

	// InvalidateDashboard drops the cached dashboard after a mutation
	InvalidateDashboard(ctx context.Context) error
}
