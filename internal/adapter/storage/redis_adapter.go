package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

const (
	idempotencyKeyTTL = 24 * time.Hour
	dashboardKey      = "dashboard:current"
)

type RedisAdapter struct {
	client       *redis.Client
	dashboardTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, dashboardTTL time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, dashboardTTL: dashboardTTL}
}

func (r *RedisAdapter) SetIdempotency(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, 1, idempotencyKeyTTL).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseIdempotency(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisAdapter) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	data, err := r.client.Get(ctx, dashboardKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var d domain.Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode cached dashboard: %w", err)
	}
	return &d, nil
}

func (r *RedisAdapter) SetDashboard(ctx context.Context, dashboard domain.Dashboard) error {
	data, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("encode dashboard: %w", err)
	}
	return r.client.Set(ctx, dashboardKey, data, r.dashboardTTL).Err()
}

func (r *RedisAdapter) InvalidateDashboard(ctx context.Context) error {
	return r.client.Del(ctx, dashboardKey).Err()
}
