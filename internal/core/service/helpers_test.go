package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/warehouse-inventory/internal/adapter/storage"
	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

var errInjected = errors.New("injected failure")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type storeFactory func(t *testing.T) port.DatabaseRepository

// stores covers both write paths: a transactional store and one that relies
// on compensation.
func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) port.DatabaseRepository {
			return storage.NewMemoryAdapter()
		},
		"sqlite": func(t *testing.T) port.DatabaseRepository {
			db, err := storage.OpenGorm("sqlite", ":memory:")
			require.NoError(t, err)
			t.Cleanup(func() {
				if sqlDB, err := db.DB(); err == nil {
					sqlDB.Close()
				}
			})
			adapter := storage.NewGormAdapter(db)
			require.NoError(t, adapter.Migrate(context.Background()))
			return adapter
		},
	}
}

func forEachStore(t *testing.T, fn func(t *testing.T, repo port.DatabaseRepository)) {
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			fn(t, factory(t))
		})
	}
}

func newTestService(repo port.DatabaseRepository, opts ...Option) *InventoryService {
	return NewInventoryService(repo, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

type fixture struct {
	product domain.Product
	a, b    domain.Warehouse
}

// seedFixture creates one product and two warehouses, A (capacity 100) and B
// (capacity 100).
func seedFixture(t *testing.T, svc *InventoryService) fixture {
	t.Helper()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, domain.Product{Name: "Bolt", SKU: "B-1"})
	require.NoError(t, err)
	a, err := svc.CreateWarehouse(ctx, domain.Warehouse{Name: "A", Location: "Boston", MaxCapacity: 100})
	require.NoError(t, err)
	b, err := svc.CreateWarehouse(ctx, domain.Warehouse{Name: "B", Location: "Tampa", MaxCapacity: 100})
	require.NoError(t, err)
	return fixture{product: p, a: a, b: b}
}

func stock(t *testing.T, svc *InventoryService, productID, warehouseID int64, qty int) domain.InventoryRecord {
	t.Helper()
	r, err := svc.CreateInventory(context.Background(), domain.InventoryRecord{
		ProductID: productID, WarehouseID: warehouseID, Quantity: qty, StorageLocation: "shelf",
	})
	require.NoError(t, err)
	return r
}

func totalUnits(t *testing.T, svc *InventoryService) int {
	t.Helper()
	records, err := svc.ListInventory(context.Background())
	require.NoError(t, err)
	total := 0
	for _, r := range records {
		total += r.Quantity
	}
	return total
}

// Mock CacheRepository
type mockCacheRepo struct {
	mu             sync.Mutex
	idempotencySet map[string]bool
	dashboard      *domain.Dashboard
	gets           int
	invalidations  int
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{idempotencySet: make(map[string]bool)}
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotencySet, key)
	return nil
}

func (m *mockCacheRepo) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	return m.dashboard, nil
}

func (m *mockCacheRepo) SetDashboard(ctx context.Context, d domain.Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dashboard = &d
	return nil
}

func (m *mockCacheRepo) InvalidateDashboard(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dashboard = nil
	m.invalidations++
	return nil
}

// failingRepo wraps the memory store and fails selected writes.
type failingRepo struct {
	*storage.MemoryAdapter
	failCreateTransfer  bool
	failCreateInventory bool
	failUpdateAfter     int
	updates             int
}

func (f *failingRepo) CreateTransfer(ctx context.Context, t domain.Transfer) error {
	if f.failCreateTransfer {
		return errInjected
	}
	return f.MemoryAdapter.CreateTransfer(ctx, t)
}

func (f *failingRepo) CreateInventory(ctx context.Context, r *domain.InventoryRecord) error {
	if f.failCreateInventory {
		return errInjected
	}
	return f.MemoryAdapter.CreateInventory(ctx, r)
}

func (f *failingRepo) UpdateInventory(ctx context.Context, r domain.InventoryRecord) error {
	f.updates++
	if f.failUpdateAfter > 0 && f.updates > f.failUpdateAfter {
		return errInjected
	}
	return f.MemoryAdapter.UpdateInventory(ctx, r)
}
