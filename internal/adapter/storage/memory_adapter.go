package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

// MemoryAdapter keeps every entity in process memory. Each call is atomic on
// its own but there are no transactions spanning calls, so the service drives
// multi-record writes through its compensation path.
type MemoryAdapter struct {
	mu sync.RWMutex

	products   map[int64]domain.Product
	warehouses map[int64]domain.Warehouse
	inventory  map[int64]domain.InventoryRecord
	transfers  []domain.Transfer

	nextProductID   int64
	nextWarehouseID int64
	nextInventoryID int64

	now func() time.Time
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		products:   make(map[int64]domain.Product),
		warehouses: make(map[int64]domain.Warehouse),
		inventory:  make(map[int64]domain.InventoryRecord),
		now:        time.Now,
	}
}

func (m *MemoryAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.products, func(p domain.Product) int64 { return p.ID }), nil
}

func (m *MemoryAdapter) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return nil, domain.NotFoundf("product %d", id)
	}
	return &p, nil
}

func (m *MemoryAdapter) FindProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.products {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, domain.NotFoundf("product with sku %q", sku)
}

func (m *MemoryAdapter) CreateProduct(ctx context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextProductID++
	product.ID = m.nextProductID
	product.CreatedAt = m.now()
	product.UpdatedAt = product.CreatedAt
	m.products[product.ID] = *product
	return nil
}

func (m *MemoryAdapter) UpdateProduct(ctx context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[product.ID]; !ok {
		return domain.NotFoundf("product %d", product.ID)
	}
	m.products[product.ID] = product
	return nil
}

func (m *MemoryAdapter) DeleteProduct(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return domain.NotFoundf("product %d", id)
	}
	for rid, r := range m.inventory {
		if r.ProductID == id {
			delete(m.inventory, rid)
		}
	}
	delete(m.products, id)
	return nil
}

func (m *MemoryAdapter) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.warehouses, func(w domain.Warehouse) int64 { return w.ID }), nil
}

func (m *MemoryAdapter) GetWarehouse(ctx context.Context, id int64) (*domain.Warehouse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.warehouses[id]
	if !ok {
		return nil, domain.NotFoundf("warehouse %d", id)
	}
	return &w, nil
}

func (m *MemoryAdapter) CreateWarehouse(ctx context.Context, warehouse *domain.Warehouse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextWarehouseID++
	warehouse.ID = m.nextWarehouseID
	warehouse.CreatedAt = m.now()
	warehouse.UpdatedAt = warehouse.CreatedAt
	m.warehouses[warehouse.ID] = *warehouse
	return nil
}

func (m *MemoryAdapter) UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.warehouses[warehouse.ID]; !ok {
		return domain.NotFoundf("warehouse %d", warehouse.ID)
	}
	m.warehouses[warehouse.ID] = warehouse
	return nil
}

func (m *MemoryAdapter) DeleteWarehouse(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.warehouses[id]; !ok {
		return domain.NotFoundf("warehouse %d", id)
	}
	for rid, r := range m.inventory {
		if r.WarehouseID == id {
			delete(m.inventory, rid)
		}
	}
	delete(m.warehouses, id)
	return nil
}

func (m *MemoryAdapter) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedValues(m.inventory, recordID), nil
}

func (m *MemoryAdapter) GetInventory(ctx context.Context, id int64) (*domain.InventoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.inventory[id]
	if !ok {
		return nil, domain.NotFoundf("inventory record %d", id)
	}
	return &r, nil
}

func (m *MemoryAdapter) ListInventoryByWarehouse(ctx context.Context, warehouseID int64) ([]domain.InventoryRecord, error) {
	return m.filterInventory(func(r domain.InventoryRecord) bool { return r.WarehouseID == warehouseID }), nil
}

func (m *MemoryAdapter) FindInventory(ctx context.Context, productID, warehouseID int64) ([]domain.InventoryRecord, error) {
	return m.filterInventory(func(r domain.InventoryRecord) bool {
		return r.ProductID == productID && r.WarehouseID == warehouseID
	}), nil
}

func (m *MemoryAdapter) CreateInventory(ctx context.Context, record *domain.InventoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[record.ProductID]; !ok {
		return domain.NotFoundf("product %d", record.ProductID)
	}
	if _, ok := m.warehouses[record.WarehouseID]; !ok {
		return domain.NotFoundf("warehouse %d", record.WarehouseID)
	}

	m.nextInventoryID++
	record.ID = m.nextInventoryID
	record.CreatedAt = m.now()
	record.UpdatedAt = record.CreatedAt
	m.inventory[record.ID] = *record
	return nil
}

func (m *MemoryAdapter) UpdateInventory(ctx context.Context, record domain.InventoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inventory[record.ID]; !ok {
		return domain.NotFoundf("inventory record %d", record.ID)
	}
	m.inventory[record.ID] = record
	return nil
}

func (m *MemoryAdapter) DeleteInventory(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inventory[id]; !ok {
		return domain.NotFoundf("inventory record %d", id)
	}
	delete(m.inventory, id)
	return nil
}

func (m *MemoryAdapter) CreateTransfer(ctx context.Context, transfer domain.Transfer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.transfers = append(m.transfers, transfer)
	return nil
}

func (m *MemoryAdapter) ListTransfers(ctx context.Context, limit int) ([]domain.Transfer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Transfer, 0, min(limit, len(m.transfers)))
	for i := len(m.transfers) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.transfers[i])
	}
	return out, nil
}

func (m *MemoryAdapter) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return domain.Snapshot{
		Products:   sortedValues(m.products, func(p domain.Product) int64 { return p.ID }),
		Warehouses: sortedValues(m.warehouses, func(w domain.Warehouse) int64 { return w.ID }),
		Inventory:  sortedValues(m.inventory, recordID),
	}, nil
}

func (m *MemoryAdapter) filterInventory(keep func(domain.InventoryRecord) bool) []domain.InventoryRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.InventoryRecord{}
	for _, r := range m.inventory {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func recordID(r domain.InventoryRecord) int64 { return r.ID }

func sortedValues[T any](m map[int64]T, id func(T) int64) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return id(out[i]) < id(out[j]) })
	return out
}
