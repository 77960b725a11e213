package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/warehouse-inventory/internal/adapter/storage"
	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

func TestCreateProduct_Validation(t *testing.T) {
	svc := newTestService(storage.NewMemoryAdapter())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, domain.Product{SKU: "B-1"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.CreateProduct(ctx, domain.Product{Name: "Bolt", SKU: "   "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	p, err := svc.CreateProduct(ctx, domain.Product{Name: "  Bolt ", SKU: " B-1 "})
	require.NoError(t, err)
	assert.Equal(t, "Bolt", p.Name)
	assert.Equal(t, "B-1", p.SKU)
}

func TestProduct_UniqueSKU(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo port.DatabaseRepository) {
		svc := newTestService(repo)
		ctx := context.Background()

		bolt, err := svc.CreateProduct(ctx, domain.Product{Name: "Bolt", SKU: "B-1"})
		require.NoError(t, err)
		_, err = svc.CreateProduct(ctx, domain.Product{Name: "Other", SKU: "B-1"})
		assert.ErrorIs(t, err, domain.ErrValidation)

		nut, err := svc.CreateProduct(ctx, domain.Product{Name: "Nut", SKU: "N-1"})
		require.NoError(t, err)
		_, err = svc.UpdateProduct(ctx, nut.ID, domain.Product{Name: "Nut", SKU: "B-1"})
		assert.ErrorIs(t, err, domain.ErrValidation)

		// keeping its own sku is fine
		updated, err := svc.UpdateProduct(ctx, bolt.ID, domain.Product{Name: "Hex bolt", SKU: "B-1", Description: "M8"})
		require.NoError(t, err)
		assert.Equal(t, "Hex bolt", updated.Name)
		assert.Equal(t, "M8", updated.Description)

		got, err := svc.GetProduct(ctx, bolt.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hex bolt", got.Name)
	})
}

func TestProduct_NotFound(t *testing.T) {
	svc := newTestService(storage.NewMemoryAdapter())
	ctx := context.Background()

	_, err := svc.GetProduct(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.UpdateProduct(ctx, 7, domain.Product{Name: "Bolt", SKU: "B-1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteProduct(ctx, 7), domain.ErrNotFound)
}

func TestDeleteProduct_Cascades(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo port.DatabaseRepository) {
		svc := newTestService(repo)
		ctx := context.Background()
		f := seedFixture(t, svc)
		other, err := svc.CreateProduct(ctx, domain.Product{Name: "Nut", SKU: "N-1"})
		require.NoError(t, err)
		stock(t, svc, f.product.ID, f.a.ID, 10)
		stock(t, svc, f.product.ID, f.b.ID, 10)
		kept := stock(t, svc, other.ID, f.a.ID, 4)

		require.NoError(t, svc.DeleteProduct(ctx, f.product.ID))

		records, err := svc.ListInventory(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, kept.ID, records[0].ID)
	})
}

func TestWarehouse_CreateAndValidate(t *testing.T) {
	svc := newTestService(storage.NewMemoryAdapter())
	ctx := context.Background()

	_, err := svc.CreateWarehouse(ctx, domain.Warehouse{Name: "A", Location: "Boston", MaxCapacity: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.CreateWarehouse(ctx, domain.Warehouse{Name: "", Location: "Boston", MaxCapacity: 5})
	assert.ErrorIs(t, err, domain.ErrValidation)

	w, err := svc.CreateWarehouse(ctx, domain.Warehouse{Name: "A", Location: "Boston", MaxCapacity: 5})
	require.NoError(t, err)
	list, err := svc.ListWarehouses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, w.ID, list[0].ID)
}

func TestUpdateWarehouse_CapacityBelowLoad(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo port.DatabaseRepository) {
		svc := newTestService(repo)
		ctx := context.Background()
		f := seedFixture(t, svc)
		stock(t, svc, f.product.ID, f.a.ID, 60)

		_, err := svc.UpdateWarehouse(ctx, f.a.ID, domain.Warehouse{Name: "A", Location: "Boston", MaxCapacity: 59})
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

		w, err := svc.UpdateWarehouse(ctx, f.a.ID, domain.Warehouse{Name: "A2", Location: "Salem", MaxCapacity: 60})
		require.NoError(t, err)
		assert.Equal(t, "A2", w.Name)
		assert.Equal(t, 60, w.MaxCapacity)

		load, err := svc.WarehouseLoad(ctx, f.a.ID)
		require.NoError(t, err)
		assert.Equal(t, 100, load.UtilizationPercent)
		assert.Equal(t, domain.BandCritical, load.Band)
	})
}

func TestDeleteWarehouse_Policies(t *testing.T) {
	ctx := context.Background()

	t.Run("cascade by default", func(t *testing.T) {
		svc := newTestService(storage.NewMemoryAdapter())
		f := seedFixture(t, svc)
		stock(t, svc, f.product.ID, f.a.ID, 10)
		kept := stock(t, svc, f.product.ID, f.b.ID, 10)

		require.NoError(t, svc.DeleteWarehouse(ctx, f.a.ID, false))
		records, err := svc.ListInventory(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, kept.ID, records[0].ID)
	})

	t.Run("restrict blocks non-empty warehouses", func(t *testing.T) {
		svc := newTestService(storage.NewMemoryAdapter(), WithDeletePolicy(domain.DeletePolicyRestrict))
		f := seedFixture(t, svc)
		stock(t, svc, f.product.ID, f.a.ID, 10)

		assert.ErrorIs(t, svc.DeleteWarehouse(ctx, f.a.ID, false), domain.ErrValidation)
		_, err := svc.GetWarehouse(ctx, f.a.ID)
		require.NoError(t, err)

		// empty warehouses go without force
		require.NoError(t, svc.DeleteWarehouse(ctx, f.b.ID, false))

		require.NoError(t, svc.DeleteWarehouse(ctx, f.a.ID, true))
		records, err := svc.ListInventory(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("unknown warehouse", func(t *testing.T) {
		svc := newTestService(storage.NewMemoryAdapter())
		assert.ErrorIs(t, svc.DeleteWarehouse(ctx, 42, true), domain.ErrNotFound)
	})
}

func TestCreateInventory(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo port.DatabaseRepository) {
		svc := newTestService(repo)
		ctx := context.Background()
		f := seedFixture(t, svc)

		_, err := svc.CreateInventory(ctx, domain.InventoryRecord{ProductID: f.product.ID, WarehouseID: f.a.ID, Quantity: -1})
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = svc.CreateInventory(ctx, domain.InventoryRecord{ProductID: 99, WarehouseID: f.a.ID, Quantity: 1})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = svc.CreateInventory(ctx, domain.InventoryRecord{ProductID: f.product.ID, WarehouseID: 99, Quantity: 1})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = svc.CreateInventory(ctx, domain.InventoryRecord{ProductID: f.product.ID, WarehouseID: f.a.ID, Quantity: 101})
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

		first := stock(t, svc, f.product.ID, f.a.ID, 30)
		merged := stock(t, svc, f.product.ID, f.a.ID, 20)
		assert.Equal(t, first.ID, merged.ID)
		assert.Equal(t, 50, merged.Quantity)

		// a different storage location is its own row
		other, err := svc.CreateInventory(ctx, domain.InventoryRecord{ProductID: f.product.ID, WarehouseID: f.a.ID, Quantity: 10, StorageLocation: "cold room"})
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, other.ID)

		_, err = svc.CreateInventory(ctx, domain.InventoryRecord{ProductID: f.product.ID, WarehouseID: f.a.ID, Quantity: 41})
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	})
}

func TestUpdateInventory(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo port.DatabaseRepository) {
		svc := newTestService(repo)
		ctx := context.Background()
		f := seedFixture(t, svc)
		r := stock(t, svc, f.product.ID, f.a.ID, 90)
		stock(t, svc, f.product.ID, f.b.ID, 50)

		// the record's own quantity does not count against itself
		updated, err := svc.UpdateInventory(ctx, r.ID, domain.InventoryPatch{Quantity: ptr(100)})
		require.NoError(t, err)
		assert.Equal(t, 100, updated.Quantity)
		assert.Equal(t, "shelf", updated.StorageLocation)

		_, err = svc.UpdateInventory(ctx, r.ID, domain.InventoryPatch{Quantity: ptr(101)})
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

		// moving 100 units into B (holding 50 of 100) does not fit
		_, err = svc.UpdateInventory(ctx, r.ID, domain.InventoryPatch{WarehouseID: ptr(f.b.ID)})
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

		moved, err := svc.UpdateInventory(ctx, r.ID, domain.InventoryPatch{WarehouseID: ptr(f.b.ID), Quantity: ptr(50), StorageLocation: ptr("B-7")})
		require.NoError(t, err)
		assert.Equal(t, f.b.ID, moved.WarehouseID)
		assert.Equal(t, "B-7", moved.StorageLocation)

		_, err = svc.UpdateInventory(ctx, r.ID, domain.InventoryPatch{Quantity: ptr(-1)})
		assert.ErrorIs(t, err, domain.ErrValidation)
		_, err = svc.UpdateInventory(ctx, r.ID, domain.InventoryPatch{ProductID: ptr(int64(99))})
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = svc.UpdateInventory(ctx, 999, domain.InventoryPatch{Quantity: ptr(1)})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestInventory_HugeQuantity(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo port.DatabaseRepository) {
		svc := newTestService(repo)
		ctx := context.Background()
		f := seedFixture(t, svc)
		r := stock(t, svc, f.product.ID, f.a.ID, 10)

		_, err := svc.CreateInventory(ctx, domain.InventoryRecord{
			ProductID: f.product.ID, WarehouseID: f.a.ID, Quantity: math.MaxInt,
		})
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

		_, err = svc.UpdateInventory(ctx, r.ID, domain.InventoryPatch{Quantity: ptr(math.MaxInt)})
		assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

		load, err := svc.WarehouseLoad(ctx, f.a.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, load.CurrentLoad)
		d, err := svc.Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10, d.TotalUnits)
	})
}

func TestDeleteInventory(t *testing.T) {
	svc := newTestService(storage.NewMemoryAdapter())
	ctx := context.Background()
	f := seedFixture(t, svc)
	r := stock(t, svc, f.product.ID, f.a.ID, 5)

	require.NoError(t, svc.DeleteInventory(ctx, r.ID))
	_, err := svc.GetInventory(ctx, r.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.DeleteInventory(ctx, r.ID), domain.ErrNotFound)
}

func TestListReads_AreIdempotent(t *testing.T) {
	forEachStore(t, func(t *testing.T, repo port.DatabaseRepository) {
		svc := newTestService(repo)
		ctx := context.Background()
		f := seedFixture(t, svc)
		stock(t, svc, f.product.ID, f.a.ID, 5)

		p1, err := svc.ListProducts(ctx)
		require.NoError(t, err)
		p2, err := svc.ListProducts(ctx)
		require.NoError(t, err)
		assert.Equal(t, p1, p2)

		w1, err := svc.ListWarehouses(ctx)
		require.NoError(t, err)
		w2, err := svc.ListWarehouses(ctx)
		require.NoError(t, err)
		assert.Equal(t, w1, w2)

		i1, err := svc.ListInventory(ctx)
		require.NoError(t, err)
		i2, err := svc.ListInventory(ctx)
		require.NoError(t, err)
		assert.Equal(t, i1, i2)
	})
}
