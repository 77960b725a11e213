package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

// runRepositoryContract exercises behaviour every DatabaseRepository must share.
func runRepositoryContract(t *testing.T, newRepo func(t *testing.T) port.DatabaseRepository) {
	ctx := context.Background()

	seed := func(t *testing.T, repo port.DatabaseRepository) (domain.Product, domain.Warehouse, domain.Warehouse) {
		t.Helper()
		p := domain.Product{Name: "Bolt", SKU: "B-1", Description: "steel"}
		require.NoError(t, repo.CreateProduct(ctx, &p))
		a := domain.Warehouse{Name: "North", Location: "Boston", MaxCapacity: 100}
		require.NoError(t, repo.CreateWarehouse(ctx, &a))
		b := domain.Warehouse{Name: "South", Location: "Tampa", MaxCapacity: 50}
		require.NoError(t, repo.CreateWarehouse(ctx, &b))
		return p, a, b
	}

	t.Run("product crud", func(t *testing.T) {
		repo := newRepo(t)
		p, _, _ := seed(t, repo)
		assert.NotZero(t, p.ID)

		got, err := repo.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bolt", got.Name)

		bySKU, err := repo.FindProductBySKU(ctx, "B-1")
		require.NoError(t, err)
		assert.Equal(t, p.ID, bySKU.ID)

		_, err = repo.FindProductBySKU(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)

		got.Name = "Hex bolt"
		got.UpdatedAt = time.Now()
		require.NoError(t, repo.UpdateProduct(ctx, *got))
		got, err = repo.GetProduct(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "Hex bolt", got.Name)

		_, err = repo.GetProduct(ctx, 9999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteProduct(ctx, 9999), domain.ErrNotFound)
	})

	t.Run("inventory crud", func(t *testing.T) {
		repo := newRepo(t)
		p, a, _ := seed(t, repo)

		r := domain.InventoryRecord{ProductID: p.ID, WarehouseID: a.ID, Quantity: 20, StorageLocation: "A-1"}
		require.NoError(t, repo.CreateInventory(ctx, &r))
		assert.NotZero(t, r.ID)

		r.Quantity = 0
		require.NoError(t, repo.UpdateInventory(ctx, r))
		got, err := repo.GetInventory(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Quantity)
		assert.Equal(t, "A-1", got.StorageLocation)

		require.NoError(t, repo.DeleteInventory(ctx, r.ID))
		_, err = repo.GetInventory(ctx, r.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteInventory(ctx, r.ID), domain.ErrNotFound)
	})

	t.Run("inventory lookups are ordered by id", func(t *testing.T) {
		repo := newRepo(t)
		p, a, b := seed(t, repo)
		for _, r := range []domain.InventoryRecord{
			{ProductID: p.ID, WarehouseID: a.ID, Quantity: 1, StorageLocation: "A-1"},
			{ProductID: p.ID, WarehouseID: b.ID, Quantity: 2},
			{ProductID: p.ID, WarehouseID: a.ID, Quantity: 3, StorageLocation: "A-2"},
		} {
			require.NoError(t, repo.CreateInventory(ctx, &r))
		}

		pair, err := repo.FindInventory(ctx, p.ID, a.ID)
		require.NoError(t, err)
		require.Len(t, pair, 2)
		assert.Less(t, pair[0].ID, pair[1].ID)
		assert.Equal(t, "A-1", pair[0].StorageLocation)

		inB, err := repo.ListInventoryByWarehouse(ctx, b.ID)
		require.NoError(t, err)
		require.Len(t, inB, 1)
		assert.Equal(t, 2, inB[0].Quantity)

		empty, err := repo.FindInventory(ctx, p.ID, 9999)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("deleting a product cascades to its inventory", func(t *testing.T) {
		repo := newRepo(t)
		p, a, b := seed(t, repo)
		other := domain.Product{Name: "Nut", SKU: "N-1"}
		require.NoError(t, repo.CreateProduct(ctx, &other))
		for _, r := range []domain.InventoryRecord{
			{ProductID: p.ID, WarehouseID: a.ID, Quantity: 1},
			{ProductID: p.ID, WarehouseID: b.ID, Quantity: 2},
			{ProductID: other.ID, WarehouseID: a.ID, Quantity: 3},
		} {
			require.NoError(t, repo.CreateInventory(ctx, &r))
		}

		require.NoError(t, repo.DeleteProduct(ctx, p.ID))
		records, err := repo.ListInventory(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, other.ID, records[0].ProductID)
	})

	t.Run("deleting a warehouse cascades to its inventory", func(t *testing.T) {
		repo := newRepo(t)
		p, a, b := seed(t, repo)
		for _, r := range []domain.InventoryRecord{
			{ProductID: p.ID, WarehouseID: a.ID, Quantity: 1},
			{ProductID: p.ID, WarehouseID: b.ID, Quantity: 2},
		} {
			require.NoError(t, repo.CreateInventory(ctx, &r))
		}

		require.NoError(t, repo.DeleteWarehouse(ctx, a.ID))
		records, err := repo.ListInventory(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, b.ID, records[0].WarehouseID)

		warehouses, err := repo.ListWarehouses(ctx)
		require.NoError(t, err)
		require.Len(t, warehouses, 1)
		assert.ErrorIs(t, repo.DeleteWarehouse(ctx, a.ID), domain.ErrNotFound)
	})

	t.Run("transfers are listed newest first", func(t *testing.T) {
		repo := newRepo(t)
		base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		for i, id := range []string{"00000000-0000-0000-0000-000000000001", "00000000-0000-0000-0000-000000000002", "00000000-0000-0000-0000-000000000003"} {
			require.NoError(t, repo.CreateTransfer(ctx, domain.Transfer{
				ID: id, SourceWarehouseID: 1, DestWarehouseID: 2, ProductID: 1, Amount: i + 1,
				SourceRecordID: 1, DestRecordID: 2, CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		got, err := repo.ListTransfers(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "00000000-0000-0000-0000-000000000003", got[0].ID)
		assert.Equal(t, "00000000-0000-0000-0000-000000000002", got[1].ID)
		assert.Equal(t, 3, got[0].Amount)
	})

	t.Run("repeated reads are equal", func(t *testing.T) {
		repo := newRepo(t)
		p, a, _ := seed(t, repo)
		r := domain.InventoryRecord{ProductID: p.ID, WarehouseID: a.ID, Quantity: 5}
		require.NoError(t, repo.CreateInventory(ctx, &r))

		first, err := repo.Snapshot(ctx)
		require.NoError(t, err)
		second, err := repo.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Len(t, first.Products, 1)
		assert.Len(t, first.Warehouses, 2)
		assert.Len(t, first.Inventory, 1)
	})
}
