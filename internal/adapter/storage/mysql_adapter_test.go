package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/inventory?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

// resetMySQL migrates and empties the tables so each test starts clean.
func resetMySQL(t *testing.T, db *sql.DB) *MySQLAdapter {
	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	require.NoError(t, adapter.Migrate(ctx))
	for _, table := range []string{"transfers", "inventory", "products", "warehouses"} {
		_, err := db.ExecContext(ctx, `DELETE FROM `+table)
		require.NoError(t, err)
	}
	return adapter
}

func TestMySQLAdapter_Contract(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	runRepositoryContract(t, func(t *testing.T) port.DatabaseRepository {
		return resetMySQL(t, db)
	})
}

func TestMySQLAdapter_WithTxRollsBack(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := resetMySQL(t, db)

	p := domain.Product{Name: "Bolt", SKU: "tx-bolt"}
	require.NoError(t, adapter.CreateProduct(ctx, &p))
	w := domain.Warehouse{Name: "North", Location: "Boston", MaxCapacity: 10}
	require.NoError(t, adapter.CreateWarehouse(ctx, &w))
	r := domain.InventoryRecord{ProductID: p.ID, WarehouseID: w.ID, Quantity: 8}
	require.NoError(t, adapter.CreateInventory(ctx, &r))

	err := adapter.WithTx(ctx, func(tx port.DatabaseRepository) error {
		debited := r
		debited.Quantity = 0
		if err := tx.UpdateInventory(ctx, debited); err != nil {
			return err
		}
		return tx.CreateInventory(ctx, &domain.InventoryRecord{ProductID: 9999, WarehouseID: w.ID, Quantity: 1})
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	got, err := adapter.GetInventory(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, got.Quantity)
}

func TestMySQLAdapter_DuplicateSKU(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := resetMySQL(t, db)

	require.NoError(t, adapter.CreateProduct(ctx, &domain.Product{Name: "Bolt", SKU: "dup"}))
	err := adapter.CreateProduct(ctx, &domain.Product{Name: "Bolt 2", SKU: "dup"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMySQLAdapter_WideQuantities(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := resetMySQL(t, db)
	const big = 1 << 40

	p := domain.Product{Name: "Grain", SKU: "wide-grain"}
	require.NoError(t, adapter.CreateProduct(ctx, &p))
	w := domain.Warehouse{Name: "Silo", Location: "Omaha", MaxCapacity: 2 * big}
	require.NoError(t, adapter.CreateWarehouse(ctx, &w))
	r := domain.InventoryRecord{ProductID: p.ID, WarehouseID: w.ID, Quantity: big}
	require.NoError(t, adapter.CreateInventory(ctx, &r))
	require.NoError(t, adapter.CreateTransfer(ctx, domain.Transfer{
		ID: "00000000-0000-0000-0000-0000000000aa", SourceWarehouseID: w.ID, DestWarehouseID: w.ID,
		ProductID: p.ID, Amount: big, SourceRecordID: r.ID, DestRecordID: r.ID, CreatedAt: time.Now(),
	}))

	gotW, err := adapter.GetWarehouse(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 2*big, gotW.MaxCapacity)
	gotR, err := adapter.GetInventory(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, big, gotR.Quantity)
	transfers, err := adapter.ListTransfers(ctx, 1)
	require.NoError(t, err)
	require.Len(t, transfers, 1)
	assert.Equal(t, big, transfers[0].Amount)
}
