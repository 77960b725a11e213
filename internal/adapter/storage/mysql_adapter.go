package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

const (
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		sku VARCHAR(128) NOT NULL UNIQUE,
		description VARCHAR(256) NOT NULL DEFAULT '',
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS warehouses (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		location VARCHAR(255) NOT NULL,
		max_capacity BIGINT NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS inventory (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		product_id BIGINT NOT NULL,
		warehouse_id BIGINT NOT NULL,
		quantity BIGINT NOT NULL,
		storage_location VARCHAR(255) NOT NULL DEFAULT '',
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_inventory_pair (product_id, warehouse_id),
		INDEX idx_inventory_warehouse (warehouse_id),
		CONSTRAINT fk_inventory_product FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE,
		CONSTRAINT fk_inventory_warehouse FOREIGN KEY (warehouse_id) REFERENCES warehouses(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS transfers (
		seq BIGINT AUTO_INCREMENT PRIMARY KEY,
		id CHAR(36) NOT NULL UNIQUE,
		source_warehouse_id BIGINT NOT NULL,
		dest_warehouse_id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		amount BIGINT NOT NULL,
		source_record_id BIGINT NOT NULL,
		dest_record_id BIGINT NOT NULL,
		created_at DATETIME(6) NOT NULL
	)`,
	// tables created with 32-bit unit columns are widened in place
	`ALTER TABLE warehouses MODIFY max_capacity BIGINT NOT NULL`,
	`ALTER TABLE inventory MODIFY quantity BIGINT NOT NULL`,
	`ALTER TABLE transfers MODIFY amount BIGINT NOT NULL`,
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// MySQLAdapter stores entities in MySQL. Inside WithTx the warehouse rows
// read by the service are locked FOR UPDATE, which serializes capacity checks
// across processes sharing the database.
type MySQLAdapter struct {
	db   *sql.DB
	q    querier
	inTx bool
	now  func() time.Time
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db, q: db, now: time.Now}
}

// Migrate creates the tables when they do not exist yet.
func (m *MySQLAdapter) Migrate(ctx context.Context) error {
	for _, stmt := range mysqlSchema {
		if _, err := m.q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (m *MySQLAdapter) WithTx(ctx context.Context, fn func(repo port.DatabaseRepository) error) error {
	if m.inTx {
		return fn(m)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&MySQLAdapter{db: m.db, q: tx, inTx: true, now: m.now}); err != nil {
		return err
	}
	return tx.Commit()
}

func (m *MySQLAdapter) withTx(ctx context.Context, fn func(tx *MySQLAdapter) error) error {
	return m.WithTx(ctx, func(repo port.DatabaseRepository) error {
		return fn(repo.(*MySQLAdapter))
	})
}

func (m *MySQLAdapter) lockClause() string {
	if m.inTx {
		return " FOR UPDATE"
	}
	return ""
}

const productColumns = `id, name, sku, description, created_at, updated_at`

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (m *MySQLAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := m.q.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	return collect(rows, scanProduct)
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(m.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("product %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func (m *MySQLAdapter) FindProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	p, err := scanProduct(m.q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE sku = ?`, sku))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("product with sku %q", sku)
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}
	return &p, nil
}

func (m *MySQLAdapter) CreateProduct(ctx context.Context, product *domain.Product) error {
	now := m.now()
	result, err := m.q.ExecContext(ctx, `
		INSERT INTO products (name, sku, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		product.Name, product.SKU, product.Description, now, now,
	)
	if err != nil {
		return translateMySQLError("insert product", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	product.ID, product.CreatedAt, product.UpdatedAt = id, now, now
	return nil
}

// MySQL reports zero affected rows for an UPDATE that changes nothing, so the
// update methods do not use RowsAffected to detect missing rows; the service
// reads the row first.
func (m *MySQLAdapter) UpdateProduct(ctx context.Context, product domain.Product) error {
	_, err := m.q.ExecContext(ctx, `
		UPDATE products SET name = ?, sku = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		product.Name, product.SKU, product.Description, product.UpdatedAt, product.ID,
	)
	if err != nil {
		return translateMySQLError("update product", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteProduct(ctx context.Context, id int64) error {
	return m.withTx(ctx, func(tx *MySQLAdapter) error {
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM inventory WHERE product_id = ?`, id); err != nil {
			return fmt.Errorf("delete product inventory: %w", err)
		}
		return tx.deleteByID(ctx, "products", "product", id)
	})
}

const warehouseColumns = `id, name, location, max_capacity, created_at, updated_at`

func scanWarehouse(row rowScanner) (domain.Warehouse, error) {
	var w domain.Warehouse
	err := row.Scan(&w.ID, &w.Name, &w.Location, &w.MaxCapacity, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

func (m *MySQLAdapter) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	rows, err := m.q.QueryContext(ctx, `SELECT `+warehouseColumns+` FROM warehouses ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query warehouses: %w", err)
	}
	return collect(rows, scanWarehouse)
}

func (m *MySQLAdapter) GetWarehouse(ctx context.Context, id int64) (*domain.Warehouse, error) {
	w, err := scanWarehouse(m.q.QueryRowContext(ctx,
		`SELECT `+warehouseColumns+` FROM warehouses WHERE id = ?`+m.lockClause(), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("warehouse %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query warehouse: %w", err)
	}
	return &w, nil
}

func (m *MySQLAdapter) CreateWarehouse(ctx context.Context, warehouse *domain.Warehouse) error {
	now := m.now()
	result, err := m.q.ExecContext(ctx, `
		INSERT INTO warehouses (name, location, max_capacity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		warehouse.Name, warehouse.Location, warehouse.MaxCapacity, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert warehouse: %w", err)
	}
	warehouse.ID, warehouse.CreatedAt, warehouse.UpdatedAt = id, now, now
	return nil
}

func (m *MySQLAdapter) UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) error {
	_, err := m.q.ExecContext(ctx, `
		UPDATE warehouses SET name = ?, location = ?, max_capacity = ?, updated_at = ?
		WHERE id = ?`,
		warehouse.Name, warehouse.Location, warehouse.MaxCapacity, warehouse.UpdatedAt, warehouse.ID,
	)
	if err != nil {
		return fmt.Errorf("update warehouse: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteWarehouse(ctx context.Context, id int64) error {
	return m.withTx(ctx, func(tx *MySQLAdapter) error {
		if _, err := tx.q.ExecContext(ctx, `DELETE FROM inventory WHERE warehouse_id = ?`, id); err != nil {
			return fmt.Errorf("delete warehouse inventory: %w", err)
		}
		return tx.deleteByID(ctx, "warehouses", "warehouse", id)
	})
}

const inventoryColumns = `id, product_id, warehouse_id, quantity, storage_location, created_at, updated_at`

func scanInventory(row rowScanner) (domain.InventoryRecord, error) {
	var r domain.InventoryRecord
	err := row.Scan(&r.ID, &r.ProductID, &r.WarehouseID, &r.Quantity, &r.StorageLocation, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (m *MySQLAdapter) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	rows, err := m.q.QueryContext(ctx, `SELECT `+inventoryColumns+` FROM inventory ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return collect(rows, scanInventory)
}

func (m *MySQLAdapter) GetInventory(ctx context.Context, id int64) (*domain.InventoryRecord, error) {
	r, err := scanInventory(m.q.QueryRowContext(ctx, `SELECT `+inventoryColumns+` FROM inventory WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("inventory record %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return &r, nil
}

func (m *MySQLAdapter) ListInventoryByWarehouse(ctx context.Context, warehouseID int64) ([]domain.InventoryRecord, error) {
	rows, err := m.q.QueryContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory WHERE warehouse_id = ? ORDER BY id`, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return collect(rows, scanInventory)
}

func (m *MySQLAdapter) FindInventory(ctx context.Context, productID, warehouseID int64) ([]domain.InventoryRecord, error) {
	rows, err := m.q.QueryContext(ctx,
		`SELECT `+inventoryColumns+` FROM inventory WHERE product_id = ? AND warehouse_id = ? ORDER BY id`+m.lockClause(),
		productID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return collect(rows, scanInventory)
}

func (m *MySQLAdapter) CreateInventory(ctx context.Context, record *domain.InventoryRecord) error {
	now := m.now()
	result, err := m.q.ExecContext(ctx, `
		INSERT INTO inventory (product_id, warehouse_id, quantity, storage_location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		record.ProductID, record.WarehouseID, record.Quantity, record.StorageLocation, now, now,
	)
	if err != nil {
		return translateMySQLError("insert inventory", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}
	record.ID, record.CreatedAt, record.UpdatedAt = id, now, now
	return nil
}

func (m *MySQLAdapter) UpdateInventory(ctx context.Context, record domain.InventoryRecord) error {
	_, err := m.q.ExecContext(ctx, `
		UPDATE inventory
		SET product_id = ?, warehouse_id = ?, quantity = ?, storage_location = ?, updated_at = ?
		WHERE id = ?`,
		record.ProductID, record.WarehouseID, record.Quantity, record.StorageLocation, record.UpdatedAt, record.ID,
	)
	if err != nil {
		return translateMySQLError("update inventory", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteInventory(ctx context.Context, id int64) error {
	return m.deleteByID(ctx, "inventory", "inventory record", id)
}

func (m *MySQLAdapter) CreateTransfer(ctx context.Context, t domain.Transfer) error {
	_, err := m.q.ExecContext(ctx, `
		INSERT INTO transfers (id, source_warehouse_id, dest_warehouse_id, product_id, amount,
			source_record_id, dest_record_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.SourceWarehouseID, t.DestWarehouseID, t.ProductID, t.Amount,
		t.SourceRecordID, t.DestRecordID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transfer: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) ListTransfers(ctx context.Context, limit int) ([]domain.Transfer, error) {
	rows, err := m.q.QueryContext(ctx, `
		SELECT id, source_warehouse_id, dest_warehouse_id, product_id, amount,
			source_record_id, dest_record_id, created_at
		FROM transfers ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}
	return collect(rows, func(row rowScanner) (domain.Transfer, error) {
		var t domain.Transfer
		err := row.Scan(&t.ID, &t.SourceWarehouseID, &t.DestWarehouseID, &t.ProductID, &t.Amount,
			&t.SourceRecordID, &t.DestRecordID, &t.CreatedAt)
		return t, err
	})
}

// Snapshot reads the three tables inside one REPEATABLE READ transaction.
func (m *MySQLAdapter) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	if m.inTx {
		return m.snapshot(ctx)
	}

	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	s, err := (&MySQLAdapter{db: m.db, q: tx, now: m.now}).snapshot(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return s, tx.Commit()
}

func (m *MySQLAdapter) snapshot(ctx context.Context) (domain.Snapshot, error) {
	var (
		s   domain.Snapshot
		err error
	)
	if s.Products, err = m.ListProducts(ctx); err != nil {
		return domain.Snapshot{}, err
	}
	if s.Warehouses, err = m.ListWarehouses(ctx); err != nil {
		return domain.Snapshot{}, err
	}
	if s.Inventory, err = m.ListInventory(ctx); err != nil {
		return domain.Snapshot{}, err
	}
	return s, nil
}

func (m *MySQLAdapter) deleteByID(ctx context.Context, table, entity string, id int64) error {
	result, err := m.q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.NotFoundf("%s %d", entity, id)
	}
	return nil
}

func collect[T any](rows *sql.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func translateMySQLError(op string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return domain.Validationf("%s: %s", op, myErr.Message)
		case mysqlNoReferencedRow:
			return domain.NotFoundf("%s: %s", op, myErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
