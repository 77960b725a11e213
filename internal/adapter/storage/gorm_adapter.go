package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/port"
)

// OpenGorm opens a SQLite or PostgreSQL database. SQLite is limited to one
// connection so an in-memory database is shared by every query.
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", driver, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// GormAdapter provides the entity store on top of GORM.
type GormAdapter struct {
	db   *gorm.DB
	inTx bool
}

func NewGormAdapter(db *gorm.DB) *GormAdapter {
	return &GormAdapter{db: db}
}

func (g *GormAdapter) Migrate(ctx context.Context) error {
	if err := g.db.WithContext(ctx).AutoMigrate(&productRow{}, &warehouseRow{}, &inventoryRow{}, &transferRow{}); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (g *GormAdapter) WithTx(ctx context.Context, fn func(repo port.DatabaseRepository) error) error {
	if g.inTx {
		return fn(g)
	}
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormAdapter{db: tx, inTx: true})
	})
}

func (g *GormAdapter) withTx(ctx context.Context, fn func(tx *GormAdapter) error) error {
	return g.WithTx(ctx, func(repo port.DatabaseRepository) error {
		return fn(repo.(*GormAdapter))
	})
}

// locked adds FOR UPDATE inside a PostgreSQL transaction. SQLite already
// serializes writers.
func (g *GormAdapter) locked(db *gorm.DB) *gorm.DB {
	if g.inTx && g.db.Dialector.Name() == "postgres" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

func (g *GormAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := g.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}
	return mapRows(rows, productFromRow), nil
}

func (g *GormAdapter) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var row productRow
	if err := g.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, fmt.Sprintf("product %d", id))
	}
	p := productFromRow(row)
	return &p, nil
}

func (g *GormAdapter) FindProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var row productRow
	if err := g.db.WithContext(ctx).First(&row, "sku = ?", sku).Error; err != nil {
		return nil, translateGormError(err, fmt.Sprintf("product with sku %q", sku))
	}
	p := productFromRow(row)
	return &p, nil
}

func (g *GormAdapter) CreateProduct(ctx context.Context, product *domain.Product) error {
	row := productRow{Name: product.Name, SKU: product.SKU, Description: product.Description}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateGormError(err, "product")
	}
	*product = productFromRow(row)
	return nil
}

func (g *GormAdapter) UpdateProduct(ctx context.Context, product domain.Product) error {
	return g.updateByID(ctx, &productRow{}, "product", product.ID, map[string]any{
		"name":        product.Name,
		"sku":         product.SKU,
		"description": product.Description,
	})
}

func (g *GormAdapter) DeleteProduct(ctx context.Context, id int64) error {
	return g.withTx(ctx, func(tx *GormAdapter) error {
		if err := tx.db.WithContext(ctx).Where("product_id = ?", id).Delete(&inventoryRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete product inventory: %w", err)
		}
		return tx.deleteByID(ctx, &productRow{}, "product", id)
	})
}

func (g *GormAdapter) ListWarehouses(ctx context.Context) ([]domain.Warehouse, error) {
	var rows []warehouseRow
	if err := g.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find warehouses: %w", err)
	}
	return mapRows(rows, warehouseFromRow), nil
}

func (g *GormAdapter) GetWarehouse(ctx context.Context, id int64) (*domain.Warehouse, error) {
	var row warehouseRow
	if err := g.locked(g.db.WithContext(ctx)).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, fmt.Sprintf("warehouse %d", id))
	}
	w := warehouseFromRow(row)
	return &w, nil
}

func (g *GormAdapter) CreateWarehouse(ctx context.Context, warehouse *domain.Warehouse) error {
	row := warehouseRow{Name: warehouse.Name, Location: warehouse.Location, MaxCapacity: warehouse.MaxCapacity}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateGormError(err, "warehouse")
	}
	*warehouse = warehouseFromRow(row)
	return nil
}

func (g *GormAdapter) UpdateWarehouse(ctx context.Context, warehouse domain.Warehouse) error {
	return g.updateByID(ctx, &warehouseRow{}, "warehouse", warehouse.ID, map[string]any{
		"name":         warehouse.Name,
		"location":     warehouse.Location,
		"max_capacity": warehouse.MaxCapacity,
	})
}

func (g *GormAdapter) DeleteWarehouse(ctx context.Context, id int64) error {
	return g.withTx(ctx, func(tx *GormAdapter) error {
		if err := tx.db.WithContext(ctx).Where("warehouse_id = ?", id).Delete(&inventoryRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete warehouse inventory: %w", err)
		}
		return tx.deleteByID(ctx, &warehouseRow{}, "warehouse", id)
	})
}

func (g *GormAdapter) ListInventory(ctx context.Context) ([]domain.InventoryRecord, error) {
	return g.findInventory(ctx, g.db.WithContext(ctx))
}

func (g *GormAdapter) GetInventory(ctx context.Context, id int64) (*domain.InventoryRecord, error) {
	var row inventoryRow
	if err := g.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateGormError(err, fmt.Sprintf("inventory record %d", id))
	}
	r := inventoryFromRow(row)
	return &r, nil
}

func (g *GormAdapter) ListInventoryByWarehouse(ctx context.Context, warehouseID int64) ([]domain.InventoryRecord, error) {
	return g.findInventory(ctx, g.db.WithContext(ctx).Where("warehouse_id = ?", warehouseID))
}

func (g *GormAdapter) FindInventory(ctx context.Context, productID, warehouseID int64) ([]domain.InventoryRecord, error) {
	q := g.db.WithContext(ctx).Where("product_id = ? AND warehouse_id = ?", productID, warehouseID)
	return g.findInventory(ctx, g.locked(q))
}

func (g *GormAdapter) CreateInventory(ctx context.Context, record *domain.InventoryRecord) error {
	row := inventoryRow{
		ProductID:       record.ProductID,
		WarehouseID:     record.WarehouseID,
		Quantity:        record.Quantity,
		StorageLocation: record.StorageLocation,
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateGormError(err, "inventory record")
	}
	*record = inventoryFromRow(row)
	return nil
}

func (g *GormAdapter) UpdateInventory(ctx context.Context, record domain.InventoryRecord) error {
	return g.updateByID(ctx, &inventoryRow{}, "inventory record", record.ID, map[string]any{
		"product_id":       record.ProductID,
		"warehouse_id":     record.WarehouseID,
		"quantity":         record.Quantity,
		"storage_location": record.StorageLocation,
	})
}

func (g *GormAdapter) DeleteInventory(ctx context.Context, id int64) error {
	return g.deleteByID(ctx, &inventoryRow{}, "inventory record", id)
}

func (g *GormAdapter) CreateTransfer(ctx context.Context, t domain.Transfer) error {
	row := transferRow{
		TransferID:        t.ID,
		SourceWarehouseID: t.SourceWarehouseID,
		DestWarehouseID:   t.DestWarehouseID,
		ProductID:         t.ProductID,
		Amount:            t.Amount,
		SourceRecordID:    t.SourceRecordID,
		DestRecordID:      t.DestRecordID,
		CreatedAt:         t.CreatedAt,
	}
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	return nil
}

func (g *GormAdapter) ListTransfers(ctx context.Context, limit int) ([]domain.Transfer, error) {
	var rows []transferRow
	if err := g.db.WithContext(ctx).Order("seq DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find transfers: %w", err)
	}
	return mapRows(rows, transferFromRow), nil
}

func (g *GormAdapter) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var s domain.Snapshot
	err := g.withTx(ctx, func(tx *GormAdapter) error {
		var err error
		if s.Products, err = tx.ListProducts(ctx); err != nil {
			return err
		}
		if s.Warehouses, err = tx.ListWarehouses(ctx); err != nil {
			return err
		}
		s.Inventory, err = tx.ListInventory(ctx)
		return err
	})
	if err != nil {
		return domain.Snapshot{}, err
	}
	return s, nil
}

func (g *GormAdapter) findInventory(ctx context.Context, q *gorm.DB) ([]domain.InventoryRecord, error) {
	var rows []inventoryRow
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to find inventory: %w", err)
	}
	return mapRows(rows, inventoryFromRow), nil
}

func (g *GormAdapter) updateByID(ctx context.Context, model any, entity string, id int64, fields map[string]any) error {
	result := g.db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(fields)
	if err := result.Error; err != nil {
		return translateGormError(err, entity)
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundf("%s %d", entity, id)
	}
	return nil
}

func (g *GormAdapter) deleteByID(ctx context.Context, model any, entity string, id int64) error {
	result := g.db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundf("%s %d", entity, id)
	}
	return nil
}

func translateGormError(err error, what string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFoundf("%s", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.Validationf("%s already exists", what)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return domain.NotFoundf("%s references a missing entity", what)
	default:
		return fmt.Errorf("failed to access %s: %w", what, err)
	}
}
