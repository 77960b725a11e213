package handler

import (
	"time"

	"github.com/rl1809/warehouse-inventory/internal/core/domain"
)

type ProductJSON struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProductRequest struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Description string `json:"description"`
}

type WarehouseJSON struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	MaxCapacity int       `json:"maxCapacity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type WarehouseRequest struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	MaxCapacity int    `json:"maxCapacity"`
}

// EntityRef is the embedded form of a product or warehouse inside an
// inventory record. Requests only need the id.
type EntityRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	SKU      string `json:"sku,omitempty"`
	Location string `json:"location,omitempty"`
}

type InventoryJSON struct {
	ID              int64     `json:"id"`
	ProductID       int64     `json:"productId"`
	WarehouseID     int64     `json:"warehouseId"`
	Product         EntityRef `json:"product"`
	Warehouse       EntityRef `json:"warehouse"`
	Quantity        int       `json:"quantity"`
	StorageLocation string    `json:"storageLocation"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// InventoryRequest accepts references either flat (productId) or nested
// (product.id). Flat ids win when both are present.
type InventoryRequest struct {
	ProductID       *int64     `json:"productId,omitempty"`
	WarehouseID     *int64     `json:"warehouseId,omitempty"`
	Product         *EntityRef `json:"product,omitempty"`
	Warehouse       *EntityRef `json:"warehouse,omitempty"`
	Quantity        *int       `json:"quantity,omitempty"`
	StorageLocation *string    `json:"storageLocation,omitempty"`
}

func (r InventoryRequest) productID() *int64 {
	if r.ProductID != nil {
		return r.ProductID
	}
	if r.Product != nil {
		return &r.Product.ID
	}
	return nil
}

func (r InventoryRequest) warehouseID() *int64 {
	if r.WarehouseID != nil {
		return r.WarehouseID
	}
	if r.Warehouse != nil {
		return &r.Warehouse.ID
	}
	return nil
}

// Record maps a create request. Missing fields become zero values and are
// rejected by validation.
func (r InventoryRequest) Record() domain.InventoryRecord {
	rec := domain.InventoryRecord{}
	if id := r.productID(); id != nil {
		rec.ProductID = *id
	}
	if id := r.warehouseID(); id != nil {
		rec.WarehouseID = *id
	}
	if r.Quantity != nil {
		rec.Quantity = *r.Quantity
	}
	if r.StorageLocation != nil {
		rec.StorageLocation = *r.StorageLocation
	}
	return rec
}

func (r InventoryRequest) Patch() domain.InventoryPatch {
	return domain.InventoryPatch{
		ProductID:       r.productID(),
		WarehouseID:     r.warehouseID(),
		Quantity:        r.Quantity,
		StorageLocation: r.StorageLocation,
	}
}

type TransferRequest struct {
	RequestID         string `json:"requestId"`
	SourceWarehouseID int64  `json:"sourceWarehouseId"`
	DestWarehouseID   int64  `json:"destWarehouseId"`
	ProductID         int64  `json:"productId"`
	Amount            int    `json:"amount"`
	StorageLocation   string `json:"storageLocation,omitempty"`
}

func (r TransferRequest) Domain() domain.TransferRequest {
	return domain.TransferRequest{
		RequestID:         r.RequestID,
		SourceWarehouseID: r.SourceWarehouseID,
		DestWarehouseID:   r.DestWarehouseID,
		ProductID:         r.ProductID,
		Amount:            r.Amount,
		StorageLocation:   r.StorageLocation,
	}
}

type TransferJSON struct {
	ID                string    `json:"id"`
	SourceWarehouseID int64     `json:"sourceWarehouseId"`
	DestWarehouseID   int64     `json:"destWarehouseId"`
	ProductID         int64     `json:"productId"`
	Amount            int       `json:"amount"`
	SourceRecordID    int64     `json:"sourceRecordId"`
	DestRecordID      int64     `json:"destRecordId"`
	CreatedAt         time.Time `json:"createdAt"`
}

type TransferResponse struct {
	Transfer    TransferJSON      `json:"transfer"`
	Source      InventoryJSON     `json:"source"`
	Destination InventoryJSON     `json:"destination"`
	SourceLoad  WarehouseLoadJSON `json:"sourceLoad"`
	DestLoad    WarehouseLoadJSON `json:"destLoad"`
}

type WarehouseLoadJSON struct {
	WarehouseID        int64  `json:"warehouseId"`
	CurrentLoad        int    `json:"currentLoad"`
	MaxCapacity        int    `json:"maxCapacity"`
	UtilizationPercent int    `json:"utilizationPercent"`
	Band               string `json:"band"`
}

type DashboardJSON struct {
	TotalWarehouses    int                 `json:"totalWarehouses"`
	TotalUnits         int                 `json:"totalUnits"`
	ActiveProductCount int                 `json:"activeProductCount"`
	Warehouses         []WarehouseLoadJSON `json:"warehouses"`
	LowStock           []InventoryJSON     `json:"lowStock"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toProductJSON(p domain.Product) ProductJSON {
	return ProductJSON{
		ID:          p.ID,
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toWarehouseJSON(w domain.Warehouse) WarehouseJSON {
	return WarehouseJSON{
		ID:          w.ID,
		Name:        w.Name,
		Location:    w.Location,
		MaxCapacity: w.MaxCapacity,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

// refs resolves the embedded product and warehouse of inventory records.
type refs struct {
	products   map[int64]domain.Product
	warehouses map[int64]domain.Warehouse
}

func newRefs(products []domain.Product, warehouses []domain.Warehouse) refs {
	r := refs{
		products:   make(map[int64]domain.Product, len(products)),
		warehouses: make(map[int64]domain.Warehouse, len(warehouses)),
	}
	for _, p := range products {
		r.products[p.ID] = p
	}
	for _, w := range warehouses {
		r.warehouses[w.ID] = w
	}
	return r
}

func (r refs) inventory(rec domain.InventoryRecord) InventoryJSON {
	out := InventoryJSON{
		ID:              rec.ID,
		ProductID:       rec.ProductID,
		WarehouseID:     rec.WarehouseID,
		Product:         EntityRef{ID: rec.ProductID},
		Warehouse:       EntityRef{ID: rec.WarehouseID},
		Quantity:        rec.Quantity,
		StorageLocation: rec.StorageLocation,
		CreatedAt:       rec.CreatedAt,
		UpdatedAt:       rec.UpdatedAt,
	}
	if p, ok := r.products[rec.ProductID]; ok {
		out.Product.Name = p.Name
		out.Product.SKU = p.SKU
	}
	if w, ok := r.warehouses[rec.WarehouseID]; ok {
		out.Warehouse.Name = w.Name
		out.Warehouse.Location = w.Location
	}
	return out
}

func (r refs) inventoryList(records []domain.InventoryRecord) []InventoryJSON {
	out := make([]InventoryJSON, 0, len(records))
	for _, rec := range records {
		out = append(out, r.inventory(rec))
	}
	return out
}

func toWarehouseLoadJSON(l domain.WarehouseLoad) WarehouseLoadJSON {
	return WarehouseLoadJSON{
		WarehouseID:        l.WarehouseID,
		CurrentLoad:        l.CurrentLoad,
		MaxCapacity:        l.MaxCapacity,
		UtilizationPercent: l.UtilizationPercent,
		Band:               string(l.Band),
	}
}

func toTransferJSON(t domain.Transfer) TransferJSON {
	return TransferJSON{
		ID:                t.ID,
		SourceWarehouseID: t.SourceWarehouseID,
		DestWarehouseID:   t.DestWarehouseID,
		ProductID:         t.ProductID,
		Amount:            t.Amount,
		SourceRecordID:    t.SourceRecordID,
		DestRecordID:      t.DestRecordID,
		CreatedAt:         t.CreatedAt,
	}
}

func toTransferResponse(res domain.TransferResult) TransferResponse {
	r := newRefs([]domain.Product{res.Product}, []domain.Warehouse{res.SourceWarehouse, res.DestWarehouse})
	return TransferResponse{
		Transfer:    toTransferJSON(res.Transfer),
		Source:      r.inventory(res.Source),
		Destination: r.inventory(res.Destination),
		SourceLoad:  toWarehouseLoadJSON(res.SourceLoad),
		DestLoad:    toWarehouseLoadJSON(res.DestLoad),
	}
}

func toStockLineJSON(l domain.StockLine) InventoryJSON {
	out := newRefs(nil, nil).inventory(l.InventoryRecord)
	out.Product.Name = l.ProductName
	out.Product.SKU = l.ProductSKU
	out.Warehouse.Name = l.WarehouseName
	out.Warehouse.Location = l.WarehouseLocation
	return out
}

func toDashboardJSON(d domain.Dashboard) DashboardJSON {
	out := DashboardJSON{
		TotalWarehouses:    d.TotalWarehouses,
		TotalUnits:         d.TotalUnits,
		ActiveProductCount: d.ActiveProductCount,
		Warehouses:         make([]WarehouseLoadJSON, 0, len(d.Warehouses)),
		LowStock:           make([]InventoryJSON, 0, len(d.LowStock)),
	}
	for _, l := range d.Warehouses {
		out.Warehouses = append(out.Warehouses, toWarehouseLoadJSON(l))
	}
	for _, l := range d.LowStock {
		out.LowStock = append(out.LowStock, toStockLineJSON(l))
	}
	return out
}
