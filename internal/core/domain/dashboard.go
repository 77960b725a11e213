package domain

import (
	"sort"
)

type Dashboard struct {
	TotalWarehouses    int
	TotalUnits         int
	ActiveProductCount int
	Warehouses         []WarehouseLoad
	LowStock           []StockLine
}

// StockLine is an inventory record with the names of what it references, so
// a cached dashboard can be rendered without reading the catalog again.
type StockLine struct {
	InventoryRecord
	ProductName       string
	ProductSKU        string
	WarehouseName     string
	WarehouseLocation string
}

// BuildDashboard derives the summary statistics from a snapshot. Products
// count as active when any record references them, whatever its quantity.
func BuildDashboard(s Snapshot, lowStockThreshold int) (Dashboard, error) {
	d := Dashboard{
		TotalWarehouses: len(s.Warehouses),
		Warehouses:      make([]WarehouseLoad, 0, len(s.Warehouses)),
		LowStock:        []StockLine{},
	}

	productsByID := make(map[int64]Product, len(s.Products))
	for _, p := range s.Products {
		productsByID[p.ID] = p
	}
	warehousesByID := make(map[int64]Warehouse, len(s.Warehouses))
	for _, w := range s.Warehouses {
		warehousesByID[w.ID] = w
	}

	products := make(map[int64]struct{})
	for _, r := range s.Inventory {
		d.TotalUnits += r.Quantity
		products[r.ProductID] = struct{}{}
		if r.Quantity < lowStockThreshold {
			p, w := productsByID[r.ProductID], warehousesByID[r.WarehouseID]
			d.LowStock = append(d.LowStock, StockLine{
				InventoryRecord:   r,
				ProductName:       p.Name,
				ProductSKU:        p.SKU,
				WarehouseName:     w.Name,
				WarehouseLocation: w.Location,
			})
		}
	}
	d.ActiveProductCount = len(products)

	warehouses := append([]Warehouse(nil), s.Warehouses...)
	sort.Slice(warehouses, func(i, j int) bool { return warehouses[i].ID < warehouses[j].ID })
	for _, w := range warehouses {
		load, err := LoadOf(w, s.Inventory)
		if err != nil {
			return Dashboard{}, err
		}
		d.Warehouses = append(d.Warehouses, load)
	}

	sort.Slice(d.LowStock, func(i, j int) bool { return d.LowStock[i].ID < d.LowStock[j].ID })
	return d, nil
}
