package domain

import (
	"fmt"
	"math"
)

type Band string

const (
	BandNominal  Band = "nominal"
	BandWarning  Band = "warning"
	BandCritical Band = "critical"
)

const (
	warningThreshold  = 70
	criticalThreshold = 90
)

type WarehouseLoad struct {
	WarehouseID        int64
	CurrentLoad        int
	MaxCapacity        int
	UtilizationPercent int
	Band               Band
}

// CurrentLoad sums the quantity of every record held in the warehouse.
func CurrentLoad(warehouseID int64, records []InventoryRecord) int {
	load := 0
	for _, r := range records {
		if r.WarehouseID == warehouseID {
			load += r.Quantity
		}
	}
	return load
}

// Utilization returns round(100 * load / maxCapacity).
func Utilization(load, maxCapacity int) (int, error) {
	if maxCapacity <= 0 {
		return 0, fmt.Errorf("%w: max capacity is %d", ErrDivisionByZero, maxCapacity)
	}
	return int(math.Round(100 * float64(load) / float64(maxCapacity))), nil
}

func UtilizationPercent(warehouseID int64, records []InventoryRecord, warehouses []Warehouse) (int, error) {
	for _, w := range warehouses {
		if w.ID == warehouseID {
			return Utilization(CurrentLoad(warehouseID, records), w.MaxCapacity)
		}
	}
	return 0, NotFoundf("warehouse %d", warehouseID)
}

// BandFor classifies a utilization percentage. Boundaries are exclusive:
// exactly 70 is nominal and exactly 90 is warning.
func BandFor(percent int) Band {
	switch {
	case percent > criticalThreshold:
		return BandCritical
	case percent > warningThreshold:
		return BandWarning
	default:
		return BandNominal
	}
}

func LoadOf(w Warehouse, records []InventoryRecord) (WarehouseLoad, error) {
	load := CurrentLoad(w.ID, records)
	pct, err := Utilization(load, w.MaxCapacity)
	if err != nil {
		return WarehouseLoad{}, fmt.Errorf("warehouse %d: %w", w.ID, err)
	}
	return WarehouseLoad{
		WarehouseID:        w.ID,
		CurrentLoad:        load,
		MaxCapacity:        w.MaxCapacity,
		UtilizationPercent: pct,
		Band:               BandFor(pct),
	}, nil
}

// Fits reports whether adding amount units keeps the warehouse within capacity.
// The comparison is done on the remaining room so huge amounts cannot wrap.
func Fits(w Warehouse, currentLoad, amount int) bool {
	if amount < 0 || currentLoad < 0 || amount > w.MaxCapacity {
		return false
	}
	return amount <= w.MaxCapacity-currentLoad
}
