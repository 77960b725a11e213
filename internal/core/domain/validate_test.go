package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductValidate(t *testing.T) {
	assert.NoError(t, Product{Name: "Bolt", SKU: "B-1"}.Validate())
	assert.ErrorIs(t, Product{SKU: "B-1"}.Validate(), ErrValidation)
	assert.ErrorIs(t, Product{Name: "Bolt", SKU: "  "}.Validate(), ErrValidation)
	assert.ErrorIs(t, Product{Name: "Bolt", SKU: "B-1", Description: strings.Repeat("x", 257)}.Validate(), ErrValidation)
}

func TestWarehouseValidate(t *testing.T) {
	assert.NoError(t, Warehouse{Name: "North", Location: "Boston", MaxCapacity: 1}.Validate())
	assert.ErrorIs(t, Warehouse{Location: "Boston", MaxCapacity: 1}.Validate(), ErrValidation)
	assert.ErrorIs(t, Warehouse{Name: "North", MaxCapacity: 1}.Validate(), ErrValidation)
	assert.ErrorIs(t, Warehouse{Name: "North", Location: "Boston"}.Validate(), ErrValidation)
}

func TestInventoryRecordValidate(t *testing.T) {
	assert.NoError(t, InventoryRecord{ProductID: 1, WarehouseID: 1}.Validate())
	assert.ErrorIs(t, InventoryRecord{WarehouseID: 1}.Validate(), ErrValidation)
	assert.ErrorIs(t, InventoryRecord{ProductID: 1}.Validate(), ErrValidation)
	assert.ErrorIs(t, InventoryRecord{ProductID: 1, WarehouseID: 1, Quantity: -1}.Validate(), ErrValidation)
}

func TestParseDeletePolicy(t *testing.T) {
	p, err := ParseDeletePolicy("")
	assert.NoError(t, err)
	assert.Equal(t, DeletePolicyCascade, p)

	p, err = ParseDeletePolicy("Restrict")
	assert.NoError(t, err)
	assert.Equal(t, DeletePolicyRestrict, p)

	_, err = ParseDeletePolicy("archive")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestInventoryPatchApply(t *testing.T) {
	qty := 3
	loc := "B-2"
	r := InventoryPatch{Quantity: &qty, StorageLocation: &loc}.Apply(InventoryRecord{ID: 1, ProductID: 2, WarehouseID: 3, Quantity: 9, StorageLocation: "A-1"})
	assert.Equal(t, InventoryRecord{ID: 1, ProductID: 2, WarehouseID: 3, Quantity: 3, StorageLocation: "B-2"}, r)
}
