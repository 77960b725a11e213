package domain

import (
	"strings"
	"time"
)

const maxDescriptionLength = 256

type Product struct {
	ID          int64
	Name        string
	SKU         string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the fields a product must carry before it is stored.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return Validationf("product name is required")
	}
	if strings.TrimSpace(p.SKU) == "" {
		return Validationf("product sku is required")
	}
	if len(p.Description) > maxDescriptionLength {
		return Validationf("product description cannot exceed %d characters", maxDescriptionLength)
	}
	return nil
}
