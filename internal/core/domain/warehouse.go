package domain

import (
	"strings"
	"time"
)

type Warehouse struct {
	ID          int64
	Name        string
	Location    string
	MaxCapacity int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (w Warehouse) Validate() error {
	if strings.TrimSpace(w.Name) == "" {
		return Validationf("warehouse name is required")
	}
	if strings.TrimSpace(w.Location) == "" {
		return Validationf("warehouse location is required")
	}
	if w.MaxCapacity <= 0 {
		return Validationf("warehouse max capacity must be at least 1")
	}
	return nil
}

// DeletePolicy decides what happens to inventory when its warehouse is deleted.
type DeletePolicy string

const (
	DeletePolicyCascade  DeletePolicy = "cascade"
	DeletePolicyRestrict DeletePolicy = "restrict"
)

func ParseDeletePolicy(s string) (DeletePolicy, error) {
	switch DeletePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", DeletePolicyCascade:
		return DeletePolicyCascade, nil
	case DeletePolicyRestrict:
		return DeletePolicyRestrict, nil
	default:
		return "", Validationf("unknown warehouse delete policy %q", s)
	}
}
