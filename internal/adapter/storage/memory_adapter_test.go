package storage

import (
	"testing"

	"github.com/rl1809/warehouse-inventory/internal/port"
)

func TestMemoryAdapter_Contract(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) port.DatabaseRepository {
		return NewMemoryAdapter()
	})
}

func TestMemoryAdapter_IsNotTransactional(t *testing.T) {
	var repo port.DatabaseRepository = NewMemoryAdapter()
	if _, ok := repo.(port.Transactor); ok {
		t.Fatal("memory adapter must rely on service compensation, not transactions")
	}
}
