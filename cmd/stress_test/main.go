package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rl1809/warehouse-inventory/internal/adapter/storage"
	"github.com/rl1809/warehouse-inventory/internal/config"
	"github.com/rl1809/warehouse-inventory/internal/core/domain"
	"github.com/rl1809/warehouse-inventory/internal/core/service"
)

const (
	warehouseCount  = 5
	warehouseCap    = 200
	initialPerHouse = 120
	totalTransfers  = 2000
	workers         = 32
	maxAmount       = 40
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	repo, closer, err := storage.Open(ctx, cfg.DBDriver, cfg.DSN())
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.DBDriver, err)
	}
	defer closer.Close()

	svc := service.NewInventoryService(repo, service.WithLogger(cfg.NewLogger()))

	// Seed one product spread over several warehouses
	product, err := svc.CreateProduct(ctx, domain.Product{
		Name: "Stress widget",
		SKU:  fmt.Sprintf("STRESS-%d", time.Now().UnixNano()),
	})
	if err != nil {
		log.Fatalf("failed to create product: %v", err)
	}
	warehouseIDs := make([]int64, 0, warehouseCount)
	for i := 0; i < warehouseCount; i++ {
		w, err := svc.CreateWarehouse(ctx, domain.Warehouse{
			Name:        fmt.Sprintf("stress-%d", i),
			Location:    "load test",
			MaxCapacity: warehouseCap,
		})
		if err != nil {
			log.Fatalf("failed to create warehouse: %v", err)
		}
		if _, err := svc.CreateInventory(ctx, domain.InventoryRecord{
			ProductID: product.ID, WarehouseID: w.ID, Quantity: initialPerHouse,
		}); err != nil {
			log.Fatalf("failed to stock warehouse: %v", err)
		}
		warehouseIDs = append(warehouseIDs, w.ID)
	}
	initialUnits := warehouseCount * initialPerHouse

	var successCount, rejectedCount, failCount atomic.Int32
	jobs := make(chan int)
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				src := rand.Intn(warehouseCount)
				dst := (src + 1 + rand.Intn(warehouseCount-1)) % warehouseCount
				_, err := svc.Transfer(ctx, domain.TransferRequest{
					SourceWarehouseID: warehouseIDs[src],
					DestWarehouseID:   warehouseIDs[dst],
					ProductID:         product.ID,
					Amount:            1 + rand.Intn(maxAmount),
				})
				switch {
				case err == nil:
					successCount.Add(1)
				case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrCapacityExceeded):
					rejectedCount.Add(1)
				default:
					failCount.Add(1)
					log.Printf("transfer failed: %v", err)
				}
			}
		}()
	}
	for i := 0; i < totalTransfers; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Store:            %s\n", cfg.DBDriver)
	fmt.Printf("Total Transfers:  %d\n", totalTransfers)
	fmt.Printf("Applied:          %d\n", successCount.Load())
	fmt.Printf("Rejected:         %d\n", rejectedCount.Load())
	fmt.Printf("Errored:          %d\n", failCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	ok := failCount.Load() == 0

	snapshot, err := svc.Snapshot(ctx)
	if err != nil {
		log.Fatalf("failed to read snapshot: %v", err)
	}
	units := 0
	for _, r := range snapshot.Inventory {
		if r.ProductID != product.ID {
			continue
		}
		if r.Quantity < 0 {
			fmt.Printf("FAIL: record %d has negative quantity %d\n", r.ID, r.Quantity)
			ok = false
		}
		units += r.Quantity
	}
	if units == initialUnits {
		fmt.Printf("PASS: %d units conserved\n", units)
	} else {
		fmt.Printf("FAIL: expected %d units, got %d\n", initialUnits, units)
		ok = false
	}

	for _, id := range warehouseIDs {
		load, err := svc.WarehouseLoad(ctx, id)
		if err != nil {
			log.Fatalf("failed to read load: %v", err)
		}
		if load.CurrentLoad > load.MaxCapacity {
			fmt.Printf("FAIL: warehouse %d holds %d of %d\n", id, load.CurrentLoad, load.MaxCapacity)
			ok = false
		}
	}
	if ok {
		fmt.Println("PASS: no warehouse over capacity")
		return
	}
	os.Exit(1)
}
