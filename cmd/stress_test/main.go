package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-service/internal/adapter/storage"
	"github.com/rl1809/inventory-service/internal/config"
	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/internal/core/service"
)

const (
	initialStock  = 20
	totalRequests = 50
)

// noopPublisher stands in for Kafka so the stress run only needs MySQL
// and Redis.
type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, topic string, event any) error { return nil }

func main() {
	cfg := config.Load()
	logger := config.NewLogger()
	ctx := context.Background()

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to ping mysql: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	inventoryService := service.NewInventoryService(
		storage.NewMySQLAdapter(db),
		storage.NewRedisAdapter(rdb, cfg.CacheTTL),
		noopPublisher{},
		logger,
	)

	// Fresh product, seeded with the contested stock.
	productID := uuid.NewString()
	product := domain.Product{ID: productID, Name: "stress-test-product"}
	if err := inventoryService.InitializeInventory(ctx, product, nil); err != nil {
		log.Fatalf("failed to initialize inventory: %v", err)
	}
	if err := inventoryService.RegisterInventory(ctx, productID, initialStock, "stress test seed"); err != nil {
		log.Fatalf("failed to seed stock: %v", err)
	}

	var successCount atomic.Int32
	var rejectedCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			err := inventoryService.RegisterInventory(ctx, productID, -1, fmt.Sprintf("stress sale %d", n))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				rejectedCount.Add(1)
			} else {
				log.Printf("unexpected error: %v", err)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	rejected := rejectedCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Rejected:         %d\n", rejected)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == initialStock && rejected == totalRequests-initialStock {
		fmt.Printf("PASS: Exactly %d adjustments succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d rejected, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, rejected)
	}

	stock, err := inventoryService.GetStock(ctx, productID)
	if err != nil {
		log.Fatalf("failed to read final stock: %v", err)
	}
	fmt.Printf("Final Stock: %d\n", stock.Quantity)
	if stock.Quantity == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", stock.Quantity)
	}

	// Ledger head must match the aggregate.
	movements, err := inventoryService.GetMovements(ctx, productID)
	if err != nil {
		log.Fatalf("failed to read movements: %v", err)
	}
	if len(movements) == 0 || movements[0].NewQuantity != stock.Quantity {
		fmt.Println("FAIL: Ledger head does not match aggregate quantity")
	} else {
		fmt.Printf("PASS: Ledger consistent (%d movements)\n", len(movements))
	}
}
