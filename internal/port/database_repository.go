package port

import (
	"context"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

// AdjustmentParams describes one stock mutation. When Mark is set the
// processed-event record is inserted in the same transaction as the
// aggregate update and ledger append, so a crash can never leave the
// mutation committed but unrecorded in the dedup log.
type AdjustmentParams struct {
	ProductID   string
	Delta       int
	Description string

	// Initialize allows creating the aggregate when it does not exist
	// yet; ProductName is only read on that path.
	Initialize  bool
	ProductName string

	Mark *domain.ProcessedEvent
}

type DatabaseRepository interface {
	// GetInventory returns the aggregate for a product, or nil when absent.
	GetInventory(ctx context.Context, productID string) (*domain.Inventory, error)

	// ApplyAdjustment atomically updates (or creates) the aggregate and
	// appends a movement record. Returns the resulting aggregate and
	// whether it was created. Fails with domain.ErrInsufficientStock when
	// the resulting quantity would be negative and domain.ErrNotFound on
	// a non-initialization adjustment against a missing aggregate; either
	// failure rolls back the whole unit.
	ApplyAdjustment(ctx context.Context, p AdjustmentParams) (*domain.Inventory, bool, error)

	// ListMovements returns the movement ledger for a product, newest first.
	ListMovements(ctx context.Context, productID string) ([]domain.MovementRecord, error)

	// RenameProduct updates the denormalized product name. Reports false
	// when the name already matches; the dedup mark still commits in that
	// case.
	RenameProduct(ctx context.Context, productID, name string, mark *domain.ProcessedEvent) (*domain.Inventory, bool, error)

	// DeleteInventory removes the aggregate. Movement records are retained.
	DeleteInventory(ctx context.Context, productID string, mark *domain.ProcessedEvent) (*domain.Inventory, error)

	// HasProcessedEvent reports whether a correlation id was already handled.
	HasProcessedEvent(ctx context.Context, correlationID string) (bool, error)
}
