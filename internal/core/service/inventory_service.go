package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/internal/port"
)

const initializationDescription = "Product initialization"

func stockKey(productID string) string     { return "stock:" + productID }
func movementsKey(productID string) string { return "movements:" + productID }

// InventoryService is the mutation engine. It is the only writer of the
// aggregate and ledger stores and of the cache; cache invalidation runs
// strictly after the store transaction commits.
type InventoryService struct {
	db        port.DatabaseRepository
	cache     port.CacheRepository
	publisher port.EventPublisher
	logger    *logrus.Logger
}

func NewInventoryService(db port.DatabaseRepository, cache port.CacheRepository, publisher port.EventPublisher, logger *logrus.Logger) *InventoryService {
	return &InventoryService{
		db:        db,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// RegisterInventory applies a signed stock delta to an existing product.
// The direct client path: fails with domain.ErrNotFound when the product
// was never initialized.
func (s *InventoryService) RegisterInventory(ctx context.Context, productID string, delta int, description string) error {
	return s.adjust(ctx, port.AdjustmentParams{
		ProductID:   productID,
		Delta:       delta,
		Description: description,
	})
}

// InitializeInventory creates the aggregate for a newly created product
// with zero stock. An existing aggregate is treated as a plain
// adjustment of zero, which makes a replayed initialization harmless.
func (s *InventoryService) InitializeInventory(ctx context.Context, product domain.Product, mark *domain.ProcessedEvent) error {
	return s.adjust(ctx, port.AdjustmentParams{
		ProductID:   product.ID,
		Delta:       0,
		Description: initializationDescription,
		Initialize:  true,
		ProductName: product.Name,
		Mark:        mark,
	})
}

func (s *InventoryService) adjust(ctx context.Context, p port.AdjustmentParams) error {
	inv, created, err := s.db.ApplyAdjustment(ctx, p)
	if err != nil {
		return err
	}

	s.invalidate(ctx, stockKey(p.ProductID), movementsKey(p.ProductID))

	// Initialization creates the row silently; only updates of existing
	// stock notify downstream consumers.
	if !created {
		s.publishUpdated(ctx, *inv)
	}
	return nil
}

// GetStock serves the current stock read model through the cache. A
// cache read failure is treated as a miss so reads stay available when
// Redis is not.
func (s *InventoryService) GetStock(ctx context.Context, productID string) (*domain.ProductStock, error) {
	key := stockKey(productID)

	var cached domain.ProductStock
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WithField("key", key).WithError(err).Warn("cache read failed, falling back to store")
	} else if hit {
		return &cached, nil
	}

	inv, err := s.db.GetInventory(ctx, productID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	stock := &domain.ProductStock{
		ProductID:   productID,
		ProductName: inv.ProductName,
		Quantity:    inv.Quantity,
	}
	if err := s.cache.Set(ctx, key, stock); err != nil {
		s.logger.WithField("key", key).WithError(err).Warn("cache write failed")
	}
	return stock, nil
}

// GetMovements returns the movement ledger for a product, newest first,
// through the same read-through cache pattern as GetStock.
func (s *InventoryService) GetMovements(ctx context.Context, productID string) ([]domain.MovementRecord, error) {
	key := movementsKey(productID)

	var cached []domain.MovementRecord
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		s.logger.WithField("key", key).WithError(err).Warn("cache read failed, falling back to store")
	} else if hit {
		return cached, nil
	}

	movements, err := s.db.ListMovements(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, movements); err != nil {
		s.logger.WithField("key", key).WithError(err).Warn("cache write failed")
	}
	return movements, nil
}

// RenameProduct syncs the denormalized product name. Reports false
// without writing when the name already matches. A rename is not a
// stock movement, so no ledger entry is appended, but the cached stock
// embeds the name and is invalidated when it changes.
func (s *InventoryService) RenameProduct(ctx context.Context, productID, name string, mark *domain.ProcessedEvent) (*domain.Inventory, bool, error) {
	inv, renamed, err := s.db.RenameProduct(ctx, productID, name, mark)
	if err != nil {
		return nil, false, err
	}
	if renamed {
		s.invalidate(ctx, stockKey(productID))
	}
	return inv, renamed, nil
}

// RemoveProductInventory deletes the aggregate for a deleted product.
// The movement ledger is retained for auditability; both cache keys are
// dropped so a deleted product cannot keep serving a cached quantity.
func (s *InventoryService) RemoveProductInventory(ctx context.Context, productID string, mark *domain.ProcessedEvent) (*domain.Inventory, error) {
	inv, err := s.db.DeleteInventory(ctx, productID, mark)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, stockKey(productID), movementsKey(productID))
	return inv, nil
}

func (s *InventoryService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		// Stale entries age out at TTL; the store already committed.
		s.logger.WithField("keys", keys).WithError(err).Warn("cache invalidation failed")
	}
}

func (s *InventoryService) publishUpdated(ctx context.Context, inv domain.Inventory) {
	event := domain.NewInventoryEvent(inv)
	if err := s.publisher.Publish(ctx, domain.InventoryEventUpdated, event); err != nil {
		s.logger.WithFields(logrus.Fields{
			"product_id":     inv.ProductID,
			"correlation_id": event.Metadata.CorrelationID,
		}).WithError(err).Error("failed to publish inventory.updated")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"product_id":     inv.ProductID,
		"correlation_id": event.Metadata.CorrelationID,
	}).Debug("published inventory.updated")
}
