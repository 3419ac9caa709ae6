package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/internal/port"
)

// ErrAlreadyProcessed reports that an event's correlation id is already
// in the processed-event log. The delivery is dropped without side
// effects and without acknowledging the message; the dedup log, not the
// broker acknowledgment, is the source of truth.
var ErrAlreadyProcessed = errors.New("event already processed")

// ProductEventConsumer coordinates inbound product events: dedup check,
// dispatch to the mutation engine, and the processed-event mark. The
// mark commits in the same store transaction as the dispatched
// mutation, so a crash between the two cannot cause a harmful replay.
// Returning nil from HandleMessage is the signal to acknowledge.
type ProductEventConsumer struct {
	db        port.DatabaseRepository
	inventory *InventoryService
	logger    *logrus.Logger
}

func NewProductEventConsumer(db port.DatabaseRepository, inventory *InventoryService, logger *logrus.Logger) *ProductEventConsumer {
	return &ProductEventConsumer{
		db:        db,
		inventory: inventory,
		logger:    logger,
	}
}

func (c *ProductEventConsumer) HandleMessage(ctx context.Context, payload []byte) error {
	var event domain.ProductEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode product event: %w", err)
	}
	if event.Metadata.CorrelationID == "" {
		return fmt.Errorf("product event %s has no correlation id", event.ID)
	}

	log := c.logger.WithFields(logrus.Fields{
		"event_type":     event.Type,
		"entity_id":      event.ID,
		"correlation_id": event.Metadata.CorrelationID,
	})
	log.Info("received product event")

	processed, err := c.db.HasProcessedEvent(ctx, event.Metadata.CorrelationID)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if processed {
		log.Info("skipping already processed event")
		return ErrAlreadyProcessed
	}

	mark := &domain.ProcessedEvent{
		CorrelationID: event.Metadata.CorrelationID,
		EventType:     event.Type,
		EntityID:      event.ID,
	}

	switch event.Type {
	case domain.ProductEventCreated:
		err = c.inventory.InitializeInventory(ctx, event.Product, mark)
	case domain.ProductEventUpdated:
		_, _, err = c.inventory.RenameProduct(ctx, event.Product.ID, event.Product.Name, mark)
	case domain.ProductEventDeleted:
		_, err = c.inventory.RemoveProductInventory(ctx, event.Product.ID, mark)
	default:
		err = fmt.Errorf("unknown product event type %q", event.Type)
	}
	if err != nil {
		return fmt.Errorf("handle %s: %w", event.Type, err)
	}

	log.Info("product event applied")
	return nil
}
