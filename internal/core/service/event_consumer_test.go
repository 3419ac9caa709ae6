package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rl1809/inventory-service/internal/core/domain"
)

func newTestConsumer() (*ProductEventConsumer, *InventoryService, *mockStore, *mockPublisher) {
	store := newMockStore()
	cache := newMockCache()
	publisher := &mockPublisher{}
	inventory := NewInventoryService(store, cache, publisher, testLogger())
	consumer := NewProductEventConsumer(store, inventory, testLogger())
	return consumer, inventory, store, publisher
}

func productEventPayload(t *testing.T, eventType, correlationID string, product domain.Product) []byte {
	t.Helper()
	payload, err := json.Marshal(domain.ProductEvent{
		ID:       product.ID,
		Type:     eventType,
		Product:  product,
		Metadata: domain.EventMetadata{CorrelationID: correlationID},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

func TestHandleMessage_ProductCreated(t *testing.T) {
	consumer, inventory, store, _ := newTestConsumer()
	ctx := context.Background()

	payload := productEventPayload(t, domain.ProductEventCreated, "corr-1", domain.Product{ID: "p1", Name: "Widget"})
	if err := consumer.HandleMessage(ctx, payload); err != nil {
		t.Fatalf("expected success, got: %v", err)
	}

	stock, err := inventory.GetStock(ctx, "p1")
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if stock.Quantity != 0 || stock.ProductName != "Widget" {
		t.Errorf("unexpected stock: %+v", stock)
	}

	processed, _ := store.HasProcessedEvent(ctx, "corr-1")
	if !processed {
		t.Error("expected correlation id marked as processed")
	}
}

func TestHandleMessage_DuplicateDelivery(t *testing.T) {
	consumer, inventory, store, _ := newTestConsumer()
	ctx := context.Background()

	created := productEventPayload(t, domain.ProductEventCreated, "corr-1", domain.Product{ID: "p1", Name: "Widget"})
	if err := consumer.HandleMessage(ctx, created); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}

	// Redelivery of the same business event carries the same correlation id.
	if err := consumer.HandleMessage(ctx, created); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed, got: %v", err)
	}

	movements, _ := inventory.GetMovements(ctx, "p1")
	if len(movements) != 1 {
		t.Errorf("replay must not append movements, got %d", len(movements))
	}
	if len(store.processed) != 1 {
		t.Errorf("replay must not add processed-event records, got %d", len(store.processed))
	}
}

func TestHandleMessage_ProductUpdatedAppliesOnce(t *testing.T) {
	consumer, inventory, _, _ := newTestConsumer()
	ctx := context.Background()

	created := productEventPayload(t, domain.ProductEventCreated, "corr-1", domain.Product{ID: "p1", Name: "Widget"})
	if err := consumer.HandleMessage(ctx, created); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated := productEventPayload(t, domain.ProductEventUpdated, "corr-2", domain.Product{ID: "p1", Name: "Gadget"})
	if err := consumer.HandleMessage(ctx, updated); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := consumer.HandleMessage(ctx, updated); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("expected ErrAlreadyProcessed on second delivery, got: %v", err)
	}

	stock, err := inventory.GetStock(ctx, "p1")
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if stock.ProductName != "Gadget" {
		t.Errorf("expected renamed product, got %s", stock.ProductName)
	}
}

func TestHandleMessage_ProductDeleted(t *testing.T) {
	consumer, inventory, _, _ := newTestConsumer()
	ctx := context.Background()

	created := productEventPayload(t, domain.ProductEventCreated, "corr-1", domain.Product{ID: "p1", Name: "Widget"})
	if err := consumer.HandleMessage(ctx, created); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	deleted := productEventPayload(t, domain.ProductEventDeleted, "corr-2", domain.Product{ID: "p1", Name: "Widget"})
	if err := consumer.HandleMessage(ctx, deleted); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := inventory.GetStock(ctx, "p1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}
}

func TestHandleMessage_FailureLeavesEventUnprocessed(t *testing.T) {
	consumer, _, store, _ := newTestConsumer()
	ctx := context.Background()

	// Delete for a product that was never initialized fails, so the
	// correlation id must stay absent from the dedup log and the broker
	// is free to redeliver.
	deleted := productEventPayload(t, domain.ProductEventDeleted, "corr-1", domain.Product{ID: "ghost", Name: "Ghost"})
	if err := consumer.HandleMessage(ctx, deleted); err == nil {
		t.Fatal("expected error for missing product")
	}

	processed, _ := store.HasProcessedEvent(ctx, "corr-1")
	if processed {
		t.Error("failed event must not be marked processed")
	}
}

func TestHandleMessage_UnknownEventType(t *testing.T) {
	consumer, _, store, _ := newTestConsumer()

	payload := productEventPayload(t, "product.archived", "corr-1", domain.Product{ID: "p1", Name: "Widget"})
	if err := consumer.HandleMessage(context.Background(), payload); err == nil {
		t.Fatal("expected error for unknown event type")
	}
	if len(store.processed) != 0 {
		t.Error("unknown event must not be marked processed")
	}
}

func TestHandleMessage_MalformedPayload(t *testing.T) {
	consumer, _, _, _ := newTestConsumer()

	if err := consumer.HandleMessage(context.Background(), []byte("{not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestHandleMessage_MissingCorrelationID(t *testing.T) {
	consumer, _, _, _ := newTestConsumer()

	payload := productEventPayload(t, domain.ProductEventCreated, "", domain.Product{ID: "p1", Name: "Widget"})
	if err := consumer.HandleMessage(context.Background(), payload); err == nil {
		t.Fatal("expected error for missing correlation id")
	}
}
