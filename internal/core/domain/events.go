package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event type strings double as broker topic names.
const (
	ProductEventCreated = "product.created"
	ProductEventUpdated = "product.updated"
	ProductEventDeleted = "product.deleted"

	InventoryEventUpdated = "inventory.updated"
)

// Product is the catalog service's view of a product, carried in
// product events. Only ID and Name matter to this service.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	SKU         string    `json:"sku"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EventMetadata carries the producer-assigned correlation id. It
// identifies the business action, not the delivery attempt: a
// redelivered event keeps the same correlation id.
type EventMetadata struct {
	CorrelationID string `json:"correlationId"`
}

// ProductEvent is the inbound envelope published by the catalog service.
type ProductEvent struct {
	ID       string        `json:"id"`
	Type     string        `json:"type"`
	Product  Product       `json:"product"`
	Metadata EventMetadata `json:"metadata"`
}

// InventoryEvent is the outbound envelope emitted after a stock update.
type InventoryEvent struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Inventory Inventory     `json:"inventory"`
	Metadata  EventMetadata `json:"metadata"`
}

// NewInventoryEvent builds an inventory.updated envelope with a freshly
// generated correlation id; the inbound correlation id is never reused.
func NewInventoryEvent(inv Inventory) InventoryEvent {
	return InventoryEvent{
		ID:        inv.ID,
		Type:      InventoryEventUpdated,
		Inventory: inv,
		Metadata:  EventMetadata{CorrelationID: uuid.NewString()},
	}
}
