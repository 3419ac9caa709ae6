package domain

import "time"

// Inventory is the materialized stock row for one product. Only the
// inventory service mutates it; the product name is denormalized from
// the catalog service via product events.
type Inventory struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MovementRecord is one append-only ledger entry. Quantity is the signed
// delta applied, NewQuantity the aggregate quantity immediately after it.
// Records are never updated or deleted.
type MovementRecord struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"productId"`
	Quantity    int       `json:"quantity"`
	Description string    `json:"description"`
	NewQuantity int       `json:"newQuantity"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProductStock is the read model served by GetStock and cached under
// the stock:{productId} key.
type ProductStock struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
}

// ProcessedEvent records one consumed product event. CorrelationID is
// unique; its presence makes a redelivery a no-op.
type ProcessedEvent struct {
	ID            string    `json:"id"`
	CorrelationID string    `json:"correlationId"`
	EventType     string    `json:"eventType"`
	EntityID      string    `json:"entityId"`
	CreatedAt     time.Time `json:"createdAt"`
}
