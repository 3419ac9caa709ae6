package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/inventory-service/internal/core/domain"
	"github.com/rl1809/inventory-service/internal/port"
)

// MySQLAdapter owns the three durable stores: the inventory aggregate,
// the movement ledger and the processed-event log. Every mutation runs
// as one transaction; concurrent adjustments for the same product
// serialize on the aggregate row lock taken by SELECT ... FOR UPDATE.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) GetInventory(ctx context.Context, productID string) (*domain.Inventory, error) {
	inv, err := scanInventory(m.db.QueryRowContext(ctx, `
		SELECT id, product_id, product_name, quantity, created_at, updated_at
		FROM product_inventory WHERE product_id = ?`, productID))
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return inv, nil
}

func (m *MySQLAdapter) ApplyAdjustment(ctx context.Context, p port.AdjustmentParams) (*domain.Inventory, bool, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	inv, err := scanInventory(tx.QueryRowContext(ctx, `
		SELECT id, product_id, product_name, quantity, created_at, updated_at
		FROM product_inventory WHERE product_id = ? FOR UPDATE`, p.ProductID))
	if err != nil {
		return nil, false, fmt.Errorf("lock inventory: %w", err)
	}

	now := time.Now().UTC()
	created := false

	if inv != nil {
		newQuantity := inv.Quantity + p.Delta
		if newQuantity < 0 {
			return nil, false, domain.ErrInsufficientStock
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE product_inventory SET quantity = ?, updated_at = ?
			WHERE product_id = ?`,
			newQuantity, now, p.ProductID,
		); err != nil {
			return nil, false, fmt.Errorf("update inventory: %w", err)
		}
		inv.Quantity = newQuantity
		inv.UpdatedAt = now
	} else {
		if !p.Initialize {
			return nil, false, domain.ErrNotFound
		}
		if p.Delta < 0 {
			return nil, false, domain.ErrInsufficientStock
		}
		inv = &domain.Inventory{
			ID:          uuid.NewString(),
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			Quantity:    p.Delta,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO product_inventory (id, product_id, product_name, quantity, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			inv.ID, inv.ProductID, inv.ProductName, inv.Quantity, inv.CreatedAt, inv.UpdatedAt,
		); err != nil {
			return nil, false, fmt.Errorf("insert inventory: %w", err)
		}
		created = true
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO product_movements (id, product_id, quantity, description, new_quantity, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), p.ProductID, p.Delta, p.Description, inv.Quantity, now,
	); err != nil {
		return nil, false, fmt.Errorf("insert movement: %w", err)
	}

	if err := insertProcessedEvent(ctx, tx, p.Mark); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit adjustment: %w", err)
	}
	return inv, created, nil
}

func (m *MySQLAdapter) ListMovements(ctx context.Context, productID string) ([]domain.MovementRecord, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, product_id, quantity, description, new_quantity, created_at
		FROM product_movements WHERE product_id = ?
		ORDER BY created_at DESC, id DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("query movements: %w", err)
	}
	defer rows.Close()

	var movements []domain.MovementRecord
	for rows.Next() {
		var mv domain.MovementRecord
		var description sql.NullString
		if err := rows.Scan(&mv.ID, &mv.ProductID, &mv.Quantity, &description, &mv.NewQuantity, &mv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		mv.Description = description.String
		movements = append(movements, mv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}
	return movements, nil
}

func (m *MySQLAdapter) RenameProduct(ctx context.Context, productID, name string, mark *domain.ProcessedEvent) (*domain.Inventory, bool, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	inv, err := scanInventory(tx.QueryRowContext(ctx, `
		SELECT id, product_id, product_name, quantity, created_at, updated_at
		FROM product_inventory WHERE product_id = ? FOR UPDATE`, productID))
	if err != nil {
		return nil, false, fmt.Errorf("lock inventory: %w", err)
	}
	if inv == nil {
		return nil, false, domain.ErrNotFound
	}

	renamed := false
	if inv.ProductName != name {
		now := time.Now().UTC()
		if _, err := tx.ExecContext(ctx, `
			UPDATE product_inventory SET product_name = ?, updated_at = ?
			WHERE product_id = ?`,
			name, now, productID,
		); err != nil {
			return nil, false, fmt.Errorf("rename inventory: %w", err)
		}
		inv.ProductName = name
		inv.UpdatedAt = now
		renamed = true
	}

	// The dedup mark commits even for a no-op rename so a redelivery
	// is still recognized as already handled.
	if err := insertProcessedEvent(ctx, tx, mark); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit rename: %w", err)
	}
	return inv, renamed, nil
}

func (m *MySQLAdapter) DeleteInventory(ctx context.Context, productID string, mark *domain.ProcessedEvent) (*domain.Inventory, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	inv, err := scanInventory(tx.QueryRowContext(ctx, `
		SELECT id, product_id, product_name, quantity, created_at, updated_at
		FROM product_inventory WHERE product_id = ? FOR UPDATE`, productID))
	if err != nil {
		return nil, fmt.Errorf("lock inventory: %w", err)
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	// Movement records stay behind as the audit trail.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM product_inventory WHERE product_id = ?`, productID,
	); err != nil {
		return nil, fmt.Errorf("delete inventory: %w", err)
	}

	if err := insertProcessedEvent(ctx, tx, mark); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete: %w", err)
	}
	return inv, nil
}

func (m *MySQLAdapter) HasProcessedEvent(ctx context.Context, correlationID string) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM processed_events WHERE correlation_id = ?)`, correlationID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query processed event: %w", err)
	}
	return exists, nil
}

func insertProcessedEvent(ctx context.Context, tx *sql.Tx, mark *domain.ProcessedEvent) error {
	if mark == nil {
		return nil
	}
	// The unique index on correlation_id rejects a concurrent duplicate;
	// the failed delivery is retried by the broker and skipped by the
	// dedup check next time around.
	_, err := tx.ExecContext(ctx, `
		INSERT INTO processed_events (id, correlation_id, event_type, entity_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), mark.CorrelationID, mark.EventType, mark.EntityID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert processed event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInventory(row rowScanner) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := row.Scan(&inv.ID, &inv.ProductID, &inv.ProductName, &inv.Quantity, &inv.CreatedAt, &inv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
