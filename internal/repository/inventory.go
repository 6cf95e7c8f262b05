package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Wafflinyo/USALeague/internal/model"
)

// InventoryRepository handles owned-item persistence.
type InventoryRepository struct{}

// NewInventoryRepository creates a new InventoryRepository instance.
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{}
}

// GetQtyForUpdate reads the current quantity of an item, locking the row
// so a racing purchase can't read the same stale qty. Returns (0, false)
// when the account has never bought the item.
func (r *InventoryRepository) GetQtyForUpdate(ctx context.Context, tx pgx.Tx, accountID, itemID string) (int, bool, error) {
	const query = `
		SELECT qty FROM inventory
		WHERE account_id = $1 AND item_id = $2
		FOR UPDATE
	`

	var qty int
	err := tx.QueryRow(ctx, query, accountID, itemID).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get inventory qty: %w", err)
	}
	return qty, true, nil
}

// Upsert sets the quantity for an (account, item) pair and refreshes the
// acquisition time.
func (r *InventoryRepository) Upsert(ctx context.Context, tx pgx.Tx, accountID, itemID string, qty int) error {
	const query = `
		INSERT INTO inventory (account_id, item_id, qty, acquired_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account_id, item_id)
		DO UPDATE SET qty = $3, acquired_at = NOW()
	`

	if _, err := tx.Exec(ctx, query, accountID, itemID, qty); err != nil {
		return fmt.Errorf("failed to upsert inventory: %w", err)
	}
	return nil
}

// ListByAccount returns all items owned by an account, newest first.
func (r *InventoryRepository) ListByAccount(ctx context.Context, q Querier, accountID string) ([]model.InventoryEntry, error) {
	const query = `
		SELECT account_id, item_id, qty, acquired_at
		FROM inventory
		WHERE account_id = $1
		ORDER BY acquired_at DESC
	`

	rows, err := q.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	defer rows.Close()

	var entries []model.InventoryEntry
	for rows.Next() {
		var e model.InventoryEntry
		if err := rows.Scan(&e.AccountID, &e.ItemID, &e.Qty, &e.AcquiredAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory: %w", err)
	}

	return entries, nil
}
