package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Wafflinyo/USALeague/internal/model"
)

// SettlementRepository handles write-once settlement records and the
// public leaderboard projection.
type SettlementRepository struct{}

// NewSettlementRepository creates a new SettlementRepository instance.
func NewSettlementRepository() *SettlementRepository {
	return &SettlementRepository{}
}

// Get returns the stored settlement for (account, day), with ok=false when
// the day has not been settled for this account.
func (r *SettlementRepository) Get(ctx context.Context, q Querier, accountID, dayID string) (*model.SettlementRecord, bool, error) {
	const query = `
		SELECT account_id, day_id, kind, payout, correct, total, games, created_at
		FROM settlements
		WHERE account_id = $1 AND day_id = $2
	`

	var rec model.SettlementRecord
	var payload []byte
	err := q.QueryRow(ctx, query, accountID, dayID).Scan(
		&rec.AccountID,
		&rec.DayID,
		&rec.Kind,
		&rec.Payout,
		&rec.Correct,
		&rec.Total,
		&payload,
		&rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get settlement: %w", err)
	}

	if err := json.Unmarshal(payload, &rec.Games); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal settlement games: %w", err)
	}
	return &rec, true, nil
}

// Insert writes a settlement record. The primary key makes it write-once:
// a second insert for the same (account, day) returns ErrSettlementExists
// and the caller must return the stored record instead.
func (r *SettlementRepository) Insert(ctx context.Context, tx pgx.Tx, rec *model.SettlementRecord) error {
	payload, err := json.Marshal(rec.Games)
	if err != nil {
		return fmt.Errorf("failed to marshal settlement games: %w", err)
	}

	const query = `
		INSERT INTO settlements (account_id, day_id, kind, payout, correct, total, games, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`

	err = tx.QueryRow(ctx, query,
		rec.AccountID, rec.DayID, rec.Kind, rec.Payout, rec.Correct, rec.Total, payload,
	).Scan(&rec.CreatedAt)
	if err != nil {
		if uniqueViolation(err) {
			return ErrSettlementExists
		}
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// UpsertLeaderboard replaces the public projection for an account.
func (r *SettlementRepository) UpsertLeaderboard(ctx context.Context, q Querier, entry *model.LeaderboardEntry) error {
	const query = `
		INSERT INTO leaderboard (account_id, display_name, correct, total, pct, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (account_id)
		DO UPDATE SET display_name = $2, correct = $3, total = $4, pct = $5, updated_at = NOW()
	`

	if _, err := q.Exec(ctx, query, entry.AccountID, entry.DisplayName, entry.Correct, entry.Total, entry.Pct); err != nil {
		return fmt.Errorf("failed to upsert leaderboard: %w", err)
	}
	return nil
}

// UpdateLeaderboardName keeps the projection's display name in sync when
// an account renames itself between settlements.
func (r *SettlementRepository) UpdateLeaderboardName(ctx context.Context, q Querier, accountID, displayName string) error {
	const query = `
		UPDATE leaderboard
		SET display_name = $2, updated_at = NOW()
		WHERE account_id = $1
	`

	if _, err := q.Exec(ctx, query, accountID, displayName); err != nil {
		return fmt.Errorf("failed to update leaderboard name: %w", err)
	}
	return nil
}

// TopLeaders returns the leaderboard sorted by accuracy, best first.
func (r *SettlementRepository) TopLeaders(ctx context.Context, q Querier, limit int) ([]model.LeaderboardEntry, error) {
	const query = `
		SELECT account_id, display_name, correct, total, pct
		FROM leaderboard
		ORDER BY pct DESC, correct DESC, display_name ASC
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var leaders []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.AccountID, &e.DisplayName, &e.Correct, &e.Total, &e.Pct); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		leaders = append(leaders, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard: %w", err)
	}

	return leaders, nil
}
