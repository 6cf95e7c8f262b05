package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Wafflinyo/USALeague/internal/model"
)

// PredictionRepository handles stored picks and the admin-posted results
// documents.
type PredictionRepository struct{}

// NewPredictionRepository creates a new PredictionRepository instance.
func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{}
}

// SubmitPicks stores (or replaces) an account's picks for an event day.
func (r *PredictionRepository) SubmitPicks(ctx context.Context, q Querier, accountID, dayID string, userPicks map[string]string) error {
	payload, err := json.Marshal(userPicks)
	if err != nil {
		return fmt.Errorf("failed to marshal picks: %w", err)
	}

	const query = `
		INSERT INTO picks (account_id, day_id, picks, submitted_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account_id, day_id)
		DO UPDATE SET picks = $3, submitted_at = NOW()
	`

	if _, err := q.Exec(ctx, query, accountID, dayID, payload); err != nil {
		return fmt.Errorf("failed to submit picks: %w", err)
	}
	return nil
}

// GetPicks returns an account's stored picks for a day, with ok=false when
// nothing was submitted.
func (r *PredictionRepository) GetPicks(ctx context.Context, q Querier, accountID, dayID string) (map[string]string, bool, error) {
	const query = `SELECT picks FROM picks WHERE account_id = $1 AND day_id = $2`

	var payload []byte
	err := q.QueryRow(ctx, query, accountID, dayID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get picks: %w", err)
	}

	var userPicks map[string]string
	if err := json.Unmarshal(payload, &userPicks); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal picks: %w", err)
	}
	return userPicks, true, nil
}

// PostResults stores (or replaces) the authoritative results for a day.
func (r *PredictionRepository) PostResults(ctx context.Context, q Querier, dayID string, games []model.Game) error {
	payload, err := json.Marshal(games)
	if err != nil {
		return fmt.Errorf("failed to marshal games: %w", err)
	}

	const query = `
		INSERT INTO results (day_id, games, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (day_id)
		DO UPDATE SET games = $2
	`

	if _, err := q.Exec(ctx, query, dayID, payload); err != nil {
		return fmt.Errorf("failed to post results: %w", err)
	}
	return nil
}

// GetResults returns a day's games, with ok=false when no results doc
// exists yet.
func (r *PredictionRepository) GetResults(ctx context.Context, q Querier, dayID string) ([]model.Game, bool, error) {
	const query = `SELECT games FROM results WHERE day_id = $1`

	var payload []byte
	err := q.QueryRow(ctx, query, dayID).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get results: %w", err)
	}

	var games []model.Game
	if err := json.Unmarshal(payload, &games); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal games: %w", err)
	}
	return games, true, nil
}

// LatestUnsettledDay finds the newest results day the account has not yet
// settled, checking the most recent days first.
func (r *PredictionRepository) LatestUnsettledDay(ctx context.Context, q Querier, accountID string, limit int) (string, bool, error) {
	const query = `
		SELECT r.day_id
		FROM results r
		WHERE NOT EXISTS (
			SELECT 1 FROM settlements s
			WHERE s.account_id = $1 AND s.day_id = r.day_id
		)
		ORDER BY r.day_id DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, accountID, limit)
	if err != nil {
		return "", false, fmt.Errorf("failed to find unsettled day: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		var dayID string
		if err := rows.Scan(&dayID); err != nil {
			return "", false, fmt.Errorf("failed to scan day id: %w", err)
		}
		return dayID, true, rows.Err()
	}

	return "", false, rows.Err()
}
