package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// migrations are applied in order at startup. Each statement is
// idempotent so restarts are safe.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "accounts table",
		sql: `
			CREATE TABLE IF NOT EXISTS accounts (
				id TEXT PRIMARY KEY,
				display_name TEXT NOT NULL,
				balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
				correct_picks BIGINT NOT NULL DEFAULT 0,
				total_picks BIGINT NOT NULL DEFAULT 0 CHECK (correct_picks <= total_picks),
				slot_streak INT NOT NULL DEFAULT 0,
				last_daily_bonus TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		name: "inventory table",
		sql: `
			CREATE TABLE IF NOT EXISTS inventory (
				account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
				item_id TEXT NOT NULL,
				qty INT NOT NULL CHECK (qty > 0),
				acquired_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (account_id, item_id)
			);
		`,
	},
	{
		name: "picks table",
		sql: `
			CREATE TABLE IF NOT EXISTS picks (
				account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
				day_id TEXT NOT NULL,
				picks JSONB NOT NULL,
				submitted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (account_id, day_id)
			);
		`,
	},
	{
		name: "results table",
		sql: `
			CREATE TABLE IF NOT EXISTS results (
				day_id TEXT PRIMARY KEY,
				games JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		name: "settlements table",
		sql: `
			CREATE TABLE IF NOT EXISTS settlements (
				account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
				day_id TEXT NOT NULL,
				kind TEXT NOT NULL,
				payout BIGINT NOT NULL DEFAULT 0,
				correct INT NOT NULL DEFAULT 0,
				total INT NOT NULL DEFAULT 0,
				games JSONB NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (account_id, day_id)
			);
		`,
	},
	{
		name: "leaderboard table",
		sql: `
			CREATE TABLE IF NOT EXISTS leaderboard (
				account_id TEXT PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
				display_name TEXT NOT NULL,
				correct BIGINT NOT NULL DEFAULT 0,
				total BIGINT NOT NULL DEFAULT 0,
				pct DOUBLE PRECISION NOT NULL DEFAULT 0,
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_leaderboard_pct ON leaderboard(pct DESC);
		`,
	},
}

// Migrate applies the database schema. Shared by the server startup and
// the integration test harness.
func Migrate(ctx context.Context, q Querier) error {
	for _, m := range migrations {
		if _, err := q.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %q failed: %w", m.name, err)
		}
		log.Debug().Str("migration", m.name).Msg("migration applied")
	}
	return nil
}
