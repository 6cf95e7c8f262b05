package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Wafflinyo/USALeague/internal/model"
)

const accountColumns = `id, display_name, balance, correct_picks, total_picks, slot_streak, last_daily_bonus, created_at, updated_at`

// AccountRepository handles account (ledger) persistence. Multi-field
// mutations that must commit together run against a pgx.Tx started by the
// calling service.
type AccountRepository struct{}

// NewAccountRepository creates a new AccountRepository instance.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{}
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(
		&a.ID,
		&a.DisplayName,
		&a.Balance,
		&a.CorrectPicks,
		&a.TotalPicks,
		&a.SlotStreak,
		&a.LastDailyBonus,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return &a, nil
}

// Create inserts a new account with the given starting balance.
// lastDailyBonus may be nil when the account is created outside a bonus
// claim.
func (r *AccountRepository) Create(ctx context.Context, q Querier, id, displayName string, balance int64, lastDailyBonus *string) (*model.Account, error) {
	query := `
		INSERT INTO accounts (id, display_name, balance, last_daily_bonus, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING ` + accountColumns

	a, err := scanAccount(q.QueryRow(ctx, query, id, displayName, balance, lastDailyBonus))
	if err != nil && uniqueViolation(err) {
		return nil, ErrAccountExists
	}
	return a, err
}

// GetByID retrieves an account by id. Returns ErrAccountNotFound if the
// account does not exist.
func (r *AccountRepository) GetByID(ctx context.Context, q Querier, id string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(q.QueryRow(ctx, query, id))
}

// GetForUpdate retrieves an account and locks its row for the duration of
// the enclosing transaction. Every balance-mutating service takes this
// lock first so concurrent operations on one account serialize.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1 FOR UPDATE`
	return scanAccount(tx.QueryRow(ctx, query, id))
}

// AdjustBalance atomically adds delta to the balance, rejecting the update
// when the result would go negative. Returns the new balance.
func (r *AccountRepository) AdjustBalance(ctx context.Context, q Querier, id string, delta int64) (int64, error) {
	const query = `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1 AND balance + $2 >= 0
		RETURNING balance
	`

	var balance int64
	err := q.QueryRow(ctx, query, id, delta).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to adjust balance: %w", err)
	}

	// No row updated: either the account is missing or the delta would
	// take the balance below zero.
	if _, getErr := r.GetByID(ctx, q, id); getErr != nil {
		return 0, getErr
	}
	return 0, ErrInsufficientFunds
}

// SetDailyBonus records the civil date of the latest daily-bonus grant.
func (r *AccountRepository) SetDailyBonus(ctx context.Context, q Querier, id, today string) error {
	const query = `
		UPDATE accounts
		SET last_daily_bonus = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, today)
	if err != nil {
		return fmt.Errorf("failed to set daily bonus date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// ApplySpin commits a spin's net balance change and new streak together.
// Rejects the whole update when the balance would go negative.
func (r *AccountRepository) ApplySpin(ctx context.Context, tx pgx.Tx, id string, delta int64, streak int) (int64, error) {
	const query = `
		UPDATE accounts
		SET balance = balance + $2, slot_streak = $3, updated_at = NOW()
		WHERE id = $1 AND balance + $2 >= 0
		RETURNING balance
	`

	var balance int64
	err := tx.QueryRow(ctx, query, id, delta, streak).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to apply spin: %w", err)
	}
	if _, getErr := r.GetByID(ctx, tx, id); getErr != nil {
		return 0, getErr
	}
	return 0, ErrInsufficientFunds
}

// ApplySettlement credits the payout and bumps the cumulative pick
// counters in one statement, returning the updated account.
func (r *AccountRepository) ApplySettlement(ctx context.Context, tx pgx.Tx, id string, payout int64, correct, total int) (*model.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    correct_picks = correct_picks + $3,
		    total_picks = total_picks + $4,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	return scanAccount(tx.QueryRow(ctx, query, id, payout, correct, total))
}

// UpdateDisplayName changes the account's display name.
func (r *AccountRepository) UpdateDisplayName(ctx context.Context, q Querier, id, displayName string) error {
	const query = `
		UPDATE accounts
		SET display_name = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, displayName)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
