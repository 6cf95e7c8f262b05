// Package service provides business logic implementations. Every
// balance-mutating operation runs as one pgx transaction that locks the
// account row first, so operations on the same account are linearizable.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Wafflinyo/USALeague/internal/model"
	"github.com/Wafflinyo/USALeague/internal/repository"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
)

// AccountService handles account lifecycle and reads.
type AccountService struct {
	pool         *pgxpool.Pool
	accounts     *repository.AccountRepository
	inventory    *repository.InventoryRepository
	settlements  *repository.SettlementRepository
	newUserBonus int64
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(
	pool *pgxpool.Pool,
	accounts *repository.AccountRepository,
	inventory *repository.InventoryRepository,
	settlements *repository.SettlementRepository,
	newUserBonus int64,
) *AccountService {
	return &AccountService{
		pool:         pool,
		accounts:     accounts,
		inventory:    inventory,
		settlements:  settlements,
		newUserBonus: newUserBonus,
	}
}

// DefaultDisplayName derives the placeholder name for accounts created
// without one.
func DefaultDisplayName(accountID string) string {
	id := accountID
	if len(id) > 6 {
		id = id[:6]
	}
	return "user_" + id
}

// EnsureAccount retrieves an account, creating it with the new-user bonus
// if it doesn't exist. Returns the account and whether it was created.
func (s *AccountService) EnsureAccount(ctx context.Context, accountID, displayName string) (*model.Account, bool, error) {
	acct, err := s.accounts.GetByID(ctx, s.pool, accountID)
	if err == nil {
		return acct, false, nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, false, fmt.Errorf("failed to ensure account: %w", err)
	}

	if strings.TrimSpace(displayName) == "" {
		displayName = DefaultDisplayName(accountID)
	}

	acct, err = s.accounts.Create(ctx, s.pool, accountID, displayName, s.newUserBonus, nil)
	if err != nil {
		// Another request may have created the account first.
		if errors.Is(err, repository.ErrAccountExists) {
			acct, err = s.accounts.GetByID(ctx, s.pool, accountID)
			if err != nil {
				return nil, false, fmt.Errorf("failed to ensure account: %w", err)
			}
			return acct, false, nil
		}
		return nil, false, fmt.Errorf("failed to create account: %w", err)
	}

	return acct, true, nil
}

// GetAccount retrieves an account by id.
func (s *AccountService) GetAccount(ctx context.Context, accountID string) (*model.Account, error) {
	acct, err := s.accounts.GetByID(ctx, s.pool, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, apperror.NotFound("account not found")
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acct, nil
}

// UpdateDisplayName renames the account and keeps the public leaderboard
// projection in sync.
func (s *AccountService) UpdateDisplayName(ctx context.Context, accountID, displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if len(displayName) < 2 {
		return apperror.InvalidInput("display name must be at least 2 characters")
	}

	if err := s.accounts.UpdateDisplayName(ctx, s.pool, accountID, displayName); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return apperror.NotFound("account not found")
		}
		return fmt.Errorf("failed to update display name: %w", err)
	}

	if err := s.settlements.UpdateLeaderboardName(ctx, s.pool, accountID, displayName); err != nil {
		return fmt.Errorf("failed to sync leaderboard name: %w", err)
	}
	return nil
}

// Inventory returns the account's owned items.
func (s *AccountService) Inventory(ctx context.Context, accountID string) ([]model.InventoryEntry, error) {
	return s.inventory.ListByAccount(ctx, s.pool, accountID)
}

// Leaderboard returns the public prediction leaderboard.
func (s *AccountService) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.settlements.TopLeaders(ctx, s.pool, limit)
}
