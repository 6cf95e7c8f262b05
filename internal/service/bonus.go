package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Wafflinyo/USALeague/internal/pkg/civil"
	"github.com/Wafflinyo/USALeague/internal/repository"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
)

// BonusService grants the daily bonus at most once per civil day.
type BonusService struct {
	pool         *pgxpool.Pool
	accounts     *repository.AccountRepository
	newUserBonus int64
	dailyBonus   int64
}

// NewBonusService creates a new BonusService instance.
func NewBonusService(
	pool *pgxpool.Pool,
	accounts *repository.AccountRepository,
	newUserBonus, dailyBonus int64,
) *BonusService {
	return &BonusService{
		pool:         pool,
		accounts:     accounts,
		newUserBonus: newUserBonus,
		dailyBonus:   dailyBonus,
	}
}

// ClaimResult is the outcome of a daily-bonus claim.
type ClaimResult struct {
	Granted bool   `json:"granted"`
	Created bool   `json:"created"`
	Bonus   int64  `json:"bonus"`
	Balance int64  `json:"balance"`
	Today   string `json:"today"`
}

// Claim grants the daily bonus for the given civil date. The
// (account, day) transition is one-way: a repeat claim on the same day is
// a granted=false no-op. A missing account is created with the combined
// new-user and daily bonus.
func (s *BonusService) Claim(ctx context.Context, accountID, today string) (*ClaimResult, error) {
	if !civil.ValidDate(today) {
		return nil, apperror.InvalidInput("today must be a YYYY-MM-DD date")
	}

	var result *ClaimResult
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		acct, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			if !errors.Is(err, repository.ErrAccountNotFound) {
				return err
			}

			// First ever visit: bootstrap the profile with both bonuses.
			created, err := s.accounts.Create(ctx, tx, accountID, DefaultDisplayName(accountID),
				s.newUserBonus+s.dailyBonus, &today)
			if err != nil {
				// A racing first claim committed between our lock attempt
				// and this insert.
				if errors.Is(err, repository.ErrAccountExists) {
					return apperror.Conflict("claim in progress, retry")
				}
				return err
			}
			result = &ClaimResult{
				Granted: true,
				Created: true,
				Bonus:   s.dailyBonus,
				Balance: created.Balance,
				Today:   today,
			}
			return nil
		}

		if acct.LastDailyBonus != nil && *acct.LastDailyBonus == today {
			result = &ClaimResult{Granted: false, Balance: acct.Balance, Today: today}
			return nil
		}

		balance, err := s.accounts.AdjustBalance(ctx, tx, accountID, s.dailyBonus)
		if err != nil {
			return err
		}
		if err := s.accounts.SetDailyBonus(ctx, tx, accountID, today); err != nil {
			return err
		}

		result = &ClaimResult{Granted: true, Bonus: s.dailyBonus, Balance: balance, Today: today}
		return nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("daily bonus claim failed: %w", err)
	}

	return result, nil
}
