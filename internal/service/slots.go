package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/Wafflinyo/USALeague/internal/feed"
	"github.com/Wafflinyo/USALeague/internal/game/slot"
	"github.com/Wafflinyo/USALeague/internal/repository"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
)

// SlotsService runs slot spins against the ledger.
type SlotsService struct {
	pool      *pgxpool.Pool
	accounts  *repository.AccountRepository
	engine    *slot.Engine
	announcer feed.Announcer
	spinCost  int64
}

// NewSlotsService creates a new SlotsService instance.
func NewSlotsService(
	pool *pgxpool.Pool,
	accounts *repository.AccountRepository,
	engine *slot.Engine,
	announcer feed.Announcer,
	spinCost int64,
) *SlotsService {
	return &SlotsService{
		pool:      pool,
		accounts:  accounts,
		engine:    engine,
		announcer: announcer,
		spinCost:  spinCost,
	}
}

// SpinResult is the outcome of one spin.
type SpinResult struct {
	Symbols      [3]slot.Symbol `json:"symbols"`
	Win          bool           `json:"isWin"`
	PoisonTriple bool           `json:"poisonTriple"`
	Payout       int64          `json:"payout"`
	Streak       int            `json:"streak"`
	Balance      int64          `json:"coins"`
	Cost         int64          `json:"cost"`
}

// Spin draws three symbols from the supplied pool and settles the result.
// The debit, payout credit and streak update commit as one transaction:
// two concurrent spins for the same account can never both read the same
// pre-spin streak.
func (s *SlotsService) Spin(ctx context.Context, accountID string, symbols []slot.Symbol) (*SpinResult, error) {
	pool := slot.Normalize(symbols)
	if len(pool) < s.engine.MinSymbols() {
		return nil, apperror.InvalidInput(fmt.Sprintf("symbols must contain at least %d usable entries", s.engine.MinSymbols()))
	}

	var result *SpinResult
	var displayName string
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		acct, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return apperror.FailedPrecondition("account profile missing")
			}
			return err
		}

		if acct.Balance < s.spinCost {
			return apperror.InsufficientFunds("")
		}

		outcome, err := s.engine.Spin(pool, acct.SlotStreak)
		if err != nil {
			return apperror.InvalidInput(err.Error())
		}

		balance, err := s.accounts.ApplySpin(ctx, tx, accountID, outcome.Payout-s.spinCost, outcome.Streak)
		if err != nil {
			if errors.Is(err, repository.ErrInsufficientFunds) {
				return apperror.InsufficientFunds("")
			}
			return err
		}

		result = &SpinResult{
			Symbols:      outcome.Symbols,
			Win:          outcome.Win,
			PoisonTriple: outcome.PoisonTriple,
			Payout:       outcome.Payout,
			Streak:       outcome.Streak,
			Balance:      balance,
			Cost:         s.spinCost,
		}
		displayName = acct.DisplayName
		return nil
	})
	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("spin failed: %w", err)
	}

	// Announce only once the payout is committed.
	if result.Win {
		s.announceJackpot(ctx, displayName, accountID, result)
	}

	return result, nil
}

// announceJackpot broadcasts a win. Best effort: a failed announcement
// never fails the spin.
func (s *SlotsService) announceJackpot(ctx context.Context, displayName, accountID string, result *SpinResult) {
	err := s.announcer.AnnounceJackpot(ctx, feed.Jackpot{
		AccountID:   accountID,
		DisplayName: displayName,
		Payout:      result.Payout,
		Streak:      result.Streak,
	})
	if err != nil {
		log.Warn().Err(err).Str("account", accountID).Msg("jackpot announcement failed")
	}
}
