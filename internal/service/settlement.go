package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Wafflinyo/USALeague/internal/game/picks"
	"github.com/Wafflinyo/USALeague/internal/model"
	"github.com/Wafflinyo/USALeague/internal/pkg/civil"
	"github.com/Wafflinyo/USALeague/internal/repository"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
)

// unsettledLookback bounds how many recent result days are scanned when
// picking the next day to settle for an account.
const unsettledLookback = 25

// SettlementService scores stored picks against posted results and pays
// out exactly once per (account, day).
type SettlementService struct {
	pool        *pgxpool.Pool
	accounts    *repository.AccountRepository
	predictions *repository.PredictionRepository
	settlements *repository.SettlementRepository
	payout      picks.PayoutPolicy
	requireAll  bool
	minGames    int
}

// NewSettlementService creates a new SettlementService instance.
func NewSettlementService(
	pool *pgxpool.Pool,
	accounts *repository.AccountRepository,
	predictions *repository.PredictionRepository,
	settlements *repository.SettlementRepository,
	payout picks.PayoutPolicy,
	requireAll bool,
	minGames int,
) *SettlementService {
	if minGames < 1 {
		minGames = 1
	}
	return &SettlementService{
		pool:        pool,
		accounts:    accounts,
		predictions: predictions,
		settlements: settlements,
		payout:      payout,
		requireAll:  requireAll,
		minGames:    minGames,
	}
}

// SettleResult is the outcome of a settle call.
type SettleResult struct {
	Available        bool                    `json:"available"`
	AlreadyProcessed bool                    `json:"alreadyProcessed,omitempty"`
	Reason           string                  `json:"reason,omitempty"`
	Record           *model.SettlementRecord `json:"record,omitempty"`
}

// SubmitPicks stores an account's picks for an event day. Slot keys are
// g1..gN; values are the predicted winner labels.
func (s *SettlementService) SubmitPicks(ctx context.Context, accountID, dayID string, userPicks map[string]string) error {
	if !civil.ValidDate(dayID) {
		return apperror.InvalidInput("day must be a YYYY-MM-DD date")
	}
	if len(userPicks) == 0 {
		return apperror.InvalidInput("picks are required")
	}
	for slot, pick := range userPicks {
		if !validSlotID(slot) {
			return apperror.InvalidInput(fmt.Sprintf("invalid pick slot %q", slot))
		}
		if strings.TrimSpace(pick) == "" {
			return apperror.InvalidInput(fmt.Sprintf("empty pick for slot %q", slot))
		}
	}

	if _, err := s.accounts.GetByID(ctx, s.pool, accountID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return apperror.FailedPrecondition("account profile missing")
		}
		return fmt.Errorf("failed to check account: %w", err)
	}

	// When the day's results are already known, picks can't reference
	// slots past the game count.
	if games, ok, err := s.predictions.GetResults(ctx, s.pool, dayID); err != nil {
		return fmt.Errorf("failed to check results: %w", err)
	} else if ok {
		for slot := range userPicks {
			if n, _ := strconv.Atoi(slot[1:]); n > len(games) {
				return apperror.InvalidInput(fmt.Sprintf("pick slot %q is beyond the day's %d games", slot, len(games)))
			}
		}
	}

	if err := s.predictions.SubmitPicks(ctx, s.pool, accountID, dayID, userPicks); err != nil {
		return fmt.Errorf("failed to submit picks: %w", err)
	}
	return nil
}

// PostResults stores the authoritative results for a day, deriving each
// game's winner label from its scores.
func (s *SettlementService) PostResults(ctx context.Context, dayID string, games []model.Game) error {
	if !civil.ValidDate(dayID) {
		return apperror.InvalidInput("day must be a YYYY-MM-DD date")
	}
	if len(games) == 0 {
		return apperror.InvalidInput("games are required")
	}
	for i := range games {
		if games[i].Away == "" || games[i].Home == "" {
			return apperror.InvalidInput(fmt.Sprintf("game %d is missing a team", i+1))
		}
		games[i].Winner = picks.Winner(games[i])
	}

	if err := s.predictions.PostResults(ctx, s.pool, dayID, games); err != nil {
		return fmt.Errorf("failed to post results: %w", err)
	}
	return nil
}

// SyncNext settles the newest completed day the account hasn't processed
// yet, mirroring the client's background results poll.
func (s *SettlementService) SyncNext(ctx context.Context, accountID string) (*SettleResult, error) {
	dayID, ok, err := s.predictions.LatestUnsettledDay(ctx, s.pool, accountID, unsettledLookback)
	if err != nil {
		return nil, fmt.Errorf("failed to find next day to settle: %w", err)
	}
	if !ok {
		return &SettleResult{Available: false, Reason: "no-unseen-results"}, nil
	}
	return s.Settle(ctx, accountID, dayID)
}

// Settle scores one event day for one account. Idempotent: the settlement
// record's primary key guarantees at most one payout per (account, day);
// repeat calls return the stored record unchanged.
func (s *SettlementService) Settle(ctx context.Context, accountID, dayID string) (*SettleResult, error) {
	if !civil.ValidDate(dayID) {
		return nil, apperror.InvalidInput("day must be a YYYY-MM-DD date")
	}

	if existing, ok, err := s.settlements.Get(ctx, s.pool, accountID, dayID); err != nil {
		return nil, fmt.Errorf("failed to check settlement: %w", err)
	} else if ok {
		return &SettleResult{Available: true, AlreadyProcessed: true, Record: existing}, nil
	}

	games, ok, err := s.predictions.GetResults(ctx, s.pool, dayID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	if !ok || len(games) < s.minGames {
		return &SettleResult{Available: false, Reason: "results-not-available"}, nil
	}

	userPicks, hasPicks, err := s.predictions.GetPicks(ctx, s.pool, accountID, dayID)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks: %w", err)
	}

	rec := s.buildRecord(accountID, dayID, games, userPicks, hasPicks)

	var result *SettleResult
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if rec.Kind != model.SettlementResults {
			// No balance change: just pin the record so the day is
			// never re-attempted.
			if _, err := s.accounts.GetByID(ctx, tx, accountID); err != nil {
				if errors.Is(err, repository.ErrAccountNotFound) {
					return apperror.FailedPrecondition("account profile missing")
				}
				return err
			}
			if err := s.settlements.Insert(ctx, tx, rec); err != nil {
				return err
			}
			result = &SettleResult{Available: true, Record: rec}
			return nil
		}

		acct, err := s.accounts.GetForUpdate(ctx, tx, accountID)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return apperror.FailedPrecondition("account profile missing")
			}
			return err
		}

		if err := s.settlements.Insert(ctx, tx, rec); err != nil {
			return err
		}

		updated, err := s.accounts.ApplySettlement(ctx, tx, accountID, rec.Payout, rec.Correct, rec.Total)
		if err != nil {
			return err
		}

		entry := &model.LeaderboardEntry{
			AccountID:   accountID,
			DisplayName: acct.DisplayName,
			Correct:     updated.CorrectPicks,
			Total:       updated.TotalPicks,
			Pct:         picks.Percentage(updated.CorrectPicks, updated.TotalPicks),
		}
		if err := s.settlements.UpsertLeaderboard(ctx, tx, entry); err != nil {
			return err
		}

		result = &SettleResult{Available: true, Record: rec}
		return nil
	})
	if err != nil {
		// A racing settle committed first: its record is authoritative.
		if errors.Is(err, repository.ErrSettlementExists) {
			stored, ok, getErr := s.settlements.Get(ctx, s.pool, accountID, dayID)
			if getErr != nil || !ok {
				return nil, fmt.Errorf("settlement exists but could not be read: %w", getErr)
			}
			return &SettleResult{Available: true, AlreadyProcessed: true, Record: stored}, nil
		}
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("settlement failed: %w", err)
	}

	return result, nil
}

// buildRecord computes the settlement outcome without touching storage.
func (s *SettlementService) buildRecord(accountID, dayID string, games []model.Game, userPicks map[string]string, hasPicks bool) *model.SettlementRecord {
	rec := &model.SettlementRecord{
		AccountID: accountID,
		DayID:     dayID,
		Total:     len(games),
	}

	if !hasPicks {
		rec.Kind = model.SettlementNoVote
		_, rec.Games = picks.Score(games, nil)
		return rec
	}

	correct, details := picks.Score(games, userPicks)
	rec.Games = details

	if s.requireAll && len(userPicks) < len(games) {
		rec.Kind = model.SettlementIncomplete
		return rec
	}

	rec.Kind = model.SettlementResults
	rec.Correct = correct
	rec.Payout = s.payout.Payout(correct)
	if rec.Payout < 0 {
		rec.Payout = 0
	}
	return rec
}

// validSlotID accepts pick slot keys of the form g1..gN.
func validSlotID(slot string) bool {
	if len(slot) < 2 || slot[0] != 'g' {
		return false
	}
	n, err := strconv.Atoi(slot[1:])
	return err == nil && n >= 1
}
