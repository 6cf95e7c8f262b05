// Package model defines the data models for the USALeague coin economy.
package model

import "time"

// Account is the per-user ledger record. Balance never goes below zero;
// every mutation path runs through AccountRepository.AdjustBalance inside
// a transaction.
type Account struct {
	ID             string    `db:"id"`
	DisplayName    string    `db:"display_name"`
	Balance        int64     `db:"balance"`
	CorrectPicks   int64     `db:"correct_picks"`
	TotalPicks     int64     `db:"total_picks"`
	SlotStreak     int       `db:"slot_streak"`
	LastDailyBonus *string   `db:"last_daily_bonus"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// InventoryEntry is one owned shop item per (account, item).
// Qty is 1 for non-stackable items and capped at the item's MaxStack.
type InventoryEntry struct {
	AccountID  string    `db:"account_id"`
	ItemID     string    `db:"item_id"`
	Qty        int       `db:"qty"`
	AcquiredAt time.Time `db:"acquired_at"`
}

// Game is one scheduled game inside a results document. Scores are nil
// until the game finishes; Winner is derived from the scores when results
// are posted ("TIE" when equal, empty while undecided).
type Game struct {
	Away      string `json:"away"`
	Home      string `json:"home"`
	AwayScore *int   `json:"awayScore"`
	HomeScore *int   `json:"homeScore"`
	Winner    string `json:"winner"`
}

// PickDetail is the per-slot correctness breakdown stored with a settlement.
type PickDetail struct {
	Slot      string `json:"slot"`
	Away      string `json:"away"`
	Home      string `json:"home"`
	Winner    string `json:"winner,omitempty"`
	YourPick  string `json:"yourPick,omitempty"`
	IsCorrect bool   `json:"isCorrect"`
	AwayScore *int   `json:"awayScore"`
	HomeScore *int   `json:"homeScore"`
}

// Settlement kinds.
const (
	SettlementResults    = "results"    // picks scored and paid
	SettlementNoVote     = "no-vote"    // no picks submitted for the day
	SettlementIncomplete = "incomplete" // fewer picks than games, no payout
)

// SettlementRecord is the write-once outcome of scoring one event day for
// one account. Its existence is the idempotency guard against double payout.
type SettlementRecord struct {
	AccountID string       `db:"account_id"`
	DayID     string       `db:"day_id"`
	Kind      string       `db:"kind"`
	Payout    int64        `db:"payout"`
	Correct   int          `db:"correct"`
	Total     int          `db:"total"`
	Games     []PickDetail `db:"games"`
	CreatedAt time.Time    `db:"created_at"`
}

// LeaderboardEntry is the public projection of an account's cumulative
// prediction stats, recomputed whenever a settlement of kind "results"
// is written.
type LeaderboardEntry struct {
	AccountID   string  `db:"account_id"`
	DisplayName string  `db:"display_name"`
	Correct     int64   `db:"correct"`
	Total       int64   `db:"total"`
	Pct         float64 `db:"pct"`
}
