// Package picks implements scoring for the prediction game: winner
// derivation from the schedule feed, per-slot correctness, and the payout
// policy applied to the correct-pick count.
package picks

import (
	"fmt"
	"math"

	"github.com/Wafflinyo/USALeague/internal/model"
)

// TieWinner is the winner label of a drawn game. No pick can match it.
const TieWinner = "TIE"

// Winner derives the winner label for a game from its scores: the team
// with the higher score, TieWinner on equal scores, empty while either
// score is absent.
func Winner(g model.Game) string {
	if g.AwayScore == nil || g.HomeScore == nil {
		return ""
	}
	switch {
	case *g.AwayScore > *g.HomeScore:
		return g.Away
	case *g.HomeScore > *g.AwayScore:
		return g.Home
	default:
		return TieWinner
	}
}

// SlotID returns the pick slot key for the i-th game of a day (g1..gN).
func SlotID(i int) string {
	return fmt.Sprintf("g%d", i+1)
}

// Score compares the stored picks against the day's games. A pick is
// correct when it is non-empty and equals the game's winner label; a tied
// or undecided game has no correct pick. Games without a stored winner are
// re-derived from their scores.
func Score(games []model.Game, userPicks map[string]string) (correct int, details []model.PickDetail) {
	details = make([]model.PickDetail, 0, len(games))
	for i, g := range games {
		slot := SlotID(i)
		winner := g.Winner
		if winner == "" {
			winner = Winner(g)
		}
		pick := userPicks[slot]
		isCorrect := pick != "" && winner != "" && winner != TieWinner && pick == winner
		if isCorrect {
			correct++
		}
		details = append(details, model.PickDetail{
			Slot:      slot,
			Away:      g.Away,
			Home:      g.Home,
			Winner:    winner,
			YourPick:  pick,
			IsCorrect: isCorrect,
			AwayScore: g.AwayScore,
			HomeScore: g.HomeScore,
		})
	}
	return correct, details
}

// PayoutPolicy maps a correct-pick count to a coin payout. Policies must
// pay 0 for 0 correct and be non-decreasing in the correct count.
type PayoutPolicy interface {
	Payout(correct int) int64
}

// PerCorrect pays a flat amount of coins per correct pick.
type PerCorrect struct {
	Coins int64
}

// Payout implements PayoutPolicy.
func (p PerCorrect) Payout(correct int) int64 {
	if correct <= 0 {
		return 0
	}
	return int64(correct) * p.Coins
}

// Table pays from a fixed lookup keyed by correct count. Counts past the
// end of the table pay the last entry. Index 0 must be 0 and entries must
// be non-decreasing for the policy to be valid.
type Table []int64

// Payout implements PayoutPolicy.
func (t Table) Payout(correct int) int64 {
	if correct <= 0 || len(t) == 0 {
		return 0
	}
	if correct >= len(t) {
		return t[len(t)-1]
	}
	return t[correct]
}

// Percentage computes the leaderboard accuracy figure: 100*correct/total
// rounded to one decimal, 0 when total is 0.
func Percentage(correct, total int64) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(correct) / float64(total) * 100
	return math.Round(pct*10) / 10
}
