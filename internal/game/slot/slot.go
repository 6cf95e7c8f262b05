// Package slot implements the slot machine engine: three uniform draws
// from a caller-supplied symbol pool, pluggable win classification, and
// exponential streak payout.
package slot

import (
	"errors"
	"strings"
)

// DefaultBasePayout is the payout for a win at streak 0.
const DefaultBasePayout = 500

// DefaultMinSymbols is the minimum pool size accepted by the engine.
const DefaultMinSymbols = 3

// Errors for slot spins.
var (
	ErrTooFewSymbols = errors.New("symbol pool is too small")
)

// Symbol is one reel symbol supplied by the client from the team roster.
type Symbol struct {
	Type     string `json:"type"`
	TeamName string `json:"teamName"`
	Icon     string `json:"icon"`
}

// Normalize applies defaults and drops entries without an icon, mirroring
// what the reel renderer can actually display.
func Normalize(symbols []Symbol) []Symbol {
	out := make([]Symbol, 0, len(symbols))
	for _, s := range symbols {
		if s.Type == "" {
			s.Type = "team"
		}
		if s.TeamName == "" {
			s.TeamName = "Unknown"
		}
		if s.Icon == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// WinRule classifies three drawn symbols as a win or a loss. The poison
// override is NOT part of a rule: the engine always evaluates it first.
type WinRule interface {
	Wins(a, b, c Symbol) bool
}

// TeamMatchRule wins when all three symbols carry the same team name.
type TeamMatchRule struct{}

// Wins implements WinRule.
func (TeamMatchRule) Wins(a, b, c Symbol) bool {
	return a.TeamName == b.TeamName && b.TeamName == c.TeamName
}

// TypeMatchRule wins when all three symbols share a category.
type TypeMatchRule struct{}

// Wins implements WinRule.
func (TypeMatchRule) Wins(a, b, c Symbol) bool {
	return a.Type == b.Type && b.Type == c.Type
}

// AnyRule wins when any of its member rules wins.
type AnyRule []WinRule

// Wins implements WinRule.
func (r AnyRule) Wins(a, b, c Symbol) bool {
	for _, rule := range r {
		if rule.Wins(a, b, c) {
			return true
		}
	}
	return false
}

// Picker supplies uniform randomness. *rand.Rand satisfies it; tests
// substitute a deterministic sequence.
type Picker interface {
	Intn(n int) int
}

// Config holds engine configuration.
type Config struct {
	BasePayout  int64
	MinSymbols  int
	PoisonLabel string
	Rule        WinRule
}

// Engine evaluates spins. It is stateless apart from its random source;
// streak and balance live on the account record.
type Engine struct {
	basePayout  int64
	minSymbols  int
	poisonLabel string
	rule        WinRule
	rand        Picker
}

// New creates an Engine with the given configuration and random source.
func New(cfg *Config, rand Picker) *Engine {
	basePayout := int64(DefaultBasePayout)
	minSymbols := DefaultMinSymbols
	poison := ""
	var rule WinRule = TeamMatchRule{}

	if cfg != nil {
		if cfg.BasePayout > 0 {
			basePayout = cfg.BasePayout
		}
		if cfg.MinSymbols >= DefaultMinSymbols {
			minSymbols = cfg.MinSymbols
		}
		poison = strings.ToLower(cfg.PoisonLabel)
		if cfg.Rule != nil {
			rule = cfg.Rule
		}
	}

	return &Engine{
		basePayout:  basePayout,
		minSymbols:  minSymbols,
		poisonLabel: poison,
		rule:        rule,
		rand:        rand,
	}
}

// MinSymbols returns the smallest pool the engine accepts.
func (e *Engine) MinSymbols() int {
	return e.minSymbols
}

// Outcome is the result of one spin evaluation.
type Outcome struct {
	Symbols      [3]Symbol
	Win          bool
	PoisonTriple bool
	Payout       int64
	Streak       int
}

// Spin draws three symbols with replacement and classifies the result.
// streak is the account's consecutive-wins counter before this spin; the
// returned Streak is its new value. On a win the payout doubles per
// consecutive win: basePayout * 2^streak.
func (e *Engine) Spin(pool []Symbol, streak int) (*Outcome, error) {
	if len(pool) < e.minSymbols {
		return nil, ErrTooFewSymbols
	}

	a := pool[e.rand.Intn(len(pool))]
	b := pool[e.rand.Intn(len(pool))]
	c := pool[e.rand.Intn(len(pool))]

	out := &Outcome{Symbols: [3]Symbol{a, b, c}}

	// Poison triple overrides every win rule.
	if e.isPoison(a) && e.isPoison(b) && e.isPoison(c) {
		out.PoisonTriple = true
		out.Streak = 0
		return out, nil
	}

	if e.rule.Wins(a, b, c) {
		out.Win = true
		out.Payout = Payout(e.basePayout, streak)
		out.Streak = streak + 1
		return out, nil
	}

	out.Streak = 0
	return out, nil
}

// Payout computes the win amount for a given base and pre-spin streak.
func Payout(base int64, streak int) int64 {
	if streak < 0 {
		streak = 0
	}
	return base << uint(streak)
}

func (e *Engine) isPoison(s Symbol) bool {
	if e.poisonLabel == "" {
		return false
	}
	return strings.ToLower(s.Type) == e.poisonLabel ||
		strings.ToLower(s.TeamName) == e.poisonLabel
}
