package slot

import (
	"testing"

	"pgregory.net/rapid"
)

// seqPicker replays a fixed sequence of draws.
type seqPicker struct {
	seq []int
	pos int
}

func (p *seqPicker) Intn(n int) int {
	v := p.seq[p.pos%len(p.seq)]
	p.pos++
	return v % n
}

func testPool() []Symbol {
	return []Symbol{
		{Type: "team", TeamName: "USA Comets", Icon: "comets.png"},
		{Type: "team", TeamName: "Nashville Narfs", Icon: "narfs.png"},
		{Type: "team", TeamName: "Dreary Eggbeaters", Icon: "eggbeaters.png"},
		{Type: "mascot", TeamName: "Hopedogo", Icon: "hopedogo.png"},
	}
}

func TestPayout(t *testing.T) {
	tests := []struct {
		name   string
		base   int64
		streak int
		want   int64
	}{
		{"streak 0", 500, 0, 500},
		{"streak 1 doubles", 500, 1, 1000},
		{"streak 2 doubles again", 500, 2, 2000},
		{"streak 5", 500, 5, 16000},
		{"negative streak clamps", 500, -3, 500},
		{"custom base", 100, 3, 800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Payout(tt.base, tt.streak); got != tt.want {
				t.Errorf("Payout(%d, %d) = %d, want %d", tt.base, tt.streak, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	in := []Symbol{
		{TeamName: "USA Comets", Icon: "comets.png"},
		{Type: "team", Icon: "unknown.png"},
		{Type: "team", TeamName: "No Icon Team"},
	}

	out := Normalize(in)
	if len(out) != 2 {
		t.Fatalf("Normalize kept %d symbols, want 2", len(out))
	}
	if out[0].Type != "team" {
		t.Errorf("missing type not defaulted: %q", out[0].Type)
	}
	if out[1].TeamName != "Unknown" {
		t.Errorf("missing team name not defaulted: %q", out[1].TeamName)
	}
}

func TestSpin_WinIncrementsStreak(t *testing.T) {
	// Draws land on index 0 three times: a team-match win.
	engine := New(&Config{BasePayout: 500, PoisonLabel: "hopedogo"}, &seqPicker{seq: []int{0, 0, 0}})

	out, err := engine.Spin(testPool(), 2)
	if err != nil {
		t.Fatalf("Spin returned error: %v", err)
	}
	if !out.Win {
		t.Fatal("expected a win on a matching triple")
	}
	if out.Payout != 2000 {
		t.Errorf("Payout = %d, want 2000 (500 * 2^2)", out.Payout)
	}
	if out.Streak != 3 {
		t.Errorf("Streak = %d, want 3", out.Streak)
	}
}

func TestSpin_LossResetsStreak(t *testing.T) {
	engine := New(&Config{PoisonLabel: "hopedogo"}, &seqPicker{seq: []int{0, 1, 2}})

	out, err := engine.Spin(testPool(), 4)
	if err != nil {
		t.Fatalf("Spin returned error: %v", err)
	}
	if out.Win || out.Payout != 0 {
		t.Errorf("expected a zero-payout loss, got win=%v payout=%d", out.Win, out.Payout)
	}
	if out.Streak != 0 {
		t.Errorf("Streak = %d, want 0 after a loss", out.Streak)
	}
}

func TestSpin_PoisonTripleOverridesMatch(t *testing.T) {
	// All three draws hit the poison mascot. The team names match, so the
	// win rule alone would pay out; the poison override must not.
	engine := New(&Config{PoisonLabel: "hopedogo"}, &seqPicker{seq: []int{3, 3, 3}})

	out, err := engine.Spin(testPool(), 1)
	if err != nil {
		t.Fatalf("Spin returned error: %v", err)
	}
	if !out.PoisonTriple {
		t.Fatal("expected PoisonTriple")
	}
	if out.Win || out.Payout != 0 {
		t.Errorf("poison triple must be a zero-payout loss, got win=%v payout=%d", out.Win, out.Payout)
	}
	if out.Streak != 0 {
		t.Errorf("Streak = %d, want 0 after poison triple", out.Streak)
	}
}

func TestSpin_PoisonMatchesCaseInsensitive(t *testing.T) {
	pool := []Symbol{
		{Type: "HoPeDoGo", TeamName: "Mascot", Icon: "a.png"},
		{Type: "team", TeamName: "HOPEDOGO", Icon: "b.png"},
		{Type: "team", TeamName: "hopedogo", Icon: "c.png"},
	}
	engine := New(&Config{PoisonLabel: "hopedogo"}, &seqPicker{seq: []int{0, 1, 2}})

	out, err := engine.Spin(pool, 0)
	if err != nil {
		t.Fatalf("Spin returned error: %v", err)
	}
	if !out.PoisonTriple {
		t.Error("poison label should match case-insensitively on type and team name")
	}
}

func TestSpin_TooFewSymbols(t *testing.T) {
	engine := New(nil, &seqPicker{seq: []int{0}})
	if _, err := engine.Spin(testPool()[:2], 0); err != ErrTooFewSymbols {
		t.Errorf("err = %v, want ErrTooFewSymbols", err)
	}
}

// Property: a winning payout always doubles when the pre-spin streak
// grows by one, regardless of base.
func TestPayoutDoublingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.Int64Range(1, 1_000_000).Draw(t, "base")
		streak := rapid.IntRange(0, 30).Draw(t, "streak")

		if got, want := Payout(base, streak+1), 2*Payout(base, streak); got != want {
			t.Fatalf("Payout(%d, %d) = %d, want %d", base, streak+1, got, want)
		}
	})
}

// Property: every spin outcome is internally consistent. A win pays
// exactly base<<streak and bumps the streak; any loss pays zero and
// resets it.
func TestSpinOutcomeConsistencyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pool := testPool()
		streak := rapid.IntRange(0, 20).Draw(t, "streak")
		draws := rapid.SliceOfN(rapid.IntRange(0, len(pool)-1), 3, 3).Draw(t, "draws")

		engine := New(&Config{BasePayout: 500, PoisonLabel: "hopedogo"}, &seqPicker{seq: draws})
		out, err := engine.Spin(pool, streak)
		if err != nil {
			t.Fatalf("Spin returned error: %v", err)
		}

		switch {
		case out.Win:
			if out.PoisonTriple {
				t.Fatal("outcome is both win and poison")
			}
			if out.Payout != Payout(500, streak) {
				t.Fatalf("win payout = %d, want %d", out.Payout, Payout(500, streak))
			}
			if out.Streak != streak+1 {
				t.Fatalf("win streak = %d, want %d", out.Streak, streak+1)
			}
		default:
			if out.Payout != 0 {
				t.Fatalf("loss payout = %d, want 0", out.Payout)
			}
			if out.Streak != 0 {
				t.Fatalf("loss streak = %d, want 0", out.Streak)
			}
		}
	})
}
