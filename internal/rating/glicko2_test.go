package rating

import (
	"math"
	"testing"
)

func within(t *testing.T, name string, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Errorf("%s = %v, want %v (tol %v)", name, got, want, tol)
	}
}

// The worked example from Glickman's Glicko-2 paper: a 1500/200 player beats a
// 1400/30 opponent and loses to 1550/100 and 1700/300, with tau = 0.5.
func TestUpdatePaperExample(t *testing.T) {
	r := &Rating{R: 1500, RD: 200, Volatility: 0.06}
	r.Update([]Outcome{
		{Opp: Rating{R: 1400, RD: 30, Volatility: 0.06}, S: 1},
		{Opp: Rating{R: 1550, RD: 100, Volatility: 0.06}, S: 0},
		{Opp: Rating{R: 1700, RD: 300, Volatility: 0.06}, S: 0},
	}, DefaultTau)

	within(t, "R", r.R, 1464.06, 0.01)
	within(t, "RD", r.RD, 151.52, 0.01)
	within(t, "volatility", r.Volatility, 0.05999, 0.0001)
	if r.Games != 1 {
		t.Errorf("games = %d", r.Games)
	}
}

func TestNewDefaults(t *testing.T) {
	r := New()
	if r.R != 1500 || r.RD != 350 || r.Volatility != 0.06 {
		t.Errorf("bad defaults: %+v", r)
	}
	within(t, "conservative", r.Conservative(), 1500-3*350, 1e-9)
}

func TestAgeGrowsUncertainty(t *testing.T) {
	r := New()
	before := r.RD
	r.Age()
	if r.RD <= before {
		t.Errorf("RD must grow with inactivity: %v -> %v", before, r.RD)
	}
	within(t, "R", r.R, 1500, 1e-6)
}

func TestUpdateWithNoOutcomesAges(t *testing.T) {
	r := New()
	before := r.RD
	r.Update(nil, DefaultTau)
	if r.RD <= before {
		t.Errorf("empty period must age the rating: %v -> %v", before, r.RD)
	}
}

func TestWinRaisesLossLowers(t *testing.T) {
	winner := New()
	loser := New()
	oppW, oppL := loser.Snapshot(), winner.Snapshot()
	winner.Update([]Outcome{{Opp: oppW, S: 1}}, DefaultTau)
	loser.Update([]Outcome{{Opp: oppL, S: 0}}, DefaultTau)

	if winner.R <= 1500 {
		t.Errorf("winner rating should rise: %v", winner.R)
	}
	if loser.R >= 1500 {
		t.Errorf("loser rating should fall: %v", loser.R)
	}
}
