package rating

import (
	"sort"

	"github.com/jumpbrain/KeynesianBeautyContest/internal/game"
)

// Entry is one model's line on the cross-game leaderboard.
type Entry struct {
	Model  string
	Games  int
	Wins   int
	WinPct float64
	Skill  float64
}

// Leaderboard folds stored games (oldest first) into per-model ratings and
// win statistics. Each game is one rating period; every pairwise rank
// comparison inside a game contributes a win/loss/tie outcome. The same
// model may field several players in one game; each appearance counts.
func Leaderboard(games []game.RunResult) []Entry {
	ratings := map[string]*Rating{}
	plays := map[string]int{}
	wins := map[string]int{}

	for _, run := range games {
		// Start-of-period snapshots so in-period updates don't feed back.
		start := map[string]Rating{}
		for _, res := range run.Results {
			if _, ok := ratings[res.Model]; !ok {
				ratings[res.Model] = New()
			}
			start[res.Model] = ratings[res.Model].Snapshot()
		}

		for i, res := range run.Results {
			var outcomes []Outcome
			for j, opp := range run.Results {
				if i == j {
					continue
				}
				s := 0.5
				if res.Rank < opp.Rank {
					s = 1.0
				} else if res.Rank > opp.Rank {
					s = 0.0
				}
				outcomes = append(outcomes, Outcome{Opp: start[opp.Model], S: s})
			}
			ratings[res.Model].Update(outcomes, DefaultTau)
			plays[res.Model]++
			if res.Rank == 0 {
				wins[res.Model]++
			}
		}
	}

	entries := make([]Entry, 0, len(ratings))
	for model, r := range ratings {
		n := plays[model]
		winPct := 0.0
		if n > 0 {
			winPct = 100.0 * float64(wins[model]) / float64(n)
		}
		entries = append(entries, Entry{
			Model:  model,
			Games:  n,
			Wins:   wins[model],
			WinPct: winPct,
			Skill:  r.Conservative(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Skill != entries[j].Skill {
			return entries[i].Skill > entries[j].Skill
		}
		return entries[i].Model < entries[j].Model
	})
	return entries
}
