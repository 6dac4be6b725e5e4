package game

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxTurns is how many turns a game runs when not configured otherwise.
const DefaultMaxTurns = 10

// StarterMode selects how the first-listed player is chosen each turn. The
// starter affects display and logging order only, never move simultaneity.
type StarterMode int

const (
	// StarterFixed always starts the default player (Vanilla, else first).
	StarterFixed StarterMode = iota
	// StarterManual starts the configured StarterName when present.
	StarterManual
	// StarterRandom draws a starter uniformly from the players each turn.
	StarterRandom
)

// Config carries the game-level settings the arena and referee need. It
// replaces ambient session lookups: everything is passed in explicitly.
type Config struct {
	StarterMode      StarterMode
	StarterName      string
	MessagingEnabled bool
	MaxTurns         int
	// Seed for starter draws and opponent shuffles. Zero means time-seeded.
	Seed int64
}

// PlayerResult is one player's final line in a finished game. Rank 0 is the
// winner; ties share the same rank.
type PlayerResult struct {
	Name  string
	Model string
	Score float64
	Rank  int
}

// RunResult is a finished game, ready for persistence and the leaderboard.
type RunResult struct {
	RunID   string
	RunDate time.Time
	Results []PlayerResult
}

// ResultSaver persists finished games. Failures are logged and swallowed by
// the arena; they never stall the game.
type ResultSaver interface {
	SaveGame(run RunResult) error
}

// Arena owns the player list and the game-level state machine: turn counter,
// starter rotation, game-over detection, and the persistence hooks fired on
// completion.
type Arena struct {
	Players    []*Player
	Turn       int
	IsGameOver bool
	RunID      string
	StartedAt  time.Time

	cfg     Config
	prompts PromptBuilder
	sink    MoveLog
	saver   ResultSaver
	rng     *rand.Rand

	// ActiveStarter is the name of the player ordered first this turn.
	ActiveStarter string
}

// NewArena creates a game over the given players. sink and saver may be nil.
func NewArena(players []*Player, cfg Config, prompts PromptBuilder, sink MoveLog, saver ResultSaver) *Arena {
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = DefaultMaxTurns
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	a := &Arena{
		Players:   players,
		Turn:      1,
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		cfg:       cfg,
		prompts:   prompts,
		sink:      sink,
		saver:     saver,
		rng:       rand.New(rand.NewSource(seed)),
	}
	a.applyStarterPolicy(true)
	return a
}

func (a *Arena) determineStarter() *Player {
	if len(a.Players) == 0 {
		return nil
	}
	switch a.cfg.StarterMode {
	case StarterRandom:
		return a.Players[a.rng.Intn(len(a.Players))]
	case StarterManual:
		for _, p := range a.Players {
			if p.Name == a.cfg.StarterName {
				return p
			}
		}
	}
	for _, p := range a.Players {
		if p.Name == "Vanilla" {
			return p
		}
	}
	return a.Players[0]
}

// applyStarterPolicy reorders the players so the starter is first and
// reassigns everyone's opponent list.
func (a *Arena) applyStarterPolicy(shuffleOpponents bool) {
	starter := a.determineStarter()
	if starter == nil {
		return
	}
	if a.Players[0] != starter {
		ordered := make([]*Player, 0, len(a.Players))
		ordered = append(ordered, starter)
		for _, p := range a.Players {
			if p != starter {
				ordered = append(ordered, p)
			}
		}
		a.Players = ordered
	}
	a.ActiveStarter = starter.Name
	a.assignOpponents(shuffleOpponents || a.cfg.StarterMode == StarterRandom)
}

func (a *Arena) assignOpponents(shuffle bool) {
	for _, player := range a.Players {
		others := make([]*Player, 0, len(a.Players)-1)
		for _, p := range a.Players {
			if p != player {
				others = append(others, p)
			}
		}
		if shuffle {
			a.rng.Shuffle(len(others), func(i, j int) {
				others[i], others[j] = others[j], others[i]
			})
		}
		player.Others = others
	}
}

// PrepareForTurn applies the starter policy and snapshots each player's
// pre-turn score.
func (a *Arena) PrepareForTurn() {
	a.applyStarterPolicy(false)
	for _, p := range a.Players {
		p.PriorScore = p.Score
	}
}

// DoTurn runs one full turn through a fresh referee and processes the
// outcome. It reports whether the game ended.
func (a *Arena) DoTurn(ctx context.Context, progress ProgressFunc) bool {
	a.PrepareForTurn()
	ref := NewReferee(a.Players, a.Turn, a.RunID, a.prompts, a.sink)
	ref.DoTurn(ctx, progress)
	a.processTurnOutcome()
	return a.IsGameOver
}

func (a *Arena) processTurnOutcome() {
	for _, p := range a.Players {
		p.Series = append(p.Series, p.Score)
	}
	if a.Turn == a.cfg.MaxTurns {
		a.handleGameOver()
	} else if !a.IsGameOver {
		a.Turn++
	}
}

// handleGameOver flags every player holding the maximum score as a winner
// (ties produce multiple winners) and persists the game result best-effort.
func (a *Arena) handleGameOver() {
	a.IsGameOver = true
	winning := a.Players[0].Score
	for _, p := range a.Players {
		if p.Score > winning {
			winning = p.Score
		}
	}
	for _, p := range a.Players {
		if p.Score == winning {
			p.IsWinner = true
		}
	}
	a.saveGame()
}

func (a *Arena) saveGame() {
	if a.saver == nil {
		return
	}
	run := a.Result()
	if err := a.saver.SaveGame(run); err != nil {
		log.Printf("failed to save game results: %v", err)
	}
}

// Result builds the RunResult for the current standings, with min-style
// ranks (rank 0 wins, ties share a rank).
func (a *Arena) Result() RunResult {
	scores := make([]float64, len(a.Players))
	for i, p := range a.Players {
		scores[i] = p.Score
	}
	ranks := minRanks(scores)
	results := make([]PlayerResult, len(a.Players))
	for i, p := range a.Players {
		results[i] = PlayerResult{
			Name:  p.Name,
			Model: p.LLM.ModelName(),
			Score: p.Score,
			Rank:  ranks[i],
		}
	}
	return RunResult{RunID: a.RunID, RunDate: a.StartedAt, Results: results}
}

// minRanks assigns descending-score ranks where ties share the smallest rank
// of their group: scores [10, 10, 5] rank as [0, 0, 2].
func minRanks(scores []float64) []int {
	ranks := make([]int, len(scores))
	for i, s := range scores {
		higher := 0
		for _, other := range scores {
			if other > s {
				higher++
			}
		}
		ranks[i] = higher
	}
	return ranks
}
