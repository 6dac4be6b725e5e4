package game

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
)

// TargetMultiplier is p in target = p * average(valid guesses).
const TargetMultiplier = 0.7

// ProgressFunc receives fractional completion updates. Purely informational;
// callers must tolerate it being nil.
type ProgressFunc func(fraction float64, message string)

// MoveLog is the append-only sink for turn records. Appends are best-effort:
// a logging failure never fails the turn.
type MoveLog interface {
	LogTurn(runID string, turn int, rec *TurnRecord) error
}

// Referee orchestrates a single turn: it dispatches one move request per
// player in parallel, resolves each response through the parse/repair
// pipeline, then scores the round behind a strict barrier. A Referee is
// constructed fresh for every turn and owns that turn's records until they
// are handed to the players' histories.
type Referee struct {
	players []*Player
	turn    int
	runID   string
	prompts PromptBuilder
	sink    MoveLog
	records map[string]*TurnRecord
}

// NewReferee creates a referee for one turn. sink may be nil.
func NewReferee(players []*Player, turn int, runID string, prompts PromptBuilder, sink MoveLog) *Referee {
	return &Referee{
		players: players,
		turn:    turn,
		runID:   runID,
		prompts: prompts,
		sink:    sink,
		records: make(map[string]*TurnRecord, len(players)),
	}
}

// Records returns this turn's records keyed by player name. Valid only after
// DoTurn returns.
func (r *Referee) Records() map[string]*TurnRecord { return r.records }

// DoTurn runs the full turn: parallel move collection, per-player resolution,
// then scoring. progress is invoked as players finish, in completion order.
func (r *Referee) DoTurn(ctx context.Context, progress ProgressFunc) {
	report := func(fraction float64, message string) {
		if progress != nil {
			progress(fraction, message)
		}
	}
	report(0, "Players are thinking..")

	results := make(chan *TurnRecord, len(r.players))
	var wg sync.WaitGroup
	for _, p := range r.players {
		wg.Add(1)
		go func(p *Player) {
			defer wg.Done()
			results <- r.doTurnForPlayer(ctx, p)
		}(p)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var responded []string
	for rec := range results {
		responded = append(responded, rec.Name)
		report(float64(len(responded))/float64(len(r.players)), strings.Join(responded, ", ")+" responded..")
		r.records[rec.Name] = rec
		p := r.playerWithName(rec.Name)
		p.Records = append(p.Records, rec)
	}

	report(1.0, "Finishing up..")
	r.handleTurn()
}

// doTurnForPlayer runs one player's move pipeline. Every failure is absorbed
// here and converted into an invalid-move record so one player can never
// abort the others.
func (r *Referee) doTurnForPlayer(ctx context.Context, p *Player) *TurnRecord {
	rec := newRecord(p.Name, r.turn)
	prior := p.Score
	rec.PriorScore = &prior

	systemPrompt := r.prompts.SystemPrompt(p)
	userPrompt := r.prompts.UserPrompt(p, r.turn)
	rec.SystemPrompt = systemPrompt
	rec.UserPrompt = userPrompt
	rec.ModelName = p.LLM.ModelName()
	rec.Temperature = p.LLM.Temperature()

	response, err := p.LLM.Send(ctx, systemPrompt, userPrompt, MaxMoveTokens)
	if err != nil {
		log.Printf("turn %d: move request failed for %s: %v", r.turn, p.Name, err)
		rec.IsInvalidMove = true
		return rec
	}
	rec.RawResponse = response

	move, err := ParseResponse(response)
	if err == nil {
		rec.attachMove(move)
		return rec
	}
	log.Printf("turn %d: initial response from %s could not be parsed: %v", r.turn, p.Name, err)

	repaired, repairErr := r.repairResponse(ctx, p, response)
	if repairErr != nil {
		log.Printf("turn %d: repair failed for %s: %v", r.turn, p.Name, repairErr)
		rec.IsInvalidMove = true
		return rec
	}

	// One shot at the repaired text; failure here is final for the turn.
	move, err = ParseResponse(repaired)
	if err != nil {
		log.Printf("turn %d: repaired response from %s still unparseable: %v", r.turn, p.Name, err)
		rec.IsInvalidMove = true
		rec.RepairAttempted = true
		rec.RepairedResponse = repaired
		return rec
	}
	rec.attachMove(move)
	rec.RepairAttempted = true
	rec.RepairedResponse = repaired
	return rec
}

// handleTurn is the scoring barrier: it runs strictly after every player has
// resolved, computes the target from the valid guesses, and applies the score
// deltas. Records are then emitted to the log sink best-effort.
func (r *Referee) handleTurn() {
	names := make([]string, 0, len(r.records))
	for name := range r.records {
		names = append(names, name)
	}
	sort.Strings(names)

	var validNames []string
	for _, name := range names {
		rec := r.records[name]
		if !rec.IsInvalidMove && rec.AppliedGuess != nil {
			validNames = append(validNames, name)
		}
	}

	var target *float64
	if len(validNames) > 0 {
		sum := 0.0
		for _, name := range validNames {
			sum += *r.records[name].AppliedGuess
		}
		t := TargetMultiplier * (sum / float64(len(validNames)))
		target = &t
	}

	for _, name := range names {
		rec := r.records[name]
		player := r.playerWithName(name)

		if rec.IsInvalidMove || rec.AppliedGuess == nil || target == nil {
			rec.TargetValue = target
			zero := 0.0
			rec.ScoreDelta = &zero
			post := player.Score
			rec.PostScore = &post
			continue
		}

		// Clamp again defensively before scoring.
		guess := ClampGuess(*rec.AppliedGuess)
		rec.AppliedGuess = &guess
		rec.TargetValue = target
		distance := guess - *target
		if distance < 0 {
			distance = -distance
		}
		rec.DistanceFromTarget = &distance
		delta := 100.0 - distance
		if delta < 0 {
			delta = 0
		}
		rec.ScoreDelta = &delta
		player.Score += delta
		post := player.Score
		rec.PostScore = &post
	}

	if r.sink != nil {
		for _, name := range names {
			if err := r.sink.LogTurn(r.runID, r.turn, r.records[name]); err != nil {
				log.Printf("turn %d: failed to log move for %s: %v", r.turn, name, err)
			}
		}
	}
}

func (r *Referee) playerWithName(name string) *Player {
	for _, p := range r.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}
