package game

import (
	"fmt"
	"strings"
)

const rawExcerptLimit = 800

// TurnRecord is the immutable-after-scoring record of one agent's turn: the
// raw model output, the parsed move (or an invalid marker), prompt/model
// provenance, and the scoring outputs filled in by the turn barrier.
//
// Invariant: when IsInvalidMove is true every scoring field except
// TargetValue stays nil — an invalid mover still sees the target when one
// exists, but no guess is applied and no score moves.
type TurnRecord struct {
	Turn          int
	Name          string
	IsInvalidMove bool
	Move          *Move
	RawResponse   string

	// provenance
	SystemPrompt string
	UserPrompt   string
	ModelName    string
	Temperature  float64

	RepairAttempted  bool
	RepairedResponse string

	InnerPrediction string
	InnerWhy        string

	// scoring outputs
	Guess              *float64
	AppliedGuess       *float64
	TargetValue        *float64
	DistanceFromTarget *float64
	ScoreDelta         *float64
	PriorScore         *float64
	PostScore          *float64
}

func newRecord(name string, turn int) *TurnRecord {
	return &TurnRecord{Name: name, Turn: turn}
}

func (r *TurnRecord) attachMove(m Move) {
	r.Move = &m
	r.InnerPrediction = m.Prediction()
	r.InnerWhy = m.Why()
	g := m.Guess
	r.Guess = &g
	applied := m.Guess
	r.AppliedGuess = &applied
}

// Recap renders this record as the prompt-facing summary of a past turn.
func (r *TurnRecord) Recap() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recap of Turn %d\n\n", r.Turn)
	b.WriteString("Your actions:\n")
	if r.IsInvalidMove {
		b.WriteString("You provided invalid JSON, so your move was not processed\n")
		if r.RawResponse != "" {
			b.WriteString("Raw response:\n")
			excerpt := r.RawResponse
			if len(excerpt) > rawExcerptLimit {
				excerpt = excerpt[:rawExcerptLimit] + "..."
			}
			b.WriteString(excerpt + "\n")
		}
	} else if r.Move != nil {
		fmt.Fprintf(&b, "Your secret strategy: %s\n", r.Move.Strategy)
		if r.InnerPrediction != "" {
			fmt.Fprintf(&b, "Prediction: %s\n", r.InnerPrediction)
			if r.InnerWhy != "" {
				fmt.Fprintf(&b, "Reason: %s\n", r.InnerWhy)
			}
		}
		if r.AppliedGuess != nil {
			fmt.Fprintf(&b, "You guessed: %.2f\n", *r.AppliedGuess)
		}
		if r.Move.PublicMessage != "" {
			fmt.Fprintf(&b, "Public message: %s\n", r.Move.PublicMessage)
		}
	}

	b.WriteString("\nResults of the turn:\n")
	if r.TargetValue != nil {
		fmt.Fprintf(&b, "Target (p * average guess): %.2f\n", *r.TargetValue)
	}
	if r.DistanceFromTarget != nil {
		fmt.Fprintf(&b, "Distance from target: %.2f\n", *r.DistanceFromTarget)
	}
	if r.ScoreDelta != nil {
		fmt.Fprintf(&b, "Score change: %.2f\n", *r.ScoreDelta)
	}
	if r.PostScore != nil {
		fmt.Fprintf(&b, "Total score: %.2f\n", *r.PostScore)
	}
	b.WriteString("\n")
	return b.String()
}
