package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Guess bounds. Out-of-range guesses are clamped, never rejected: models are
// regularly imprecise about numbers and a clamped guess is more useful than a
// forfeited turn.
const (
	GuessMin = 0.0
	GuessMax = 100.0
)

// Move is one agent's validated decision for a turn. It is constructed once
// per successful parse and never mutated afterwards.
type Move struct {
	Strategy      string
	Guess         float64
	InnerThoughts map[string]any
	PublicMessage string
}

// ClampGuess forces a guess into [GuessMin, GuessMax].
func ClampGuess(g float64) float64 {
	if g < GuessMin {
		return GuessMin
	}
	if g > GuessMax {
		return GuessMax
	}
	return g
}

// NewMove builds a Move from a decoded JSON object. The strategy and guess
// keys are required; inner thoughts and the public message default to empty.
// Clamping the guess is the last step, so a Move can never exist with an
// out-of-range guess.
func NewMove(fields map[string]any) (Move, error) {
	strategy, ok := stringField(fields, "secret strategy", "strategy")
	if !ok {
		return Move{}, fmt.Errorf("%w: missing 'secret strategy'", ErrValidation)
	}

	rawGuess, ok := firstOf(fields, "guess")
	if !ok {
		return Move{}, fmt.Errorf("%w: missing 'guess'", ErrValidation)
	}
	guess, err := toFloat(rawGuess)
	if err != nil {
		return Move{}, fmt.Errorf("%w: guess must be numeric: %v", ErrValidation, err)
	}

	inner := map[string]any{}
	if v, ok := firstOf(fields, "inner_thoughts", "inner thoughts"); ok {
		if m, ok := v.(map[string]any); ok {
			inner = m
		}
	}

	public, _ := stringField(fields, "public message", "public_message")

	return Move{
		Strategy:      strategy,
		Guess:         ClampGuess(guess),
		InnerThoughts: inner,
		PublicMessage: public,
	}, nil
}

// Prediction returns the 'prediction' inner thought, if any.
func (m Move) Prediction() string { return m.innerString("prediction") }

// Why returns the 'why' inner thought, if any.
func (m Move) Why() string { return m.innerString("why") }

func (m Move) innerString(key string) string {
	if v, ok := m.InnerThoughts[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return ""
}

func firstOf(fields map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func stringField(fields map[string]any, keys ...string) (string, bool) {
	v, ok := firstOf(fields, keys...)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	default:
		return fmt.Sprintf("%v", v), true
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot parse %q as a number", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}
