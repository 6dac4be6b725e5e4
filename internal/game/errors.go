package game

import "errors"

// Parse failures fall into three kinds. All three are recovered the same way
// (one repair cycle); they are distinguished so tests and diagnostics can tell
// a missing JSON object from a malformed one from a structurally valid object
// that is not a usable move.
var (
	// ErrNoJSON means the response contained no {...} span at all.
	ErrNoJSON = errors.New("game: no JSON object found in response")
	// ErrDecode means a span was found but could not be decoded by any strategy.
	ErrDecode = errors.New("game: failed to decode JSON from response")
	// ErrValidation means the decoded object is missing required fields or has
	// a non-numeric guess.
	ErrValidation = errors.New("game: invalid move")
)
