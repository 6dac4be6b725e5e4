package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
)

type sentCall struct {
	system    string
	user      string
	maxTokens int
}

type reply struct {
	text string
	err  error
}

// scriptedSender replays a fixed list of replies; the last one repeats once
// the script is exhausted. Safe for concurrent use: peers can be asked to
// repair while their own move is in flight.
type scriptedSender struct {
	model  string
	temp   float64
	mu     sync.Mutex
	script []reply
	calls  []sentCall
}

func (s *scriptedSender) Send(_ context.Context, system, user string, maxTokens int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sentCall{system: system, user: user, maxTokens: maxTokens})
	idx := len(s.calls) - 1
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	r := s.script[idx]
	return r.text, r.err
}

func (s *scriptedSender) ModelName() string    { return s.model }
func (s *scriptedSender) Temperature() float64 { return s.temp }

func (s *scriptedSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *scriptedSender) call(i int) sentCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

type capturingSink struct {
	mu      sync.Mutex
	err     error
	runIDs  []string
	turns   []int
	records []*TurnRecord
}

func (c *capturingSink) LogTurn(runID string, turn int, rec *TurnRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runIDs = append(c.runIDs, runID)
	c.turns = append(c.turns, turn)
	c.records = append(c.records, rec)
	return c.err
}

func validMove(guess float64) string {
	return fmt.Sprintf(`{"secret strategy": "s", "inner_thoughts": {"prediction": "p", "why": "w"}, "guess": %v, "public message": ""}`, guess)
}

func newTestPlayer(name string, script ...reply) *Player {
	return NewPlayer(name, &scriptedSender{model: "mock-model", temp: 0.7, script: script})
}

func linkOpponents(players []*Player) {
	for _, p := range players {
		var others []*Player
		for _, o := range players {
			if o != p {
				others = append(others, o)
			}
		}
		p.Others = others
	}
}

func runTurn(t *testing.T, players []*Player, sink MoveLog) *Referee {
	t.Helper()
	linkOpponents(players)
	ref := NewReferee(players, 1, "run-1", Prompts{MessagingEnabled: true}, sink)
	ref.DoTurn(context.Background(), nil)
	return ref
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.01 {
		t.Errorf("%s = %.4f, want %.4f", name, got, want)
	}
}

func TestScoringAgainstTarget(t *testing.T) {
	a := newTestPlayer("A", reply{text: validMove(30)})
	b := newTestPlayer("B", reply{text: validMove(50)})
	ref := runTurn(t, []*Player{a, b}, nil)

	// target = 0.7 * mean(30, 50) = 28
	recA := ref.Records()["A"]
	if recA.TargetValue == nil {
		t.Fatal("expected a target")
	}
	approx(t, "target", *recA.TargetValue, 28.0)
	approx(t, "distance A", *recA.DistanceFromTarget, 2.0)
	approx(t, "delta A", *recA.ScoreDelta, 98.0)
	approx(t, "score A", a.Score, 98.0)

	recB := ref.Records()["B"]
	approx(t, "distance B", *recB.DistanceFromTarget, 22.0)
	approx(t, "delta B", *recB.ScoreDelta, 78.0)
}

func TestThreePlayerRound(t *testing.T) {
	vanilla := newTestPlayer("Vanilla", reply{text: validMove(50)})
	strategic := newTestPlayer("Strategic", reply{text: validMove(33)})
	agressor := newTestPlayer("Agressor", reply{text: validMove(90)})
	ref := runTurn(t, []*Player{vanilla, strategic, agressor}, nil)

	target := 0.7 * (50.0 + 33.0 + 90.0) / 3.0
	approx(t, "target", *ref.Records()["Vanilla"].TargetValue, target)
	approx(t, "Vanilla delta", *ref.Records()["Vanilla"].ScoreDelta, 100-math.Abs(50-target))
	approx(t, "Strategic delta", *ref.Records()["Strategic"].ScoreDelta, 100-math.Abs(33-target))
	approx(t, "Agressor delta", *ref.Records()["Agressor"].ScoreDelta, 100-math.Abs(90-target))
}

func TestEmptyValidSet(t *testing.T) {
	// Both the move and the repair come back as prose: every player invalid.
	a := newTestPlayer("A", reply{text: "I guess thirty"}, reply{text: "still thirty"})
	b := newTestPlayer("B", reply{text: "no json here"}, reply{text: "none at all"})
	ref := runTurn(t, []*Player{a, b}, nil)

	for name, rec := range ref.Records() {
		if !rec.IsInvalidMove {
			t.Errorf("%s: expected invalid move", name)
		}
		if rec.TargetValue != nil {
			t.Errorf("%s: expected nil target, got %v", name, *rec.TargetValue)
		}
		if rec.DistanceFromTarget != nil {
			t.Errorf("%s: expected nil distance", name)
		}
		if rec.ScoreDelta == nil || *rec.ScoreDelta != 0 {
			t.Errorf("%s: expected zero score delta", name)
		}
	}
	if a.Score != 0 || b.Score != 0 {
		t.Errorf("scores must not move: %v, %v", a.Score, b.Score)
	}
}

func TestRepairSameAgentSucceeds(t *testing.T) {
	a := newTestPlayer("A", reply{text: "let me think... maybe 40?"}, reply{text: validMove(40)})
	b := newTestPlayer("B", reply{text: validMove(40)})
	ref := runTurn(t, []*Player{a, b}, nil)

	rec := ref.Records()["A"]
	if rec.IsInvalidMove {
		t.Fatal("expected repaired move to be accepted")
	}
	if !rec.RepairAttempted {
		t.Error("expected RepairAttempted")
	}
	if rec.RawResponse != "let me think... maybe 40?" {
		t.Errorf("raw response not retained: %q", rec.RawResponse)
	}
	if rec.RepairedResponse != validMove(40) {
		t.Errorf("repaired response not retained: %q", rec.RepairedResponse)
	}

	sender := a.LLM.(*scriptedSender)
	if sender.callCount() != 2 {
		t.Fatalf("expected 2 calls to A, got %d", sender.callCount())
	}
	if got := sender.call(1).maxTokens; got != MaxMoveTokens/4 {
		t.Errorf("repair call budget = %d, want %d", got, MaxMoveTokens/4)
	}
	if !strings.Contains(sender.call(1).user, "maybe 40?") {
		t.Error("repair prompt must quote the original response")
	}
}

func TestRepairedTextStillBrokenIsFinal(t *testing.T) {
	a := newTestPlayer("A", reply{text: "prose"}, reply{text: "{broken: [}"})
	b := newTestPlayer("B", reply{text: validMove(60)})
	ref := runTurn(t, []*Player{a, b}, nil)

	rec := ref.Records()["A"]
	if !rec.IsInvalidMove {
		t.Fatal("expected invalid move")
	}
	if !rec.RepairAttempted || rec.RepairedResponse != "{broken: [}" {
		t.Error("repair provenance not retained")
	}
	// Exactly one repair cycle: no peer involvement, no extra calls.
	if got := a.LLM.(*scriptedSender).callCount(); got != 2 {
		t.Errorf("expected 2 calls to A, got %d", got)
	}
	if got := b.LLM.(*scriptedSender).callCount(); got != 1 {
		t.Errorf("expected 1 call to B, got %d", got)
	}

	// B's round still scores, with the target from its guess alone.
	approx(t, "target", *ref.Records()["B"].TargetValue, 0.7*60)
}

func TestRepairPeerFallback(t *testing.T) {
	transportErr := errors.New("connection reset")
	a := newTestPlayer("A", reply{text: "unparseable nonsense"}, reply{err: transportErr})
	// B answers every call with the same valid move: its own move goroutine and
	// A's repair request race for the script, so the replies must be identical.
	b := newTestPlayer("B", reply{text: validMove(20)})
	ref := runTurn(t, []*Player{a, b}, nil)

	rec := ref.Records()["A"]
	if rec.IsInvalidMove {
		t.Fatal("expected peer repair to rescue the move")
	}
	if !rec.RepairAttempted {
		t.Error("expected RepairAttempted")
	}
	if rec.Move.Guess != 20 {
		t.Errorf("expected the peer-reformatted guess, got %v", rec.Move.Guess)
	}

	// The peer is handed the failing player's raw text. Deliberate: a rival
	// sees private reasoning in exchange for rescuing the turn.
	sender := b.LLM.(*scriptedSender)
	if sender.callCount() != 2 {
		t.Fatalf("expected 2 calls to B, got %d", sender.callCount())
	}
	var helperCall *sentCall
	for i := 0; i < sender.callCount(); i++ {
		c := sender.call(i)
		if strings.Contains(c.user, "unparseable nonsense") {
			helperCall = &c
			break
		}
	}
	if helperCall == nil {
		t.Fatal("helper prompt must contain the original broken text")
	}
	if helperCall.maxTokens != MaxMoveTokens/4 {
		t.Errorf("helper budget = %d, want %d", helperCall.maxTokens, MaxMoveTokens/4)
	}
}

func TestRepairExhaustedIsInvalid(t *testing.T) {
	transportErr := errors.New("boom")
	a := newTestPlayer("A", reply{text: "garbage"}, reply{err: transportErr})
	b := newTestPlayer("B", reply{text: validMove(10)}, reply{err: transportErr})
	ref := runTurn(t, []*Player{a, b}, nil)

	rec := ref.Records()["A"]
	if !rec.IsInvalidMove {
		t.Fatal("expected invalid move after exhausted repair")
	}
	if rec.RawResponse != "garbage" {
		t.Errorf("raw response not retained: %q", rec.RawResponse)
	}
}

func TestTransportFailureIsIsolated(t *testing.T) {
	a := newTestPlayer("A", reply{err: errors.New("provider down")})
	b := newTestPlayer("B", reply{text: validMove(70)})
	c := newTestPlayer("C", reply{text: validMove(30)})
	ref := runTurn(t, []*Player{a, b, c}, nil)

	if !ref.Records()["A"].IsInvalidMove {
		t.Error("expected A invalid")
	}
	// Outer call failed, so no repair is attempted for A.
	if got := a.LLM.(*scriptedSender).callCount(); got != 1 {
		t.Errorf("expected 1 call to A, got %d", got)
	}

	// The others score against a target built from their guesses only.
	target := 0.7 * (70.0 + 30.0) / 2.0
	approx(t, "target", *ref.Records()["B"].TargetValue, target)
	if ref.Records()["A"].TargetValue == nil {
		t.Error("invalid mover still sees the target")
	}
	if b.Score == 0 || c.Score == 0 {
		t.Error("valid players must still score")
	}
}

func TestProgressReporting(t *testing.T) {
	players := []*Player{
		newTestPlayer("A", reply{text: validMove(10)}),
		newTestPlayer("B", reply{text: validMove(20)}),
		newTestPlayer("C", reply{text: validMove(30)}),
	}
	linkOpponents(players)

	type update struct {
		fraction float64
		message  string
	}
	var updates []update
	ref := NewReferee(players, 1, "run-1", Prompts{MessagingEnabled: true}, nil)
	ref.DoTurn(context.Background(), func(fraction float64, message string) {
		updates = append(updates, update{fraction, message})
	})

	if len(updates) != len(players)+2 {
		t.Fatalf("expected %d updates, got %d", len(players)+2, len(updates))
	}
	if updates[0].fraction != 0 {
		t.Errorf("first update fraction = %v", updates[0].fraction)
	}
	last := updates[len(updates)-1]
	if last.fraction != 1.0 || last.message != "Finishing up.." {
		t.Errorf("bad final update: %+v", last)
	}
	for i := 1; i < len(updates); i++ {
		if updates[i].fraction < updates[i-1].fraction {
			t.Errorf("fractions must not decrease: %v after %v", updates[i].fraction, updates[i-1].fraction)
		}
	}
}

func TestLogSinkReceivesEveryRecord(t *testing.T) {
	sink := &capturingSink{}
	a := newTestPlayer("A", reply{text: validMove(10)})
	b := newTestPlayer("B", reply{text: "prose"}, reply{text: "prose"})
	runTurn(t, []*Player{a, b}, sink)

	if len(sink.records) != 2 {
		t.Fatalf("expected 2 logged records, got %d", len(sink.records))
	}
	for i := range sink.records {
		if sink.runIDs[i] != "run-1" || sink.turns[i] != 1 {
			t.Errorf("bad log key: %s/%d", sink.runIDs[i], sink.turns[i])
		}
	}
}

func TestLogSinkFailureDoesNotFailTurn(t *testing.T) {
	sink := &capturingSink{err: errors.New("disk full")}
	a := newTestPlayer("A", reply{text: validMove(40)})
	b := newTestPlayer("B", reply{text: validMove(60)})
	runTurn(t, []*Player{a, b}, sink)

	if a.Score == 0 || b.Score == 0 {
		t.Error("scoring must survive a sink failure")
	}
}

func TestRecordsAppendToPlayerHistory(t *testing.T) {
	a := newTestPlayer("A", reply{text: validMove(40)})
	b := newTestPlayer("B", reply{text: validMove(60)})
	runTurn(t, []*Player{a, b}, nil)

	if len(a.Records) != 1 || len(b.Records) != 1 {
		t.Fatalf("expected one record per player, got %d/%d", len(a.Records), len(b.Records))
	}
	if a.Records[0].Name != "A" || a.Records[0].Turn != 1 {
		t.Errorf("bad record identity: %+v", a.Records[0])
	}
	if a.Records[0].PriorScore == nil || *a.Records[0].PriorScore != 0 {
		t.Error("prior score snapshot missing")
	}
}
