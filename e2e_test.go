package beautycontest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jumpbrain/KeynesianBeautyContest/internal/game"
	"github.com/jumpbrain/KeynesianBeautyContest/internal/llm"
	"github.com/jumpbrain/KeynesianBeautyContest/internal/movelog"
	"github.com/jumpbrain/KeynesianBeautyContest/internal/rating"
	"github.com/jumpbrain/KeynesianBeautyContest/internal/store"
)

// TestFullGame drives a complete game against a mock chat-completions server
// and checks the whole pipeline: HTTP transport, parsing, scoring, the CSV
// move log, SQLite persistence, and the leaderboard over the stored result.
func TestFullGame(t *testing.T) {
	moveJSON := `{"secret strategy": "hold at 42", "inner_thoughts": {"prediction": "target near 29", "why": "everyone anchors mid-range"}, "guess": 42, "public message": "steady"}`
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(llm.ChatResponse{Choices: []llm.Choice{{
			Message: llm.Message{Role: "assistant", Content: moveJSON},
		}}})
	}))
	defer server.Close()

	names := []string{"Vanilla", "Strategic", "Agressor"}
	players := make([]*game.Player, len(names))
	for i, name := range names {
		client := llm.NewClient("test-key", server.URL)
		players[i] = game.NewPlayer(name, llm.NewModel(client, "gpt-test", "gpt-test", 0.7))
	}

	dataDir := t.TempDir()
	moves := movelog.NewCSVLog(filepath.Join(dataDir, "moves.csv"))
	db, err := store.Open(filepath.Join(dataDir, "games.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer db.Close()

	arena := game.NewArena(players, game.Config{MessagingEnabled: true, Seed: 1},
		game.Prompts{MessagingEnabled: true}, moves, db)

	turns := 0
	for !arena.DoTurn(context.Background(), nil) {
		turns++
		if turns > 20 {
			t.Fatal("game did not terminate")
		}
	}

	if !arena.IsGameOver {
		t.Fatal("expected game over")
	}
	if arena.Turn != game.DefaultMaxTurns {
		t.Errorf("final turn = %d, want %d", arena.Turn, game.DefaultMaxTurns)
	}
	if got := requests.Load(); got != int64(len(names)*game.DefaultMaxTurns) {
		t.Errorf("requests = %d, want %d", got, len(names)*game.DefaultMaxTurns)
	}

	// Identical guesses every round: everyone ties, everyone wins.
	for _, p := range arena.Players {
		if !p.IsWinner {
			t.Errorf("%s: expected a shared win", p.Name)
		}
		if p.Score != arena.Players[0].Score {
			t.Errorf("%s: score %v differs from %v", p.Name, p.Score, arena.Players[0].Score)
		}
	}

	rows, err := moves.Load()
	if err != nil {
		t.Fatalf("load move log: %v", err)
	}
	if len(rows) != len(names)*game.DefaultMaxTurns {
		t.Fatalf("move log rows = %d, want %d", len(rows), len(names)*game.DefaultMaxTurns)
	}
	first := rows[0]
	if first["run_id"] != arena.RunID {
		t.Errorf("run_id = %q, want %q", first["run_id"], arena.RunID)
	}
	if first["guess"] != "42" || first["is_invalid"] != "false" {
		t.Errorf("bad first row: guess=%q is_invalid=%q", first["guess"], first["is_invalid"])
	}

	games, err := db.Games()
	if err != nil {
		t.Fatalf("load games: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("stored games = %d, want 1", len(games))
	}
	if len(games[0].Results) != len(names) {
		t.Fatalf("stored results = %d, want %d", len(games[0].Results), len(names))
	}
	for _, res := range games[0].Results {
		if res.Rank != 0 {
			t.Errorf("%s: rank %d, want a shared rank 0", res.Name, res.Rank)
		}
	}

	entries := rating.Leaderboard(games)
	if len(entries) != 1 {
		t.Fatalf("leaderboard entries = %d, want 1 (single model)", len(entries))
	}
	if entries[0].Model != "gpt-test" || entries[0].Games != len(names) {
		t.Errorf("bad leaderboard entry: %+v", entries[0])
	}
}
