// Package store persists finished games to SQLite for the cross-game
// leaderboard.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jumpbrain/KeynesianBeautyContest/internal/game"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	run_id   TEXT PRIMARY KEY,
	run_date TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS results (
	run_id TEXT NOT NULL REFERENCES games(run_id),
	player TEXT NOT NULL,
	model  TEXT NOT NULL,
	score  REAL NOT NULL,
	rank   INTEGER NOT NULL,
	PRIMARY KEY (run_id, player)
);
`

// Store wraps the SQLite database holding game results.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// SaveGame writes one finished game and its per-player results in a single
// transaction.
func (s *Store) SaveGame(run game.RunResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO games(run_id, run_date) VALUES (?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET run_date = excluded.run_date`,
		run.RunID, run.RunDate.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	for _, res := range run.Results {
		if _, err := tx.Exec(
			`INSERT INTO results(run_id, player, model, score, rank) VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT(run_id, player) DO UPDATE SET
			   model = excluded.model, score = excluded.score, rank = excluded.rank`,
			run.RunID, res.Name, res.Model, res.Score, res.Rank,
		); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// Games returns every stored game, oldest first, with its results.
func (s *Store) Games() ([]game.RunResult, error) {
	rows, err := s.db.Query(`SELECT run_id, run_date FROM games ORDER BY run_date ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	defer rows.Close()

	var runs []game.RunResult
	for rows.Next() {
		var run game.RunResult
		var when string
		if err := rows.Scan(&run.RunID, &when); err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, when); err == nil {
			run.RunDate = t
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}

	for i := range runs {
		results, err := s.resultsFor(runs[i].RunID)
		if err != nil {
			return nil, err
		}
		runs[i].Results = results
	}
	return runs, nil
}

// Latest returns the k most recent games, newest first.
func (s *Store) Latest(k int) ([]game.RunResult, error) {
	runs, err := s.Games()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	if len(runs) > k {
		runs = runs[:k]
	}
	return runs, nil
}

func (s *Store) resultsFor(runID string) ([]game.PlayerResult, error) {
	rows, err := s.db.Query(
		`SELECT player, model, score, rank FROM results WHERE run_id = ? ORDER BY rank ASC, player ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	defer rows.Close()

	var results []game.PlayerResult
	for rows.Next() {
		var r game.PlayerResult
		if err := rows.Scan(&r.Name, &r.Model, &r.Score, &r.Rank); err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return results, nil
}
