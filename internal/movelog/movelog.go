// Package movelog appends per-turn records to a schema-stable CSV file and
// reads them back for analytics. The file is append-only; rows are keyed by
// (run, turn, player).
package movelog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/jumpbrain/KeynesianBeautyContest/internal/game"
)

const promptLimit = 4000

// Headers is the stable column order. Never reorder or remove entries;
// consumers read the log back by these names.
var Headers = []string{
	"run_id",
	"turn",
	"timestamp",
	"player",
	"model_name",
	"temperature",
	"strategy",
	"guess",
	"applied_guess",
	"target",
	"distance",
	"score_delta",
	"prior_score",
	"post_score",
	"public_message",
	"raw_response",
	"is_invalid",
	"system_prompt",
	"user_prompt",
	"repair_attempted",
	"repaired_response",
	"inner_prediction",
	"inner_why",
}

// CSVLog implements game.MoveLog over a single CSV file. Appends from
// concurrent record writes within a turn are serialized by a mutex.
type CSVLog struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewCSVLog creates a log writing to path. The file and its directory are
// created on first append.
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path, now: time.Now}
}

// LogTurn appends one record as a flat row.
func (l *CSVLog) LogTurn(runID string, turn int, rec *game.TurnRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("movelog: %w", err)
	}

	writeHeader := false
	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		writeHeader = true
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("movelog: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(Headers); err != nil {
			return fmt.Errorf("movelog: %w", err)
		}
	}
	if err := w.Write(l.row(runID, turn, rec)); err != nil {
		return fmt.Errorf("movelog: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("movelog: %w", err)
	}
	return nil
}

func (l *CSVLog) row(runID string, turn int, rec *game.TurnRecord) []string {
	strategy := ""
	public := ""
	if rec.Move != nil {
		strategy = rec.Move.Strategy
		public = rec.Move.PublicMessage
	}
	return []string{
		runID,
		strconv.Itoa(turn),
		l.now().UTC().Format(time.RFC3339),
		rec.Name,
		rec.ModelName,
		formatFloat(&rec.Temperature),
		strategy,
		formatFloat(rec.Guess),
		formatFloat(rec.AppliedGuess),
		formatFloat(rec.TargetValue),
		formatFloat(rec.DistanceFromTarget),
		formatFloat(rec.ScoreDelta),
		formatFloat(rec.PriorScore),
		formatFloat(rec.PostScore),
		public,
		rec.RawResponse,
		strconv.FormatBool(rec.IsInvalidMove),
		truncate(rec.SystemPrompt, promptLimit),
		truncate(rec.UserPrompt, promptLimit),
		strconv.FormatBool(rec.RepairAttempted),
		rec.RepairedResponse,
		rec.InnerPrediction,
		rec.InnerWhy,
	}
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}

// Row is one logged turn read back as column name -> value.
type Row map[string]string

// Load reads the log back. Rows with drifted column counts are padded or
// merged rather than rejected, and every row is normalized to Headers.
func (l *CSVLog) Load() ([]Row, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("movelog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("movelog: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}

	header := all[0]
	rows := make([]Row, 0, len(all)-1)
	for _, rec := range all[1:] {
		for len(rec) < len(header) {
			rec = append(rec, "")
		}
		row := Row{}
		for i, col := range header {
			row[col] = rec[i]
		}
		for _, col := range Headers {
			if _, ok := row[col]; !ok {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
