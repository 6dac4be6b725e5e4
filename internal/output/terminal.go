package output

import (
	"fmt"
	"sort"

	"github.com/jumpbrain/KeynesianBeautyContest/internal/game"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// Colorize wraps s with an ANSI color code and reset.
func Colorize(color, s string) string { return color + s + ansiReset }

// Bold wraps s with ANSI bold and reset.
func Bold(s string) string { return ansiBold + s + ansiReset }

// PrintTurnBanner prints the start-of-turn banner.
func PrintTurnBanner(turn int, starter string) {
	fmt.Printf("\n%s\n", Colorize(ansiBold+ansiCyan, fmt.Sprintf("=== Turn %d (starter: %s) ===", turn, starter)))
}

// PrintProgress renders one progress update on its own line.
func PrintProgress(fraction float64, message string) {
	fmt.Printf("%s %s\n", Colorize(ansiYellow, fmt.Sprintf("[%3.0f%%]", fraction*100)), message)
}

// PrintRecord prints one player's outcome for a turn.
func PrintRecord(rec *game.TurnRecord) {
	if rec.IsInvalidMove {
		fmt.Printf("%s: %s\n", Bold(rec.Name), Colorize(ansiRed, "invalid move (scored 0)"))
		return
	}
	guess := 0.0
	if rec.AppliedGuess != nil {
		guess = *rec.AppliedGuess
	}
	line := fmt.Sprintf("guessed %.2f", guess)
	if rec.DistanceFromTarget != nil {
		line += fmt.Sprintf(", distance %.2f", *rec.DistanceFromTarget)
	}
	if rec.ScoreDelta != nil {
		line += fmt.Sprintf(", +%.2f", *rec.ScoreDelta)
	}
	if rec.RepairAttempted {
		line += " " + Colorize(ansiYellow, "(repaired)")
	}
	fmt.Printf("%s: %s\n", Bold(rec.Name), line)
	if rec.Move != nil && rec.Move.PublicMessage != "" {
		fmt.Printf("  %s %s\n", Colorize(ansiCyan, "says:"), rec.Move.PublicMessage)
	}
}

// PrintTarget prints the round's target, or a notice when no valid move
// produced one.
func PrintTarget(target *float64) {
	if target == nil {
		fmt.Println(Colorize(ansiRed, "No valid moves this turn; no target."))
		return
	}
	fmt.Printf("Target: %s\n", Colorize(ansiBold+ansiYellow, fmt.Sprintf("%.2f", *target)))
}

// PrintStandings prints the cumulative scores, highest first, flagging
// winners at game end.
func PrintStandings(players []*game.Player) {
	sorted := make([]*game.Player, len(players))
	copy(sorted, players)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })

	fmt.Println(Bold("\nStandings:"))
	for _, p := range sorted {
		line := fmt.Sprintf("  %-10s %8.2f", p.Name, p.Score)
		if p.IsWinner {
			line += " " + Colorize(ansiGreen, "WINNER")
		}
		fmt.Println(line)
	}
}
