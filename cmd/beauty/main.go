package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "beauty",
		Short: "LLM arena running repeated Keynes Beauty Contests",
		Long:  "Runs repeated Keynes Beauty Contest games among LLM-backed agents: each round every agent guesses in [0,100], the target is 0.7x the average guess, and closeness to the target scores points. Finished games feed a cross-game Glicko-2 leaderboard.",
	}

	root.PersistentFlags().String("data-dir", "", "Data directory for the move log and game store (overrides BEAUTY_DATA_DIR)")

	root.AddCommand(newPlayCmd())
	root.AddCommand(newLeaderboardCmd())
	root.AddCommand(newModelsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
