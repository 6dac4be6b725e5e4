package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jumpbrain/KeynesianBeautyContest/internal/config"
	"github.com/jumpbrain/KeynesianBeautyContest/internal/rating"
	"github.com/jumpbrain/KeynesianBeautyContest/internal/store"
)

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the cross-game model leaderboard",
		RunE:  runLeaderboard,
	}
	cmd.Flags().Int("latest", 0, "Also show the N most recent games")
	return cmd
}

func runLeaderboard(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Root().PersistentFlags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}

	db, err := store.Open(filepath.Join(cfg.DataDir, "games.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	games, err := db.Games()
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Println("No games recorded yet.")
		return nil
	}

	fmt.Printf("%-40s %6s %7s %9s\n", "Model", "Games", "Win %", "Skill")
	for _, e := range rating.Leaderboard(games) {
		fmt.Printf("%-40s %6d %6.1f%% %9.1f\n", e.Model, e.Games, e.WinPct, e.Skill)
	}

	if latest, _ := cmd.Flags().GetInt("latest"); latest > 0 {
		runs, err := db.Latest(latest)
		if err != nil {
			return err
		}
		fmt.Println("\nRecent games:")
		for _, run := range runs {
			var winners []string
			for _, res := range run.Results {
				if res.Rank == 0 {
					winners = append(winners, fmt.Sprintf("%s (%s)", res.Name, res.Model))
				}
			}
			fmt.Printf("  %s  %s\n", run.RunDate.Format("2006-01-02 15:04"), strings.Join(winners, ", "))
		}
	}
	return nil
}
