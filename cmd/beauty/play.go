package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jumpbrain/KeynesianBeautyContest/internal/config"
	"github.com/jumpbrain/KeynesianBeautyContest/internal/game"
	"github.com/jumpbrain/KeynesianBeautyContest/internal/llm"
	"github.com/jumpbrain/KeynesianBeautyContest/internal/movelog"
	"github.com/jumpbrain/KeynesianBeautyContest/internal/output"
	"github.com/jumpbrain/KeynesianBeautyContest/internal/store"
)

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Run one full game",
		RunE:  runPlay,
	}
	cmd.Flags().Int("turns", 0, "Number of turns (overrides BEAUTY_MAX_TURNS)")
	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Root().PersistentFlags().GetString("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	if turns, _ := cmd.Flags().GetInt("turns"); turns > 0 {
		cfg.MaxTurns = turns
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := llm.NewRegistry()
	players := make([]*game.Player, len(cfg.AgentNames))
	for i, name := range cfg.AgentNames {
		model, err := registry.Open(cfg.ModelNames[i], cfg.Temperature(name))
		if err != nil {
			return err
		}
		model.SetTimeout(cfg.RequestTimeout)
		players[i] = game.NewPlayer(name, model)
	}

	sink := movelog.NewCSVLog(filepath.Join(cfg.DataDir, "moves.csv"))
	db, err := store.Open(filepath.Join(cfg.DataDir, "games.db"))
	if err != nil {
		return err
	}
	defer db.Close()

	arena := game.NewArena(players, game.Config{
		StarterMode:      cfg.StarterMode,
		StarterName:      cfg.StarterName,
		MessagingEnabled: cfg.MessagingEnabled,
		MaxTurns:         cfg.MaxTurns,
		Seed:             cfg.Seed,
	}, game.Prompts{MessagingEnabled: cfg.MessagingEnabled}, sink, db)

	log.SetOutput(os.Stderr)
	fmt.Printf("Run %s: %d players, %d turns\n", arena.RunID, len(players), cfg.MaxTurns)

	for !arena.IsGameOver {
		turn := arena.Turn
		output.PrintTurnBanner(turn, arena.ActiveStarter)
		arena.DoTurn(ctx, output.PrintProgress)
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("game interrupted: %w", err)
		}
		printTurnResults(arena, turn)
	}

	output.PrintStandings(arena.Players)
	fmt.Printf("\nGame complete. Move log: %s\n", filepath.Join(cfg.DataDir, "moves.csv"))
	return nil
}

func printTurnResults(arena *game.Arena, turn int) {
	var target *float64
	for _, p := range arena.Players {
		for _, rec := range p.Records {
			if rec.Turn == turn {
				if rec.TargetValue != nil {
					target = rec.TargetValue
				}
			}
		}
	}
	output.PrintTarget(target)
	for _, p := range arena.Players {
		for _, rec := range p.Records {
			if rec.Turn == turn {
				output.PrintRecord(rec)
			}
		}
	}
}
