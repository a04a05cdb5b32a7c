package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/hiring-bias-game/internal/observability"
	"github.com/jonathan/hiring-bias-game/internal/types"
)

var (
	simulateRounds int
	simulateSeed   uint64
	simulateQuiet  bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a full game with random choices and print the final dashboard",
	Long: `Simulate plays every round against the configured store, picking a random candidate
and influence each round, then prints the final dashboard and a what-if for the first round.`,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&simulateRounds, "rounds", 0, "Number of rounds (default from MAX_ROUNDS)")
	simulateCmd.Flags().Uint64Var(&simulateSeed, "seed", 0, "Seed for choices and templates (0 for random)")
	simulateCmd.Flags().BoolVarP(&simulateQuiet, "quiet", "q", false, "Only print the final dashboard")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg := *appCfg
	if simulateRounds != 0 {
		cfg.MaxRounds = simulateRounds
	}
	ctx := cmd.Context()

	a, err := newApp(ctx, &cfg, seededRandomizer(simulateSeed), logger)
	if err != nil {
		return err
	}
	defer a.Close(logger)

	seed := simulateSeed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed>>1))
	printer := observability.NewPrinter(cmd.OutOrStdout())

	maxRounds := cfg.MaxRounds
	view, err := a.game.StartGame(ctx, types.CreateSessionRequest{MaxRounds: &maxRounds})
	if err != nil {
		return fmt.Errorf("failed to start game: %w", err)
	}
	sessionID := view.SessionID
	logger.Debug("simulation started", zap.String("session_id", sessionID), zap.Uint64("seed", seed))

	for {
		if !simulateQuiet {
			printer.PrintRound(view)
		}
		pick := view.Candidates[rng.IntN(len(view.Candidates))]
		if _, err := a.game.Select(ctx, sessionID, pick.ID); err != nil {
			return fmt.Errorf("round %d: %w", view.Round, err)
		}

		result, err := a.game.Reflect(ctx, sessionID, types.ReflectRequest{
			MainInfluence:   types.Influences[rng.IntN(len(types.Influences))],
			ReflectionNotes: "simulated",
		})
		if err != nil {
			return fmt.Errorf("round %d: %w", view.Round, err)
		}
		if !simulateQuiet && result.Popup != nil {
			printer.PrintPopup(*result.Popup)
		}
		if result.Final {
			break
		}

		view, err = a.game.CurrentRound(ctx, sessionID)
		if err != nil {
			return err
		}
	}

	report, err := a.game.Dashboard(ctx, sessionID)
	if err != nil {
		return err
	}
	printer.PrintReport(report)

	whatIf, err := a.game.WhatIf(ctx, sessionID, 0, false)
	if err != nil {
		return fmt.Errorf("what-if: %w", err)
	}
	if !simulateQuiet {
		printer.PrintWhatIf(whatIf)
	}
	return nil
}
