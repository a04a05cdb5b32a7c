package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-bias-game/internal/advisor"
	"github.com/jonathan/hiring-bias-game/internal/dashboard"
	"github.com/jonathan/hiring-bias-game/internal/insights"
	"github.com/jonathan/hiring-bias-game/internal/llm"
	"github.com/jonathan/hiring-bias-game/internal/observability"
	"github.com/jonathan/hiring-bias-game/internal/schemas"
	"github.com/jonathan/hiring-bias-game/internal/store"
	"github.com/jonathan/hiring-bias-game/internal/types"
)

var (
	analyzeLLM  bool
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <selections.json>",
	Short: "Print the dashboard and bias insights for a list of hires",
	Long: `Analyze reads a JSON array of selected candidates (id, name, gender, age, experience,
education and optionally mainInfluence) and prints the team dashboard and bias insights.
With --llm the provider bias analysis is printed too.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeLLM, "llm", false, "Also request a provider bias analysis")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the report as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	selected, err := readSelections(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	repo, err := store.NewRepository(ctx, store.NewMemory(), store.WithLogger(logger))
	if err != nil {
		return err
	}
	defer repo.Close()

	generator, client, err := newGenerator(ctx, appCfg, nil, logger)
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	agg := dashboard.New(repo, generator, insights.NewEngine(), dashboard.WithLogger(logger))
	completed := time.Now().UTC()
	report := agg.Build(ctx, &types.GameSession{
		SessionID:          "analyze",
		CurrentRound:       len(selected),
		MaxRounds:          len(selected),
		Level:              types.DefaultLevel,
		SelectedCandidates: selected,
		CompletedAt:        &completed,
		CreatedAt:          completed,
	})

	var analysis *types.BiasAnalysis
	if analyzeLLM {
		analysis, err = providerAnalysis(ctx, selected, generator, repo, client)
		if err != nil {
			return err
		}
	}

	if analyzeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Report   *dashboard.Report   `json:"report"`
			Analysis *types.BiasAnalysis `json:"analysis,omitempty"`
		}{report, analysis})
	}

	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintReport(report)
	printer.PrintAnalysis(analysis)
	return nil
}

func providerAnalysis(ctx context.Context, selected []types.Candidate, source advisor.CandidateSource, repo *store.Repository, client llm.Client) (*types.BiasAnalysis, error) {
	opts := []advisor.Option{advisor.WithLogger(logger), advisor.WithTimeout(appCfg.LLMTimeout)}
	if client != nil {
		opts = append(opts, advisor.WithClient(client))
	}
	return advisor.New(source, repo, opts...).BiasAnalysis(ctx, selected, len(selected), len(selected))
}

// readSelections loads and schema-checks a selections file.
func readSelections(path string) ([]types.Candidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read selections: %w", err)
	}
	if err := schemas.Validate(schemas.CandidateListSchema, data); err != nil {
		return nil, fmt.Errorf("invalid selections file %s: %w", path, err)
	}

	var selected []types.Candidate
	if err := json.Unmarshal(data, &selected); err != nil {
		return nil, fmt.Errorf("failed to parse selections: %w", err)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("selections file %s is empty", path)
	}
	for i := range selected {
		selected[i].Normalize()
	}
	return selected, nil
}
