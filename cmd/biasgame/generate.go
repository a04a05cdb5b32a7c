package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-bias-game/internal/candidates"
	"github.com/jonathan/hiring-bias-game/internal/observability"
)

var (
	generatePosition string
	generateCount    int
	generateSeed     uint64
	generateJSON     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate candidate profiles for a job position",
	Long: `Generate candidate profiles. Profiles come from the LLM when GEMINI_API_KEY is set
and from the embedded templates otherwise.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generatePosition, "position", "p", candidates.DefaultPosition, "Job position")
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 3, "Number of candidates")
	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0, "Seed for template generation (0 for random)")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "Print candidates as JSON")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	if generateCount < 1 {
		return fmt.Errorf("--count must be at least 1")
	}

	generator, client, err := newGenerator(cmd.Context(), appCfg, seededRandomizer(generateSeed), logger)
	if err != nil {
		return err
	}
	defer closeClient(client, logger)

	generated := generator.Generate(cmd.Context(), generatePosition, generateCount)
	for i := range generated {
		generated[i].ID = int64(i + 1)
		generated[i].Normalize()
	}

	if generateJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(generated)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintCandidates(fmt.Sprintf("CANDIDATES: %s", generatePosition), generated)
	return nil
}

// seededRandomizer returns nil for seed 0, which selects the global source.
func seededRandomizer(seed uint64) candidates.Randomizer {
	if seed == 0 {
		return nil
	}
	return candidates.NewSeededRandomizer(seed)
}
