package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/hiring-bias-game/internal/llm"
	"github.com/jonathan/hiring-bias-game/internal/prompts"
	"github.com/jonathan/hiring-bias-game/internal/schemas"
	"github.com/jonathan/hiring-bias-game/internal/types"
)

// analysisWire mirrors types.BiasAnalysis with numeric fields as the provider sends them.
type analysisWire struct {
	BiasInsights []struct {
		Type        types.InsightType `json:"type"`
		Title       string            `json:"title"`
		Description string            `json:"description"`
		Percentage  float64           `json:"percentage"`
	} `json:"biasInsights"`
	OverallBiasScore float64  `json:"overallBiasScore"`
	Recommendations  []string `json:"recommendations"`
}

// BiasAnalysis analyses the selections made so far. Provider failures and
// responses that do not match the bias analysis schema yield FallbackAnalysis.
func (a *Advisor) BiasAnalysis(ctx context.Context, selected []types.Candidate, currentRound, totalRounds int) (*types.BiasAnalysis, error) {
	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: selectedCandidates must be a non-empty array", ErrInvalidInput)
	}

	analysis, err := a.analyze(ctx, selected, currentRound, totalRounds)
	if err != nil {
		a.logger.Warn("bias analysis generation failed, using fallback",
			zap.Int("selected", len(selected)),
			zap.Error(err))
		return FallbackAnalysis(), nil
	}
	return analysis, nil
}

func (a *Advisor) analyze(ctx context.Context, selected []types.Candidate, currentRound, totalRounds int) (*types.BiasAnalysis, error) {
	if a.client == nil {
		return nil, ErrNoProvider
	}

	summaries := make([]string, 0, len(selected))
	for i, c := range selected {
		summaries = append(summaries, selectionSummary(i+1, c))
	}
	system, instructions, err := prompts.Pair(promptFile, "bias-analysis", map[string]string{
		"Count":        fmt.Sprint(len(selected)),
		"CurrentRound": fmt.Sprint(currentRound),
		"TotalRounds":  fmt.Sprint(totalRounds),
		"Summaries":    strings.Join(summaries, "\n"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt: %w", err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	raw, err := a.client.GenerateJSON(ctx, llm.Request{
		System: system,
		Prompt: llm.BuildJSONPrompt(instructions, llm.BiasAnalysisSchema()),
		Tier:   llm.TierStandard,
	})
	if err != nil {
		return nil, err
	}
	return ParseAnalysis(raw)
}

// ParseAnalysis validates and decodes a provider bias analysis.
// Missing scores and recommendations become zero and empty.
func ParseAnalysis(raw string) (*types.BiasAnalysis, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.ValidateBiasAnalysisJSON(cleaned); err != nil {
		return nil, fmt.Errorf("bias analysis does not match schema: %w", err)
	}

	var wire analysisWire
	if err := json.Unmarshal([]byte(cleaned), &wire); err != nil {
		return nil, fmt.Errorf("failed to decode bias analysis: %w", err)
	}

	out := &types.BiasAnalysis{
		BiasInsights:     make([]types.BiasInsight, 0, len(wire.BiasInsights)),
		OverallBiasScore: int(math.Round(wire.OverallBiasScore)),
		Recommendations:  wire.Recommendations,
	}
	for _, in := range wire.BiasInsights {
		out.BiasInsights = append(out.BiasInsights, types.BiasInsight{
			Type:        in.Type,
			Title:       in.Title,
			Description: in.Description,
			Percentage:  int(math.Round(in.Percentage)),
		})
	}
	if out.Recommendations == nil {
		out.Recommendations = []string{}
	}
	return out, nil
}

func selectionSummary(round int, c types.Candidate) string {
	return fmt.Sprintf("Round %d Selection:\n- Name: %s\n- Gender: %s\n- Age: %d\n- Experience: %d years\n- Education: %s\n- Key skills: %s\n- Soft skills: %s",
		round, c.Name, c.Gender, c.Age, c.Experience, c.Education,
		strings.Join(c.Skills.Technical, ", "), c.SoftSkill)
}
