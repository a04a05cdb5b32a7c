package candidates

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/hiring-bias-game/internal/llm"
	"github.com/jonathan/hiring-bias-game/internal/prompts"
	"github.com/jonathan/hiring-bias-game/internal/schemas"
	"github.com/jonathan/hiring-bias-game/internal/types"
)

const promptFile = "candidates.json"

// DefaultTimeout bounds a single LLM candidate request.
const DefaultTimeout = 30 * time.Second

// Generator produces candidates through an LLM and fills any shortfall locally.
type Generator struct {
	client  llm.Client
	local   *LocalGenerator
	logger  *zap.Logger
	timeout time.Duration
}

// Option configures a Generator.
type Option func(*Generator)

// WithClient enables LLM generation. A nil client keeps generation local.
func WithClient(client llm.Client) Option {
	return func(g *Generator) { g.client = client }
}

// WithLogger sets the logger used for failed LLM requests.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithTimeout bounds each LLM request. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(g *Generator) { g.timeout = d }
}

// NewGenerator creates a generator backed by local for fallback.
func NewGenerator(local *LocalGenerator, opts ...Option) *Generator {
	g := &Generator{
		local:   local,
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Local returns the template generator used for fallback.
func (g *Generator) Local() *LocalGenerator {
	return g.local
}

// Generate returns exactly count candidates for jobPosition.
// LLM requests are issued in parallel, one per candidate; each failed request
// is replaced by a locally generated candidate. Generate never fails.
func (g *Generator) Generate(ctx context.Context, jobPosition string, count int) []types.Candidate {
	if count <= 0 {
		return []types.Candidate{}
	}
	if g.client == nil {
		return g.local.Generate(jobPosition, count)
	}

	results := make([]*types.Candidate, count)
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range results {
		eg.Go(func() error {
			c, err := g.fromLLM(egCtx, jobPosition)
			if err != nil {
				g.logger.Warn("LLM candidate generation failed, using local template",
					zap.String("job_position", jobPosition),
					zap.Int("index", i),
					zap.Error(err))
				return nil
			}
			results[i] = c
			return nil
		})
	}
	_ = eg.Wait()

	out := make([]types.Candidate, 0, count)
	for _, c := range results {
		if c != nil {
			out = append(out, *c)
		}
	}
	if missing := count - len(out); missing > 0 {
		g.logger.Debug("filling candidates locally",
			zap.String("job_position", jobPosition),
			zap.Int("missing", missing))
		out = append(out, g.local.Generate(jobPosition, missing)...)
	}
	return out
}

func (g *Generator) fromLLM(ctx context.Context, jobPosition string) (*types.Candidate, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	system, instructions, err := prompts.Pair(promptFile, "generate-candidate", map[string]string{
		"JobPosition": jobPosition,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load prompt: %w", err)
	}

	raw, err := g.client.GenerateJSON(ctx, llm.Request{
		System:      system,
		Prompt:      llm.BuildJSONPrompt(instructions, llm.CandidateProfileSchema(jobPosition)),
		Tier:        llm.TierStandard,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}
	return ParseCandidate(raw)
}

// ParseCandidate validates and decodes a generated candidate profile.
// Any id in the payload is discarded; the store assigns one.
func ParseCandidate(raw string) (*types.Candidate, error) {
	cleaned := llm.CleanJSONBlock(raw)
	if err := schemas.ValidateCandidateJSON(cleaned); err != nil {
		return nil, fmt.Errorf("generated candidate failed schema validation: %w", err)
	}

	var c types.Candidate
	if err := json.Unmarshal([]byte(cleaned), &c); err != nil {
		return nil, fmt.Errorf("failed to decode generated candidate: %w", err)
	}
	c.ID = 0
	c.MainInfluence = ""
	if c.SoftSkill == "" {
		c.SoftSkill = c.Skills.Soft
	}
	c.Normalize()
	return &c, nil
}
