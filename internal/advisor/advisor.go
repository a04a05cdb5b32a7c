// Package advisor answers the LLM-backed game endpoints: interview answers,
// bias analyses, reflections, flashcards and single candidate profiles.
// Every call degrades to a deterministic local answer when the provider fails.
package advisor

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/hiring-bias-game/internal/llm"
	"github.com/jonathan/hiring-bias-game/internal/prompts"
	"github.com/jonathan/hiring-bias-game/internal/types"
)

const promptFile = "advisor.json"

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 30 * time.Second

// Token caps per endpoint.
const (
	candidateMaxTokens  = 150
	reflectionMaxTokens = 150
	flashcardMaxTokens  = 100
)

// Response types accepted by CandidateResponse.
const (
	ResponseInterview = "interview"
	ResponseDetailed  = "detailed"
	ResponseAnimated  = "animated"
)

// Texts used when the provider answers with an empty body.
const (
	emptyCandidateText  = "I appreciate that question. Based on my experience, I believe my skills in problem-solving and collaboration would be valuable here. I'm passionate about this field and always eager to learn more."
	emptyReflectionText = "Your selection may reflect an unconscious preference for candidates with more traditional career paths. What other perspectives or experiences might have added value to your team?"
	defaultFlashcard    = "Studies show diverse teams outperform homogeneous ones by 35% in innovation metrics. Broadening your hiring criteria could unlock new potential in your organization."
)

// CandidateSource generates candidate profiles.
type CandidateSource interface {
	Generate(ctx context.Context, jobPosition string, count int) []types.Candidate
}

// CandidateStore persists candidates and assigns their ids.
type CandidateStore interface {
	CreateCandidate(ctx context.Context, candidate types.Candidate) (*types.Candidate, error)
}

// Advisor serves the generation endpoints.
type Advisor struct {
	client     llm.Client
	candidates CandidateSource
	store      CandidateStore
	logger     *zap.Logger
	timeout    time.Duration
}

// Option configures an Advisor.
type Option func(*Advisor)

// WithClient sets the LLM client. Without one every call answers locally.
func WithClient(client llm.Client) Option {
	return func(a *Advisor) {
		a.client = client
	}
}

// WithLogger sets the advisor logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Advisor) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithTimeout bounds each provider call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(a *Advisor) {
		a.timeout = d
	}
}

// New creates an Advisor. candidates and store back GenerateCandidate.
func New(candidates CandidateSource, store CandidateStore, opts ...Option) *Advisor {
	a := &Advisor{
		candidates: candidates,
		store:      store,
		logger:     zap.NewNop(),
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CandidateResponse answers an interview question in the candidate's voice.
func (a *Advisor) CandidateResponse(ctx context.Context, candidate types.Candidate, question, responseType string) (string, error) {
	switch responseType {
	case ResponseInterview, ResponseDetailed, ResponseAnimated:
	default:
		return "", fmt.Errorf("%w: responseType must be one of: interview, detailed, animated", ErrInvalidInput)
	}

	text, err := a.complete(ctx, "candidate-"+responseType, candidateData(candidate, question), candidateMaxTokens)
	if err != nil {
		a.logger.Warn("candidate response generation failed, using fallback",
			zap.String("response_type", responseType),
			zap.Error(err))
		return FallbackCandidateResponse(candidate, question), nil
	}
	if text == "" {
		return emptyCandidateText, nil
	}
	return text, nil
}

// BiasReflection asks the player to reflect on one selection against the passed-over candidates.
func (a *Advisor) BiasReflection(ctx context.Context, selected types.Candidate, others []types.Candidate) (string, error) {
	lines := make([]string, 0, len(others))
	for i, c := range others {
		lines = append(lines, fmt.Sprintf("Not selected candidate #%d:\n%s", i+1, reflectionSummary(c)))
	}
	data := map[string]string{
		"Selected": "Selected candidate:\n" + reflectionSummary(selected),
		"Others":   strings.Join(lines, "\n"),
	}

	text, err := a.complete(ctx, "bias-reflection", data, reflectionMaxTokens)
	if err != nil {
		a.logger.Warn("bias reflection generation failed, using fallback", zap.Error(err))
		return FallbackReflection(selected, others), nil
	}
	if text == "" {
		return emptyReflectionText, nil
	}
	return text, nil
}

// BiasFlashcard returns a short awareness nudge about biasPattern.
func (a *Advisor) BiasFlashcard(ctx context.Context, biasPattern string) (string, error) {
	text, err := a.complete(ctx, "bias-flashcard", map[string]string{"BiasPattern": biasPattern}, flashcardMaxTokens)
	if err != nil {
		a.logger.Warn("bias flashcard generation failed, using fallback",
			zap.String("bias_pattern", biasPattern),
			zap.Error(err))
		return FallbackFlashcard(biasPattern), nil
	}
	if text == "" {
		return defaultFlashcard, nil
	}
	return text, nil
}

// GenerateCandidate produces one candidate for jobPosition and stores it so it carries an id.
func (a *Advisor) GenerateCandidate(ctx context.Context, jobPosition string) (*types.Candidate, error) {
	generated := a.candidates.Generate(ctx, jobPosition, 1)
	if len(generated) == 0 {
		return nil, fmt.Errorf("no candidate generated for %q", jobPosition)
	}
	stored, err := a.store.CreateCandidate(ctx, generated[0])
	if err != nil {
		return nil, fmt.Errorf("failed to store generated candidate: %w", err)
	}
	return stored, nil
}

// complete runs a free-text prompt pair from the advisor prompt file.
func (a *Advisor) complete(ctx context.Context, key string, data map[string]string, maxTokens int32) (string, error) {
	if a.client == nil {
		return "", ErrNoProvider
	}
	system, prompt, err := prompts.Pair(promptFile, key, data)
	if err != nil {
		return "", fmt.Errorf("failed to load prompt: %w", err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	text, err := a.client.GenerateContent(ctx, llm.Request{
		System:      system,
		Prompt:      prompt,
		Tier:        llm.TierLite,
		MaxTokens:   maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (a *Advisor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}

func candidateData(c types.Candidate, question string) map[string]string {
	return map[string]string{
		"Title":          c.CurrentTitle("Software Developer"),
		"Name":           c.Name,
		"Age":            strconv.Itoa(c.Age),
		"Education":      c.Education,
		"Experience":     strconv.Itoa(c.Experience),
		"SoftSkill":      c.SoftSkill,
		"SoftSkillLower": strings.ToLower(c.SoftSkill),
		"KeyStrength":    c.KeyStrength,
		"Question":       question,
	}
}

func reflectionSummary(c types.Candidate) string {
	return fmt.Sprintf("- Name: %s\n- Age: %d\n- Gender: %s\n- Education: %s from %s\n- Experience: %d years",
		c.Name, c.Age, c.Gender, c.Education, c.PrimaryInstitution("University"), c.Experience)
}
