package dashboard

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/hiring-bias-game/internal/insights"
	"github.com/jonathan/hiring-bias-game/internal/types"
)

// ErrRoundOutOfRange is returned when a what-if round has no selected candidate.
var ErrRoundOutOfRange = errors.New("round out of range")

// DecisionSource lists a session's recorded decisions.
type DecisionSource interface {
	ListDecisions(ctx context.Context, sessionID string) ([]types.GameDecision, error)
}

// CandidateSource generates candidates for a job position.
type CandidateSource interface {
	Generate(ctx context.Context, jobPosition string, count int) []types.Candidate
}

// PositionFunc picks the job position to regenerate for a round.
type PositionFunc func(round int, current types.Candidate) string

// InfluenceTally is the share of each decision influence category.
type InfluenceTally struct {
	Education     Bucket `json:"education"`
	Experience    Bucket `json:"experience"`
	Gender        Bucket `json:"gender"`
	Age           Bucket `json:"age"`
	Communication Bucket `json:"communication"`
	Skills        Bucket `json:"skills"`
}

// Total is the number of tallied influences.
func (t InfluenceTally) Total() int {
	return t.Education.Count + t.Experience.Count + t.Gender.Count + t.Age.Count + t.Communication.Count + t.Skills.Count
}

// Report is the full dashboard for a session.
type Report struct {
	SessionID        string                `json:"sessionId"`
	Level            string                `json:"level"`
	Final            bool                  `json:"final"`
	Team             []types.Candidate     `json:"team"`
	Gender           GenderDistribution    `json:"genderDistribution"`
	Age              AgeDistribution       `json:"ageDistribution"`
	Education        EducationDistribution `json:"educationDistribution"`
	PerformanceScore int                   `json:"performanceScore"`
	Influences       InfluenceTally        `json:"decisionInfluences"`
	Insights         []types.BiasInsight   `json:"biasInsights"`
}

// WhatIfResult compares the team with one round's candidate swapped for an alternative.
type WhatIfResult struct {
	Round            int             `json:"round"`
	JobPosition      string          `json:"jobPosition"`
	Original         types.Candidate `json:"original"`
	Alternative      types.Candidate `json:"alternative"`
	DiversityChange  int             `json:"diversityChange"`
	ExperienceChange float64         `json:"experienceChange"`
	InnovationChange int             `json:"innovationChange"`
}

// Aggregator builds dashboards and runs what-if simulations.
type Aggregator struct {
	decisions DecisionSource
	generator CandidateSource
	engine    *insights.Engine
	position  PositionFunc
	logger    *zap.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithPositionFunc overrides how the what-if simulator picks a job position.
func WithPositionFunc(fn PositionFunc) Option {
	return func(a *Aggregator) {
		if fn != nil {
			a.position = fn
		}
	}
}

// New creates an Aggregator. decisions may be nil when no decision log is available.
func New(decisions DecisionSource, generator CandidateSource, engine *insights.Engine, opts ...Option) *Aggregator {
	if engine == nil {
		engine = insights.NewEngine()
	}
	a := &Aggregator{
		decisions: decisions,
		generator: generator,
		engine:    engine,
		position:  TitlePosition(nil),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Influences tallies the candidates' main influences. When none are tagged it
// falls back to the session's decision log, and then to an all-zero tally.
func (a *Aggregator) Influences(ctx context.Context, sessionID string, candidates []types.Candidate) InfluenceTally {
	counts := make(map[types.Influence]int)
	for _, c := range Dedupe(candidates) {
		counts[types.Influence(strings.ToLower(c.MainInfluence))]++
	}
	if tally := newInfluenceTally(counts); tally.Total() > 0 {
		return tally
	}

	if a.decisions == nil || sessionID == "" {
		return newInfluenceTally(nil)
	}
	decisions, err := a.decisions.ListDecisions(ctx, sessionID)
	if err != nil {
		a.logger.Warn("failed to load decisions for influence tally",
			zap.String("session_id", sessionID), zap.Error(err))
		return newInfluenceTally(nil)
	}
	counts = make(map[types.Influence]int)
	for _, d := range decisions {
		counts[types.Influence(strings.ToLower(string(d.MainInfluence)))]++
	}
	return newInfluenceTally(counts)
}

func newInfluenceTally(counts map[types.Influence]int) InfluenceTally {
	total := counts[types.InfluenceEducation] + counts[types.InfluenceExperience] + counts[types.InfluenceGender] +
		counts[types.InfluenceAge] + counts[types.InfluenceCommunication] + counts[types.InfluenceSkills]
	return InfluenceTally{
		Education:     bucket(counts[types.InfluenceEducation], total),
		Experience:    bucket(counts[types.InfluenceExperience], total),
		Gender:        bucket(counts[types.InfluenceGender], total),
		Age:           bucket(counts[types.InfluenceAge], total),
		Communication: bucket(counts[types.InfluenceCommunication], total),
		Skills:        bucket(counts[types.InfluenceSkills], total),
	}
}

// Build composes the dashboard for session.
func (a *Aggregator) Build(ctx context.Context, session *types.GameSession) *Report {
	team := Dedupe(session.SelectedCandidates)
	return &Report{
		SessionID:        session.SessionID,
		Level:            session.Level,
		Final:            session.CompletedAt != nil,
		Team:             team,
		Gender:           Genders(team),
		Age:              Ages(team),
		Education:        Educations(team),
		PerformanceScore: PerformanceScore(team),
		Influences:       a.Influences(ctx, session.SessionID, session.SelectedCandidates),
		Insights:         a.engine.Generate(team),
	}
}

// WhatIf generates one alternative for round's position and reports how the
// team's scores change with it swapped in. selected is not modified.
func (a *Aggregator) WhatIf(ctx context.Context, selected []types.Candidate, round int) (*WhatIfResult, error) {
	team := Dedupe(selected)
	if round < 0 || round >= len(team) {
		return nil, fmt.Errorf("%w: %d (team size %d)", ErrRoundOutOfRange, round, len(team))
	}

	position := a.position(round, team[round])
	generated := a.generator.Generate(ctx, position, 1)
	if len(generated) == 0 {
		return nil, fmt.Errorf("no alternative generated for %q", position)
	}
	return compare(team, round, position, generated[0]), nil
}

// compare swaps alternative into a copy of team at round.
func compare(team []types.Candidate, round int, position string, alternative types.Candidate) *WhatIfResult {
	simulated := make([]types.Candidate, len(team))
	copy(simulated, team)
	simulated[round] = alternative

	before, after := score(team), score(simulated)
	return &WhatIfResult{
		Round:            round,
		JobPosition:      position,
		Original:         team[round],
		Alternative:      alternative,
		DiversityChange:  (after.diversityCount - before.diversityCount) * 5,
		ExperienceChange: math.Round((after.avgExperience-before.avgExperience)*10) / 10,
		InnovationChange: int(math.Round(after.performance - before.performance)),
	}
}

// Simulator holds the what-if state for one team and re-runs when the round changes.
type Simulator struct {
	agg  *Aggregator
	team []types.Candidate

	mu     sync.Mutex
	round  int
	result *WhatIfResult
}

// NewSimulator creates a simulator for selected and runs it for round 0.
// An empty team yields a simulator with no result.
func (a *Aggregator) NewSimulator(ctx context.Context, selected []types.Candidate) (*Simulator, error) {
	s := &Simulator{agg: a, team: Dedupe(selected), round: -1}
	if len(s.team) == 0 {
		return s, nil
	}
	if _, err := s.SelectRound(ctx, 0); err != nil {
		return nil, err
	}
	return s, nil
}

// SelectRound switches to round, regenerating the alternative when the round changed.
func (s *Simulator) SelectRound(ctx context.Context, round int) (*WhatIfResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if round == s.round && s.result != nil {
		return s.result, nil
	}
	return s.run(ctx, round)
}

// Regenerate draws a new alternative for the current round.
func (s *Simulator) Regenerate(ctx context.Context) (*WhatIfResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, max(s.round, 0))
}

// Result returns the latest simulation, or nil before the first run.
func (s *Simulator) Result() *WhatIfResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Round returns the selected round, or -1 before the first run.
func (s *Simulator) Round() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.round
}

func (s *Simulator) run(ctx context.Context, round int) (*WhatIfResult, error) {
	res, err := s.agg.WhatIf(ctx, s.team, round)
	if err != nil {
		return nil, err
	}
	s.round = round
	s.result = res
	return res, nil
}

// TitlePosition derives the position from the round candidate's current title.
// A title naming one of positions maps to it; an empty title cycles through
// positions by round; any other title is used as-is.
func TitlePosition(positions []string) PositionFunc {
	return func(round int, current types.Candidate) string {
		title := current.CurrentTitle("")
		if title == "" {
			if len(positions) == 0 {
				return ""
			}
			return positions[round%len(positions)]
		}
		best := ""
		lower := strings.ToLower(title)
		for _, p := range positions {
			if strings.Contains(lower, strings.ToLower(p)) && len(p) > len(best) {
				best = p
			}
		}
		if best != "" {
			return best
		}
		return title
	}
}
