package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/jonathan/hiring-bias-game/internal/dashboard"
	"github.com/jonathan/hiring-bias-game/internal/insights"
	"github.com/jonathan/hiring-bias-game/internal/store"
	"github.com/jonathan/hiring-bias-game/internal/types"
)

// DefaultCandidatesPerRound is the size of each round's candidate pool.
const DefaultCandidatesPerRound = 3

var (
	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrCandidateNotInRound is returned when selecting a candidate outside the current pool.
	ErrCandidateNotInRound = errors.New("candidate is not part of the current round")
)

// RoundView is what the player sees for the current round.
type RoundView struct {
	SessionID   string            `json:"sessionId"`
	State       State             `json:"state"`
	Round       int               `json:"round"`
	MaxRounds   int               `json:"maxRounds"`
	Department  string            `json:"department"`
	JobPosition string            `json:"jobPosition"`
	Candidates  []types.Candidate `json:"candidates"`
	Selected    *types.Candidate  `json:"selected,omitempty"`
}

// ReflectResult reports the recorded decision and where the game moved next.
type ReflectResult struct {
	SessionID string              `json:"sessionId"`
	State     State               `json:"state"`
	Round     int                 `json:"round"`
	Final     bool                `json:"final"`
	Decision  *types.GameDecision `json:"decision"`
	Popup     *Popup              `json:"popup,omitempty"`
}

// play is the in-process state of one session.
type play struct {
	mu      sync.Mutex
	ctrl    *Controller
	round   int // round the pool was generated for, 0 when empty
	pool    []types.Candidate
	sim     *dashboard.Simulator
	simSize int
}

// Service runs games on top of the repository. Controllers live in memory and
// are restored from the stored session after a restart.
type Service struct {
	repo      *store.Repository
	generator dashboard.CandidateSource
	agg       *dashboard.Aggregator
	logger    *zap.Logger
	perRound  int
	maxRounds int

	mu    sync.Mutex
	games map[string]*play
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithCandidatesPerRound overrides the pool size.
func WithCandidatesPerRound(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.perRound = n
		}
	}
}

// WithMaxRounds sets the round count for sessions created without one.
func WithMaxRounds(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRounds = n
		}
	}
}

// NewService wires a game service. What-if alternatives are drawn for the
// position that was rotated in for the swapped round.
func NewService(repo *store.Repository, generator dashboard.CandidateSource, engine *insights.Engine, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		generator: generator,
		logger:    zap.NewNop(),
		perRound:  DefaultCandidatesPerRound,
		maxRounds: types.DefaultMaxRounds,
		games:     make(map[string]*play),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.agg = dashboard.New(repo, generator, engine,
		dashboard.WithLogger(s.logger),
		dashboard.WithPositionFunc(RoundPosition),
	)
	return s
}

// RoundPosition maps a zero-based team index to the position rotated in for that round.
func RoundPosition(round int, _ types.Candidate) string {
	_, position := PositionForRound(round + 1)
	return position
}

// Aggregator exposes the dashboard aggregator used by the service.
func (s *Service) Aggregator() *dashboard.Aggregator {
	return s.agg
}

// StartGame creates a session and returns its first round.
func (s *Service) StartGame(ctx context.Context, req types.CreateSessionRequest) (*RoundView, error) {
	session, err := s.repo.CreateSession(ctx, s.withDefaults(req))
	if err != nil {
		return nil, err
	}

	p := &play{ctrl: RestoreController(session)}
	s.mu.Lock()
	s.games[session.SessionID] = p
	s.mu.Unlock()

	s.logger.Info("game started",
		zap.String("session_id", session.SessionID),
		zap.Int("max_rounds", session.MaxRounds))

	p.mu.Lock()
	defer p.mu.Unlock()
	return s.view(ctx, session.SessionID, p)
}

// CurrentRound returns the current round, generating and storing its pool on first access.
func (s *Service) CurrentRound(ctx context.Context, sessionID string) (*RoundView, error) {
	p, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return s.view(ctx, sessionID, p)
}

// Select picks a candidate from the current pool.
func (s *Service) Select(ctx context.Context, sessionID string, candidateID int64) (*RoundView, error) {
	p, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl.State() != StateCandidateSelection {
		return nil, p.ctrl.Select(types.Candidate{})
	}
	if err := s.ensurePool(ctx, p); err != nil {
		return nil, err
	}
	for _, c := range p.pool {
		if c.ID == candidateID {
			if err := p.ctrl.Select(c); err != nil {
				return nil, err
			}
			return s.view(ctx, sessionID, p)
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrCandidateNotInRound, candidateID)
}

// Reflect records the decision for the pending selection and advances the game.
// The final round completes the session.
func (s *Service) Reflect(ctx context.Context, sessionID string, req types.ReflectRequest) (*ReflectResult, error) {
	p, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	selected := p.ctrl.Selected()
	if p.ctrl.State() != StateReflection || selected == nil {
		_, err := p.ctrl.Reflect()
		return nil, err
	}
	round := p.ctrl.Round()

	candidate := *selected
	candidate.MainInfluence = string(req.MainInfluence)
	if _, err := s.repo.CreateCandidate(ctx, candidate); err != nil {
		return nil, err
	}
	decision, err := s.repo.CreateDecision(ctx, types.GameDecision{
		SessionID:           sessionID,
		RoundNumber:         round,
		SelectedCandidateID: candidate.ID,
		MainInfluence:       req.MainInfluence,
		ReflectionNotes:     req.ReflectionNotes,
	})
	if err != nil {
		return nil, err
	}

	final, err := p.ctrl.Reflect()
	if err != nil {
		return nil, err
	}
	if final {
		_, err = s.repo.CompleteSession(ctx, sessionID)
	} else {
		_, err = s.repo.UpdateSessionRound(ctx, sessionID, p.ctrl.Round())
	}
	if err != nil {
		return nil, err
	}
	p.pool, p.round = nil, 0
	p.sim = nil

	s.logger.Info("round recorded",
		zap.String("session_id", sessionID),
		zap.Int("round", round),
		zap.Int64("candidate_id", candidate.ID),
		zap.String("influence", string(req.MainInfluence)),
		zap.Bool("final", final))

	res := &ReflectResult{
		SessionID: sessionID,
		State:     p.ctrl.State(),
		Round:     p.ctrl.Round(),
		Final:     final,
		Decision:  decision,
	}
	if popup, ok := PopupForRound(round); ok {
		res.Popup = &popup
	}
	return res, nil
}

// ShowDashboard opens the interim dashboard and returns it.
func (s *Service) ShowDashboard(ctx context.Context, sessionID string) (*dashboard.Report, error) {
	p, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	err = p.ctrl.ShowDashboard()
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return s.Dashboard(ctx, sessionID)
}

// Continue leaves the interim dashboard.
func (s *Service) Continue(ctx context.Context, sessionID string) (*RoundView, error) {
	p, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ctrl.Continue(); err != nil {
		return nil, err
	}
	return s.view(ctx, sessionID, p)
}

// Reset restarts the session at round 1, clearing its selections and decisions.
func (s *Service) Reset(ctx context.Context, sessionID string) (*RoundView, error) {
	p, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	maxRounds := session.MaxRounds
	if _, err := s.repo.CreateSession(ctx, types.CreateSessionRequest{
		SessionID: sessionID,
		MaxRounds: &maxRounds,
		Level:     session.Level,
	}); err != nil {
		return nil, err
	}

	p.ctrl.Reset()
	p.round, p.pool = 0, nil
	p.sim, p.simSize = nil, 0
	s.logger.Info("game reset", zap.String("session_id", sessionID))
	return s.view(ctx, sessionID, p)
}

func (s *Service) withDefaults(req types.CreateSessionRequest) types.CreateSessionRequest {
	if req.MaxRounds == nil {
		n := s.maxRounds
		req.MaxRounds = &n
	}
	return req
}

// CreateSession stores a session without generating its first round.
// Any in-process state for a replaced session is dropped.
func (s *Service) CreateSession(ctx context.Context, req types.CreateSessionRequest) (*types.GameSession, error) {
	session, err := s.repo.CreateSession(ctx, s.withDefaults(req))
	if err != nil {
		return nil, err
	}
	s.forget(session.SessionID)
	return session, nil
}

// Complete marks the session completed. Later calls restore it on the final dashboard.
func (s *Service) Complete(ctx context.Context, sessionID string) (*types.GameSession, error) {
	session, err := s.repo.CompleteSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	s.forget(sessionID)
	return session, nil
}

// RecordDecision stores a decision made outside the round flow. An attached
// candidate is stored first unless one with the same id exists, and the
// session round is raised to the decision's round.
func (s *Service) RecordDecision(ctx context.Context, req types.DecisionRequest) (*types.GameDecision, error) {
	if req.Candidate != nil {
		existing, err := s.repo.GetCandidate(ctx, req.Candidate.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			if _, err := s.repo.CreateCandidate(ctx, *req.Candidate); err != nil {
				s.logger.Warn("failed to store decision candidate, recording decision anyway",
					zap.String("session_id", req.SessionID),
					zap.Int64("candidate_id", req.Candidate.ID),
					zap.Error(err))
			}
		}
	}

	decision, err := s.repo.CreateDecision(ctx, types.GameDecision{
		SessionID:           req.SessionID,
		RoundNumber:         *req.RoundNumber,
		SelectedCandidateID: req.SelectedCandidateID,
		MainInfluence:       req.MainInfluence,
		ReflectionNotes:     req.ReflectionNotes,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.UpdateSessionRound(ctx, req.SessionID, *req.RoundNumber); err != nil {
		return nil, err
	}
	s.forget(req.SessionID)
	return decision, nil
}

// Dashboard builds the dashboard for the session's selections so far.
func (s *Service) Dashboard(ctx context.Context, sessionID string) (*dashboard.Report, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.agg.Build(ctx, session), nil
}

// WhatIf swaps the candidate picked in round (zero-based) for a fresh one.
// Repeated calls for the same round return the same alternative until regenerate is set.
func (s *Service) WhatIf(ctx context.Context, sessionID string, round int, regenerate bool) (*dashboard.WhatIfResult, error) {
	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	team := dashboard.Dedupe(session.SelectedCandidates)
	if len(team) == 0 {
		return s.agg.WhatIf(ctx, team, round)
	}
	if p.sim == nil || p.simSize != len(team) {
		sim, err := s.agg.NewSimulator(ctx, team)
		if err != nil {
			return nil, err
		}
		p.sim, p.simSize = sim, len(team)
	}
	if regenerate && p.sim.Round() == round {
		return p.sim.Regenerate(ctx)
	}
	return p.sim.SelectRound(ctx, round)
}

func (s *Service) session(ctx context.Context, sessionID string) (*types.GameSession, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return session, nil
}

// load returns the session's play, restoring it from the store when unknown.
func (s *Service) load(ctx context.Context, sessionID string) (*play, error) {
	s.mu.Lock()
	p, ok := s.games[sessionID]
	s.mu.Unlock()
	if ok {
		return p, nil
	}

	session, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.games[sessionID]; ok {
		return p, nil
	}
	p = &play{ctrl: RestoreController(session)}
	s.games[sessionID] = p
	return p, nil
}

func (s *Service) forget(sessionID string) {
	s.mu.Lock()
	delete(s.games, sessionID)
	s.mu.Unlock()
}

// ensurePool generates and stores the pool for the controller's round. Caller holds p.mu.
func (s *Service) ensurePool(ctx context.Context, p *play) error {
	round := p.ctrl.Round()
	if p.round == round && len(p.pool) > 0 {
		return nil
	}
	_, position := PositionForRound(round)
	generated := s.generator.Generate(ctx, position, s.perRound)
	stored, err := s.repo.CreateCandidates(ctx, generated)
	if err != nil {
		return err
	}
	p.pool, p.round = stored, round
	return nil
}

// view renders p. Caller holds p.mu.
func (s *Service) view(ctx context.Context, sessionID string, p *play) (*RoundView, error) {
	department, position := PositionForRound(p.ctrl.Round())
	v := &RoundView{
		SessionID:   sessionID,
		State:       p.ctrl.State(),
		Round:       p.ctrl.Round(),
		MaxRounds:   p.ctrl.MaxRounds(),
		Department:  department,
		JobPosition: position,
		Candidates:  []types.Candidate{},
		Selected:    p.ctrl.Selected(),
	}
	switch v.State {
	case StateCandidateSelection, StateReflection:
		if err := s.ensurePool(ctx, p); err != nil {
			return nil, err
		}
		v.Candidates = p.pool
	}
	return v, nil
}
