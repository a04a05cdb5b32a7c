// Package store persists game sessions, decisions and candidates.
//
// Repository holds the game rules (defaults, monotonic rounds, id counters,
// selected-candidate accumulation) and serializes mutations. Backends only
// read and write records.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

// Backend stores records. Lookups of absent records return nil, nil.
type Backend interface {
	// PutSession inserts or replaces a session.
	PutSession(ctx context.Context, session *types.GameSession) error
	GetSession(ctx context.Context, sessionID string) (*types.GameSession, error)

	// AppendDecision stores a decision whose ID has already been assigned.
	AppendDecision(ctx context.Context, decision *types.GameDecision) error
	// ListDecisions returns a session's decisions in insertion order.
	ListDecisions(ctx context.Context, sessionID string) ([]types.GameDecision, error)
	DeleteDecisions(ctx context.Context, sessionID string) error
	MaxDecisionID(ctx context.Context) (int64, error)

	// PutCandidate inserts or replaces a candidate by ID.
	PutCandidate(ctx context.Context, candidate *types.Candidate) error
	GetCandidate(ctx context.Context, id int64) (*types.Candidate, error)
	MaxCandidateID(ctx context.Context) (int64, error)

	Ping(ctx context.Context) error
	Close() error
}

// Repository is the single entry point to session storage. Create one per process.
type Repository struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	mu              sync.Mutex
	nextCandidateID int64
	nextDecisionID  int64
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithSessionIDFunc overrides how session ids are generated when a caller omits one.
func WithSessionIDFunc(fn func() string) Option {
	return func(r *Repository) { r.newID = fn }
}

// NewRepository wraps backend and seeds the id counters from its contents.
func NewRepository(ctx context.Context, backend Backend, opts ...Option) (*Repository, error) {
	r := &Repository{
		backend: backend,
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}

	maxCandidate, err := backend.MaxCandidateID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read candidate counter: %w", err)
	}
	maxDecision, err := backend.MaxDecisionID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read decision counter: %w", err)
	}
	r.nextCandidateID = maxCandidate + 1
	r.nextDecisionID = maxDecision + 1
	return r, nil
}

// CreateSession stores a new session, applying defaults for omitted fields.
// An existing session with the same id is replaced and its decision log cleared.
func (r *Repository) CreateSession(ctx context.Context, req types.CreateSessionRequest) (*types.GameSession, error) {
	session := &types.GameSession{
		SessionID:          req.SessionID,
		CurrentRound:       1,
		MaxRounds:          types.DefaultMaxRounds,
		Level:              types.DefaultLevel,
		SelectedCandidates: []types.Candidate{},
		CreatedAt:          r.now().UTC(),
	}
	if session.SessionID == "" {
		session.SessionID = r.newID()
	}
	if req.CurrentRound != nil {
		session.CurrentRound = *req.CurrentRound
	}
	if req.MaxRounds != nil {
		session.MaxRounds = *req.MaxRounds
	}
	if req.Level != "" {
		session.Level = req.Level
	}
	if req.BiasScore != nil {
		session.BiasScore = *req.BiasScore
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.PutSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := r.backend.DeleteDecisions(ctx, session.SessionID); err != nil {
		return nil, fmt.Errorf("failed to reset decisions: %w", err)
	}
	return session, nil
}

// GetSession returns the session, or nil if it does not exist.
func (r *Repository) GetSession(ctx context.Context, sessionID string) (*types.GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.GetSession(ctx, sessionID)
}

// UpdateSessionRound raises the current round to round. Lower or equal rounds
// leave the session unchanged. Returns nil if the session does not exist.
func (r *Repository) UpdateSessionRound(ctx context.Context, sessionID string, round int) (*types.GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.backend.GetSession(ctx, sessionID)
	if err != nil || session == nil {
		return nil, err
	}
	if round <= session.CurrentRound {
		return session, nil
	}
	session.CurrentRound = round
	if err := r.backend.PutSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update round: %w", err)
	}
	return session, nil
}

// CompleteSession stamps the session's completion time. Returns nil if the session does not exist.
func (r *Repository) CompleteSession(ctx context.Context, sessionID string) (*types.GameSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.backend.GetSession(ctx, sessionID)
	if err != nil || session == nil {
		return nil, err
	}
	now := r.now().UTC()
	session.CompletedAt = &now
	if err := r.backend.PutSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}
	return session, nil
}

// CreateDecision appends a decision to the session log and appends the
// selected candidate to the session's selected candidates. The candidate is
// appended even if it was already selected; readers deduplicate by id.
// A decision for an unknown candidate is stored without touching the session.
func (r *Repository) CreateDecision(ctx context.Context, decision types.GameDecision) (*types.GameDecision, error) {
	if decision.MainInfluence == "" {
		decision.MainInfluence = types.InfluenceNotSpecified
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	decision.ID = r.nextDecisionID
	decision.CreatedAt = r.now().UTC()
	if err := r.backend.AppendDecision(ctx, &decision); err != nil {
		return nil, fmt.Errorf("failed to store decision: %w", err)
	}
	r.nextDecisionID++

	session, err := r.backend.GetSession(ctx, decision.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return &decision, nil
	}

	candidate, err := r.backend.GetCandidate(ctx, decision.SelectedCandidateID)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		r.logger.Warn("selected candidate not found, decision stored without updating session",
			zap.String("session_id", decision.SessionID),
			zap.Int64("candidate_id", decision.SelectedCandidateID))
		return &decision, nil
	}
	if candidate.MainInfluence == "" {
		candidate.MainInfluence = string(decision.MainInfluence)
	}

	session.SelectedCandidates = append(session.SelectedCandidates, *candidate)
	if err := r.backend.PutSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update selected candidates: %w", err)
	}
	return &decision, nil
}

// ListDecisions returns the session's decisions, or an empty slice for an unknown session.
func (r *Repository) ListDecisions(ctx context.Context, sessionID string) ([]types.GameDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	decisions, err := r.backend.ListDecisions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if decisions == nil {
		decisions = []types.GameDecision{}
	}
	return decisions, nil
}

// CreateCandidate upserts a candidate. A zero ID takes the next counter value;
// a supplied ID advances the counter past it.
func (r *Repository) CreateCandidate(ctx context.Context, candidate types.Candidate) (*types.Candidate, error) {
	candidate.Normalize()

	r.mu.Lock()
	defer r.mu.Unlock()

	if candidate.ID == 0 {
		candidate.ID = r.nextCandidateID
	}
	if err := r.backend.PutCandidate(ctx, &candidate); err != nil {
		return nil, fmt.Errorf("failed to store candidate: %w", err)
	}
	if candidate.ID >= r.nextCandidateID {
		r.nextCandidateID = candidate.ID + 1
	}
	return &candidate, nil
}

// CreateCandidates stores each candidate in order and returns them with ids assigned.
func (r *Repository) CreateCandidates(ctx context.Context, candidates []types.Candidate) ([]types.Candidate, error) {
	out := make([]types.Candidate, 0, len(candidates))
	for _, c := range candidates {
		stored, err := r.CreateCandidate(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, *stored)
	}
	return out, nil
}

// GetCandidate returns the candidate, or nil if it does not exist.
func (r *Repository) GetCandidate(ctx context.Context, id int64) (*types.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.GetCandidate(ctx, id)
}

// Ping checks the backend is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.backend.Ping(ctx)
}

// Close releases the backend.
func (r *Repository) Close() error {
	return r.backend.Close()
}
