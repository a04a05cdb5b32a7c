package store

import (
	"context"
	"sync"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

// MemoryBackend keeps records in maps. Nothing survives a restart.
type MemoryBackend struct {
	mu         sync.RWMutex
	sessions   map[string]*types.GameSession
	decisions  map[string][]types.GameDecision
	candidates map[int64]*types.Candidate
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *MemoryBackend {
	return &MemoryBackend{
		sessions:   make(map[string]*types.GameSession),
		decisions:  make(map[string][]types.GameDecision),
		candidates: make(map[int64]*types.Candidate),
	}
}

func (m *MemoryBackend) PutSession(_ context.Context, session *types.GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.SessionID] = cloneSession(session)
	return nil
}

func (m *MemoryBackend) GetSession(_ context.Context, sessionID string) (*types.GameSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return cloneSession(s), nil
}

func (m *MemoryBackend) AppendDecision(_ context.Context, decision *types.GameDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions[decision.SessionID] = append(m.decisions[decision.SessionID], *decision)
	return nil
}

func (m *MemoryBackend) ListDecisions(_ context.Context, sessionID string) ([]types.GameDecision, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]types.GameDecision{}, m.decisions[sessionID]...), nil
}

func (m *MemoryBackend) DeleteDecisions(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.decisions, sessionID)
	return nil
}

func (m *MemoryBackend) MaxDecisionID(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var maxID int64
	for _, ds := range m.decisions {
		for _, d := range ds {
			maxID = max(maxID, d.ID)
		}
	}
	return maxID, nil
}

func (m *MemoryBackend) PutCandidate(_ context.Context, candidate *types.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *candidate
	m.candidates[c.ID] = &c
	return nil
}

func (m *MemoryBackend) GetCandidate(_ context.Context, id int64) (*types.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.candidates[id]
	if !ok {
		return nil, nil
	}
	out := *c
	return &out, nil
}

func (m *MemoryBackend) MaxCandidateID(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var maxID int64
	for id := range m.candidates {
		maxID = max(maxID, id)
	}
	return maxID, nil
}

func (m *MemoryBackend) Ping(context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }

func cloneSession(s *types.GameSession) *types.GameSession {
	out := *s
	out.SelectedCandidates = append([]types.Candidate{}, s.SelectedCandidates...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}
