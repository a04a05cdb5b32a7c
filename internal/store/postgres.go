package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

//go:embed migrations/postgres.sql
var postgresSchema string

// PostgresBackend stores records in PostgreSQL. Selected candidates and
// candidate profiles are kept as JSONB.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool and applies the schema.
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &PostgresBackend{pool: pool}, nil
}

func (p *PostgresBackend) PutSession(ctx context.Context, s *types.GameSession) error {
	selected, err := json.Marshal(s.SelectedCandidates)
	if err != nil {
		return fmt.Errorf("failed to marshal selected candidates: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO game_sessions (session_id, current_round, max_rounds, level, bias_score, selected_candidates, completed_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (session_id) DO UPDATE SET
			current_round = $2, max_rounds = $3, level = $4, bias_score = $5,
			selected_candidates = $6, completed_at = $7, created_at = $8`,
		s.SessionID, s.CurrentRound, s.MaxRounds, s.Level, s.BiasScore, selected, s.CompletedAt, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.SessionID, err)
	}
	return nil
}

func (p *PostgresBackend) GetSession(ctx context.Context, sessionID string) (*types.GameSession, error) {
	var s types.GameSession
	var selected []byte
	err := p.pool.QueryRow(ctx,
		`SELECT session_id, current_round, max_rounds, level, bias_score, selected_candidates, completed_at, created_at
		 FROM game_sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&s.SessionID, &s.CurrentRound, &s.MaxRounds, &s.Level, &s.BiasScore, &selected, &s.CompletedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}
	if err := json.Unmarshal(selected, &s.SelectedCandidates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal selected candidates: %w", err)
	}
	if s.SelectedCandidates == nil {
		s.SelectedCandidates = []types.Candidate{}
	}
	return &s, nil
}

func (p *PostgresBackend) AppendDecision(ctx context.Context, d *types.GameDecision) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO game_decisions (id, session_id, round_number, selected_candidate_id, main_influence, reflection_notes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.SessionID, d.RoundNumber, d.SelectedCandidateID, string(d.MainInfluence), d.ReflectionNotes, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

func (p *PostgresBackend) ListDecisions(ctx context.Context, sessionID string) ([]types.GameDecision, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, session_id, round_number, selected_candidate_id, main_influence, reflection_notes, created_at
		 FROM game_decisions WHERE session_id = $1 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	defer rows.Close()

	decisions := []types.GameDecision{}
	for rows.Next() {
		var d types.GameDecision
		var influence string
		if err := rows.Scan(&d.ID, &d.SessionID, &d.RoundNumber, &d.SelectedCandidateID, &influence, &d.ReflectionNotes, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		d.MainInfluence = types.Influence(influence)
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func (p *PostgresBackend) DeleteDecisions(ctx context.Context, sessionID string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM game_decisions WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to delete decisions: %w", err)
	}
	return nil
}

func (p *PostgresBackend) MaxDecisionID(ctx context.Context) (int64, error) {
	return p.maxID(ctx, `SELECT COALESCE(MAX(id), 0) FROM game_decisions`)
}

func (p *PostgresBackend) PutCandidate(ctx context.Context, c *types.Candidate) error {
	profile, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal candidate: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO candidates (id, profile) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET profile = $2, updated_at = $3`,
		c.ID, profile, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save candidate %d: %w", c.ID, err)
	}
	return nil
}

func (p *PostgresBackend) GetCandidate(ctx context.Context, id int64) (*types.Candidate, error) {
	var profile []byte
	err := p.pool.QueryRow(ctx, `SELECT profile FROM candidates WHERE id = $1`, id).Scan(&profile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate %d: %w", id, err)
	}
	var c types.Candidate
	if err := json.Unmarshal(profile, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidate %d: %w", id, err)
	}
	return &c, nil
}

func (p *PostgresBackend) MaxCandidateID(ctx context.Context) (int64, error) {
	return p.maxID(ctx, `SELECT COALESCE(MAX(id), 0) FROM candidates`)
}

func (p *PostgresBackend) maxID(ctx context.Context, query string) (int64, error) {
	var id int64
	if err := p.pool.QueryRow(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to read max id: %w", err)
	}
	return id, nil
}

func (p *PostgresBackend) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool
func (p *PostgresBackend) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}
