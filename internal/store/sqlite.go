package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

//go:embed migrations/sqlite.sql
var sqliteSchema string

// SQLiteBackend stores records in a local SQLite file. Times are unix nanoseconds.
type SQLiteBackend struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath and applies the schema.
func OpenSQLite(dbPath string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Repository serializes writes; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (s *SQLiteBackend) PutSession(ctx context.Context, gs *types.GameSession) error {
	selected, err := json.Marshal(gs.SelectedCandidates)
	if err != nil {
		return fmt.Errorf("marshal selected candidates: %w", err)
	}
	var completedAt any
	if gs.CompletedAt != nil {
		completedAt = gs.CompletedAt.UnixNano()
	}

	query := `
	INSERT INTO game_sessions (session_id, current_round, max_rounds, level, bias_score, selected_candidates, completed_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(session_id) DO UPDATE SET
		current_round = excluded.current_round,
		max_rounds = excluded.max_rounds,
		level = excluded.level,
		bias_score = excluded.bias_score,
		selected_candidates = excluded.selected_candidates,
		completed_at = excluded.completed_at,
		created_at = excluded.created_at`

	_, err = s.db.ExecContext(ctx, query,
		gs.SessionID, gs.CurrentRound, gs.MaxRounds, gs.Level, gs.BiasScore,
		string(selected), completedAt, gs.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) GetSession(ctx context.Context, sessionID string) (*types.GameSession, error) {
	query := `
		SELECT session_id, current_round, max_rounds, level, bias_score,
		       selected_candidates, completed_at, created_at
		FROM game_sessions WHERE session_id = ?`

	var gs types.GameSession
	var selected string
	var completedAt sql.NullInt64
	var createdAt int64
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&gs.SessionID, &gs.CurrentRound, &gs.MaxRounds, &gs.Level, &gs.BiasScore,
		&selected, &completedAt, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	if err := json.Unmarshal([]byte(selected), &gs.SelectedCandidates); err != nil {
		return nil, fmt.Errorf("unmarshal selected candidates: %w", err)
	}
	if gs.SelectedCandidates == nil {
		gs.SelectedCandidates = []types.Candidate{}
	}
	if completedAt.Valid {
		t := time.Unix(0, completedAt.Int64).UTC()
		gs.CompletedAt = &t
	}
	gs.CreatedAt = time.Unix(0, createdAt).UTC()
	return &gs, nil
}

func (s *SQLiteBackend) AppendDecision(ctx context.Context, d *types.GameDecision) error {
	query := `
	INSERT INTO game_decisions (id, session_id, round_number, selected_candidate_id, main_influence, reflection_notes, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.SessionID, d.RoundNumber, d.SelectedCandidateID,
		string(d.MainInfluence), d.ReflectionNotes, d.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert decision: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) ListDecisions(ctx context.Context, sessionID string) ([]types.GameDecision, error) {
	query := `
		SELECT id, session_id, round_number, selected_candidate_id, main_influence, reflection_notes, created_at
		FROM game_decisions WHERE session_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	decisions := []types.GameDecision{}
	for rows.Next() {
		var d types.GameDecision
		var influence string
		var createdAt int64
		if err := rows.Scan(&d.ID, &d.SessionID, &d.RoundNumber, &d.SelectedCandidateID, &influence, &d.ReflectionNotes, &createdAt); err != nil {
			return nil, fmt.Errorf("scan decision row: %w", err)
		}
		d.MainInfluence = types.Influence(influence)
		d.CreatedAt = time.Unix(0, createdAt).UTC()
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

func (s *SQLiteBackend) DeleteDecisions(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM game_decisions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete decisions: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) MaxDecisionID(ctx context.Context) (int64, error) {
	return s.maxID(ctx, `SELECT COALESCE(MAX(id), 0) FROM game_decisions`)
}

func (s *SQLiteBackend) PutCandidate(ctx context.Context, c *types.Candidate) error {
	profile, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal candidate: %w", err)
	}
	query := `
	INSERT INTO candidates (id, profile) VALUES (?, ?)
	ON CONFLICT(id) DO UPDATE SET profile = excluded.profile`

	if _, err := s.db.ExecContext(ctx, query, c.ID, string(profile)); err != nil {
		return fmt.Errorf("upsert candidate: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) GetCandidate(ctx context.Context, id int64) (*types.Candidate, error) {
	var profile string
	err := s.db.QueryRowContext(ctx, `SELECT profile FROM candidates WHERE id = ?`, id).Scan(&profile)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan candidate row: %w", err)
	}
	var c types.Candidate
	if err := json.Unmarshal([]byte(profile), &c); err != nil {
		return nil, fmt.Errorf("unmarshal candidate: %w", err)
	}
	return &c, nil
}

func (s *SQLiteBackend) MaxCandidateID(ctx context.Context) (int64, error) {
	return s.maxID(ctx, `SELECT COALESCE(MAX(id), 0) FROM candidates`)
}

func (s *SQLiteBackend) maxID(ctx context.Context, query string) (int64, error) {
	var id int64
	if err := s.db.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return 0, fmt.Errorf("read max id: %w", err)
	}
	return id, nil
}

// Ping verifies database connectivity.
func (s *SQLiteBackend) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
