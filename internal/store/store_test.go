package store

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

func intPtr(v int) *int { return &v }

type backendFactory func(t *testing.T) Backend

func backends(t *testing.T) map[string]backendFactory {
	out := map[string]backendFactory{
		"memory": func(*testing.T) Backend { return NewMemory() },
		"sqlite": func(t *testing.T) Backend {
			b, err := OpenSQLite(filepath.Join(t.TempDir(), "game.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })
			return b
		},
	}
	if url := os.Getenv("DATABASE_URL"); url != "" && !testing.Short() {
		out["postgres"] = func(t *testing.T) Backend {
			b, err := ConnectPostgres(context.Background(), url)
			require.NoError(t, err)
			_, err = b.pool.Exec(context.Background(), `TRUNCATE game_sessions, game_decisions, candidates`)
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })
			return b
		}
	}
	return out
}

func newRepo(t *testing.T, factory backendFactory) *Repository {
	t.Helper()
	clock := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	repo, err := NewRepository(context.Background(), factory(t),
		WithClock(func() time.Time { clock = clock.Add(time.Second); return clock }),
		WithSessionIDFunc(func() string { n++; return "generated-" + strconv.Itoa(n) }),
	)
	require.NoError(t, err)
	return repo
}

func forEachBackend(t *testing.T, fn func(t *testing.T, repo *Repository)) {
	for name, factory := range backends(t) {
		t.Run(name, func(t *testing.T) {
			fn(t, newRepo(t, factory))
		})
	}
}

func TestCreateSession_Defaults(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()
		s, err := repo.CreateSession(ctx, types.CreateSessionRequest{})
		require.NoError(t, err)

		assert.Equal(t, "generated-1", s.SessionID)
		assert.Equal(t, 1, s.CurrentRound)
		assert.Equal(t, 5, s.MaxRounds)
		assert.Equal(t, "Novice Recruiter", s.Level)
		assert.Zero(t, s.BiasScore)
		assert.NotNil(t, s.SelectedCandidates)
		assert.Empty(t, s.SelectedCandidates)
		assert.Nil(t, s.CompletedAt)

		got, err := repo.GetSession(ctx, s.SessionID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, s.SessionID, got.SessionID)
		assert.True(t, s.CreatedAt.Equal(got.CreatedAt))
	})
}

func TestCreateSession_SuppliedFields(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository) {
		s, err := repo.CreateSession(context.Background(), types.CreateSessionRequest{
			SessionID: "abc", CurrentRound: intPtr(2), MaxRounds: intPtr(7), Level: "Lead", BiasScore: intPtr(40),
		})
		require.NoError(t, err)
		assert.Equal(t, "abc", s.SessionID)
		assert.Equal(t, 2, s.CurrentRound)
		assert.Equal(t, 7, s.MaxRounds)
		assert.Equal(t, "Lead", s.Level)
		assert.Equal(t, 40, s.BiasScore)
	})
}

func TestCreateSession_OverwritesExisting(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()
		_, err := repo.CreateSession(ctx, types.CreateSessionRequest{SessionID: "dup", MaxRounds: intPtr(3)})
		require.NoError(t, err)
		_, err = repo.CreateDecision(ctx, types.GameDecision{SessionID: "dup", RoundNumber: 1, SelectedCandidateID: 9})
		require.NoError(t, err)

		s, err := repo.CreateSession(ctx, types.CreateSessionRequest{SessionID: "dup"})
		require.NoError(t, err)
		assert.Equal(t, 5, s.MaxRounds)

		decisions, err := repo.ListDecisions(ctx, "dup")
		require.NoError(t, err)
		assert.Empty(t, decisions)
	})
}

func TestGetSession_Absent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository) {
		s, err := repo.GetSession(context.Background(), "missing")
		assert.NoError(t, err)
		assert.Nil(t, s)
	})
}

func TestUpdateSessionRound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()
		_, err := repo.CreateSession(ctx, types.CreateSessionRequest{SessionID: "s"})
		require.NoError(t, err)

		s, err := repo.UpdateSessionRound(ctx, "s", 1)
		require.NoError(t, err)
		assert.Equal(t, 1, s.CurrentRound, "equal round is a no-op")

		s, err = repo.UpdateSessionRound(ctx, "s", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, s.CurrentRound)

		s, err = repo.UpdateSessionRound(ctx, "s", 2)
		require.NoError(t, err)
		assert.Equal(t, 2, s.CurrentRound)

		s, err = repo.UpdateSessionRound(ctx, "s", 0)
		require.NoError(t, err)
		assert.Equal(t, 2, s.CurrentRound, "rounds never decrease")

		got, err := repo.GetSession(ctx, "s")
		require.NoError(t, err)
		assert.Equal(t, 2, got.CurrentRound)

		s, err = repo.UpdateSessionRound(ctx, "missing", 4)
		assert.NoError(t, err)
		assert.Nil(t, s)
	})
}

func TestCompleteSession(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()
		_, err := repo.CreateSession(ctx, types.CreateSessionRequest{SessionID: "s"})
		require.NoError(t, err)

		first, err := repo.CompleteSession(ctx, "s")
		require.NoError(t, err)
		require.NotNil(t, first.CompletedAt)

		second, err := repo.CompleteSession(ctx, "s")
		require.NoError(t, err)
		require.NotNil(t, second.CompletedAt)
		assert.True(t, second.CompletedAt.After(*first.CompletedAt))

		got, err := repo.GetSession(ctx, "s")
		require.NoError(t, err)
		assert.True(t, got.CompletedAt.Equal(*second.CompletedAt))

		missing, err := repo.CompleteSession(ctx, "missing")
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestCreateCandidate_IDs(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()

		a, err := repo.CreateCandidate(ctx, types.Candidate{Name: "A", Gender: "Female"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), a.ID)
		assert.NotNil(t, a.Skills.Technical)

		b, err := repo.CreateCandidate(ctx, types.Candidate{ID: 10, Name: "B", Gender: "Male"})
		require.NoError(t, err)
		assert.Equal(t, int64(10), b.ID)

		c, err := repo.CreateCandidate(ctx, types.Candidate{Name: "C", Gender: "Male"})
		require.NoError(t, err)
		assert.Equal(t, int64(11), c.ID, "counter advances past supplied ids")

		updated, err := repo.CreateCandidate(ctx, types.Candidate{ID: 10, Name: "B2", Gender: "Male"})
		require.NoError(t, err)
		assert.Equal(t, int64(10), updated.ID)

		got, err := repo.GetCandidate(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, "B2", got.Name)

		missing, err := repo.GetCandidate(ctx, 999)
		assert.NoError(t, err)
		assert.Nil(t, missing)
	})
}

func TestCreateDecision_AppendsWithoutDedup(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()
		_, err := repo.CreateSession(ctx, types.CreateSessionRequest{SessionID: "s"})
		require.NoError(t, err)
		cand, err := repo.CreateCandidate(ctx, types.Candidate{Name: "A", Gender: "Female"})
		require.NoError(t, err)

		for round := 1; round <= 2; round++ {
			d, err := repo.CreateDecision(ctx, types.GameDecision{
				SessionID: "s", RoundNumber: round, SelectedCandidateID: cand.ID, MainInfluence: types.InfluenceSkills,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(round), d.ID)
			assert.False(t, d.CreatedAt.IsZero())
		}

		s, err := repo.GetSession(ctx, "s")
		require.NoError(t, err)
		// Known anomaly: resubmitting the same candidate duplicates it; readers dedupe by id.
		require.Len(t, s.SelectedCandidates, 2)
		assert.Equal(t, cand.ID, s.SelectedCandidates[1].ID)
		assert.Equal(t, "skills", s.SelectedCandidates[0].MainInfluence)

		decisions, err := repo.ListDecisions(ctx, "s")
		require.NoError(t, err)
		require.Len(t, decisions, 2)
		assert.Equal(t, 1, decisions[0].RoundNumber)
		assert.Equal(t, types.InfluenceSkills, decisions[1].MainInfluence)
	})
}

func TestCreateDecision_UnknownCandidateOrSession(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository) {
		ctx := context.Background()
		_, err := repo.CreateSession(ctx, types.CreateSessionRequest{SessionID: "s"})
		require.NoError(t, err)

		d, err := repo.CreateDecision(ctx, types.GameDecision{SessionID: "s", RoundNumber: 1, SelectedCandidateID: 42})
		require.NoError(t, err)
		assert.Equal(t, types.InfluenceNotSpecified, d.MainInfluence)

		s, err := repo.GetSession(ctx, "s")
		require.NoError(t, err)
		assert.Empty(t, s.SelectedCandidates)

		_, err = repo.CreateDecision(ctx, types.GameDecision{SessionID: "nobody", RoundNumber: 1, SelectedCandidateID: 42})
		require.NoError(t, err)
		decisions, err := repo.ListDecisions(ctx, "nobody")
		require.NoError(t, err)
		assert.Len(t, decisions, 1)
	})
}

func TestListDecisions_UnknownSession(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo *Repository) {
		decisions, err := repo.ListDecisions(context.Background(), "missing")
		require.NoError(t, err)
		assert.NotNil(t, decisions)
		assert.Empty(t, decisions)
	})
}

func TestRepository_CountersSeededFromBackend(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	require.NoError(t, backend.PutCandidate(ctx, &types.Candidate{ID: 41, Name: "Old"}))
	require.NoError(t, backend.AppendDecision(ctx, &types.GameDecision{ID: 7, SessionID: "old"}))

	repo, err := NewRepository(ctx, backend)
	require.NoError(t, err)

	c, err := repo.CreateCandidate(ctx, types.Candidate{Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.ID)

	d, err := repo.CreateDecision(ctx, types.GameDecision{SessionID: "old"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), d.ID)
}

func TestRepository_ConcurrentDecisions(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRepository(ctx, NewMemory())
	require.NoError(t, err)
	_, err = repo.CreateSession(ctx, types.CreateSessionRequest{SessionID: "s"})
	require.NoError(t, err)
	cand, err := repo.CreateCandidate(ctx, types.Candidate{Name: "A"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.CreateDecision(ctx, types.GameDecision{SessionID: "s", RoundNumber: i, SelectedCandidateID: cand.ID})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := repo.GetSession(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, s.SelectedCandidates, 50)
}

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.PutSession(ctx, &types.GameSession{SessionID: "s"}))

	s, err := m.GetSession(ctx, "s")
	require.NoError(t, err)
	s.CurrentRound = 99
	s.SelectedCandidates = append(s.SelectedCandidates, types.Candidate{ID: 1})

	again, err := m.GetSession(ctx, "s")
	require.NoError(t, err)
	assert.Zero(t, again.CurrentRound)
	assert.Empty(t, again.SelectedCandidates)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, Options{Kind: KindMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	b, err = Open(ctx, Options{Kind: KindSQLite, SQLitePath: filepath.Join(t.TempDir(), "nested", "game.db")})
	require.NoError(t, err)
	assert.NoError(t, b.Ping(ctx))
	assert.NoError(t, b.Close())

	_, err = Open(ctx, Options{Kind: KindPostgres})
	assert.Error(t, err)
	_, err = Open(ctx, Options{Kind: KindSQLite})
	assert.Error(t, err)
	_, err = Open(ctx, Options{Kind: "redis"})
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestOpenSQLite_Pragmas(t *testing.T) {
	b, err := OpenSQLite(filepath.Join(t.TempDir(), "game.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	var journal string
	require.NoError(t, b.db.QueryRow(`PRAGMA journal_mode`).Scan(&journal))
	assert.Equal(t, "wal", journal)

	var timeout int
	require.NoError(t, b.db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, 5000, timeout)

	var synchronous int
	require.NoError(t, b.db.QueryRow(`PRAGMA synchronous`).Scan(&synchronous))
	assert.Equal(t, 1, synchronous)
}
