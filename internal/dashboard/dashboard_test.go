package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-bias-game/internal/insights"
	"github.com/jonathan/hiring-bias-game/internal/types"
)

func cand(id int64, gender string, age, experience int, education string) types.Candidate {
	return types.Candidate{ID: id, Name: "C", Gender: gender, Age: age, Experience: experience, Education: education}
}

type fakeDecisions struct {
	decisions []types.GameDecision
	err       error
	calls     int
}

func (f *fakeDecisions) ListDecisions(_ context.Context, _ string) ([]types.GameDecision, error) {
	f.calls++
	return f.decisions, f.err
}

type fakeGenerator struct {
	next      types.Candidate
	positions []string
}

func (f *fakeGenerator) Generate(_ context.Context, jobPosition string, count int) []types.Candidate {
	f.positions = append(f.positions, jobPosition)
	out := make([]types.Candidate, count)
	for i := range out {
		out[i] = f.next
	}
	return out
}

func TestDedupe(t *testing.T) {
	a := cand(1, "Male", 30, 5, "Bachelor")
	b := cand(2, "Female", 40, 10, "Master")
	a2 := a
	a2.Name = "Second copy"

	got := Dedupe([]types.Candidate{a, b, a2})

	require.Len(t, got, 2)
	assert.Equal(t, "C", got[0].Name, "first occurrence wins")
	assert.Equal(t, int64(2), got[1].ID)
}

func TestDistributions_CountDuplicatesOnce(t *testing.T) {
	a := cand(1, "Male", 25, 3, "Bachelor of Science")
	b := cand(2, "Female", 52, 20, "Master of Arts")
	selected := []types.Candidate{a, a, b}

	g := Genders(selected)
	assert.Equal(t, Bucket{Count: 1, Percentage: 50}, g.Male)
	assert.Equal(t, Bucket{Count: 1, Percentage: 50}, g.Female)
	assert.Equal(t, Bucket{}, g.NonBinary)

	ages := Ages(selected)
	assert.Equal(t, Bucket{Count: 1, Percentage: 50}, ages.Twenties)
	assert.Equal(t, Bucket{Count: 1, Percentage: 50}, ages.FiftyUp)
	assert.Zero(t, ages.Thirties.Count)

	edu := Educations(selected)
	assert.Equal(t, 1, edu.Bachelors.Count)
	assert.Equal(t, 1, edu.Masters.Count)
	assert.Zero(t, edu.Other.Count)

	assert.Equal(t, PerformanceScore([]types.Candidate{a, b}), PerformanceScore(selected))
}

func TestGenders_Buckets(t *testing.T) {
	g := Genders([]types.Candidate{
		cand(1, "MALE", 30, 1, ""),
		cand(2, "Non-binary", 30, 1, ""),
		cand(3, "Agender", 30, 1, ""),
	})
	assert.Equal(t, Bucket{Count: 1, Percentage: 33}, g.Male)
	assert.Equal(t, Bucket{Count: 2, Percentage: 67}, g.NonBinary)
}

func TestPerformanceScore(t *testing.T) {
	tests := []struct {
		name string
		team []types.Candidate
		want int
	}{
		{"empty", nil, 50},
		{"single", []types.Candidate{cand(1, "Male", 25, 5, "Bachelor")}, 85},
		{
			"capped",
			[]types.Candidate{cand(1, "Male", 25, 20, "Bachelor"), cand(2, "Female", 45, 20, "Master")},
			95,
		},
		{
			"homogeneous",
			[]types.Candidate{
				cand(1, "Male", 25, 2, "Bachelor"),
				cand(2, "Male", 27, 4, "Bachelor"),
				cand(3, "Male", 28, 6, "Bachelor"),
			},
			83,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PerformanceScore(tt.team))
		})
	}
}

func TestPerformanceScore_MonotonicInExperience(t *testing.T) {
	prev := 0
	for years := 0; years <= 40; years++ {
		team := []types.Candidate{
			cand(1, "Male", 25, years, "Bachelor"),
			cand(2, "Male", 26, years, "Bachelor"),
		}
		got := PerformanceScore(team)
		assert.GreaterOrEqual(t, got, prev)
		assert.LessOrEqual(t, got, MaxScore)
		prev = got
	}
}

func TestInfluences_FromCandidates(t *testing.T) {
	influences := []string{"education", "Education", "education", "experience", "experience"}
	selected := make([]types.Candidate, 0, len(influences))
	for i, inf := range influences {
		c := cand(int64(i+1), "Female", 30, 5, "Bachelor")
		c.MainInfluence = inf
		selected = append(selected, c)
	}
	decisions := &fakeDecisions{}
	agg := New(decisions, &fakeGenerator{}, nil)

	got := agg.Influences(context.Background(), "s1", selected)

	assert.Equal(t, Bucket{Count: 3, Percentage: 60}, got.Education)
	assert.Equal(t, Bucket{Count: 2, Percentage: 40}, got.Experience)
	assert.Equal(t, Bucket{}, got.Gender)
	assert.Equal(t, Bucket{}, got.Age)
	assert.Equal(t, Bucket{}, got.Communication)
	assert.Equal(t, Bucket{}, got.Skills)
	assert.Zero(t, decisions.calls, "decision log is only consulted when candidates carry no influence")
}

func TestInfluences_FallsBackToDecisionLog(t *testing.T) {
	decisions := &fakeDecisions{decisions: []types.GameDecision{
		{MainInfluence: types.InfluenceSkills},
		{MainInfluence: types.InfluenceGender},
		{MainInfluence: types.InfluenceSkills},
		{MainInfluence: types.InfluenceInterview},
		{MainInfluence: types.InfluenceNotSpecified},
	}}
	agg := New(decisions, &fakeGenerator{}, nil)

	got := agg.Influences(context.Background(), "s1", []types.Candidate{cand(1, "Male", 30, 1, "")})

	assert.Equal(t, 1, decisions.calls)
	assert.Equal(t, Bucket{Count: 2, Percentage: 67}, got.Skills)
	assert.Equal(t, Bucket{Count: 1, Percentage: 33}, got.Gender)
	assert.Equal(t, 3, got.Total())
}

func TestInfluences_ZeroFilled(t *testing.T) {
	tests := []struct {
		name   string
		source DecisionSource
	}{
		{"no source", nil},
		{"empty log", &fakeDecisions{}},
		{"source error", &fakeDecisions{err: errors.New("connection refused")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := New(tt.source, &fakeGenerator{}, nil)
			got := agg.Influences(context.Background(), "s1", nil)
			assert.Equal(t, InfluenceTally{}, got)
		})
	}
}

func homogeneousTeam() []types.Candidate {
	return []types.Candidate{
		cand(1, "Male", 25, 2, "Bachelor"),
		cand(2, "Male", 27, 4, "Bachelor"),
		cand(3, "Male", 28, 6, "Bachelor"),
	}
}

func TestWhatIf_Deltas(t *testing.T) {
	alt := cand(0, "Female", 45, 10, "Master of Science")
	gen := &fakeGenerator{next: alt}
	agg := New(nil, gen, nil, WithPositionFunc(func(int, types.Candidate) string { return "Data Scientist" }))

	res, err := agg.WhatIf(context.Background(), homogeneousTeam(), 1)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Round)
	assert.Equal(t, "Data Scientist", res.JobPosition)
	assert.Equal(t, int64(2), res.Original.ID)
	assert.Equal(t, alt, res.Alternative)
	assert.Equal(t, 15, res.DiversityChange)
	assert.InDelta(t, 2.0, res.ExperienceChange, 1e-9)
	assert.Equal(t, 12, res.InnovationChange)
	assert.Equal(t, []string{"Data Scientist"}, gen.positions)
}

func TestWhatIf_BaselineUntouched(t *testing.T) {
	selected := homogeneousTeam()
	selected = append(selected, selected[0])
	baseline := make([]types.Candidate, len(selected))
	copy(baseline, selected)

	agg := New(nil, &fakeGenerator{next: cand(0, "Female", 60, 30, "PhD")}, nil)
	res, err := agg.WhatIf(context.Background(), selected, 0)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(baseline, selected))
	assert.Equal(t, int64(1), res.Original.ID)
}

func TestWhatIf_RoundOutOfRange(t *testing.T) {
	agg := New(nil, &fakeGenerator{}, nil)

	for _, round := range []int{-1, 3, 10} {
		_, err := agg.WhatIf(context.Background(), homogeneousTeam(), round)
		assert.ErrorIs(t, err, ErrRoundOutOfRange)
	}
}

func TestSimulator_RerunsOnRoundChange(t *testing.T) {
	gen := &fakeGenerator{next: cand(0, "Female", 45, 10, "Master")}
	agg := New(nil, gen, nil, WithPositionFunc(func(round int, _ types.Candidate) string {
		return []string{"Software Developer", "Data Scientist", "Sales Executive"}[round]
	}))

	sim, err := agg.NewSimulator(context.Background(), homogeneousTeam())
	require.NoError(t, err)
	require.NotNil(t, sim.Result())
	assert.Equal(t, 0, sim.Round())

	_, err = sim.SelectRound(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, gen.positions, 1, "same round does not regenerate")

	res, err := sim.SelectRound(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Round)
	assert.Equal(t, []string{"Software Developer", "Sales Executive"}, gen.positions)

	_, err = sim.Regenerate(context.Background())
	require.NoError(t, err)
	assert.Len(t, gen.positions, 3)

	_, err = sim.SelectRound(context.Background(), 7)
	assert.ErrorIs(t, err, ErrRoundOutOfRange)
	assert.Equal(t, 2, sim.Round(), "failed run keeps previous state")
}

func TestSimulator_EmptyTeam(t *testing.T) {
	sim, err := New(nil, &fakeGenerator{}, nil).NewSimulator(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, sim.Result())
	assert.Equal(t, -1, sim.Round())
}

func TestTitlePosition(t *testing.T) {
	positions := []string{"Software Developer", "Data Scientist", "Sales Executive"}
	fn := TitlePosition(positions)

	withTitle := func(title string) types.Candidate {
		return types.Candidate{ExperienceDetails: []types.ExperienceDetail{{Title: title}}}
	}

	assert.Equal(t, "Data Scientist", fn(0, withTitle("Senior Data Scientist")))
	assert.Equal(t, "Software Developer", fn(0, withTitle("software developer")))
	assert.Equal(t, "Staff Engineer", fn(0, withTitle("Staff Engineer")))
	assert.Equal(t, "Sales Executive", fn(2, types.Candidate{}))
	assert.Equal(t, "Software Developer", fn(3, types.Candidate{}))
}

func TestBuild(t *testing.T) {
	a := cand(1, "Male", 28, 3, "Bachelor of Science")
	a.MainInfluence = string(types.InfluenceEducation)
	b := cand(2, "Female", 41, 12, "Master of Arts")
	b.MainInfluence = string(types.InfluenceExperience)
	now := time.Now()
	session := &types.GameSession{
		SessionID:          "s1",
		Level:              types.DefaultLevel,
		SelectedCandidates: []types.Candidate{a, b, a},
		CompletedAt:        &now,
	}

	agg := New(&fakeDecisions{}, &fakeGenerator{}, insights.NewEngine(insights.WithoutVariance()))
	report := agg.Build(context.Background(), session)

	assert.Equal(t, "s1", report.SessionID)
	assert.True(t, report.Final)
	assert.Len(t, report.Team, 2)
	assert.Equal(t, 1, report.Gender.Male.Count)
	assert.Equal(t, PerformanceScore(report.Team), report.PerformanceScore)
	assert.Equal(t, 50, report.Influences.Education.Percentage)
	assert.NotEmpty(t, report.Insights)
	assert.LessOrEqual(t, len(report.Insights), insights.MaxInsights)
}
