package types

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestDecisionRequest_Validation(t *testing.T) {
	tests := []struct {
		name     string
		request  DecisionRequest
		wantErr  bool
		errField string
	}{
		{
			name: "valid request",
			request: DecisionRequest{
				SessionID:           "abc",
				RoundNumber:         intPtr(1),
				SelectedCandidateID: 7,
				MainInfluence:       InfluenceEducation,
			},
		},
		{
			name: "round zero is present",
			request: DecisionRequest{
				SessionID:           "abc",
				RoundNumber:         intPtr(0),
				SelectedCandidateID: 7,
			},
		},
		{
			name: "missing session",
			request: DecisionRequest{
				RoundNumber:         intPtr(1),
				SelectedCandidateID: 7,
			},
			wantErr:  true,
			errField: "SessionID",
		},
		{
			name: "missing round",
			request: DecisionRequest{
				SessionID:           "abc",
				SelectedCandidateID: 7,
			},
			wantErr:  true,
			errField: "RoundNumber",
		},
		{
			name: "missing candidate id",
			request: DecisionRequest{
				SessionID:   "abc",
				RoundNumber: intPtr(2),
			},
			wantErr:  true,
			errField: "SelectedCandidateID",
		},
		{
			name: "unknown influence",
			request: DecisionRequest{
				SessionID:           "abc",
				RoundNumber:         intPtr(2),
				SelectedCandidateID: 3,
				MainInfluence:       "horoscope",
			},
			wantErr:  true,
			errField: "MainInfluence",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.errField, verrs[0].Field())
		})
	}
}

func TestCandidateResponseRequest_Validation(t *testing.T) {
	candidate := &Candidate{Name: "Alex Kim", Gender: "Female"}

	assert.NoError(t, (&CandidateResponseRequest{Candidate: candidate, Question: "Why you?", ResponseType: "animated"}).Validate())
	assert.Error(t, (&CandidateResponseRequest{Candidate: candidate, Question: "Why you?", ResponseType: "shouting"}).Validate())
	assert.Error(t, (&CandidateResponseRequest{Question: "Why you?", ResponseType: "interview"}).Validate())
	assert.Error(t, (&CandidateResponseRequest{Candidate: candidate, ResponseType: "interview"}).Validate())
}

func TestBiasAnalysisRequest_RequiresSelections(t *testing.T) {
	assert.Error(t, (&BiasAnalysisRequest{}).Validate())
	assert.Error(t, (&BiasAnalysisRequest{SelectedCandidates: []Candidate{}}).Validate())
	assert.NoError(t, (&BiasAnalysisRequest{SelectedCandidates: []Candidate{{Name: "A", Gender: "Male"}}}).Validate())
}

func TestBiasReflectionRequest_AllowsEmptyOthers(t *testing.T) {
	req := BiasReflectionRequest{SelectedCandidate: &Candidate{Name: "A", Gender: "Male"}}
	assert.Error(t, req.Validate())

	req.OtherCandidates = []Candidate{}
	assert.NoError(t, req.Validate())
}

func TestCreateSessionRequest_Validation(t *testing.T) {
	assert.NoError(t, (&CreateSessionRequest{}).Validate())
	assert.NoError(t, (&CreateSessionRequest{MaxRounds: intPtr(3)}).Validate())
	assert.Error(t, (&CreateSessionRequest{MaxRounds: intPtr(0)}).Validate())
	assert.Error(t, (&CreateSessionRequest{CurrentRound: intPtr(-1)}).Validate())
}

func TestCandidate_JSONShape(t *testing.T) {
	c := Candidate{ID: 4, Name: "Sam Lee", Gender: "Non-binary"}
	c.Normalize()

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "educationDetails")
	assert.Contains(t, raw, "experienceDetails")
	assert.NotContains(t, raw, "mainInfluence")
	assert.Equal(t, []any{}, raw["skills"].(map[string]any)["technical"])
}

func TestCandidate_Accessors(t *testing.T) {
	c := Candidate{}
	assert.Equal(t, "Software Developer", c.CurrentTitle("Software Developer"))
	assert.Equal(t, "my previous role", c.CurrentCompany("my previous role"))
	assert.Equal(t, "University", c.PrimaryInstitution("University"))

	c.ExperienceDetails = []ExperienceDetail{{Title: "Data Analyst", Company: "Acme"}}
	c.EducationDetails = []EducationDetail{{Institution: "State University"}}
	assert.Equal(t, "Data Analyst", c.CurrentTitle("x"))
	assert.Equal(t, "Acme", c.CurrentCompany("x"))
	assert.Equal(t, "State University", c.PrimaryInstitution("x"))
}

func TestDecisionRequest_ResolveCandidateID(t *testing.T) {
	req := DecisionRequest{Candidate: &Candidate{ID: 12}}
	req.ResolveCandidateID()
	assert.Equal(t, int64(12), req.SelectedCandidateID)

	req = DecisionRequest{SelectedCandidateID: 5, Candidate: &Candidate{}}
	req.ResolveCandidateID()
	assert.Equal(t, int64(5), req.Candidate.ID)

	req = DecisionRequest{SelectedCandidateID: 5, Candidate: &Candidate{ID: 9}}
	req.ResolveCandidateID()
	assert.Equal(t, int64(9), req.SelectedCandidateID)

	req = DecisionRequest{SelectedCandidateID: 5}
	req.ResolveCandidateID()
	assert.Nil(t, req.Candidate)
}
