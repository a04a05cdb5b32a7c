package candidates

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/jonathan/hiring-bias-game/internal/llm"
	"github.com/jonathan/hiring-bias-game/internal/llm/llmtest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

const generatedProfile = `{
  "id": 77,
  "name": "Priya Raman",
  "gender": "Female",
  "age": 31,
  "experience": 6,
  "education": "Master's in Statistics",
  "educationDetails": [{"institution": "University of Michigan", "degree": "Master of Science in Statistics", "years": "2016 - 2018"}],
  "experienceDetails": [
    {"title": "Data Scientist", "company": "Spotify", "years": "2021 - 2025", "details": ["Shipped a ranking model"]},
    {"title": "Data Analyst", "company": "Target", "years": "2018 - 2021"}
  ],
  "skills": {"soft": "Storytelling"},
  "keyStrength": "Experiment design"
}`

func TestGenerator_ProviderUnavailable(t *testing.T) {
	stub := llmtest.Unavailable()
	g := NewGenerator(newTestLocal(5), WithClient(stub))

	got := g.Generate(context.Background(), "Data Scientist", 3)

	require.Len(t, got, 3)
	pos := g.Local().Dataset().Positions["Data Scientist"]
	for _, c := range got {
		assert.Subset(t, pos.TechnicalSkills, c.Skills.Technical)
	}
	assert.Len(t, stub.Requests(), 3, "one request per candidate")
}

func TestGenerator_AllSucceed(t *testing.T) {
	stub := llmtest.JSON("```json\n" + generatedProfile + "\n```")
	g := NewGenerator(newTestLocal(5), WithClient(stub))

	got := g.Generate(context.Background(), "Data Scientist", 2)

	require.Len(t, got, 2)
	for _, c := range got {
		assert.Equal(t, "Priya Raman", c.Name)
		assert.Zero(t, c.ID, "ids are assigned by the store")
		assert.NotNil(t, c.Skills.Technical)
		assert.Empty(t, c.Skills.Technical)
		assert.Equal(t, "Storytelling", c.SoftSkill)
	}

	reqs := stub.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, llm.TierStandard, reqs[0].Tier)
	assert.Contains(t, reqs[0].Prompt, "Data Scientist")
	assert.NotEmpty(t, reqs[0].System)
}

func TestGenerator_PartialFailureFilledLocally(t *testing.T) {
	var calls atomic.Int32
	stub := &llmtest.Stub{JSONFunc: func(context.Context, llm.Request) (string, error) {
		if calls.Add(1)%2 == 0 {
			return "", errors.New("quota exceeded")
		}
		return generatedProfile, nil
	}}
	g := NewGenerator(newTestLocal(8), WithClient(stub))

	got := g.Generate(context.Background(), "Data Scientist", 4)

	require.Len(t, got, 4)
	fromLLM := 0
	for _, c := range got {
		if c.Name == "Priya Raman" {
			fromLLM++
		}
	}
	assert.Equal(t, 2, fromLLM)
}

func TestGenerator_InvalidResponsesCountAsFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "I cannot help with that."},
		{"missing fields", `{"name": "Nobody"}`},
		{"fractional age", `{"name": "A", "gender": "Male", "age": 30.5, "experience": 2, "education": "BS",
			"educationDetails": [], "experienceDetails": [], "skills": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGenerator(newTestLocal(2), WithClient(llmtest.JSON(tt.body)))
			got := g.Generate(context.Background(), "Sales Executive", 2)

			require.Len(t, got, 2)
			pos := g.Local().Dataset().Positions["Sales Executive"]
			for _, c := range got {
				assert.Subset(t, pos.TechnicalSkills, c.Skills.Technical)
			}
		})
	}
}

func TestGenerator_NoClientIsLocal(t *testing.T) {
	g := NewGenerator(newTestLocal(1))
	assert.Len(t, g.Generate(context.Background(), "Product Designer", 3), 3)
	assert.Empty(t, g.Generate(context.Background(), "Product Designer", 0))
}

func TestGenerator_RespectsTimeout(t *testing.T) {
	stub := &llmtest.Stub{JSONFunc: func(ctx context.Context, _ llm.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	g := NewGenerator(newTestLocal(4), WithClient(stub), WithTimeout(10*time.Millisecond))

	got := g.Generate(context.Background(), "Operations Manager", 3)
	assert.Len(t, got, 3)
}

func TestParseCandidate(t *testing.T) {
	c, err := ParseCandidate(fmt.Sprintf("Here you go:\n%s\nThanks!", generatedProfile))
	require.NoError(t, err)

	assert.Equal(t, "Spotify", c.CurrentCompany(""))
	assert.Equal(t, 31, c.Age)
	assert.NotNil(t, c.References)
	assert.Len(t, c.ExperienceDetails, 2)
}
