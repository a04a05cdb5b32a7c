package candidates

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-bias-game/internal/insights"
)

func newTestLocal(seed uint64) *LocalGenerator {
	g := NewLocalGenerator(MustLoadDataset(), NewSeededRandomizer(seed))
	g.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return g
}

func TestLocalGenerator_Count(t *testing.T) {
	g := newTestLocal(1)

	assert.Len(t, g.Generate("Data Scientist", 3), 3)
	assert.Len(t, g.Generate("Data Scientist", 0), 0)
	assert.Empty(t, g.Generate("Data Scientist", -2))
}

func TestLocalGenerator_UsesPositionDataset(t *testing.T) {
	g := newTestLocal(7)
	pos := g.Dataset().Positions["Data Scientist"]

	for _, c := range g.Generate("Data Scientist", 25) {
		require.NotEmpty(t, c.Skills.Technical)
		assert.Subset(t, pos.TechnicalSkills, c.Skills.Technical)
		assert.Contains(t, pos.Companies, c.ExperienceDetails[0].Company)
		assert.Contains(t, pos.Titles, c.ExperienceDetails[0].Title)
		assert.Contains(t, pos.Institutions, c.EducationDetails[0].Institution)
		assert.Contains(t, pos.KeyStrengths, c.KeyStrength)
	}
}

func TestLocalGenerator_UnknownPositionFallsBack(t *testing.T) {
	g := newTestLocal(3)
	pos := g.Dataset().Positions[DefaultPosition]

	for _, c := range g.Generate("Lighthouse Keeper", 10) {
		assert.Subset(t, pos.TechnicalSkills, c.Skills.Technical)
	}
}

func TestLocalGenerator_ConsistencyRules(t *testing.T) {
	tests := []struct {
		position string
		ageLo    int
		ageHi    int
		floor    int
	}{
		{"Human Resources Director", 35, 55, 7},
		{"Operations Manager", 35, 55, 7},
		{"Data Scientist", 25, 45, 1},
		{"Software Developer", 25, 45, 1},
		{"Marketing Manager", 27, 50, 4},
		{"Project Manager", 27, 50, 4},
		{"Sales Executive", 27, 50, 1},
	}

	g := newTestLocal(42)
	for _, tt := range tests {
		t.Run(tt.position, func(t *testing.T) {
			for _, c := range g.Generate(tt.position, 30) {
				assert.GreaterOrEqual(t, c.Age, tt.ageLo)
				assert.LessOrEqual(t, c.Age, tt.ageHi)
				assert.GreaterOrEqual(t, c.Experience, tt.floor)
				assert.LessOrEqual(t, c.Experience, max(tt.floor, c.Age-22))
			}
		})
	}
}

func TestLocalGenerator_ProfileShape(t *testing.T) {
	g := newTestLocal(11)
	validGender := map[string]bool{"Male": true, "Female": true, "Non-binary": true}

	for _, c := range g.Generate("Product Designer", 40) {
		assert.Zero(t, c.ID)
		assert.True(t, validGender[c.Gender], c.Gender)
		assert.Len(t, strings.Fields(c.Name), 2)

		assert.GreaterOrEqual(t, len(c.EducationDetails), 1)
		assert.LessOrEqual(t, len(c.EducationDetails), 2)
		assert.GreaterOrEqual(t, len(c.ExperienceDetails), 1)
		assert.LessOrEqual(t, len(c.ExperienceDetails), 3)
		assert.GreaterOrEqual(t, len(c.Skills.Technical), 4)
		assert.LessOrEqual(t, len(c.Skills.Technical), 6)
		assert.GreaterOrEqual(t, len(c.References), 1)
		assert.LessOrEqual(t, len(c.References), 2)

		assert.Equal(t, c.SoftSkill, c.Skills.Soft)
		assert.NotEmpty(t, c.FollowupQuestion)
		assert.False(t, c.GoldStar != "" && c.RedFlag != "", "gold star and red flag are exclusive")
		assert.True(t, strings.HasSuffix(c.ExperienceDetails[0].Years, " - 2025"))
		assert.Equal(t, degreeLabel(c.EducationDetails[0].Degree), c.Education)
	}
}

func TestLocalGenerator_Deterministic(t *testing.T) {
	a := newTestLocal(99).Generate("Financial Analyst", 5)
	b := newTestLocal(99).Generate("Financial Analyst", 5)
	assert.Equal(t, a, b)
}

func TestDegreeLabel(t *testing.T) {
	tests := map[string]string{
		"Bachelor of Science in Finance":   "Bachelor's in Finance",
		"Bachelor of Computer Science":     "Bachelor's in Computer Science",
		"Master of HR Management":          "Master's in HR Management",
		"Ph.D. in Economics":               "PhD in Economics",
		"Associate's in Marketing":         "Associate's in Marketing",
		"MBA with Marketing Concentration": "MBA with Marketing Concentration",
	}
	for degree, want := range tests {
		assert.Equal(t, want, degreeLabel(degree), degree)
	}
}

func TestLocalGenerator_EducationKeepsLevel(t *testing.T) {
	g := newTestLocal(3)

	tiers := map[string]int{}
	for _, position := range g.Dataset().PositionNames() {
		for _, c := range g.Generate(position, 40) {
			degree := c.EducationDetails[0].Degree
			tier := insights.EducationTier(c.Education)
			switch {
			case strings.HasPrefix(degree, "Bachelor"):
				assert.Equal(t, insights.EduBachelors, tier, degree)
			case strings.HasPrefix(degree, "Master"):
				assert.Equal(t, insights.EduMasters, tier, degree)
			case strings.HasPrefix(degree, "Ph.D."):
				assert.Equal(t, insights.EduDoctorate, tier, degree)
			}
			tiers[tier]++
		}
	}
	assert.Positive(t, tiers[insights.EduBachelors])
	assert.Positive(t, tiers[insights.EduMasters])
}

func TestYearSpan(t *testing.T) {
	assert.Equal(t, "2019 - 2023", yearSpan(2019, 2023))
	_, err := strconv.Atoi(strings.Split(yearSpan(2019, 2023), " - ")[0])
	assert.NoError(t, err)
}
