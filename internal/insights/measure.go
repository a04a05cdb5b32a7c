// Package insights derives bias insights from the candidates a player selected.
//
// Measure is the pure statistics step. Engine turns a Measurement into
// presentational insights, perturbing percentages and phrasing unless
// variance is disabled.
package insights

import (
	"math"
	"strings"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

// Thresholds a dominant share must reach for a dimension to qualify.
const (
	GenderThreshold    = 60
	AgeThreshold       = 55
	EducationThreshold = 50
	// ExperienceThreshold is exclusive: more than half of the selections must skew.
	ExperienceThreshold = 50
)

// Age brackets.
const (
	AgeYounger     = "younger"
	AgeMidCareer   = "mid-career"
	AgeExperienced = "experienced"
)

// Education tiers.
const (
	EduDoctorate = "doctorate"
	EduMasters   = "masters"
	EduBachelors = "bachelors"
	EduOther     = "other"
)

// Share is the dominant category of one dimension.
type Share struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// ExperienceSkew reports how many selections sit well above or below the average experience.
type ExperienceSkew struct {
	Average    int  `json:"average"`
	Above      int  `json:"above"`
	Below      int  `json:"below"`
	High       bool `json:"high"`
	Percentage int  `json:"percentage"`
}

// Measurement is the distribution summary of a set of selections.
type Measurement struct {
	Total      int            `json:"total"`
	Gender     Share          `json:"gender"`
	Age        Share          `json:"age"`
	Education  Share          `json:"education"`
	Experience ExperienceSkew `json:"experience"`
}

// AgeBracket buckets an age into under 35, 35 to 49, and 50+.
func AgeBracket(age int) string {
	switch {
	case age < 35:
		return AgeYounger
	case age < 50:
		return AgeMidCareer
	default:
		return AgeExperienced
	}
}

// EducationTier classifies an education label by keyword.
func EducationTier(education string) string {
	e := strings.ToLower(education)
	switch {
	case strings.Contains(e, "phd"), strings.Contains(e, "ph.d"), strings.Contains(e, "doctorate"):
		return EduDoctorate
	case strings.Contains(e, "master"):
		return EduMasters
	case strings.Contains(e, "bachelor"):
		return EduBachelors
	default:
		return EduOther
	}
}

// Measure computes dominant shares for gender, age bracket, education tier
// and the experience skew. It has no side effects and no randomness.
func Measure(selected []types.Candidate) Measurement {
	m := Measurement{Total: len(selected)}
	if m.Total == 0 {
		return m
	}

	genders := newTally()
	ages := newTally(AgeYounger, AgeMidCareer, AgeExperienced)
	education := newTally()
	sum := 0
	for _, c := range selected {
		genders.add(strings.ToLower(c.Gender))
		ages.add(AgeBracket(c.Age))
		education.add(EducationTier(c.Education))
		sum += c.Experience
	}
	m.Gender = genders.dominant(m.Total)
	m.Age = ages.dominant(m.Total)
	m.Education = education.dominant(m.Total)

	avg := int(math.Round(float64(sum) / float64(m.Total)))
	skew := ExperienceSkew{Average: avg}
	for _, c := range selected {
		switch {
		case c.Experience > avg+2:
			skew.Above++
		case c.Experience < avg-2:
			skew.Below++
		}
	}
	skew.High = skew.Above > skew.Below
	n := skew.Below
	if skew.High {
		n = skew.Above
	}
	skew.Percentage = percent(n, m.Total)
	m.Experience = skew
	return m
}

// Qualifying returns the dimensions whose dominant share crosses its threshold,
// in the order gender, age, education, experience.
func (m Measurement) Qualifying() []types.InsightType {
	if m.Total == 0 {
		return nil
	}
	var out []types.InsightType
	if m.Gender.Percentage >= GenderThreshold {
		out = append(out, types.InsightGender)
	}
	if m.Age.Percentage >= AgeThreshold {
		out = append(out, types.InsightAge)
	}
	if m.Education.Percentage >= EducationThreshold {
		out = append(out, types.InsightEducation)
	}
	half := float64(m.Total) * float64(ExperienceThreshold) / 100
	if float64(m.Experience.Above) > half || float64(m.Experience.Below) > half {
		out = append(out, types.InsightExperience)
	}
	return out
}

// tally counts categories and remembers first-seen order so ties resolve deterministically.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally(categories ...string) *tally {
	t := &tally{counts: make(map[string]int)}
	for _, c := range categories {
		t.order = append(t.order, c)
		t.counts[c] = 0
	}
	return t
}

func (t *tally) add(category string) {
	if _, ok := t.counts[category]; !ok {
		t.order = append(t.order, category)
	}
	t.counts[category]++
}

// dominant returns the largest category. Ties go to the category seen last.
func (t *tally) dominant(total int) Share {
	var best Share
	for i, c := range t.order {
		if i == 0 || t.counts[c] >= best.Count {
			best = Share{Category: c, Count: t.counts[c]}
		}
	}
	best.Percentage = percent(best.Count, total)
	return best
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(n) / float64(total) * 100))
}
