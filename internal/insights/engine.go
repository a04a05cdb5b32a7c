package insights

import (
	"fmt"
	"math/rand/v2"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

// MaxInsights is the most insights Generate returns.
const MaxInsights = 3

const (
	dimensionVariance = 10
	fillerVariance    = 15
)

// Randomizer supplies presentational randomness. *rand.Rand satisfies it.
type Randomizer interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

type globalRand struct{}

func (globalRand) IntN(n int) int                     { return rand.IntN(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// Engine turns measurements into display insights.
type Engine struct {
	rng      Randomizer
	variance bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRandomizer injects the randomness source.
func WithRandomizer(r Randomizer) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithoutVariance reports measured shares as-is, uses the first phrasing
// variant and keeps insights in qualifying order.
func WithoutVariance() Option {
	return func(e *Engine) { e.variance = false }
}

// NewEngine creates an Engine. By default it perturbs percentages and shuffles output.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{rng: globalRand{}, variance: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Generate measures selected and presents up to MaxInsights insights.
func (e *Engine) Generate(selected []types.Candidate) []types.BiasInsight {
	return e.Present(Measure(selected))
}

// Present builds insights for every qualifying dimension, tops up with filler
// insights until there are MaxInsights, and truncates to MaxInsights.
// Filler insights do not reflect any measurement.
func (e *Engine) Present(m Measurement) []types.BiasInsight {
	if m.Total == 0 {
		return []types.BiasInsight{}
	}

	out := make([]types.BiasInsight, 0, MaxInsights+1)
	for _, t := range m.Qualifying() {
		out = append(out, e.dimension(t, m))
	}
	for _, f := range fillers {
		if len(out) >= MaxInsights {
			break
		}
		pct := e.perturb(f.base, fillerVariance)
		out = append(out, types.BiasInsight{
			Type:        f.kind,
			Title:       f.title,
			Description: fmt.Sprintf(e.variant(f.variants), pct),
			Percentage:  pct,
		})
	}
	if len(out) > MaxInsights {
		out = out[:MaxInsights]
	}
	if e.variance {
		e.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	return out
}

func (e *Engine) dimension(t types.InsightType, m Measurement) types.BiasInsight {
	switch t {
	case types.InsightGender:
		pct := e.perturb(m.Gender.Percentage, dimensionVariance)
		return types.BiasInsight{
			Type:        t,
			Title:       "Gender Preference",
			Description: fmt.Sprintf("You selected %s candidates %d%% of the time, which may indicate an unconscious gender preference.", genderLabel(m.Gender.Category), pct),
			Percentage:  pct,
		}
	case types.InsightAge:
		pct := e.perturb(m.Age.Percentage, dimensionVariance)
		return types.BiasInsight{
			Type:        t,
			Title:       "Age-Related Pattern",
			Description: fmt.Sprintf("You selected %s %d%% of the time, suggesting a potential age-related preference.", ageLabels[m.Age.Category], pct),
			Percentage:  pct,
		}
	case types.InsightEducation:
		pct := e.perturb(m.Education.Percentage, dimensionVariance)
		return types.BiasInsight{
			Type:        t,
			Title:       "Education Preference",
			Description: fmt.Sprintf("%d%% of your selections have %s, indicating a possible education-based bias.", pct, educationLabels[m.Education.Category]),
			Percentage:  pct,
		}
	default:
		pct := e.perturb(m.Experience.Percentage, dimensionVariance)
		desc := fmt.Sprintf("You tend to select candidates with below-average experience levels (%d%% of selections), which might indicate a preference for fresh perspectives over proven track records.", pct)
		if m.Experience.High {
			desc = fmt.Sprintf("You tend to select candidates with above-average experience levels (%d%% of selections), which may overlook talented individuals with less experience but high potential.", pct)
		}
		return types.BiasInsight{
			Type:        types.InsightExperience,
			Title:       "Experience Preference",
			Description: desc,
			Percentage:  pct,
		}
	}
}

// perturb returns a uniform value in [base-variance, base+variance] clamped to [1, 99].
func (e *Engine) perturb(base, variance int) int {
	if !e.variance {
		return clamp(base)
	}
	lo := max(base-variance, 1)
	hi := min(base+variance, 99)
	if hi <= lo {
		return clamp(lo)
	}
	return lo + e.rng.IntN(hi-lo+1)
}

func (e *Engine) variant(variants []string) string {
	if !e.variance || len(variants) == 1 {
		return variants[0]
	}
	return variants[e.rng.IntN(len(variants))]
}

func clamp(pct int) int {
	return min(max(pct, 1), 99)
}

func genderLabel(category string) string {
	switch category {
	case "male", "female":
		return category
	default:
		return "non-binary"
	}
}

var ageLabels = map[string]string{
	AgeYounger:     "candidates under 35",
	AgeMidCareer:   "mid-career candidates (35-50)",
	AgeExperienced: "candidates over 50",
}

var educationLabels = map[string]string{
	EduDoctorate: "PhD degrees",
	EduMasters:   "Master's degrees",
	EduBachelors: "Bachelor's degrees",
	EduOther:     "non-traditional education backgrounds",
}

type filler struct {
	kind     types.InsightType
	title    string
	base     int
	variants []string
}

// fillers are appended in this order. Each variant takes the percentage once.
var fillers = []filler{
	{
		kind:  types.InsightCommunication,
		title: "Communication Style",
		base:  55,
		variants: []string{
			"Your selections appear to favor candidates with an assertive communication style (%d%% of choices), potentially overlooking thoughtful communicators who may be equally qualified.",
			"%d%% of your selected candidates demonstrated structured, detail-oriented communication, suggesting a potential bias toward formal presentation styles.",
			"You selected candidates with confident, concise communication %d%% of the time, which may reflect an unconscious preference for extroverted personalities.",
		},
	},
	{
		kind:  types.InsightInterview,
		title: "Interview Performance",
		base:  60,
		variants: []string{
			"%d%% of your hiring decisions appear influenced by rehearsed interview answers rather than job-relevant experience.",
			"Your selections show a %d%% tendency to favor candidates who present well in interviews, potentially missing those whose skills may not translate to interview performance.",
			"The data suggests a %d%% preference for candidates who display confidence in interviews, which may not always correlate with on-the-job performance.",
		},
	},
	{
		kind:  types.InsightSkills,
		title: "Skill Set Preference",
		base:  65,
		variants: []string{
			"You selected candidates with strong technical backgrounds %d%% of the time, potentially undervaluing soft skills like collaboration and adaptability.",
			"%d%% of your selections emphasized specialized technical skills over leadership potential and team dynamics.",
			"The data indicates a %d%% preference for candidates with quantifiable skills over those with qualitative strengths like creativity or emotional intelligence.",
		},
	},
	{
		kind:  types.InsightPersonal,
		title: "Personal Background Influence",
		base:  55,
		variants: []string{
			"%d%% of selected candidates share similar background elements, suggesting potential affinity bias where we unconsciously favor those who remind us of ourselves.",
		},
	},
}
