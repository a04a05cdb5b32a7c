package candidates

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

// LocalGenerator builds candidates from the embedded per-position templates.
type LocalGenerator struct {
	data *Dataset
	rng  Randomizer
	now  func() time.Time
	mu   sync.Mutex
}

// NewLocalGenerator creates a template generator. A nil rng uses math/rand/v2.
func NewLocalGenerator(data *Dataset, rng Randomizer) *LocalGenerator {
	if rng == nil {
		rng = globalRand{}
	}
	return &LocalGenerator{data: data, rng: rng, now: time.Now}
}

// Dataset returns the templates backing the generator.
func (g *LocalGenerator) Dataset() *Dataset {
	return g.data
}

// Generate returns count candidates for jobPosition. Unknown positions use DefaultPosition.
// Returned candidates have no ID; the store assigns one.
func (g *LocalGenerator) Generate(jobPosition string, count int) []types.Candidate {
	g.mu.Lock()
	defer g.mu.Unlock()

	pos, resolved := g.data.Position(jobPosition)
	out := make([]types.Candidate, 0, max(count, 0))
	for i := 0; i < count; i++ {
		out = append(out, g.one(pos, resolved))
	}
	return out
}

// ageRange returns the age bounds for a position. Senior roles skew older.
func ageRange(position string) (int, int) {
	switch position {
	case "Human Resources Director", "Operations Manager":
		return 35, 55
	case "Data Scientist", "Software Developer":
		return 25, 45
	default:
		return 27, 50
	}
}

// minExperience returns the experience floor in years for a position.
func minExperience(position string) int {
	switch position {
	case "Human Resources Director", "Operations Manager":
		return 7
	case "Marketing Manager", "Project Manager":
		return 4
	default:
		return 1
	}
}

func (g *LocalGenerator) one(pos *PositionData, position string) types.Candidate {
	r := g.rng
	year := g.now().Year()

	var gender, firstName string
	switch roll := r.Float64(); {
	case roll < 0.4:
		gender, firstName = "Male", pick(r, g.data.Names.Male)
	case roll < 0.8:
		gender, firstName = "Female", pick(r, g.data.Names.Female)
	default:
		gender, firstName = "Non-binary", pick(r, g.data.Names.NonBinary)
	}
	name := firstName + " " + pick(r, g.data.Names.Last)

	ageLo, ageHi := ageRange(position)
	age := intRange(r, ageLo, ageHi)
	floor := minExperience(position)
	experience := intRange(r, floor, max(floor, age-22))

	degree := pick(r, pos.Degrees)
	institution := pick(r, pos.Institutions)
	gradYear := year - intRange(r, 1, experience+3)
	startYear := gradYear - intRange(r, 2, 4)
	education := []types.EducationDetail{{
		Institution: institution,
		Degree:      degree,
		Years:       yearSpan(startYear, gradYear),
	}}
	if chance(r, 0.3) {
		otherInst := without(pos.Institutions, institution)
		otherDeg := without(pos.Degrees, degree)
		if len(otherInst) > 0 && len(otherDeg) > 0 {
			secondGrad := startYear - intRange(r, 1, 3)
			education = append(education, types.EducationDetail{
				Institution: pick(r, otherInst),
				Degree:      pick(r, otherDeg),
				Years:       yearSpan(secondGrad-intRange(r, 2, 4), secondGrad),
			})
		}
	}

	accomplishments := shuffled(r, pos.Accomplishments)
	numAccomplishments := min(intRange(r, 2, 3), len(accomplishments))

	currentCompany := pick(r, pos.Companies)
	currentStart := year - intRange(r, 1, min(5, experience))
	history := []types.ExperienceDetail{{
		Title:   pick(r, pos.Titles),
		Company: currentCompany,
		Years:   yearSpan(currentStart, year),
		Details: append([]string(nil), accomplishments[:numAccomplishments]...),
	}}
	earliestStart := currentStart

	remaining := experience - (year - currentStart)
	if remaining > 2 && chance(r, 0.9) {
		companies := without(pos.Companies, currentCompany)
		if len(companies) == 0 {
			companies = pos.Companies
		}
		duration := intRange(r, 1, min(5, remaining))
		end := currentStart - 1
		history = append(history, types.ExperienceDetail{
			Title:   pick(r, pos.Titles),
			Company: pick(r, companies),
			Years:   yearSpan(end-duration, end),
			Details: append([]string(nil), window(accomplishments, numAccomplishments, numAccomplishments+2)...),
		})
		earliestStart = end - duration
		remaining -= duration + 1
	}
	if remaining > 2 && chance(r, 0.7) {
		used := make([]string, 0, len(history))
		for _, h := range history {
			used = append(used, h.Company)
		}
		companies := without(pos.Companies, used...)
		if len(companies) == 0 {
			companies = pos.Companies
		}
		duration := intRange(r, 1, remaining)
		end := earliestStart - 1
		history = append(history, types.ExperienceDetail{
			Title:   pick(r, pos.Titles),
			Company: pick(r, companies),
			Years:   yearSpan(end-duration, end),
			Details: append([]string(nil), window(accomplishments, numAccomplishments+2, numAccomplishments+3)...),
		})
	}

	skills := shuffled(r, pos.TechnicalSkills)
	technical := append([]string(nil), skills[:min(intRange(r, 4, 6), len(skills))]...)
	soft := pick(r, pos.SoftSkills)

	numRefs := intRange(r, 1, 2)
	references := make([]types.Reference, 0, numRefs)
	for i := 0; i < numRefs; i++ {
		references = append(references, types.Reference{
			Name:  pick(r, g.data.ReferenceNames),
			Title: fmt.Sprintf("%s, %s", pick(r, pos.ReferenceTitles), pick(r, history).Company),
			Quote: pick(r, pos.ReferenceQuotes),
		})
	}

	followup := pick(r, pos.Followups)

	var goldStar, redFlag string
	if chance(r, 0.3) {
		goldStar = pick(r, pos.GoldStars)
	} else if chance(r, 0.3) {
		redFlag = pick(r, pos.RedFlags)
	}

	return types.Candidate{
		Name:              name,
		Gender:            gender,
		Age:               age,
		Experience:        experience,
		Education:         degreeLabel(degree),
		EducationDetails:  education,
		ExperienceDetails: history,
		Skills: types.Skills{
			Technical: technical,
			Soft:      soft.Skill,
		},
		SoftSkill:        soft.Skill,
		SoftSkillDetail:  soft.Detail,
		References:       references,
		InterviewQuote:   pick(r, pos.InterviewQuotes),
		FollowupQuestion: followup.Question,
		FollowupAnswer:   followup.Answer,
		GoldStar:         goldStar,
		RedFlag:          redFlag,
		KeyStrength:      pick(r, pos.KeyStrengths),
	}
}

// degreeLabel shortens a degree name while keeping its level, e.g.
// "Bachelor of Finance" becomes "Bachelor's in Finance".
func degreeLabel(degree string) string {
	for _, p := range degreePrefixes {
		if rest, ok := strings.CutPrefix(degree, p.long); ok {
			return p.short + rest
		}
	}
	return degree
}

var degreePrefixes = []struct{ long, short string }{
	{"Bachelor of Science in ", "Bachelor's in "},
	{"Bachelor of ", "Bachelor's in "},
	{"Master of Science in ", "Master's in "},
	{"Master of ", "Master's in "},
	{"Ph.D. in ", "PhD in "},
	{"Ph.D. ", "PhD "},
}

func yearSpan(start, end int) string {
	return fmt.Sprintf("%d - %d", start, end)
}
