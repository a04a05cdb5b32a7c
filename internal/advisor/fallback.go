package advisor

import (
	"fmt"
	"strings"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

// FallbackCandidateResponse answers common interview questions from the profile alone.
func FallbackCandidateResponse(c types.Candidate, question string) string {
	q := strings.ToLower(question)
	soft := strings.ToLower(c.SoftSkill)

	switch {
	case containsAny(q, "tell me about yourself", "introduce yourself", "background"):
		return fmt.Sprintf("I'm %s, with %d years of experience in %s. I graduated with a %s and pride myself on being %s. My colleagues often mention my %s as a standout quality. I'm excited about this opportunity because it aligns with my career goals.",
			c.Name, c.Experience, c.CurrentTitle("my field"), c.Education, soft, c.KeyStrength)

	case containsAny(q, "why should we hire you", "why are you a good fit", "what can you bring"):
		return fmt.Sprintf("With my %d years of experience and background in %s, I bring a unique perspective to the team. My %s has helped me succeed in previous roles, and I'm known for being %s. I believe these qualities make me a strong candidate who can contribute immediately while continuing to grow with your organization.",
			c.Experience, c.Education, c.KeyStrength, soft)

	case containsAny(q, "weakness", "improve", "challenge"):
		growth := "attention to detail"
		if c.SoftSkill == "Detail-oriented" {
			growth = "ability to see the big picture"
		}
		habit := "actively seeking out collaboration opportunities"
		if c.SoftSkill == "Collaborative" {
			habit = "setting aside focused time for individual work"
		}
		return fmt.Sprintf("I've worked to improve my %s over the years. I've found that by %s, I've been able to grow professionally while maintaining my core strength of being %s.",
			growth, habit, soft)

	case containsAny(q, "team", "collaborate", "work with others"):
		return fmt.Sprintf("I thrive in collaborative environments where %s team members can openly share ideas. In my %d years at %s, I've found that my %s helps teams overcome obstacles and deliver results. I believe diverse perspectives lead to the most innovative solutions.",
			soft, c.Experience, c.CurrentCompany("previous companies"), c.KeyStrength)

	case containsAny(q, "handling conflict", "disagreement", "difficult situation"):
		return fmt.Sprintf("When facing conflict, I rely on my %s approach to understand all perspectives. Recently at %s, I navigated a disagreement about project priorities by facilitating a structured discussion that clarified our shared goals. My %s helped us find common ground and develop a solution everyone supported.",
			soft, c.CurrentCompany("my previous role"), c.KeyStrength)

	case containsAny(q, "goal", "five years", "future"):
		return fmt.Sprintf("My goal is to continue developing my expertise in %s while taking on increasing leadership responsibilities. I'm committed to building on my %s foundation through continuous learning. In five years, I hope to have made significant contributions to my team while mentoring others to be %s professionals.",
			c.CurrentTitle("this field"), c.Education, soft)
	}

	return fmt.Sprintf("That's an interesting question. Drawing from my %d years of experience and %s background, I'd approach this by applying my %s and %s nature. Throughout my career at places like %s, I've found that combining technical knowledge with strong interpersonal skills leads to the best outcomes.",
		c.Experience, c.Education, c.KeyStrength, soft, c.CurrentCompany("my previous employers"))
}

// FallbackAnalysis is the static analysis returned when the provider cannot answer.
func FallbackAnalysis() *types.BiasAnalysis {
	return &types.BiasAnalysis{
		BiasInsights: []types.BiasInsight{
			{
				Type:        types.InsightEducation,
				Title:       "Educational Bias",
				Description: "Potential preference for candidates from prestigious universities.",
				Percentage:  65,
			},
			{
				Type:        types.InsightExperience,
				Title:       "Experience Length",
				Description: "Pattern of selecting candidates with longer work histories.",
				Percentage:  60,
			},
			{
				Type:        types.InsightCommunication,
				Title:       "Communication Style",
				Description: "Favor towards candidates with assertive communication styles.",
				Percentage:  55,
			},
		},
		OverallBiasScore: 60,
		Recommendations: []string{
			"Consider using blind resume reviews in initial screening stages.",
			"Establish consistent evaluation criteria before reviewing applications.",
			"Include diverse perspectives in your hiring committees.",
		},
	}
}

// FallbackReflection names the first trait that sets the selection apart.
// Rules are checked in order: age, advanced degree, experience, gender.
func FallbackReflection(selected types.Candidate, others []types.Candidate) string {
	const prefix = "Your selection may indicate a preference for "

	switch {
	case selected.Age < 35 && anyOther(others, func(c types.Candidate) bool { return c.Age >= 35 }):
		return prefix + "younger candidates. How might age diversity benefit your team?"
	case strings.Contains(selected.Education, "Master") || strings.Contains(selected.Education, "PhD"):
		return prefix + "candidates with advanced degrees. What value might candidates with different educational backgrounds bring?"
	case selected.Experience > 5:
		return prefix + "candidates with more years of experience. What fresh perspectives might someone earlier in their career contribute?"
	case selected.Gender != "" && anyOther(others, func(c types.Candidate) bool { return c.Gender != selected.Gender }):
		return prefix + strings.ToLower(selected.Gender) + " candidates. What benefits might gender diversity bring to your workplace culture?"
	}
	return "Your selection patterns may reflect unconscious preferences for certain candidate traits. What alternative perspectives might you be overlooking in your hiring process?"
}

// FallbackFlashcard picks a static fact for the bias pattern's keywords.
func FallbackFlashcard(biasPattern string) string {
	p := strings.ToLower(biasPattern)
	switch {
	case containsAny(p, "education", "degree"):
		return "Research shows teams with diverse educational backgrounds solve complex problems 30% faster than homogeneous groups. Consider how different paths to expertise might strengthen your team's capabilities."
	case containsAny(p, "age", "young", "old"):
		return "Age-diverse teams report 70% higher levels of innovation due to the blend of fresh perspectives with seasoned experience. Each generation brings unique strengths to collaborative problem-solving."
	case containsAny(p, "gender", "male", "female"):
		return "Companies with gender-balanced leadership consistently outperform their peers by 25% in profitability. Diverse decision-making groups make fewer cognitive errors and show increased creativity."
	case strings.Contains(p, "experience"):
		return "Organizations that balance seasoned professionals with employees from non-traditional backgrounds report 40% higher employee satisfaction and retention, creating stronger institutional knowledge."
	}
	return defaultFlashcard
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func anyOther(others []types.Candidate, pred func(types.Candidate) bool) bool {
	for _, c := range others {
		if pred(c) {
			return true
		}
	}
	return false
}
