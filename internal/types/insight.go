package types

// InsightType classifies a bias insight.
type InsightType string

// Insight types. The first four are measured from selections, the rest are narrative.
const (
	InsightGender        InsightType = "gender"
	InsightAge           InsightType = "age"
	InsightEducation     InsightType = "education"
	InsightExperience    InsightType = "experience"
	InsightCommunication InsightType = "communication"
	InsightInterview     InsightType = "interview"
	InsightSkills        InsightType = "skills"
	InsightPersonal      InsightType = "personal"
)

// BiasInsight is a presentational finding about a player's selections.
// Insights are recomputed on demand and never persisted.
type BiasInsight struct {
	Type        InsightType `json:"type" validate:"required"`
	Title       string      `json:"title" validate:"required"`
	Description string      `json:"description"`
	Percentage  int         `json:"percentage" validate:"gte=0,lte=100"`
}

// BiasAnalysis is the result of analysing a set of selections.
type BiasAnalysis struct {
	BiasInsights     []BiasInsight `json:"biasInsights"`
	OverallBiasScore int           `json:"overallBiasScore"`
	Recommendations  []string      `json:"recommendations"`
}
