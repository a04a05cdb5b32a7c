// Package types provides type definitions for structured data used throughout the hiring bias game.
package types

// EducationDetail is a single entry in a candidate's education history.
type EducationDetail struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Years       string `json:"years"`
}

// ExperienceDetail is a single entry in a candidate's work history, most recent first.
type ExperienceDetail struct {
	Title   string   `json:"title"`
	Company string   `json:"company"`
	Years   string   `json:"years"`
	Details []string `json:"details,omitempty"`
	Note    string   `json:"note,omitempty"`
}

// Reference is a professional reference quoted on a candidate profile.
type Reference struct {
	Name  string `json:"name"`
	Title string `json:"title"`
	Quote string `json:"quote"`
}

// Skills holds the technical skill set and headline soft skill of a candidate.
type Skills struct {
	Technical []string `json:"technical"`
	Soft      string   `json:"soft"`
}

// Candidate is a synthetic job applicant shown to the player.
// Candidates are treated as immutable once created, except for MainInfluence
// which is attached when the candidate is selected.
type Candidate struct {
	ID                int64              `json:"id"`
	Name              string             `json:"name" validate:"required"`
	Gender            string             `json:"gender" validate:"required"`
	Age               int                `json:"age" validate:"gte=0"`
	Experience        int                `json:"experience" validate:"gte=0"`
	Education         string             `json:"education"`
	EducationDetails  []EducationDetail  `json:"educationDetails"`
	ExperienceDetails []ExperienceDetail `json:"experienceDetails"`
	Skills            Skills             `json:"skills"`
	SoftSkill         string             `json:"softSkill"`
	SoftSkillDetail   string             `json:"softSkillDetail"`
	References        []Reference        `json:"references"`
	InterviewQuote    string             `json:"interviewQuote"`
	FollowupQuestion  string             `json:"followupQuestion"`
	FollowupAnswer    string             `json:"followupAnswer"`
	GoldStar          string             `json:"goldStar"`
	RedFlag           string             `json:"redFlag"`
	KeyStrength       string             `json:"keyStrength"`
	MainInfluence     string             `json:"mainInfluence,omitempty"`
}

// CurrentTitle returns the title of the most recent position, or fallback when there is none.
func (c *Candidate) CurrentTitle(fallback string) string {
	if len(c.ExperienceDetails) > 0 && c.ExperienceDetails[0].Title != "" {
		return c.ExperienceDetails[0].Title
	}
	return fallback
}

// CurrentCompany returns the company of the most recent position, or fallback when there is none.
func (c *Candidate) CurrentCompany(fallback string) string {
	if len(c.ExperienceDetails) > 0 && c.ExperienceDetails[0].Company != "" {
		return c.ExperienceDetails[0].Company
	}
	return fallback
}

// PrimaryInstitution returns the first listed institution, or fallback when there is none.
func (c *Candidate) PrimaryInstitution(fallback string) string {
	if len(c.EducationDetails) > 0 && c.EducationDetails[0].Institution != "" {
		return c.EducationDetails[0].Institution
	}
	return fallback
}

// Normalize fills nil collections so the candidate serializes with empty arrays.
func (c *Candidate) Normalize() {
	if c.Skills.Technical == nil {
		c.Skills.Technical = []string{}
	}
	if c.EducationDetails == nil {
		c.EducationDetails = []EducationDetail{}
	}
	if c.ExperienceDetails == nil {
		c.ExperienceDetails = []ExperienceDetail{}
	}
	if c.References == nil {
		c.References = []Reference{}
	}
}
