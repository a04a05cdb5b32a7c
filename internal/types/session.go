package types

import "time"

// Session defaults applied when a field is omitted at creation.
const (
	DefaultMaxRounds = 5
	DefaultLevel     = "Novice Recruiter"
)

// GameSession tracks a single playthrough.
// CurrentRound never decreases and CompletedAt is set when the game ends.
type GameSession struct {
	SessionID          string      `json:"sessionId"`
	CurrentRound       int         `json:"currentRound"`
	MaxRounds          int         `json:"maxRounds"`
	Level              string      `json:"level"`
	BiasScore          int         `json:"biasScore"`
	SelectedCandidates []Candidate `json:"selectedCandidates"`
	CompletedAt        *time.Time  `json:"completedAt"`
	CreatedAt          time.Time   `json:"createdAt"`
}

// Influence is the factor a player names as the main reason for a selection.
type Influence string

// Influence values offered on the reflection screen plus the demographic ones tracked by the dashboard.
const (
	InfluenceExperience    Influence = "experience"
	InfluenceEducation     Influence = "education"
	InfluenceSkills        Influence = "skills"
	InfluenceInterview     Influence = "interview"
	InfluencePersonal      Influence = "personal"
	InfluenceGender        Influence = "gender"
	InfluenceAge           Influence = "age"
	InfluenceCommunication Influence = "communication"

	// InfluenceNotSpecified is recorded when a decision arrives without an influence.
	InfluenceNotSpecified Influence = "not specified"
)

// Influences lists every selectable influence.
var Influences = []Influence{
	InfluenceExperience,
	InfluenceEducation,
	InfluenceSkills,
	InfluenceInterview,
	InfluencePersonal,
	InfluenceGender,
	InfluenceAge,
	InfluenceCommunication,
}

// GameDecision records the candidate chosen in one round and why.
// Duplicates for the same round are allowed; the latest one wins at read time.
type GameDecision struct {
	ID                  int64     `json:"id"`
	SessionID           string    `json:"sessionId"`
	RoundNumber         int       `json:"roundNumber"`
	SelectedCandidateID int64     `json:"selectedCandidateId"`
	MainInfluence       Influence `json:"mainInfluence"`
	ReflectionNotes     string    `json:"reflectionNotes"`
	CreatedAt           time.Time `json:"createdAt"`
}
