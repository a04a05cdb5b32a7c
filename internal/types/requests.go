package types

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CreateSessionRequest starts a new game session. Omitted fields take session defaults.
type CreateSessionRequest struct {
	SessionID    string `json:"sessionId,omitempty" validate:"omitempty,max=128"`
	CurrentRound *int   `json:"currentRound,omitempty" validate:"omitempty,gte=1"`
	MaxRounds    *int   `json:"maxRounds,omitempty" validate:"omitempty,gte=1,lte=50"`
	Level        string `json:"level,omitempty"`
	BiasScore    *int   `json:"biasScore,omitempty" validate:"omitempty,gte=0,lte=100"`
}

// DecisionRequest records the candidate selected in a round.
// Candidate is optional; when present it is upserted before the decision is stored.
type DecisionRequest struct {
	SessionID           string     `json:"sessionId" validate:"required"`
	RoundNumber         *int       `json:"roundNumber" validate:"required,gte=0"`
	SelectedCandidateID int64      `json:"selectedCandidateId" validate:"required,gt=0"`
	MainInfluence       Influence  `json:"mainInfluence,omitempty" validate:"omitempty,oneof=experience education skills interview personal gender age communication"`
	ReflectionNotes     string     `json:"reflectionNotes,omitempty"`
	Candidate           *Candidate `json:"candidate,omitempty"`
}

// CandidateResponseRequest asks a candidate to answer an interview question.
type CandidateResponseRequest struct {
	Candidate    *Candidate `json:"candidate" validate:"required"`
	Question     string     `json:"question" validate:"required"`
	ResponseType string     `json:"responseType" validate:"required,oneof=interview detailed animated"`
}

// BiasAnalysisRequest asks for an analysis of the selections made so far.
type BiasAnalysisRequest struct {
	SelectedCandidates []Candidate `json:"selectedCandidates" validate:"required,min=1"`
	CurrentRound       int         `json:"currentRound"`
	TotalRounds        int         `json:"totalRounds"`
}

// BiasReflectionRequest compares the selected candidate against the ones passed over.
type BiasReflectionRequest struct {
	SelectedCandidate *Candidate  `json:"selectedCandidate" validate:"required"`
	OtherCandidates   []Candidate `json:"otherCandidates" validate:"required"`
}

// BiasFlashcardRequest asks for an awareness nudge about a bias pattern.
type BiasFlashcardRequest struct {
	BiasPattern string `json:"biasPattern" validate:"required"`
}

// GenerateCandidateRequest asks for one candidate profile for a job position.
type GenerateCandidateRequest struct {
	JobPosition string `json:"jobPosition" validate:"required"`
}

// TextResponse wraps generated free text.
type TextResponse struct {
	Text string `json:"text"`
}

// SelectCandidateRequest picks a candidate from the current round.
type SelectCandidateRequest struct {
	CandidateID int64 `json:"candidateId" validate:"required,gt=0"`
}

// ReflectRequest records the reflection for the pending selection.
type ReflectRequest struct {
	MainInfluence   Influence `json:"mainInfluence" validate:"required,oneof=experience education skills interview personal gender age communication"`
	ReflectionNotes string    `json:"reflectionNotes,omitempty"`
}

// WhatIfRequest selects the round whose candidate is swapped out.
type WhatIfRequest struct {
	Round      int  `json:"round" validate:"gte=0"`
	Regenerate bool `json:"regenerate,omitempty"`
}

// Validate validates the CreateSessionRequest using the validator.
func (r *CreateSessionRequest) Validate() error {
	return validate.Struct(r)
}

// ResolveCandidateID reconciles SelectedCandidateID with the attached candidate.
// A candidate without an id takes SelectedCandidateID; otherwise the candidate's id wins.
func (r *DecisionRequest) ResolveCandidateID() {
	if r.Candidate == nil {
		return
	}
	if r.Candidate.ID == 0 {
		r.Candidate.ID = r.SelectedCandidateID
		return
	}
	r.SelectedCandidateID = r.Candidate.ID
}

// Validate validates the DecisionRequest using the validator.
func (r *DecisionRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the CandidateResponseRequest using the validator.
func (r *CandidateResponseRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the BiasAnalysisRequest using the validator.
func (r *BiasAnalysisRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the BiasReflectionRequest using the validator.
func (r *BiasReflectionRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the BiasFlashcardRequest using the validator.
func (r *BiasFlashcardRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the GenerateCandidateRequest using the validator.
func (r *GenerateCandidateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SelectCandidateRequest using the validator.
func (r *SelectCandidateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the ReflectRequest using the validator.
func (r *ReflectRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the WhatIfRequest using the validator.
func (r *WhatIfRequest) Validate() error {
	return validate.Struct(r)
}

// ValidateCandidate validates a candidate received at the API boundary.
func ValidateCandidate(c *Candidate) error {
	return validate.Struct(c)
}
