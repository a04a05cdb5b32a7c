package server

import (
	"net/http"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

// Provider failures are absorbed by the advisor, so these handlers only
// return errors for invalid input.

func (s *Server) handleCandidateResponse(w http.ResponseWriter, r *http.Request) {
	var req types.CandidateResponseRequest
	if !s.decodeValid(w, r, &req, req.Validate) {
		return
	}
	text, err := s.advisor.CandidateResponse(r.Context(), *req.Candidate, req.Question, req.ResponseType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.TextResponse{Text: text})
}

func (s *Server) handleBiasAnalysis(w http.ResponseWriter, r *http.Request) {
	var req types.BiasAnalysisRequest
	if !s.decodeValid(w, r, &req, req.Validate) {
		return
	}
	analysis, err := s.advisor.BiasAnalysis(r.Context(), req.SelectedCandidates, req.CurrentRound, req.TotalRounds)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

func (s *Server) handleBiasReflection(w http.ResponseWriter, r *http.Request) {
	var req types.BiasReflectionRequest
	if !s.decodeValid(w, r, &req, req.Validate) {
		return
	}
	text, err := s.advisor.BiasReflection(r.Context(), *req.SelectedCandidate, req.OtherCandidates)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.TextResponse{Text: text})
}

func (s *Server) handleBiasFlashcard(w http.ResponseWriter, r *http.Request) {
	var req types.BiasFlashcardRequest
	if !s.decodeValid(w, r, &req, req.Validate) {
		return
	}
	text, err := s.advisor.BiasFlashcard(r.Context(), req.BiasPattern)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.TextResponse{Text: text})
}

func (s *Server) handleGenerateCandidate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateCandidateRequest
	if !s.decodeValid(w, r, &req, req.Validate) {
		return
	}
	candidate, err := s.advisor.GenerateCandidate(r.Context(), req.JobPosition)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, candidate)
}

// decodeValid decodes the body into req and runs validate, writing a 400 on failure.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, req any, validate func() error) bool {
	if err := s.decodeJSON(w, r, req, false); err != nil {
		s.writeError(w, r, err)
		return false
	}
	if err := validate(); err != nil {
		s.writeError(w, r, validationError(req, err))
		return false
	}
	return true
}
