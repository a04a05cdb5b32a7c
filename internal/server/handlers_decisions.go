package server

import (
	"net/http"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

func (s *Server) handleCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var candidate types.Candidate
	if err := s.decodeJSON(w, r, &candidate, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := types.ValidateCandidate(&candidate); err != nil {
		s.writeError(w, r, validationError(&candidate, err))
		return
	}

	stored, err := s.repo.CreateCandidate(r.Context(), candidate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, stored)
}

func (s *Server) handleCreateDecision(w http.ResponseWriter, r *http.Request) {
	var req types.DecisionRequest
	if err := s.decodeJSON(w, r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.ResolveCandidateID()

	if req.SessionID == "" || req.SelectedCandidateID == 0 || req.RoundNumber == nil {
		s.writeError(w, r, &ErrValidation{
			Message: "missing required fields",
			Details: map[string]string{
				"sessionId":           presence(req.SessionID != ""),
				"selectedCandidateId": presence(req.SelectedCandidateID != 0),
				"roundNumber":         presence(req.RoundNumber != nil),
			},
		})
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, validationError(&req, err))
		return
	}

	decision, err := s.game.RecordDecision(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, decision)
}

func (s *Server) handleListDecisions(w http.ResponseWriter, r *http.Request) {
	decisions, err := s.repo.ListDecisions(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, decisions)
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
