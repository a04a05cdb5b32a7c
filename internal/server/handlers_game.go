package server

import (
	"net/http"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if err := s.decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, validationError(&req, err))
		return
	}

	view, err := s.game.StartGame(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, view)
}

func (s *Server) handleCurrentRound(w http.ResponseWriter, r *http.Request) {
	view, err := s.game.CurrentRound(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req types.SelectCandidateRequest
	if !s.decodeValid(w, r, &req, req.Validate) {
		return
	}
	view, err := s.game.Select(r.Context(), r.PathValue("sessionId"), req.CandidateID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleReflect(w http.ResponseWriter, r *http.Request) {
	var req types.ReflectRequest
	if !s.decodeValid(w, r, &req, req.Validate) {
		return
	}
	result, err := s.game.Reflect(r.Context(), r.PathValue("sessionId"), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	report, err := s.game.Dashboard(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// handleShowDashboard opens the interim dashboard from candidate selection.
func (s *Server) handleShowDashboard(w http.ResponseWriter, r *http.Request) {
	report, err := s.game.ShowDashboard(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request) {
	view, err := s.game.Continue(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	view, err := s.game.Reset(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleWhatIf(w http.ResponseWriter, r *http.Request) {
	var req types.WhatIfRequest
	if !s.decodeValid(w, r, &req, req.Validate) {
		return
	}
	result, err := s.game.WhatIf(r.Context(), r.PathValue("sessionId"), req.Round, req.Regenerate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}
