package server

import (
	"net/http"

	"github.com/jonathan/hiring-bias-game/internal/types"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req types.CreateSessionRequest
	if err := s.decodeJSON(w, r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, validationError(&req, err))
		return
	}

	session, err := s.game.CreateSession(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionId")
	session, err := s.repo.GetSession(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if session == nil {
		s.writeError(w, r, &ErrNotFound{Resource: "session", ID: sessionID})
		return
	}
	s.jsonResponse(w, http.StatusOK, session)
}

func (s *Server) handleCompleteSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.game.Complete(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, session)
}
