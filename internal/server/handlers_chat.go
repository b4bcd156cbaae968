package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/resume-coach/internal/chat"
	"github.com/jonathan/resume-coach/internal/server/middleware"
	"github.com/jonathan/resume-coach/internal/types"
)

// handlePersonas lists the available personas.
func (s *Server) handlePersonas(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"personas": chat.Personas()})
}

// handleCreateSession opens a chat session and issues its token.
// When the shell is password protected the request must carry the password.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if s.chats == nil {
		s.errorFor(w, &ErrChatDisabled{})
		return
	}

	var req types.CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if err := req.Validate(); err != nil {
		s.errorFor(w, extractValidationErrors(err))
		return
	}

	if !s.shellAuth.Verify(req.Password) {
		log.Printf("[auth] rejected session request from %s", s.extractClientID(r))
		s.errorFor(w, &ErrInvalidCredentials{})
		return
	}

	sessionID := uuid.New()
	manager, err := s.chats.Create(r.Context(), sessionID.String(), req.Persona)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	token, err := s.sessions.GenerateToken(sessionID)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessions.TTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.jsonResponse(w, http.StatusCreated, types.SessionResponse{
		SessionID: sessionID,
		Token:     token,
		Persona:   manager.Persona(),
	})
}

// sessionManager resolves the manager for the authenticated session.
func (s *Server) sessionManager(w http.ResponseWriter, r *http.Request) (*chat.Manager, bool) {
	if s.chats == nil {
		s.errorFor(w, &ErrChatDisabled{})
		return nil, false
	}

	sessionID, err := middleware.GetSessionID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	manager, err := s.chats.Get(r.Context(), sessionID.String())
	if err != nil {
		s.errorFor(w, err)
		return nil, false
	}
	return manager, true
}

// handleHistory returns the conversation without its system message.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.sessionManager(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, historyResponse(manager))
}

// handleSendMessage sends one user turn and returns the reply.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.sessionManager(w, r)
	if !ok {
		return
	}

	var req types.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFor(w, extractValidationErrors(err))
		return
	}

	reply, err := manager.Send(r.Context(), req.Message)
	if err != nil {
		s.errorFor(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.SendMessageResponse{
		Reply:       reply,
		TotalTokens: manager.TotalTokens(),
	})
}

// handleSetPersona switches the session's persona.
func (s *Server) handleSetPersona(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.sessionManager(w, r)
	if !ok {
		return
	}

	var req types.SetPersonaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorFor(w, extractValidationErrors(err))
		return
	}

	if err := manager.SetPersona(r.Context(), req.Persona); err != nil {
		s.errorFor(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, historyResponse(manager))
}

// handleClearHistory resets the conversation to the persona's system message.
func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	manager, ok := s.sessionManager(w, r)
	if !ok {
		return
	}
	manager.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func historyResponse(m *chat.Manager) types.HistoryResponse {
	history := m.History()
	messages := []types.Message{}
	if len(history) > 1 {
		messages = history[1:]
	}
	return types.HistoryResponse{
		Persona:     m.Persona(),
		Messages:    messages,
		TotalTokens: m.TotalTokens(),
	}
}
