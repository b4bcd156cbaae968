package types

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Message roles used in chat histories.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat history entry.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CreateSessionRequest opens a chat session. Password is only checked when the shell is password protected.
type CreateSessionRequest struct {
	Password string `json:"password,omitempty"`
	Persona  string `json:"persona,omitempty" validate:"omitempty,oneof=helpful sassy teacher custom"`
}

// SessionResponse is returned when a chat session is created.
type SessionResponse struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	Persona   string    `json:"persona"`
}

// SendMessageRequest carries one user turn.
type SendMessageRequest struct {
	Message string `json:"message" validate:"required,max=20000"`
}

// SendMessageResponse carries the assistant reply for one turn.
type SendMessageResponse struct {
	Reply       string `json:"reply"`
	TotalTokens int    `json:"total_tokens"`
}

// SetPersonaRequest switches the persona of a session.
type SetPersonaRequest struct {
	Persona string `json:"persona" validate:"required"`
}

// HistoryResponse is the visible part of a chat session.
type HistoryResponse struct {
	Persona     string    `json:"persona"`
	Messages    []Message `json:"messages"`
	TotalTokens int       `json:"total_tokens"`
}

// Validate validates the CreateSessionRequest using the validator.
func (r *CreateSessionRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SendMessageRequest using the validator.
func (r *SendMessageRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SetPersonaRequest using the validator.
func (r *SetPersonaRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
